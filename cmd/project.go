package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage photo projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Long: `Create a new project. The optional prompt is appended to the scoring
instructions for every photo in the project.

Example:
  photo-culler project create "Wedding 2026" --prompt "prefer candid moments"`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project with all of its photos and files",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var projectPromptCmd = &cobra.Command{
	Use:   "prompt <project-id> [prompt]",
	Short: "Show or change the scoring prompt of a project",
	Long: `Show the scoring prompt of a project, or replace it when a new prompt is given.
Use --clear to remove the prompt.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProjectPrompt,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectDeleteCmd, projectPromptCmd)

	projectCreateCmd.Flags().String("prompt", "", "Additional scoring guidance for this project")
	projectDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	projectPromptCmd.Flags().Bool("clear", false, "Remove the prompt")
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project := &database.Project{
		Name:   args[0],
		Prompt: mustGetString(cmd, "prompt"),
	}
	if err := a.store.CreateProject(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	fmt.Printf("Created project %s (%s)\n", project.Name, project.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	projects, err := a.store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Println("No projects yet. Create one with: photo-culler project create <name>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHOTOS\tUNSCORED\tGROUPS\tCREATED")
	for _, p := range projects {
		photos, err := a.store.ListPhotos(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list photos of %s: %w", p.ID, err)
		}
		unscored, err := a.store.CountUnscored(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to count unscored photos of %s: %w", p.ID, err)
		}
		groups, err := a.store.CountGroups(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to count groups of %s: %w", p.ID, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			p.ID, p.Name, len(photos), unscored, groups, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.project(ctx, args[0])
	if err != nil {
		return err
	}

	if !mustGetBool(cmd, "yes") {
		fmt.Printf("Delete project '%s' with all photos and files? [y/N]: ", project.Name)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.analyzer(nil).DeleteProject(ctx, project.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted project %s\n", project.Name)
	return nil
}

func runProjectPrompt(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.project(ctx, args[0])
	if err != nil {
		return err
	}

	clearPrompt := mustGetBool(cmd, "clear")
	if len(args) == 1 && !clearPrompt {
		if project.Prompt == "" {
			fmt.Println("(no prompt)")
		} else {
			fmt.Println(project.Prompt)
		}
		return nil
	}

	project.Prompt = ""
	if len(args) == 2 {
		project.Prompt = args[1]
	}
	if err := a.store.UpdateProject(ctx, project); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	fmt.Println("Prompt updated.")
	return nil
}

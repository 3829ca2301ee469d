package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-culler/internal/analyzer"
	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group <project-id>",
	Short: "Group similar photos using AI",
	Long: `Clear existing groups and ask the vision model to find near-duplicate shots
in batches of 20 photos. Groups never span batches.`,
	Args: cobra.ExactArgs(1),
	RunE: runGroup,
}

var ungroupCmd = &cobra.Command{
	Use:   "ungroup <project-id>",
	Short: "Remove all groups of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runUngroup,
}

var groupsCmd = &cobra.Command{
	Use:   "groups <project-id>",
	Short: "List groups with their best photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroups,
}

func init() {
	rootCmd.AddCommand(groupCmd, ungroupCmd, groupsCmd)
	addProviderFlag(groupCmd)
	groupCmd.Flags().Int("concurrency", 1, "Number of batches sent in parallel")
}

func runGroup(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.project(ctx, args[0])
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, a.cfg, providerName(cmd, a.cfg))
	if err != nil {
		return err
	}

	fmt.Printf("Grouping project: %s\n", project.Name)
	fmt.Printf("Provider: %s\n\n", provider.Name())

	groups, err := a.analyzer(provider).GroupPhotos(ctx, project.ID, analyzer.Options{
		Concurrency: mustGetInt(cmd, "concurrency"),
		OnProgress:  analysisBar("Grouping"),
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("grouping failed: %w", err)
	}

	fmt.Printf("\nFound %d group(s)\n", groups)
	printUsage(provider)
	return nil
}

func runUngroup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.analyzer(nil).UngroupPhotos(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("All groups removed.")
	return nil
}

func runGroups(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	views, err := a.analyzer(nil).BestOfGroups(ctx, args[0])
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Println("No groups. Run: photo-culler group <project-id>")
		return nil
	}

	for _, v := range views {
		fmt.Printf("Group %d (%d photos)\n", v.GroupID, len(v.Photos))
		for _, p := range v.Photos {
			marker := " "
			if p.ID == v.Best.ID {
				marker = "*"
			}
			fmt.Printf("  %s %6d  %-5s  %s\n", marker, p.ID, formatScore(p.Score), p.Filename)
		}
	}
	fmt.Println("\n* best photo of the group")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/kozaktomas/photo-culler/internal/analyzer"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project-id>",
	Short: "Score unscored photos using AI",
	Long: `Send all unscored photos of a project to the vision model in batches of 10
and store a 0-10 score and a short comment for each. Batches that fail are
skipped; run the command again to retry them.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addProviderFlag(analyzeCmd)
	analyzeCmd.Flags().Int("concurrency", 1, "Number of batches sent in parallel")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Scoring project: %s\n", project.Name)
	fmt.Printf("Provider: %s\n\n", provider.Name())

	scored, err := a.analyzer(provider).ScorePhotos(ctx, project.ID, analyzer.Options{
		Concurrency: mustGetInt(cmd, "concurrency"),
		OnProgress:  analysisBar("Scoring"),
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	remaining, err := a.store.CountUnscored(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to count unscored photos: %w", err)
	}

	fmt.Printf("\nScored: %d photos\n", scored)
	if remaining > 0 {
		fmt.Printf("Still unscored: %d (run analyze again to retry)\n", remaining)
	}
	printUsage(provider)
	return nil
}

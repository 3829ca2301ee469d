package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <project-id>",
	Short: "Estimate the cost of scoring a project",
	Long: `Estimate the token usage and price of scoring all unscored photos of a project
with the selected provider. Nothing is sent to the provider.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	addProviderFlag(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	name := providerName(cmd, a.cfg)
	model, err := modelName(a.cfg, name)
	if err != nil {
		return err
	}
	pricing, err := providerPricing(a.cfg, name)
	if err != nil {
		return err
	}

	est, err := a.analyzer(nil).EstimateProjectCost(ctx, args[0], pricing)
	if err != nil {
		return err
	}

	fmt.Printf("Provider: %s (%s)\n", name, model)
	fmt.Printf("Unscored photos: %d in %d batch(es)\n", est.Photos, est.Batches)
	fmt.Printf("Input tokens:  ~%d ($%.4f)\n", est.InputTokens, est.InputCost)
	fmt.Printf("Output tokens: ~%d ($%.4f)\n", est.OutputTokens, est.OutputCost)
	fmt.Printf("Estimated total: $%.4f\n", est.TotalCost)
	return nil
}

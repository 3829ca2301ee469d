package cmd

import (
	"fmt"

	"github.com/kozaktomas/photo-culler/internal/config"
	"github.com/spf13/cobra"
)

var validateKeyCmd = &cobra.Command{
	Use:   "validate-key",
	Short: "Check that the AI provider is reachable and the key is accepted",
	Args:  cobra.NoArgs,
	RunE:  runValidateKey,
}

func init() {
	rootCmd.AddCommand(validateKeyCmd)
	addProviderFlag(validateKeyCmd)
}

func runValidateKey(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg := config.Load()
	provider, err := newProvider(ctx, cfg, providerName(cmd, cfg))
	if err != nil {
		return err
	}

	if err := provider.ValidateKey(ctx); err != nil {
		return err
	}
	fmt.Printf("OK: %s is ready\n", provider.Name())
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-culler",
	Short: "A CLI tool for culling photo shoots using AI",
	Long: `Photo Culler keeps a local library of photo projects. It scores every photo
with a vision model (OpenAI, Gemini, Ollama, llama.cpp), groups near-duplicate
shots and helps you pick and export the keepers.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

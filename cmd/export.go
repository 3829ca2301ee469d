package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Copy selected originals into the project's export folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := a.analyzer(nil).Export(ctx, args[0])
	for _, p := range paths {
		fmt.Println(p)
	}
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("Nothing selected. Use select or select-best first.")
		return nil
	}
	fmt.Printf("\nExported %d photo(s) to %s\n", len(paths), a.layout.ExportsDir(args[0]))
	return nil
}

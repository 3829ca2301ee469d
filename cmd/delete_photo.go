package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deletePhotoCmd = &cobra.Command{
	Use:   "delete-photo <photo-id> [photo-id...]",
	Short: "Delete photos with their original and thumbnail files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDeletePhoto,
}

func init() {
	rootCmd.AddCommand(deletePhotoCmd)
}

func runDeletePhoto(cmd *cobra.Command, args []string) error {
	ids, err := parsePhotoIDs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	an := a.analyzer(nil)
	for _, id := range ids {
		if err := an.DeletePhoto(ctx, id); err != nil {
			return fmt.Errorf("photo %d: %w", id, err)
		}
		fmt.Printf("Deleted photo %d\n", id)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <project-id> <photo-id> [photo-id...]",
	Short: "Mark photos for export",
	Long: `Mark photos for export, or unmark them with --off.

Example:
  photo-culler select 1f0c2d3e-... 12 15 18
  photo-culler select --off 1f0c2d3e-... 15`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSelect,
}

var selectBestCmd = &cobra.Command{
	Use:   "select-best <project-id>",
	Short: "Select the best photo of each group and strong ungrouped photos",
	Long: `Select the best photo of every group, plus every ungrouped photo scored at or
above the threshold. Existing selections are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelectBest,
}

func init() {
	rootCmd.AddCommand(selectCmd, selectBestCmd)
	selectCmd.Flags().Bool("off", false, "Unmark the photos instead")
	selectBestCmd.Flags().Float64("threshold", 0, "Minimum score of ungrouped photos (default from SELECT_THRESHOLD)")
}

func parsePhotoIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid photo id: %s", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	ids, err := parsePhotoIDs(args[1:])
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	selected := !mustGetBool(cmd, "off")
	n, err := a.analyzer(nil).SetSelected(ctx, args[0], ids, selected)
	if err != nil {
		return err
	}

	verb := "Selected"
	if !selected {
		verb = "Unselected"
	}
	fmt.Printf("%s %d photo(s)\n", verb, n)
	if int(n) < len(ids) {
		fmt.Printf("%d id(s) did not match a photo in this project\n", len(ids)-int(n))
	}
	return nil
}

func runSelectBest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	threshold := mustGetFloat64(cmd, "threshold")
	if !cmd.Flags().Changed("threshold") {
		threshold = a.cfg.Library.SelectThreshold
	}

	n, err := a.analyzer(nil).SelectBest(ctx, args[0], threshold)
	if err != nil {
		return err
	}
	fmt.Printf("Selected %d photo(s) (threshold %.1f)\n", n, threshold)
	return nil
}

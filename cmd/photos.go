package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/facette/natsort"
	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/spf13/cobra"
)

var photosCmd = &cobra.Command{
	Use:   "photos <project-id>",
	Short: "List photos of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhotos,
}

func init() {
	rootCmd.AddCommand(photosCmd)
	photosCmd.Flags().String("sort", "id", "Sort order: id, name, score")
	photosCmd.Flags().Bool("selected", false, "Show only selected photos")
	photosCmd.Flags().Bool("unscored", false, "Show only unscored photos")
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *score)
}

func sortPhotos(photos []database.Photo, order string) error {
	switch order {
	case "id":
		// store order
	case "name":
		slices.SortStableFunc(photos, func(a, b database.Photo) int {
			switch {
			case natsort.Compare(a.Filename, b.Filename):
				return -1
			case natsort.Compare(b.Filename, a.Filename):
				return 1
			default:
				return 0
			}
		})
	case "score":
		slices.SortStableFunc(photos, func(a, b database.Photo) int {
			switch {
			case a.ScoreValue() > b.ScoreValue():
				return -1
			case a.ScoreValue() < b.ScoreValue():
				return 1
			default:
				return 0
			}
		})
	default:
		return fmt.Errorf("unknown sort order: %s (supported: id, name, score)", order)
	}
	return nil
}

func runPhotos(cmd *cobra.Command, args []string) error {
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

	var photos []database.Photo
	switch {
	case mustGetBool(cmd, "selected"):
		photos, err = a.store.ListSelectedPhotos(ctx, project.ID)
	case mustGetBool(cmd, "unscored"):
		photos, err = a.store.ListUnscoredPhotos(ctx, project.ID)
	default:
		photos, err = a.store.ListPhotos(ctx, project.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to list photos: %w", err)
	}
	if err := sortPhotos(photos, mustGetString(cmd, "sort")); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tSCORE\tGROUP\tSELECTED\tTAKEN\tCOMMENT")
	for _, p := range photos {
		group := "-"
		if p.GroupID != nil {
			group = fmt.Sprint(*p.GroupID)
		}
		selected := ""
		if p.Selected {
			selected = "yes"
		}
		taken := "-"
		if p.TakenAt != nil {
			taken = p.TakenAt.Format("2006-01-02 15:04")
		}
		comment := ""
		if p.Comment != nil {
			comment = *p.Comment
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Filename, formatScore(p.Score), group, selected, taken, comment)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d photo(s)\n", len(photos))
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/photo-culler/internal/ingest"
	"github.com/kozaktomas/photo-culler/internal/thumbnail"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <project-id> <path> [path...]",
	Short: "Add photos to a project",
	Long: `Add photos to a project. Paths may be files or folders.

By default, only files directly inside the given folders are added (non-recursive).
Use -r to search recursively in subdirectories. Files already in the project
(same content) are reported as duplicates and skipped.
Supported formats: jpg, jpeg, png, gif, tiff, bmp, webp

Example:
  photo-culler upload 1f0c2d3e-... /path/to/shoot
  photo-culler upload -r 1f0c2d3e-... /path/to/card1 /path/to/card2`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolP("recursive", "r", false, "Search for photos recursively in subdirectories")
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".tiff", ".tif", ".bmp", ".webp":
		return true
	default:
		return false
	}
}

// collectImages expands the given paths into image files, keeping the
// order in which they were given.
func collectImages(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		if recursive {
			err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isImageFile(d.Name()) {
					files = append(files, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", path, err)
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImageFile(entry.Name()) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	recursive := mustGetBool(cmd, "recursive")

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.project(ctx, projectID)
	if err != nil {
		return err
	}

	files, err := collectImages(args[1:], recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No image files found.")
		return nil
	}

	fmt.Printf("Adding %d file(s) to project: %s\n\n", len(files), project.Name)

	bar := newProgressBar(len(files), "Uploading", "files")
	pipeline := ingest.NewPipeline(a.store, a.layout, thumbnail.NewProducer(), a.log)
	summary, err := pipeline.IngestFiles(ctx, project.ID, files, func(p ingest.Progress) {
		_ = bar.Set(p.Current)
	})
	fmt.Println()
	if summary != nil {
		for _, f := range summary.Failures {
			fmt.Printf("Failed: %s: %v\n", filepath.Base(f.Path), f.Err)
		}
		for _, d := range summary.Duplicates {
			fmt.Printf("Duplicate: %s (already photo %d)\n", d.Filename, d.ID)
		}
		fmt.Printf("\nDone! Added %d, duplicates %d, failed %d\n",
			len(summary.Added), len(summary.Duplicates), len(summary.Failures))
	}
	if err != nil {
		return fmt.Errorf("upload interrupted: %w", err)
	}
	return nil
}

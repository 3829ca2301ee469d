// Package library manages the on-disk layout of projects: one directory per
// project holding originals, thumbnails and exports.
package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/photo-culler/internal/constants"
	"golang.org/x/text/unicode/norm"
)

// maxCollisionSuffix bounds the _N search so a broken filesystem cannot loop forever.
const maxCollisionSuffix = 100000

// Layout resolves project directories below a library root.
type Layout struct {
	Root string
}

// New returns a layout rooted at root.
func New(root string) *Layout {
	return &Layout{Root: root}
}

// ProjectDir returns the directory of one project.
func (l *Layout) ProjectDir(projectID string) string {
	return filepath.Join(l.Root, projectID)
}

// OriginalsDir returns where uploaded files are stored.
func (l *Layout) OriginalsDir(projectID string) string {
	return filepath.Join(l.ProjectDir(projectID), constants.OriginalsDir)
}

// ThumbnailsDir returns where previews are stored.
func (l *Layout) ThumbnailsDir(projectID string) string {
	return filepath.Join(l.ProjectDir(projectID), constants.ThumbnailsDir)
}

// ExportsDir returns where selected photos are copied by Export.
func (l *Layout) ExportsDir(projectID string) string {
	return filepath.Join(l.ProjectDir(projectID), constants.ExportsDir)
}

// RemoveProject deletes the project directory and everything in it.
func (l *Layout) RemoveProject(projectID string) error {
	if projectID == "" || strings.ContainsAny(projectID, `/\`) {
		return fmt.Errorf("invalid project id %q", projectID)
	}
	return os.RemoveAll(l.ProjectDir(projectID))
}

// CleanFilename reduces an uploaded name to its NFC-normalized base name.
func CleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = norm.NFC.String(name)
	if name == "." || name == "/" || name == "" {
		return "photo"
	}
	return name
}

// CreateUnique creates a new file in dir named after name. When the name is
// taken, _1, _2, ... is inserted before the extension until a free name is
// found. The directory is created when missing. The caller closes the file.
func CreateUnique(dir, name string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i <= maxCollisionSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("no free name for %s in %s", name, dir)
}

// WriteUnique stores data under a collision-free name and returns the path.
func WriteUnique(dir, name string, data []byte) (string, error) {
	f, path, err := CreateUnique(dir, name)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// CopyUnique copies src into dir under a collision-free version of name.
func CopyUnique(src, dir, name string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, path, err := CreateUnique(dir, name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// RemoveFiles deletes the given paths, ignoring empty and missing entries.
// It returns the first other error encountered.
func RemoveFiles(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package ingest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/kozaktomas/photo-culler/internal/database/mock"
	"github.com/kozaktomas/photo-culler/internal/library"
	"github.com/kozaktomas/photo-culler/internal/thumbnail"
)

type failingProducer struct{}

func (failingProducer) Produce(string, int, int) ([]byte, error) {
	return nil, errors.New("cannot decode")
}

func writeJPEG(t *testing.T, dir, name string, shade uint8) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := range 48 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setup(t *testing.T, producer thumbnail.Producer) (*Pipeline, *mock.MockStore, string) {
	t.Helper()
	store := mock.NewMockStore()
	project := &database.Project{Name: "Test"}
	if err := store.CreateProject(context.Background(), project); err != nil {
		t.Fatal(err)
	}
	return NewPipeline(store, library.New(t.TempDir()), producer, nil), store, project.ID
}

func TestIngest_NewPhoto(t *testing.T) {
	p, store, projectID := setup(t, thumbnail.NewProducer())
	src := writeJPEG(t, t.TempDir(), "beach.jpg", 10)

	res, err := p.Ingest(context.Background(), projectID, src)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if res.Duplicate {
		t.Fatal("expected new photo")
	}

	photo := res.Photo
	if photo.Filename != "beach.jpg" || photo.IsScored() || photo.Selected || photo.GroupID != nil {
		t.Errorf("unexpected photo: %+v", photo)
	}
	if _, err := os.Stat(photo.OriginalPath); err != nil {
		t.Errorf("original missing: %v", err)
	}
	if _, err := os.Stat(photo.ThumbnailPath); err != nil {
		t.Errorf("thumbnail missing: %v", err)
	}
	if filepath.Dir(photo.OriginalPath) != p.layout.OriginalsDir(projectID) {
		t.Errorf("original stored outside originals dir: %s", photo.OriginalPath)
	}

	stored, _ := store.ListPhotos(context.Background(), projectID)
	if len(stored) != 1 {
		t.Errorf("expected 1 stored photo, got %d", len(stored))
	}
}

func TestIngest_Duplicate(t *testing.T) {
	p, store, projectID := setup(t, thumbnail.NewProducer())
	dir := t.TempDir()
	src := writeJPEG(t, dir, "a.jpg", 10)

	first, err := p.Ingest(context.Background(), projectID, src)
	if err != nil {
		t.Fatal(err)
	}

	// Same bytes under another name
	data, _ := os.ReadFile(src)
	copyPath := filepath.Join(dir, "b.jpg")
	os.WriteFile(copyPath, data, 0o644)

	second, err := p.Ingest(context.Background(), projectID, copyPath)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if !second.Duplicate || second.Photo.ID != first.Photo.ID {
		t.Errorf("expected duplicate of %d, got %+v", first.Photo.ID, second)
	}

	entries, _ := os.ReadDir(p.layout.OriginalsDir(projectID))
	if len(entries) != 1 {
		t.Errorf("duplicate must not write files, found %d originals", len(entries))
	}
	photos, _ := store.ListPhotos(context.Background(), projectID)
	if len(photos) != 1 {
		t.Errorf("expected 1 photo, got %d", len(photos))
	}
}

func TestIngest_NameCollision(t *testing.T) {
	p, _, projectID := setup(t, thumbnail.NewProducer())

	a := writeJPEG(t, t.TempDir(), "img.jpg", 10)
	b := writeJPEG(t, t.TempDir(), "img.jpg", 200)

	ra, err := p.Ingest(context.Background(), projectID, a)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := p.Ingest(context.Background(), projectID, b)
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Base(ra.Photo.OriginalPath) != "img.jpg" {
		t.Errorf("expected img.jpg, got %s", ra.Photo.OriginalPath)
	}
	if filepath.Base(rb.Photo.OriginalPath) != "img_1.jpg" {
		t.Errorf("expected img_1.jpg, got %s", rb.Photo.OriginalPath)
	}
	if rb.Photo.Filename != "img.jpg" {
		t.Errorf("filename should keep the uploaded name, got %s", rb.Photo.Filename)
	}
}

func TestIngest_PlaceholderThumbnail(t *testing.T) {
	p, _, projectID := setup(t, failingProducer{})
	src := filepath.Join(t.TempDir(), "broken.jpg")
	os.WriteFile(src, []byte("definitely not a jpeg"), 0o644)

	res, err := p.Ingest(context.Background(), projectID, src)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	data, err := os.ReadFile(res.Photo.ThumbnailPath)
	if err != nil {
		t.Fatal(err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("placeholder is not a JPEG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != constants.ThumbnailMaxSize || b.Dy() != constants.ThumbnailMaxSize {
		t.Errorf("expected %dx%d placeholder, got %dx%d", constants.ThumbnailMaxSize, constants.ThumbnailMaxSize, b.Dx(), b.Dy())
	}
}

func TestIngest_PersistFailureCleansUp(t *testing.T) {
	p, store, projectID := setup(t, thumbnail.NewProducer())
	store.CreatePhotoError = errors.New("disk full")
	src := writeJPEG(t, t.TempDir(), "a.jpg", 10)

	if _, err := p.Ingest(context.Background(), projectID, src); err == nil {
		t.Fatal("expected error")
	}

	for _, dir := range []string{p.layout.OriginalsDir(projectID), p.layout.ThumbnailsDir(projectID)} {
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("expected no orphaned files in %s, found %d", dir, len(entries))
		}
	}
}

func TestIngest_UnknownProject(t *testing.T) {
	p, _, _ := setup(t, thumbnail.NewProducer())
	src := writeJPEG(t, t.TempDir(), "a.jpg", 10)

	if _, err := p.Ingest(context.Background(), "missing", src); !errors.Is(err, database.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestIngestFiles_ProgressAndSummary(t *testing.T) {
	p, _, projectID := setup(t, thumbnail.NewProducer())
	dir := t.TempDir()
	a := writeJPEG(t, dir, "a.jpg", 10)
	b := writeJPEG(t, dir, "b.jpg", 20)
	missing := filepath.Join(dir, "missing.jpg")
	dupDir := t.TempDir()
	data, _ := os.ReadFile(a)
	dup := filepath.Join(dupDir, "a_copy.jpg")
	os.WriteFile(dup, data, 0o644)

	var events []Progress
	summary, err := p.IngestFiles(context.Background(), projectID, []string{a, missing, b, dup}, func(pr Progress) {
		events = append(events, pr)
	})
	if err != nil {
		t.Fatalf("IngestFiles failed: %v", err)
	}

	if len(summary.Added) != 2 || len(summary.Duplicates) != 1 || len(summary.Failures) != 1 {
		t.Fatalf("unexpected summary: added=%d dup=%d failed=%d",
			len(summary.Added), len(summary.Duplicates), len(summary.Failures))
	}
	if summary.Failures[0].Path != missing {
		t.Errorf("expected failure for %s, got %s", missing, summary.Failures[0].Path)
	}

	wantNames := []string{"a.jpg", "missing.jpg", "b.jpg", "a_copy.jpg"}
	if len(events) != len(wantNames) {
		t.Fatalf("expected %d progress events, got %d", len(wantNames), len(events))
	}
	for i, ev := range events {
		if ev.Current != i+1 || ev.Total != 4 || ev.Filename != wantNames[i] {
			t.Errorf("event %d: got %+v", i, ev)
		}
	}
}

func TestIngestFiles_UnknownProjectTouchesNothing(t *testing.T) {
	p, _, _ := setup(t, thumbnail.NewProducer())
	src := writeJPEG(t, t.TempDir(), "a.jpg", 10)

	called := false
	_, err := p.IngestFiles(context.Background(), "missing", []string{src}, func(Progress) { called = true })
	if !errors.Is(err, database.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
	if called {
		t.Error("no progress expected for a missing project")
	}
	if _, err := os.Stat(p.layout.ProjectDir("missing")); !os.IsNotExist(err) {
		t.Error("no directory should be created for a missing project")
	}
}

func TestTakenAt_NoExif(t *testing.T) {
	if got := takenAt([]byte("plain bytes")); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

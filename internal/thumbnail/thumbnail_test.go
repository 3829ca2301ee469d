package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected JPEG output: %v", err)
	}
	return img
}

func TestProduce_FitsInsideBound(t *testing.T) {
	path := writePNG(t, 1600, 900)

	data, err := NewProducer().Produce(path, 800, 85)
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}

	b := decodeJPEG(t, data).Bounds()
	if b.Dx() != 800 || b.Dy() != 450 {
		t.Errorf("expected 800x450, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProduce_NeverUpscales(t *testing.T) {
	path := writePNG(t, 120, 80)

	data, err := NewProducer().Produce(path, 800, 85)
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}

	b := decodeJPEG(t, data).Bounds()
	if b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("expected original 120x80, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProduce_Errors(t *testing.T) {
	p := NewProducer()

	if _, err := p.Produce(filepath.Join(t.TempDir(), "missing.jpg"), 800, 85); err == nil {
		t.Error("expected error for missing file")
	}

	garbage := filepath.Join(t.TempDir(), "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Produce(garbage, 800, 85); err == nil {
		t.Error("expected error for undecodable file")
	}

	if _, err := p.Produce(writePNG(t, 10, 10), 0, 85); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestPlaceholder(t *testing.T) {
	img := decodeJPEG(t, Placeholder(800, 85))

	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 800 {
		t.Fatalf("expected 800x800, got %dx%d", b.Dx(), b.Dy())
	}

	r, g, bl, _ := img.At(400, 400).RGBA()
	for _, c := range []uint32{r >> 8, g >> 8, bl >> 8} {
		if c < 120 || c > 136 {
			t.Errorf("expected mid gray, got %d/%d/%d", r>>8, g>>8, bl>>8)
			break
		}
	}
}

// Package thumbnail renders the JPEG previews that are shown in listings and
// sent to the vision service.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Producer renders a preview of an image file.
type Producer interface {
	Produce(sourcePath string, maxDimension, quality int) ([]byte, error)
}

// ImagingProducer implements Producer with disintegration/imaging.
type ImagingProducer struct{}

// NewProducer returns the default thumbnail producer.
func NewProducer() *ImagingProducer {
	return &ImagingProducer{}
}

// Produce decodes the source (honouring EXIF orientation), fits it inside a
// maxDimension square without upscaling, and encodes it as JPEG.
func (ImagingProducer) Produce(sourcePath string, maxDimension, quality int) ([]byte, error) {
	if maxDimension <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %d", maxDimension)
	}

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", sourcePath, err)
	}

	return encode(imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos), quality)
}

// Placeholder returns a uniform gray size x size JPEG, used when a source
// cannot be rendered.
func Placeholder(size, quality int) []byte {
	img := imaging.New(size, size, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	data, err := encode(img, quality)
	if err != nil {
		// encoding an in-memory NRGBA image cannot fail
		panic(err)
	}
	return data
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

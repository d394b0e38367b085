package watermark

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp" // uploaded sources may be WebP
)

// Codec abstracts rasterization so the processor does not depend on a
// particular imaging backend. Decode turns encoded bytes into a pixel
// surface; Encode serializes a surface to the requested output format.
type Codec interface {
	Decode(data []byte) (image.Image, error)
	Encode(img image.Image, format OutputFormat, quality float64) ([]byte, error)
}

// StdCodec implements Codec on the standard image packages, with the WebP
// decoder registered for input.
type StdCodec struct{}

func (StdCodec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (StdCodec) Encode(img image.Image, format OutputFormat, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return buf.Bytes(), nil
}

// jpegQuality maps the 0..1 quality factor onto the encoder's 1..100 scale.
func jpegQuality(quality float64) int {
	if quality <= 0 || quality > 1 {
		quality = DefaultJPEGQuality
	}
	q := int(quality*100 + 0.5)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}

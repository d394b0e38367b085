// Package watermark stamps the branded mark onto every generated artifact and
// re-encodes it to the requested output format.
package watermark

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"waii/internal/imaging"
)

// MarkText is the fixed branded overlay drawn on every artifact.
const MarkText = "WAII"

// DefaultJPEGQuality is used when the caller does not supply a quality factor.
const DefaultJPEGQuality = 0.92

// OutputFormat selects the artifact encoding.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"
	FormatJPEG OutputFormat = "jpeg"
)

// ParseFormat normalizes a user-supplied format string.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("watermark: unsupported format %q", s)
	}
}

// Ext returns the download file extension for the format.
func (f OutputFormat) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// MIME returns the media type for the format.
func (f OutputFormat) MIME() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// RasterizeError reports a source that could not be decoded into pixels.
type RasterizeError struct {
	Err error
}

func (e *RasterizeError) Error() string {
	return fmt.Sprintf("watermark: rasterize: %v", e.Err)
}

func (e *RasterizeError) Unwrap() error { return e.Err }

// Processor applies the mark. The codec is injectable so tests can substitute
// rasterization backends.
type Processor struct {
	codec Codec
}

// NewProcessor builds a processor. A nil codec falls back to the standard
// image packages.
func NewProcessor(codec Codec) *Processor {
	if codec == nil {
		codec = StdCodec{}
	}
	return &Processor{codec: codec}
}

// Apply decodes the source, draws the mark in the bottom-right corner and
// re-encodes to the requested format, returning a self-describing data URI.
// Placement and rendering are deterministic: identical input, format and
// quality produce byte-identical output.
func (p *Processor) Apply(src imaging.ImagePayload, format OutputFormat, quality float64) (string, error) {
	raw, err := src.Bytes()
	if err != nil {
		return "", &RasterizeError{Err: err}
	}
	img, err := p.codec.Decode(raw)
	if err != nil {
		return "", &RasterizeError{Err: err}
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	if err := drawMark(canvas); err != nil {
		return "", err
	}

	out, err := p.codec.Encode(canvas, format, quality)
	if err != nil {
		return "", fmt.Errorf("watermark: encode: %w", err)
	}
	return imaging.FromBytes(out, format.MIME()).DataURI(), nil
}

// fontSizeFor scales the mark with the image so it reads consistently across
// output resolutions: max(16, width/60) pixels.
func fontSizeFor(width int) int {
	size := width / 60
	if size < 16 {
		size = 16
	}
	return size
}

var (
	fontOnce sync.Once
	markFont *sfnt.Font
	fontErr  error
)

func regularFont() (*sfnt.Font, error) {
	fontOnce.Do(func() {
		markFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return markFont, fontErr
}

func drawMark(canvas *image.RGBA) error {
	size := fontSizeFor(canvas.Bounds().Dx())
	pad := int(float64(size) * 1.2)

	parsed, err := regularFont()
	if err != nil {
		return fmt.Errorf("watermark: parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("watermark: build face: %w", err)
	}
	defer face.Close()

	drawer := &font.Drawer{Dst: canvas, Face: face}
	textWidth := drawer.MeasureString(MarkText)
	x := fixed.I(canvas.Bounds().Max.X-pad) - textWidth
	y := fixed.I(canvas.Bounds().Max.Y - pad)

	// Offset shadow keeps the mark legible over arbitrary backgrounds.
	offset := size / 12
	if offset < 1 {
		offset = 1
	}
	drawer.Src = image.NewUniform(color.NRGBA{A: 160})
	drawer.Dot = fixed.Point26_6{X: x + fixed.I(offset), Y: y + fixed.I(offset)}
	drawer.DrawString(MarkText)

	drawer.Src = image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 178})
	drawer.Dot = fixed.Point26_6{X: x, Y: y}
	drawer.DrawString(MarkText)
	return nil
}

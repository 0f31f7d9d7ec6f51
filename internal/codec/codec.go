package codec

import (
	"bytes"
	"fmt"
	"image"
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Output formats.
const (
	FormatJPEG   = "jpeg"
	FormatPNG    = "png"
	FormatSource = "source"
)

// Result is an encoded image with its dimensions.
type Result struct {
	Body   []byte
	Width  int
	Height int
}

// Imaging resizes with github.com/disintegration/imaging. It shrinks to fit
// within the requested box, preserves aspect ratio and never enlarges.
type Imaging struct {
	Format  string
	Quality int
}

// NewImaging returns a codec encoding to format at the given JPEG quality.
func NewImaging(format string, quality int) (*Imaging, error) {
	switch format {
	case FormatJPEG, FormatPNG, FormatSource:
	default:
		return nil, fmt.Errorf("codec: unsupported output format %q", format)
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("codec: jpeg quality %d out of range", quality)
	}
	return &Imaging{Format: format, Quality: quality}, nil
}

// Resize decodes src, fits it into width x height and re-encodes it.
func (c *Imaging) Resize(src []byte, width, height int) (Result, error) {
	if width <= 0 || height <= 0 {
		return Result{}, fmt.Errorf("codec: invalid box %dx%d", width, height)
	}
	_, name, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return Result{}, fmt.Errorf("codec: decode config: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("codec: decode %s: %w", name, err)
	}

	// Fit returns a clone when the source already fits the box.
	out := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, c.outputFormat(name), imaging.JPEGQuality(c.Quality)); err != nil {
		return Result{}, fmt.Errorf("codec: encode: %w", err)
	}
	b := out.Bounds()
	return Result{Body: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

func (c *Imaging) outputFormat(source string) imaging.Format {
	switch c.Format {
	case FormatPNG:
		return imaging.PNG
	case FormatSource:
		if f, err := imaging.FormatFromExtension(source); err == nil {
			return f
		}
	}
	return imaging.JPEG
}

// DetectFormat sniffs the MIME type of encoded bytes.
func DetectFormat(b []byte) string {
	return http.DetectContentType(b)
}

// DetectFormat implements the codec capability on Imaging.
func (c *Imaging) DetectFormat(b []byte) string { return DetectFormat(b) }

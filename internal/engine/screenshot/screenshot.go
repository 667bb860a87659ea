// Package screenshot writes rendered frames to image files.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for image formats without an encoder.
var ErrUnknownFormat = errors.New("unknown screenshot format")

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ParseFormat accepts a format name or file extension, with or without dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

func (f Format) encode(w io.Writer, img image.Image) error {
	switch f {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}

// Capture handles screenshot naming and encoding.
type Capture struct {
	outputDir string
	prefix    string
	format    Format
	now       func() time.Time
}

// New creates a capture handler writing into outputDir.
func New(outputDir, prefix string, format Format) *Capture {
	if format == "" {
		format = FormatPNG
	}
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
		now:       time.Now,
	}
}

// GenerateFilename resolves the output path for name. An empty name yields
// <prefix>_<timestamp> in the default format. A name with a known image
// extension keeps it and selects that format; otherwise the default
// extension is appended. Relative names are placed in the output directory.
func (c *Capture) GenerateFilename(name string) (string, Format) {
	format := c.format
	if name == "" {
		name = fmt.Sprintf("%s_%s", c.prefix, c.now().Format("2006-01-02_15-04-05"))
	}
	if f, err := ParseFormat(filepath.Ext(name)); err == nil && filepath.Ext(name) != "" {
		format = f
	} else {
		name += format.Ext()
	}
	if c.outputDir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(c.outputDir, name)
	}
	return name, format
}

// CaptureFromPixels writes bottom-up RGBA rows (as read back from the
// framebuffer) to a file and returns its path.
func (c *Capture) CaptureFromPixels(pixels []byte, width, height int, name string) (string, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	return c.CaptureFromImage(FlipRows(pixels, width, height), name)
}

// CaptureFromImage writes an image to a file and returns its path.
func (c *Capture) CaptureFromImage(img image.Image, name string) (string, error) {
	filename, format := c.GenerateFilename(name)

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := format.encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding %s: %w", format, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}
	return filename, nil
}

// FlipRows copies bottom-up RGBA rows into a top-down image.
func FlipRows(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img
}

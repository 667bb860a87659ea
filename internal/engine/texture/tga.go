// Package texture decodes images and caches texture resources by canonical
// file identity.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrMalformedTGA is returned for truncated or unsupported TGA data.
var ErrMalformedTGA = errors.New("malformed TGA")

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// tgaReader walks the pixel stream and places pixels in image order.
type tgaReader struct {
	img           *image.RGBA
	data          []byte
	pos           int
	bytesPerPixel int
	topToBottom   bool
	written       int
}

func (t *tgaReader) readPixel() (color.RGBA, bool) {
	if t.pos+t.bytesPerPixel > len(t.data) {
		return color.RGBA{}, false
	}
	p := t.data[t.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if t.bytesPerPixel == 4 {
		c.A = p[3]
	}
	t.pos += t.bytesPerPixel
	return c, true
}

func (t *tgaReader) put(c color.RGBA) {
	w, h := t.img.Rect.Dx(), t.img.Rect.Dy()
	x, y := t.written%w, t.written/w
	if !t.topToBottom {
		y = h - 1 - y
	}
	t.img.SetRGBA(x, y, c)
	t.written++
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// data with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: header too short", ErrMalformedTGA)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped images not supported", ErrMalformedTGA)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: unsupported type %d", ErrMalformedTGA, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrMalformedTGA, bpp)
	}
	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: truncated", ErrMalformedTGA)
	}

	r := &tgaReader{
		img:           image.NewRGBA(image.Rect(0, 0, width, height)),
		data:          data[offset:],
		bytesPerPixel: bpp / 8,
		topToBottom:   descriptor&0x20 != 0,
	}
	total := width * height

	if imageType == TGATypeUncompressed {
		if len(r.data) < total*r.bytesPerPixel {
			return nil, fmt.Errorf("%w: pixel data truncated", ErrMalformedTGA)
		}
		for r.written < total {
			c, _ := r.readPixel()
			r.put(c)
		}
		return r.img, nil
	}

	for r.written < total && r.pos < len(r.data) {
		packet := r.data[r.pos]
		r.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, ok := r.readPixel()
			if !ok {
				break
			}
			for i := 0; i < count && r.written < total; i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < count && r.written < total; i++ {
			c, ok := r.readPixel()
			if !ok {
				break
			}
			r.put(c)
		}
	}
	return r.img, nil
}

// ImageToRGBA converts any image to *image.RGBA with bounds starting at the
// origin. An *image.RGBA already at the origin is returned as is.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return rgba
}

package texture

import (
	"errors"
	"image/color"
	"testing"
)

func tgaHeader(imageType byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, tgaHeaderSize)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)
	// BGR, first row in the stream is the bottom row.
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 1, color.RGBA{R: 255, A: 255}},
		{1, 1, color.RGBA{G: 255, A: 255}},
		{0, 0, color.RGBA{B: 255, A: 255}},
		{1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGARLETopDown(t *testing.T) {
	data := tgaHeader(TGATypeRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 40, // run of 2
		0x00, 1, 2, 3, 4, // raw 1
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	want := []color.RGBA{
		{R: 30, G: 20, B: 10, A: 40},
		{R: 30, G: 20, B: 10, A: 40},
		{R: 3, G: 2, B: 1, A: 4},
	}
	for x, w := range want {
		if got := img.At(x, 0); got != w {
			t.Errorf("At(%d,0) = %v, want %v", x, got, w)
		}
	}
}

func TestDecodeTGARejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{0, 0, 2}},
		{"color mapped", func() []byte { d := tgaHeader(1, 1, 1, 24, 0); d[1] = 1; return d }()},
		{"grayscale", tgaHeader(3, 1, 1, 8, 0)},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0)},
		{"truncated pixels", tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)},
	}
	for _, tt := range tests {
		if _, err := DecodeTGA(tt.data); !errors.Is(err, ErrMalformedTGA) {
			t.Errorf("%s: err = %v, want ErrMalformedTGA", tt.name, err)
		}
	}
}

package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/pkg/math"
)

// Handle names a backend-side resource (compiled list or vertex buffer).
// Zero is never a valid handle.
type Handle uint32

// DrawStyle selects how polygons are rasterized.
type DrawStyle int

const (
	StyleFill DrawStyle = iota
	StyleLine
	StylePoint
)

func (s DrawStyle) String() string {
	switch s {
	case StyleLine:
		return "line"
	case StylePoint:
		return "point"
	default:
		return "fill"
	}
}

// ParseDrawStyle converts a configuration value.
func ParseDrawStyle(s string) (DrawStyle, error) {
	switch strings.ToLower(s) {
	case "", "fill":
		return StyleFill, nil
	case "line":
		return StyleLine, nil
	case "point":
		return StylePoint, nil
	}
	return StyleFill, fmt.Errorf("unknown draw style %q", s)
}

// Material carries the per-draw state a backend needs besides geometry.
type Material struct {
	Style    DrawStyle
	Textured bool
}

// Frame is the per-frame state handed to BeginFrame.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3
	Width      int
	Height     int

	Lighting   bool
	Wireframe  bool
	AxesLength float32 // 0 hides the axes
	ShowLookAt bool
	LookAt     math.Vec3
}

// Backend is the graphics capability the scene renders through. All calls
// happen on the rendering thread while its context is current.
type Backend interface {
	BeginFrame(f Frame)
	EndFrame()

	// SubmitStrips draws strips without keeping anything on the backend.
	SubmitStrips(model math.Mat4, strips []geometry.Strip, mat Material)

	// CompileList records strips for replay until DeleteList.
	CompileList(strips []geometry.Strip) (Handle, error)
	CallList(model math.Mat4, h Handle, mat Material)
	DeleteList(h Handle)

	// AllocBuffer uploads an interleaved buffer and its draw ranges.
	AllocBuffer(b *geometry.Buffer) (Handle, error)
	DrawBuffer(model math.Mat4, h Handle, mat Material)
	FreeBuffer(h Handle)

	UploadTexture(img *image.RGBA) (uint32, error)
	BindTexture(id uint32)
	UnbindTexture()

	// ReadPixels returns the last rendered frame as bottom-up RGBA rows.
	ReadPixels() (pixels []byte, width, height int, err error)
}

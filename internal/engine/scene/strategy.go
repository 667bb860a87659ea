package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/internal/engine/render"
	"github.com/Faultbox/orbitscene/pkg/math"
)

// ErrUnsupportedMode is returned for unknown render mode names.
var ErrUnsupportedMode = errors.New("unsupported render mode")

// RenderMode selects how an object's geometry reaches the backend.
type RenderMode int

const (
	// ModeImmediate regenerates strips every frame and submits them.
	ModeImmediate RenderMode = iota
	// ModeList compiles strips into a backend list and replays it.
	ModeList
	// ModeBuffer uploads an interleaved buffer and draws its ranges.
	ModeBuffer
)

func (m RenderMode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeList:
		return "list"
	case ModeBuffer:
		return "buffer"
	}
	return fmt.Sprintf("RenderMode(%d)", int(m))
}

// ParseRenderMode converts a configuration value.
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(s) {
	case "immediate":
		return ModeImmediate, nil
	case "list":
		return ModeList, nil
	case "", "buffer":
		return ModeBuffer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

// meshInput is what a strategy needs to materialize one object.
type meshInput struct {
	shape    geometry.Tessellator
	div      geometry.Division
	textured bool
	stale    bool
}

// strategy materializes an object's geometry when needed and submits it.
// submit reports whether geometry was generated.
type strategy interface {
	submit(b render.Backend, in meshInput, model math.Mat4, mat render.Material) (bool, error)
	release(b render.Backend)
	generations() int
}

func newStrategy(m RenderMode) (strategy, error) {
	switch m {
	case ModeImmediate:
		return &immediateStrategy{}, nil
	case ModeList:
		return &listStrategy{}, nil
	case ModeBuffer:
		return &bufferStrategy{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedMode, m)
}

type immediateStrategy struct {
	gens int
}

func (s *immediateStrategy) submit(b render.Backend, in meshInput, model math.Mat4, mat render.Material) (bool, error) {
	strips := in.shape.Strips(in.div, in.textured)
	s.gens++
	b.SubmitStrips(model, strips, mat)
	return true, nil
}

func (s *immediateStrategy) release(render.Backend) {}

func (s *immediateStrategy) generations() int { return s.gens }

type listStrategy struct {
	handle render.Handle
	gens   int
}

func (s *listStrategy) submit(b render.Backend, in meshInput, model math.Mat4, mat render.Material) (bool, error) {
	built := false
	if in.stale || s.handle == 0 {
		s.release(b)
		h, err := b.CompileList(in.shape.Strips(in.div, in.textured))
		if err != nil {
			return false, fmt.Errorf("compiling list: %w", err)
		}
		s.handle = h
		s.gens++
		built = true
	}
	b.CallList(model, s.handle, mat)
	return built, nil
}

func (s *listStrategy) release(b render.Backend) {
	if s.handle != 0 {
		b.DeleteList(s.handle)
		s.handle = 0
	}
}

func (s *listStrategy) generations() int { return s.gens }

type bufferStrategy struct {
	handle render.Handle
	gens   int
}

func (s *bufferStrategy) submit(b render.Backend, in meshInput, model math.Mat4, mat render.Material) (bool, error) {
	built := false
	if in.stale || s.handle == 0 {
		s.release(b)
		h, err := b.AllocBuffer(in.shape.Buffer(in.div, in.textured))
		if err != nil {
			return false, fmt.Errorf("allocating buffer: %w", err)
		}
		s.handle = h
		s.gens++
		built = true
	}
	b.DrawBuffer(model, s.handle, mat)
	return built, nil
}

func (s *bufferStrategy) release(b render.Backend) {
	if s.handle != 0 {
		b.FreeBuffer(s.handle)
		s.handle = 0
	}
}

func (s *bufferStrategy) generations() int { return s.gens }

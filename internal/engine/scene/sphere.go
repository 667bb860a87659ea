package scene

import (
	"sync"

	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/internal/engine/render"
	"github.com/Faultbox/orbitscene/internal/engine/texture"
	"github.com/Faultbox/orbitscene/internal/engine/transform"
)

// Sphere is a displayable sphere. Transform operations are promoted from
// the embedded Transform; shape and appearance changes mark the geometry
// dirty and request a redraw.
type Sphere struct {
	*transform.Transform

	ctx  *Context
	mode RenderMode

	mu    sync.Mutex
	shape geometry.Sphere
	tex   *texture.Resource
	style render.DrawStyle

	// version counts shape changes; builtVersion is the version the current
	// geometry was generated from.
	version       uint64
	builtVersion  uint64
	builtDiv      geometry.Division
	builtTextured bool

	// Touched only on the rendering thread.
	strategy strategy
}

// Radius returns the sphere radius.
func (s *Sphere) Radius() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shape.Radius()
}

// SetRadius changes the radius. A negative or non-finite radius is rejected
// and leaves the sphere unchanged.
func (s *Sphere) SetRadius(r float64) error {
	shape, err := geometry.NewSphere(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.shape = shape
	s.version++
	s.mu.Unlock()
	s.ctx.RequestRedraw()
	return nil
}

// SetTexture binds the image file at path through the context's cache.
// An empty path removes the texture.
func (s *Sphere) SetTexture(path string) {
	r := s.ctx.textures.Get(path)
	s.mu.Lock()
	s.tex = r
	s.mu.Unlock()
	s.ctx.RequestRedraw()
}

// Texture returns the bound texture resource, texture.None when unset.
func (s *Sphere) Texture() *texture.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tex
}

// SetDrawStyle selects fill, line or point rasterization. Setting the
// current style again does nothing.
func (s *Sphere) SetDrawStyle(style render.DrawStyle) {
	s.mu.Lock()
	changed := s.style != style
	s.style = style
	s.mu.Unlock()
	if changed {
		s.ctx.RequestRedraw()
	}
}

// DrawStyle returns the rasterization style.
func (s *Sphere) DrawStyle() render.DrawStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// Mode returns the render strategy chosen at construction.
func (s *Sphere) Mode() RenderMode { return s.mode }

// Dirty reports whether the shape changed since geometry was last built.
func (s *Sphere) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.builtVersion
}

// Generations returns how many times geometry has been generated.
func (s *Sphere) Generations() int {
	return s.strategy.generations()
}

// draw loads the texture if needed, regenerates stale geometry and submits
// it. Called on the rendering thread.
func (s *Sphere) draw(b render.Backend, div geometry.Division, wireframe bool) error {
	tex := s.Texture()
	textured := tex.Load(b)

	s.mu.Lock()
	version := s.version
	in := meshInput{
		shape:    s.shape,
		div:      div,
		textured: textured,
		stale:    version != s.builtVersion || div != s.builtDiv || textured != s.builtTextured,
	}
	mat := render.Material{Style: s.style, Textured: textured}
	s.mu.Unlock()

	if wireframe {
		mat.Style = render.StyleLine
	}
	if textured {
		b.BindTexture(tex.Handle())
	} else {
		b.UnbindTexture()
	}

	built, err := s.strategy.submit(b, in, s.Matrix(), mat)
	if err != nil {
		return err
	}
	if built {
		s.mu.Lock()
		s.builtVersion = version
		s.builtDiv = div
		s.builtTextured = textured
		s.mu.Unlock()
	}
	return nil
}

// Package transform places and orients displayable objects with a single
// homogeneous 4x4 matrix per object.
package transform

import (
	gomath "math"
	"sync"

	"github.com/Faultbox/orbitscene/pkg/math"
)

// Redrawer is notified after every mutation.
type Redrawer interface {
	RequestRedraw()
}

type noRedraw struct{}

func (noRedraw) RequestRedraw() {}

// Transform is an object's model matrix. All methods are safe for
// concurrent use; each mutation holds the lock for its whole update and
// requests a redraw afterwards.
type Transform struct {
	mu     sync.Mutex
	m      math.Mat4
	redraw Redrawer
}

// New returns an identity transform. A nil redrawer is allowed.
func New(r Redrawer) *Transform {
	if r == nil {
		r = noRedraw{}
	}
	return &Transform{m: math.Identity(), redraw: r}
}

// Matrix returns a copy of the current model matrix.
func (t *Transform) Matrix() math.Mat4 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m
}

// Translate moves the object in world space: M = T(dx,dy,dz) * M.
func (t *Transform) Translate(dx, dy, dz float64) {
	t.update(func(m math.Mat4) math.Mat4 {
		return m.TranslateFromLeft(float32(dx), float32(dy), float32(dz))
	})
}

// SetPosition overwrites the translation column and keeps rotation and scale.
func (t *Transform) SetPosition(x, y, z float64) {
	t.update(func(m math.Mat4) math.Mat4 {
		m[12], m[13], m[14] = float32(x), float32(y), float32(z)
		m[15] = 1
		return m
	})
}

// ResetOrientationAndScale drops rotation and scale, keeping the position.
func (t *Transform) ResetOrientationAndScale() {
	t.update(func(m math.Mat4) math.Mat4 {
		p := m.Translation()
		return math.Translate(p.X, p.Y, p.Z)
	})
}

// Rotate turns the object by Euler angles in degrees, applied X then Y then
// Z, about its own position.
func (t *Transform) Rotate(ax, ay, az float64) {
	t.update(func(m math.Mat4) math.Mat4 {
		p := position(m)
		return rotateAbout(m, ax, ay, az, p)
	})
}

// RotateAbout turns the object by Euler angles in degrees about the pivot
// (px,py,pz). The pivot itself stays fixed.
func (t *Transform) RotateAbout(ax, ay, az, px, py, pz float64) {
	t.update(func(m math.Mat4) math.Mat4 {
		return rotateAbout(m, ax, ay, az, math.Vec3{X: float32(px), Y: float32(py), Z: float32(pz)})
	})
}

// Scale scales the object about its own position.
func (t *Transform) Scale(sx, sy, sz float64) {
	t.update(func(m math.Mat4) math.Mat4 {
		p := position(m)
		s := math.Translate(p.X, p.Y, p.Z).
			Mul(math.Scale(float32(sx), float32(sy), float32(sz))).
			Mul(math.Translate(-p.X, -p.Y, -p.Z))
		return s.Mul(m)
	})
}

// ScaleUniform scales all three axes by f about the object's position.
func (t *Transform) ScaleUniform(f float64) {
	t.Scale(f, f, f)
}

// ScaleAboutOrigin scales the object about the world origin, moving its
// position with it.
func (t *Transform) ScaleAboutOrigin(sx, sy, sz float64) {
	t.update(func(m math.Mat4) math.Mat4 {
		return math.Scale(float32(sx), float32(sy), float32(sz)).Mul(m)
	})
}

// X returns the world x coordinate of the object's origin.
func (t *Transform) X() float64 { return float64(t.Position().X) }

// Y returns the world y coordinate of the object's origin.
func (t *Transform) Y() float64 { return float64(t.Position().Y) }

// Z returns the world z coordinate of the object's origin.
func (t *Transform) Z() float64 { return float64(t.Position().Z) }

// Position returns the translation divided by the homogeneous w.
func (t *Transform) Position() math.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return position(t.m)
}

func (t *Transform) update(fn func(math.Mat4) math.Mat4) {
	t.mu.Lock()
	t.m = fn(t.m)
	t.mu.Unlock()
	t.redraw.RequestRedraw()
}

func position(m math.Mat4) math.Vec3 {
	w := m.W()
	if w == 0 {
		w = 1
	}
	return m.Translation().Scale(1 / w)
}

func rotateAbout(m math.Mat4, ax, ay, az float64, p math.Vec3) math.Mat4 {
	r := math.RotateEulerXYZ(radians(ax), radians(ay), radians(az))
	return math.Translate(p.X, p.Y, p.Z).
		Mul(r).
		Mul(math.Translate(-p.X, -p.Y, -p.Z)).
		Mul(m)
}

func radians(deg float64) float64 {
	return deg * gomath.Pi / 180
}

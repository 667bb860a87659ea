package geometry

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNegativeRadius is returned when a sphere is constructed with r < 0.
	ErrNegativeRadius = errors.New("radius must not be negative")
	// ErrInvalidRadius is returned for NaN or infinite radii.
	ErrInvalidRadius = errors.New("radius must be a finite number")
)

// Sphere is a sphere centered on its local origin.
type Sphere struct {
	radius float64
}

// NewSphere validates the radius and returns the shape.
func NewSphere(radius float64) (Sphere, error) {
	if err := ValidateRadius(radius); err != nil {
		return Sphere{}, err
	}
	return Sphere{radius: radius}, nil
}

// ValidateRadius rejects negative and non-finite radii.
func ValidateRadius(radius float64) error {
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	if radius < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeRadius, radius)
	}
	return nil
}

// Radius returns the sphere radius.
func (s Sphere) Radius() float64 {
	return s.radius
}

// Strips emits one triangle strip per ring pair (i, i+1), each alternating
// between the two rings for 2*(div.Y+1) vertices.
func (s Sphere) Strips(div Division, textured bool) []Strip {
	strips := make([]Strip, 0, div.X)
	s.tessellate(div, textured, func(ring int, v Vertex) {
		if ring == len(strips) {
			strips = append(strips, make(Strip, 0, 2*(div.Y+1)))
		}
		strips[ring] = append(strips[ring], v)
	})
	return strips
}

// Buffer emits the interleaved form with one draw range per ring.
func (s Sphere) Buffer(div Division, textured bool) *Buffer {
	perRing := 2 * (div.Y + 1)
	b := &Buffer{
		Data:   make([]float32, 0, div.X*perRing*FloatsPerVertex),
		Ranges: make([]DrawRange, div.X),
	}
	for i := range b.Ranges {
		b.Ranges[i] = DrawRange{First: int32(perRing * i), Count: int32(perRing)}
	}
	s.tessellate(div, textured, func(_ int, v Vertex) {
		b.Data = appendVertex(b.Data, v)
	})
	return b
}

func (s Sphere) tessellate(div Division, textured bool, emit func(ring int, v Vertex)) {
	if div.X < 1 || div.Y < 1 {
		return
	}
	qx := math.Pi / float64(div.X)
	qy := 2 * math.Pi / float64(div.Y)

	for i := 0; i < div.X; i++ {
		ring1Y, ring1X := math.Cos(float64(i)*qx), math.Sin(float64(i)*qx)
		ring2Y, ring2X := math.Cos(float64(i+1)*qx), math.Sin(float64(i+1)*qx)

		// one full turn, the seam vertex is emitted twice
		for j := 0; j <= div.Y; j++ {
			lX, lZ := math.Cos(float64(j)*qy), math.Sin(float64(j)*qy)

			emit(i, s.vertex(lX*ring1X, lZ*ring1X, ring1Y, textured, div, i, j))
			emit(i, s.vertex(lX*ring2X, lZ*ring2X, ring2Y, textured, div, i+1, j))
		}
	}
}

// vertex builds a record from a unit direction. Texture coordinates use the
// azimuth resolution on both axes and are left zero when untextured.
func (s Sphere) vertex(nx, ny, nz float64, textured bool, div Division, ring, step int) Vertex {
	v := Vertex{
		Normal:   [3]float32{float32(nx), float32(ny), float32(nz)},
		Position: [3]float32{float32(nx * s.radius), float32(ny * s.radius), float32(nz * s.radius)},
	}
	if textured {
		v.TexCoord = [2]float32{
			float32(div.Y-step) / float32(div.Y),
			float32(div.Y-ring) / float32(div.Y),
		}
	}
	return v
}

var _ Tessellator = Sphere{}

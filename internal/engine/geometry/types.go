// Package geometry tessellates procedural shapes into drawable vertex data.
package geometry

import (
	"errors"
	"fmt"
)

// FloatsPerVertex is the stride of an interleaved vertex record:
// normal(3), texcoord(2), position(3).
const FloatsPerVertex = 8

// Offsets of the attributes inside an interleaved record, in floats.
const (
	NormalOffset   = 0
	TexCoordOffset = 3
	PositionOffset = 5
)

// ErrInvalidDivision is returned for tessellation resolutions that cannot
// produce a closed surface.
var ErrInvalidDivision = errors.New("invalid tessellation division")

// Vertex is one tessellated surface point.
type Vertex struct {
	Normal   [3]float32
	TexCoord [2]float32
	Position [3]float32
}

// Strip is a triangle strip, replayed as-is by the backend.
type Strip []Vertex

// DrawRange addresses one strip inside a Buffer, in vertices.
type DrawRange struct {
	First int32
	Count int32
}

// Buffer is the persistent form of a mesh: interleaved vertex records plus
// one draw range per tessellation ring.
type Buffer struct {
	Data   []float32
	Ranges []DrawRange
}

// VertexCount returns the number of interleaved records.
func (b *Buffer) VertexCount() int {
	return len(b.Data) / FloatsPerVertex
}

// Vertex decodes the i-th interleaved record.
func (b *Buffer) Vertex(i int) Vertex {
	r := b.Data[i*FloatsPerVertex : (i+1)*FloatsPerVertex]
	return Vertex{
		Normal:   [3]float32{r[0], r[1], r[2]},
		TexCoord: [2]float32{r[3], r[4]},
		Position: [3]float32{r[5], r[6], r[7]},
	}
}

// Division is the global tessellation resolution. X partitions the polar
// angle into rings, Y partitions the azimuth.
type Division struct {
	X int
	Y int
}

// DefaultDivision is used when no resolution is configured.
var DefaultDivision = Division{X: 32, Y: 32}

// Validate reports whether the resolution can be tessellated.
func (d Division) Validate() error {
	if d.X < 1 || d.Y < 3 {
		return fmt.Errorf("%w: %dx%d (need x >= 1, y >= 3)", ErrInvalidDivision, d.X, d.Y)
	}
	return nil
}

// Tessellator produces both output forms of a shape for a resolution.
// textured controls whether texture coordinates are filled in.
type Tessellator interface {
	Strips(div Division, textured bool) []Strip
	Buffer(div Division, textured bool) *Buffer
}

// Flatten packs strips into a Buffer with one range per strip.
func Flatten(strips []Strip) *Buffer {
	total := 0
	for _, s := range strips {
		total += len(s)
	}

	b := &Buffer{
		Data:   make([]float32, 0, total*FloatsPerVertex),
		Ranges: make([]DrawRange, 0, len(strips)),
	}
	for _, s := range strips {
		b.Ranges = append(b.Ranges, DrawRange{
			First: int32(b.VertexCount()),
			Count: int32(len(s)),
		})
		for _, v := range s {
			b.Data = appendVertex(b.Data, v)
		}
	}
	return b
}

func appendVertex(dst []float32, v Vertex) []float32 {
	return append(dst,
		v.Normal[0], v.Normal[1], v.Normal[2],
		v.TexCoord[0], v.TexCoord[1],
		v.Position[0], v.Position[1], v.Position[2],
	)
}

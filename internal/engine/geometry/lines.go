package geometry

// FloatsPerLineVertex is the stride of line vertex data: position(3), color(3).
const FloatsPerLineVertex = 6

// AxesLines returns the three coordinate axes from the origin, x red,
// y green and z blue, as line-list vertices.
func AxesLines(length float32) []float32 {
	return []float32{
		0, 0, 0, 1, 0, 0, length, 0, 0, 1, 0, 0,
		0, 0, 0, 0, 1, 0, 0, length, 0, 0, 1, 0,
		0, 0, 0, 0, 0, 1, 0, 0, length, 0, 0, 1,
	}
}

// BoxLines returns the 12 edges of an axis-aligned box as line-list
// vertices in a single color.
func BoxLines(minX, minY, minZ, maxX, maxY, maxZ float32, color [3]float32) []float32 {
	corners := []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
	out := make([]float32, 0, len(corners)/3*FloatsPerLineVertex)
	for i := 0; i < len(corners); i += 3 {
		out = append(out, corners[i], corners[i+1], corners[i+2], color[0], color[1], color[2])
	}
	return out
}

// MarkerLines returns a small wire cube centered on (x,y,z).
func MarkerLines(x, y, z, halfSize float32) []float32 {
	return BoxLines(x-halfSize, y-halfSize, z-halfSize, x+halfSize, y+halfSize, z+halfSize, [3]float32{1, 1, 0})
}

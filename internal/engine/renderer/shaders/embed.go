// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms interleaved normal/texcoord/position vertices.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader applies the optional texture and headlight.
//
//go:embed mesh.frag
var MeshFragmentShader string

// LineVertexShader is the vertex shader for axes and markers.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for axes and markers.
//
//go:embed line.frag
var LineFragmentShader string

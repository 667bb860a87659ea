// Package renderer implements render.Backend on OpenGL 4.1 core.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/internal/engine/render"
	"github.com/Faultbox/orbitscene/internal/engine/renderer/shaders"
	"github.com/Faultbox/orbitscene/internal/engine/shader"
	"github.com/Faultbox/orbitscene/internal/logger"
	"github.com/Faultbox/orbitscene/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// Color of untextured surfaces.
	Color [3]float32
	// Size of the look-at marker cube, in world units.
	MarkerSize float32
}

// DefaultConfig returns the default renderer settings.
func DefaultConfig() Config {
	return Config{
		Width:      1280,
		Height:     720,
		Color:      [3]float32{0.8, 0.8, 0.85},
		MarkerSize: 5,
	}
}

// mesh is a vertex array with its strip ranges.
type mesh struct {
	vao    uint32
	vbo    uint32
	ranges []geometry.DrawRange
}

// Renderer is the OpenGL backend. All methods must run on the thread that
// owns the GL context.
type Renderer struct {
	config Config
	log    *zap.Logger

	meshProgram *shader.Program
	lineProgram *shader.Program

	// Streaming buffers for immediate strips and line overlays.
	stream mesh
	lines  mesh

	next    render.Handle
	lists   map[render.Handle]*mesh
	buffers map[render.Handle]*mesh

	frame render.Frame
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:  cfg,
		log:     logger.Named("renderer"),
		lists:   make(map[render.Handle]*mesh),
		buffers: make(map[render.Handle]*mesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.meshProgram, err = shader.Compile(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	r.lineProgram, err = shader.Compile(shaders.LineVertexShader, shaders.LineFragmentShader)
	if err != nil {
		r.meshProgram.Delete()
		return nil, fmt.Errorf("line program: %w", err)
	}

	gl.GenVertexArrays(1, &r.stream.vao)
	gl.GenBuffers(1, &r.stream.vbo)
	bindMeshLayout(r.stream.vao, r.stream.vbo)

	gl.GenVertexArrays(1, &r.lines.vao)
	gl.GenBuffers(1, &r.lines.vbo)
	bindLineLayout(r.lines.vao, r.lines.vbo)

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer",
		zap.Int("lists", len(r.lists)),
		zap.Int("buffers", len(r.buffers)))
	for h := range r.lists {
		r.DeleteList(h)
	}
	for h := range r.buffers {
		r.FreeBuffer(h)
	}
	deleteMesh(&r.stream)
	deleteMesh(&r.lines)
	r.meshProgram.Delete()
	r.lineProgram.Delete()
}

// BeginFrame clears the target and draws the overlays.
func (r *Renderer) BeginFrame(f render.Frame) {
	r.frame = f
	if f.Width > 0 && f.Height > 0 {
		gl.Viewport(0, 0, int32(f.Width), int32(f.Height))
	}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	var overlay []float32
	if f.AxesLength > 0 {
		overlay = append(overlay, geometry.AxesLines(f.AxesLength)...)
	}
	if f.ShowLookAt {
		overlay = append(overlay, geometry.MarkerLines(f.LookAt.X, f.LookAt.Y, f.LookAt.Z, r.config.MarkerSize/2)...)
	}
	if len(overlay) > 0 {
		r.drawLines(overlay)
	}

	r.meshProgram.Use()
	gl.UniformMatrix4fv(r.meshProgram.Uniform("uView"), 1, false, &f.View[0])
	gl.UniformMatrix4fv(r.meshProgram.Uniform("uProjection"), 1, false, &f.Projection[0])
	gl.Uniform3f(r.meshProgram.Uniform("uEye"), f.Eye.X, f.Eye.Y, f.Eye.Z)
	gl.Uniform3f(r.meshProgram.Uniform("uColor"), r.config.Color[0], r.config.Color[1], r.config.Color[2])
	gl.Uniform1i(r.meshProgram.Uniform("uLighting"), boolToInt(f.Lighting))
	gl.Uniform1i(r.meshProgram.Uniform("uTexture"), 0)
}

// EndFrame restores default rasterization state.
func (r *Renderer) EndFrame() {
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.BindVertexArray(0)
}

// SubmitStrips streams strips to the GPU and draws them.
func (r *Renderer) SubmitStrips(model math.Mat4, strips []geometry.Strip, mat render.Material) {
	b := geometry.Flatten(strips)
	if len(b.Data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.stream.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(b.Data)*4, unsafe.Pointer(&b.Data[0]), gl.STREAM_DRAW)
	r.stream.ranges = b.Ranges
	r.drawMesh(model, &r.stream, mat)
}

// CompileList uploads strips once for replay. Core profile has no display
// lists, so a list is a static vertex buffer.
func (r *Renderer) CompileList(strips []geometry.Strip) (render.Handle, error) {
	m, err := uploadMesh(geometry.Flatten(strips))
	if err != nil {
		return 0, err
	}
	r.next++
	r.lists[r.next] = m
	return r.next, nil
}

// CallList draws a compiled list.
func (r *Renderer) CallList(model math.Mat4, h render.Handle, mat render.Material) {
	if m, ok := r.lists[h]; ok {
		r.drawMesh(model, m, mat)
	}
}

// DeleteList releases a compiled list.
func (r *Renderer) DeleteList(h render.Handle) {
	if m, ok := r.lists[h]; ok {
		deleteMesh(m)
		delete(r.lists, h)
	}
}

// AllocBuffer uploads an interleaved buffer.
func (r *Renderer) AllocBuffer(b *geometry.Buffer) (render.Handle, error) {
	m, err := uploadMesh(b)
	if err != nil {
		return 0, err
	}
	r.next++
	r.buffers[r.next] = m
	return r.next, nil
}

// DrawBuffer draws every range of an uploaded buffer.
func (r *Renderer) DrawBuffer(model math.Mat4, h render.Handle, mat render.Material) {
	if m, ok := r.buffers[h]; ok {
		r.drawMesh(model, m, mat)
	}
}

// FreeBuffer releases an uploaded buffer.
func (r *Renderer) FreeBuffer(h render.Handle) {
	if m, ok := r.buffers[h]; ok {
		deleteMesh(m)
		delete(r.buffers, h)
	}
}

// UploadTexture creates a mipmapped texture. Rows are flipped so that
// texture coordinate t=1 addresses the top of the image.
func (r *Renderer) UploadTexture(img *image.RGBA) (uint32, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, errors.New("empty texture image")
	}
	flipped := make([]byte, w*h*4)
	rowSize := w * 4
	for y := 0; y < h; y++ {
		src := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+h-1-y)
		copy(flipped[y*rowSize:(y+1)*rowSize], img.Pix[src:src+rowSize])
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&flipped[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := glError("uploading texture"); err != nil {
		gl.DeleteTextures(1, &texID)
		return 0, err
	}
	return texID, nil
}

// BindTexture binds a texture to unit 0.
func (r *Renderer) BindTexture(id uint32) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

// UnbindTexture clears texture unit 0.
func (r *Renderer) UnbindTexture() {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int, error) {
	w, h := r.frame.Width, r.frame.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0, errors.New("no frame rendered")
	}
	pixels := make([]byte, w*h*4)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	if err := glError("reading pixels"); err != nil {
		return nil, 0, 0, err
	}
	return pixels, w, h, nil
}

func (r *Renderer) drawMesh(model math.Mat4, m *mesh, mat render.Material) {
	r.meshProgram.Use()
	gl.UniformMatrix4fv(r.meshProgram.Uniform("uModel"), 1, false, &model[0])
	gl.Uniform1i(r.meshProgram.Uniform("uTextured"), boolToInt(mat.Textured))

	switch mat.Style {
	case render.StyleLine:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	case render.StylePoint:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.POINT)
		gl.PointSize(3)
	default:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	gl.BindVertexArray(m.vao)
	for _, rg := range m.ranges {
		gl.DrawArrays(gl.TRIANGLE_STRIP, rg.First, rg.Count)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) drawLines(vertices []float32) {
	viewProj := r.frame.Projection.Mul(r.frame.View)

	r.lineProgram.Use()
	gl.UniformMatrix4fv(r.lineProgram.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lines.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.BindVertexArray(r.lines.vao)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/geometry.FloatsPerLineVertex))
	gl.BindVertexArray(0)
}

func uploadMesh(b *geometry.Buffer) (*mesh, error) {
	m := &mesh{ranges: b.Ranges}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	bindMeshLayout(m.vao, m.vbo)
	if len(b.Data) > 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(b.Data)*4, unsafe.Pointer(&b.Data[0]), gl.STATIC_DRAW)
	}
	if err := glError("uploading mesh"); err != nil {
		deleteMesh(m)
		return nil, err
	}
	return m, nil
}

func bindMeshLayout(vao, vbo uint32) {
	const stride = geometry.FloatsPerVertex * 4
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	// Normal
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, geometry.NormalOffset*4)
	gl.EnableVertexAttribArray(0)
	// TexCoord
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, geometry.TexCoordOffset*4)
	gl.EnableVertexAttribArray(1)
	// Position
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, geometry.PositionOffset*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)
}

func bindLineLayout(vao, vbo uint32) {
	const stride = geometry.FloatsPerLineVertex * 4
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
}

func deleteMesh(m *mesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%x", op, code)
	}
	return nil
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

var _ render.Backend = (*Renderer)(nil)

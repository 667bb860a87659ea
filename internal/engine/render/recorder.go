package render

import (
	"errors"
	"image"
	"sync"

	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/pkg/math"
)

// ErrUnknownHandle is returned for draws against a released or foreign handle.
var ErrUnknownHandle = errors.New("unknown render handle")

// Draw is one recorded draw call.
type Draw struct {
	Kind     string // "strips", "list" or "buffer"
	Model    math.Mat4
	Handle   Handle
	Vertices int
	Material Material
	Texture  uint32
}

// Recorder is an in-memory Backend. It keeps track of live resources and the
// draws of the current frame, for tests and headless runs.
type Recorder struct {
	mu sync.Mutex

	next     Handle
	lists    map[Handle][]geometry.Strip
	buffers  map[Handle]*geometry.Buffer
	textures map[uint32]image.Rectangle
	nextTex  uint32
	bound    uint32

	Frames     int
	LastFrame  Frame
	Draws      []Draw
	Compiled   int
	Allocated  int
	Uploads    int
	Errors     []error
	FailUpload error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		lists:    make(map[Handle][]geometry.Strip),
		buffers:  make(map[Handle]*geometry.Buffer),
		textures: make(map[uint32]image.Rectangle),
	}
}

func (r *Recorder) BeginFrame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames++
	r.LastFrame = f
	r.Draws = r.Draws[:0]
}

func (r *Recorder) EndFrame() {}

func (r *Recorder) SubmitStrips(model math.Mat4, strips []geometry.Strip, mat Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Draws = append(r.Draws, Draw{Kind: "strips", Model: model, Vertices: countVertices(strips), Material: mat, Texture: r.bound})
}

func (r *Recorder) CompileList(strips []geometry.Strip) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.lists[r.next] = strips
	r.Compiled++
	return r.next, nil
}

func (r *Recorder) CallList(model math.Mat4, h Handle, mat Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	strips, ok := r.lists[h]
	if !ok {
		r.Errors = append(r.Errors, ErrUnknownHandle)
		return
	}
	r.Draws = append(r.Draws, Draw{Kind: "list", Model: model, Handle: h, Vertices: countVertices(strips), Material: mat, Texture: r.bound})
}

func (r *Recorder) DeleteList(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[h]; !ok {
		r.Errors = append(r.Errors, ErrUnknownHandle)
		return
	}
	delete(r.lists, h)
}

func (r *Recorder) AllocBuffer(b *geometry.Buffer) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.buffers[r.next] = b
	r.Allocated++
	return r.next, nil
}

func (r *Recorder) DrawBuffer(model math.Mat4, h Handle, mat Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[h]
	if !ok {
		r.Errors = append(r.Errors, ErrUnknownHandle)
		return
	}
	r.Draws = append(r.Draws, Draw{Kind: "buffer", Model: model, Handle: h, Vertices: b.VertexCount(), Material: mat, Texture: r.bound})
}

func (r *Recorder) FreeBuffer(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buffers[h]; !ok {
		r.Errors = append(r.Errors, ErrUnknownHandle)
		return
	}
	delete(r.buffers, h)
}

func (r *Recorder) UploadTexture(img *image.RGBA) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Uploads++
	if r.FailUpload != nil {
		return 0, r.FailUpload
	}
	r.nextTex++
	r.textures[r.nextTex] = img.Bounds()
	return r.nextTex, nil
}

func (r *Recorder) BindTexture(id uint32) {
	r.mu.Lock()
	r.bound = id
	r.mu.Unlock()
}

func (r *Recorder) UnbindTexture() {
	r.mu.Lock()
	r.bound = 0
	r.mu.Unlock()
}

// ReadPixels returns an opaque grey frame sized like the last BeginFrame.
func (r *Recorder) ReadPixels() ([]byte, int, int, error) {
	r.mu.Lock()
	w, h := r.LastFrame.Width, r.LastFrame.Height
	r.mu.Unlock()
	if w <= 0 || h <= 0 {
		return nil, 0, 0, errors.New("no frame rendered")
	}
	px := make([]byte, w*h*4)
	for i := 0; i < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = 0x80, 0x80, 0x80, 0xff
	}
	return px, w, h, nil
}

// LiveLists returns the number of compiled lists not yet deleted.
func (r *Recorder) LiveLists() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists)
}

// LiveBuffers returns the number of buffers not yet freed.
func (r *Recorder) LiveBuffers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// DrawCalls returns a copy of the current frame's draws.
func (r *Recorder) DrawCalls() []Draw {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Draw(nil), r.Draws...)
}

func countVertices(strips []geometry.Strip) int {
	n := 0
	for _, s := range strips {
		n += len(s)
	}
	return n
}

var _ Backend = (*Recorder)(nil)

package texture

import (
	"image"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitscene/internal/logger"
)

// State is the load state of a Resource.
type State int32

const (
	StateUnloaded State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

// Uploader turns a decoded image into a backend texture. Implemented by
// the graphics backend; calls happen on the rendering thread.
type Uploader interface {
	UploadTexture(img *image.RGBA) (uint32, error)
}

// Resource is one texture shared by every object referencing the same file.
// State may be read from any goroutine; Load runs on the rendering thread.
type Resource struct {
	path   string
	none   bool
	decode DecodeFunc
	log    *zap.Logger

	state  atomic.Int32
	handle uint32
	width  int
	height int
	err    error
}

// None is the "no texture" record. It is never ready and never loads.
var None = &Resource{none: true}

// Path returns the canonical file path.
func (r *Resource) Path() string { return r.path }

// IsNone reports whether r is the no-texture sentinel.
func (r *Resource) IsNone() bool { return r.none }

// State returns the current load state.
func (r *Resource) State() State { return State(r.state.Load()) }

// Ready reports whether the texture can be bound.
func (r *Resource) Ready() bool { return r.State() == StateReady }

// Handle returns the backend texture id. Valid only when Ready.
func (r *Resource) Handle() uint32 {
	if !r.Ready() {
		return 0
	}
	return r.handle
}

// Size returns the decoded dimensions. Valid only when Ready.
func (r *Resource) Size() (width, height int) {
	if !r.Ready() {
		return 0, 0
	}
	return r.width, r.height
}

// Err returns the load error of a failed resource.
func (r *Resource) Err() error {
	if r.State() != StateFailed {
		return nil
	}
	return r.err
}

// Load decodes and uploads the texture on first use and reports whether it
// is ready. A failed resource is never retried.
func (r *Resource) Load(u Uploader) bool {
	if r.none {
		return false
	}
	switch r.State() {
	case StateReady:
		return true
	case StateFailed:
		return false
	}

	img, err := r.decode(r.path)
	var id uint32
	if err == nil {
		id, err = u.UploadTexture(img)
	}
	if err != nil {
		r.err = err
		r.state.Store(int32(StateFailed))
		r.log.Warn("texture unavailable, drawing untextured",
			zap.String("path", r.path),
			zap.Error(err))
		return false
	}

	r.handle = id
	r.width, r.height = img.Rect.Dx(), img.Rect.Dy()
	r.state.Store(int32(StateReady))
	r.log.Debug("texture loaded",
		zap.String("path", r.path),
		zap.Int("width", r.width),
		zap.Int("height", r.height))
	return true
}

// Cache maps canonical file paths to shared resources. It never evicts.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Resource
	decode  DecodeFunc
	log     *zap.Logger
}

// NewCache creates an empty cache decoding files with DecodeFile.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*Resource),
		decode:  DecodeFile,
		log:     logger.Named("texture"),
	}
}

// SetDecoder replaces the decoder used by resources created afterwards.
func (c *Cache) SetDecoder(fn DecodeFunc) {
	c.mu.Lock()
	c.decode = fn
	c.mu.Unlock()
}

// SetLogger replaces the logger used by resources created afterwards.
func (c *Cache) SetLogger(l *zap.Logger) {
	c.mu.Lock()
	c.log = l
	c.mu.Unlock()
}

// Get returns the resource for path, creating it unloaded on first use.
// Paths naming the same file return the same *Resource. An empty path
// returns None.
func (c *Cache) Get(path string) *Resource {
	if path == "" {
		return None
	}
	key := Canonical(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.entries[key]; ok {
		return r
	}
	r := &Resource{path: key, decode: c.decode, log: c.log}
	c.entries[key] = r
	return r
}

// Len returns the number of distinct resources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Canonical resolves path to an absolute path with symlinks evaluated. Files
// that do not exist keep their cleaned absolute path.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

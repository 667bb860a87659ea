package scene

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/internal/engine/render"
	"github.com/Faultbox/orbitscene/internal/engine/texture"
	"github.com/Faultbox/orbitscene/pkg/math"
)

func newTestContext(t *testing.T, mode RenderMode) *Context {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 4, 3
	cfg.Mode = mode
	cfg.Division = geometry.Division{X: 8, Y: 16}
	cfg.ScreenshotDir = t.TempDir()
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustFrame(t *testing.T, c *Context, b render.Backend) bool {
	t.Helper()
	drawn, err := c.Frame(b)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	return drawn
}

func writeTexture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "earth.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseRenderMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RenderMode
		wantErr bool
	}{
		{"immediate", ModeImmediate, false},
		{"LIST", ModeList, false},
		{"buffer", ModeBuffer, false},
		{"", ModeBuffer, false},
		{"vbo", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRenderMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedMode) {
				t.Errorf("ParseRenderMode(%q) err = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseRenderMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Division = geometry.Division{X: 0, Y: 0}
	if _, err := New(cfg); !errors.Is(err, geometry.ErrInvalidDivision) {
		t.Errorf("err = %v, want ErrInvalidDivision", err)
	}
	cfg = DefaultConfig()
	cfg.Mode = RenderMode(9)
	if _, err := New(cfg); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("err = %v, want ErrUnsupportedMode", err)
	}
}

func TestNewSphereRejectsInvalidRadius(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	if _, err := c.NewSphere(0, 0, 0, -1, ""); !errors.Is(err, geometry.ErrNegativeRadius) {
		t.Errorf("err = %v, want ErrNegativeRadius", err)
	}
	if len(c.Objects()) != 0 {
		t.Error("rejected sphere was registered")
	}
}

func TestBufferModeGeneratesOnce(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	s, err := c.NewSphere(0, 0, 0, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Dirty() {
		t.Error("new sphere should be dirty")
	}

	if !mustFrame(t, c, rec) {
		t.Fatal("first frame not drawn")
	}
	draws := rec.DrawCalls()
	if len(draws) != 1 || draws[0].Kind != "buffer" || draws[0].Vertices != 8*34 {
		t.Fatalf("draws = %+v", draws)
	}
	if s.Dirty() {
		t.Error("sphere still dirty after drawing")
	}

	if mustFrame(t, c, rec) {
		t.Error("frame drawn without a redraw request")
	}

	s.Translate(1, 0, 0)
	if !mustFrame(t, c, rec) {
		t.Fatal("translate did not trigger a redraw")
	}
	if rec.Allocated != 1 || s.Generations() != 1 {
		t.Errorf("allocations = %d, generations = %d, want 1 and 1", rec.Allocated, s.Generations())
	}
	if got := rec.DrawCalls()[0].Model.Translation(); got != (math.Vec3{X: 1}) {
		t.Errorf("model translation = %v", got)
	}
}

func TestSetRadiusRegeneratesAndReleases(t *testing.T) {
	for _, mode := range []RenderMode{ModeBuffer, ModeList} {
		t.Run(mode.String(), func(t *testing.T) {
			c := newTestContext(t, mode)
			rec := render.NewRecorder()
			s, _ := c.NewSphere(0, 0, 0, 10, "")
			mustFrame(t, c, rec)

			if err := s.SetRadius(20); err != nil {
				t.Fatal(err)
			}
			if !s.Dirty() {
				t.Error("SetRadius did not mark the sphere dirty")
			}
			mustFrame(t, c, rec)

			if s.Generations() != 2 {
				t.Errorf("generations = %d, want 2", s.Generations())
			}
			if live := rec.LiveBuffers() + rec.LiveLists(); live != 1 {
				t.Errorf("live resources = %d, want 1", live)
			}
			if len(rec.Errors) != 0 {
				t.Errorf("backend errors: %v", rec.Errors)
			}
		})
	}
}

func TestSetRadiusRejectsNegative(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	s, _ := c.NewSphere(0, 0, 0, 10, "")
	if err := s.SetRadius(-2); !errors.Is(err, geometry.ErrNegativeRadius) {
		t.Errorf("err = %v", err)
	}
	if s.Radius() != 10 {
		t.Errorf("Radius() = %v, want 10", s.Radius())
	}
}

func TestImmediateModeRegeneratesEveryFrame(t *testing.T) {
	c := newTestContext(t, ModeImmediate)
	rec := render.NewRecorder()
	s, _ := c.NewSphere(0, 0, 0, 1, "")

	for i := 0; i < 3; i++ {
		c.RequestRedraw()
		mustFrame(t, c, rec)
	}
	if s.Generations() != 3 {
		t.Errorf("generations = %d, want 3", s.Generations())
	}
	if rec.LiveBuffers()+rec.LiveLists() != 0 {
		t.Error("immediate mode kept backend resources")
	}
	if d := rec.DrawCalls(); len(d) != 1 || d[0].Kind != "strips" {
		t.Errorf("draws = %+v", d)
	}
}

func TestSetDivisionInvalidatesGeometry(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	s, _ := c.NewSphere(0, 0, 0, 1, "")
	mustFrame(t, c, rec)

	if err := c.SetDivision(4, 8); err != nil {
		t.Fatal(err)
	}
	mustFrame(t, c, rec)
	if s.Generations() != 2 {
		t.Errorf("generations = %d, want 2", s.Generations())
	}
	if got := rec.DrawCalls()[0].Vertices; got != 4*18 {
		t.Errorf("vertices = %d, want %d", got, 4*18)
	}

	if err := c.SetDivision(2, 2); !errors.Is(err, geometry.ErrInvalidDivision) {
		t.Errorf("err = %v, want ErrInvalidDivision", err)
	}
}

func TestRemoveReleasesOnNextFrame(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	a, _ := c.NewSphere(0, 0, 0, 1, "")
	c.NewSphere(5, 0, 0, 1, "")
	mustFrame(t, c, rec)

	if !c.Remove(a) {
		t.Fatal("Remove() = false")
	}
	if c.Remove(a) {
		t.Error("second Remove() = true")
	}
	if rec.LiveBuffers() != 2 {
		t.Error("resources released off the rendering thread")
	}

	mustFrame(t, c, rec)
	if rec.LiveBuffers() != 1 {
		t.Errorf("live buffers = %d, want 1", rec.LiveBuffers())
	}
	if len(rec.DrawCalls()) != 1 {
		t.Errorf("draws = %d, want 1", len(rec.DrawCalls()))
	}
}

func TestTextureSharedAndUploadedOnce(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	path := writeTexture(t)

	a, _ := c.NewSphere(0, 0, 0, 1, path)
	b, _ := c.NewSphere(3, 0, 0, 1, path)
	if a.Texture() != b.Texture() {
		t.Fatal("same file produced two resources")
	}
	if a.Texture().State() != texture.StateUnloaded {
		t.Error("texture loaded before first frame")
	}

	mustFrame(t, c, rec)
	if rec.Uploads != 1 {
		t.Errorf("uploads = %d, want 1", rec.Uploads)
	}
	for _, d := range rec.DrawCalls() {
		if !d.Material.Textured || d.Texture == 0 {
			t.Errorf("draw not textured: %+v", d)
		}
	}

	if !a.Texture().Ready() {
		t.Error("texture not ready")
	}
}

func TestMissingTextureDrawsUntextured(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	s, _ := c.NewSphere(0, 0, 0, 1, filepath.Join(t.TempDir(), "missing.png"))

	mustFrame(t, c, rec)
	c.RequestRedraw()
	mustFrame(t, c, rec)

	if s.Texture().State() != texture.StateFailed {
		t.Errorf("State() = %v, want failed", s.Texture().State())
	}
	d := rec.DrawCalls()
	if len(d) != 1 || d[0].Material.Textured || d[0].Texture != 0 {
		t.Errorf("draws = %+v", d)
	}
	if s.Generations() != 1 {
		t.Errorf("generations = %d, want 1", s.Generations())
	}
}

func TestTextureReadinessChangeRegenerates(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	s, _ := c.NewSphere(0, 0, 0, 1, "")
	mustFrame(t, c, rec)

	s.SetTexture(writeTexture(t))
	mustFrame(t, c, rec)
	if s.Generations() != 2 {
		t.Errorf("generations = %d, want 2", s.Generations())
	}

	s.SetTexture("")
	mustFrame(t, c, rec)
	if s.Generations() != 3 {
		t.Errorf("generations = %d, want 3", s.Generations())
	}
	if s.Texture() != texture.None {
		t.Error("empty path should bind texture.None")
	}
}

func TestWireframeAndDrawStyle(t *testing.T) {
	c := newTestContext(t, ModeList)
	rec := render.NewRecorder()
	s, _ := c.NewSphere(0, 0, 0, 1, "")
	s.SetDrawStyle(render.StylePoint)
	mustFrame(t, c, rec)
	if got := rec.DrawCalls()[0].Material.Style; got != render.StylePoint {
		t.Errorf("style = %v, want point", got)
	}

	c.SetWireframe(true)
	mustFrame(t, c, rec)
	if got := rec.DrawCalls()[0].Material.Style; got != render.StyleLine {
		t.Errorf("style = %v, want line", got)
	}
	if !rec.LastFrame.Wireframe {
		t.Error("frame not flagged wireframe")
	}

	s.SetDrawStyle(render.StylePoint)
	if c.Scheduler().Pending() {
		t.Error("setting the same style requested a redraw")
	}
}

func TestFrameOptions(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()

	c.SetLighting(false)
	c.ShowAxes(25)
	c.SetLookAtVisible(true)
	c.Resize(8, 6)
	mustFrame(t, c, rec)

	f := rec.LastFrame
	if f.Lighting || f.AxesLength != 25 || !f.ShowLookAt || f.Width != 8 || f.Height != 6 {
		t.Errorf("frame = %+v", f)
	}
	if f.Eye != c.Camera().Position() {
		t.Errorf("Eye = %v", f.Eye)
	}

	c.SetAxesVisible(false)
	mustFrame(t, c, rec)
	if rec.LastFrame.AxesLength != 0 {
		t.Error("hidden axes still drawn")
	}
}

func TestCameraMutationRequestsRedraw(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	mustFrame(t, c, rec)

	c.Camera().MoveToward(100)
	if !mustFrame(t, c, rec) {
		t.Error("camera move did not trigger a redraw")
	}
}

func TestScreenshot(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 4, 3
	cfg.ScreenshotDir = dir
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := render.NewRecorder()
	mustFrame(t, c, rec)

	c.RequestScreenshot("shot")
	if !mustFrame(t, c, rec) {
		t.Fatal("screenshot request did not trigger a frame")
	}
	if _, err := os.Stat(filepath.Join(dir, "shot.png")); err != nil {
		t.Errorf("screenshot not written: %v", err)
	}
}

type failingBackend struct {
	*render.Recorder
}

func (failingBackend) AllocBuffer(*geometry.Buffer) (render.Handle, error) {
	return 0, errors.New("out of memory")
}

func TestMaterializeFailureDoesNotStopFrame(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	b := failingBackend{render.NewRecorder()}
	c.NewSphere(0, 0, 0, 1, "")
	c.NewSphereWithMode(ModeImmediate, 0, 0, 0, 1, "")

	drawn, err := c.Frame(b)
	if !drawn || err == nil {
		t.Fatalf("Frame() = %v, %v", drawn, err)
	}
	if got := len(b.DrawCalls()); got != 1 {
		t.Errorf("draws = %d, want 1", got)
	}
}

func TestConcurrentMutationDuringFrames(t *testing.T) {
	c := newTestContext(t, ModeBuffer)
	rec := render.NewRecorder()
	s, _ := c.NewSphere(0, 0, 0, 1, "")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Rotate(0, 1, 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			c.Camera().OrbitDrag(float32(i), 0)
		}
	}()
	for i := 0; i < 50; i++ {
		if _, err := c.Frame(rec); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	mustFrame(t, c, rec)
	if s.Generations() != 1 {
		t.Errorf("transform changes regenerated geometry: %d", s.Generations())
	}
}

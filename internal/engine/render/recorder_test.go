package render

import (
	"errors"
	"image"
	"testing"

	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/pkg/math"
)

func TestRecorderTracksHandles(t *testing.T) {
	r := NewRecorder()
	strips := []geometry.Strip{make(geometry.Strip, 4), make(geometry.Strip, 4)}

	list, _ := r.CompileList(strips)
	buf, _ := r.AllocBuffer(geometry.Flatten(strips))
	if list == buf {
		t.Fatal("handles must be distinct")
	}

	r.BeginFrame(Frame{Width: 2, Height: 2})
	r.CallList(math.Identity(), list, Material{})
	r.DrawBuffer(math.Identity(), buf, Material{})
	r.EndFrame()

	draws := r.DrawCalls()
	if len(draws) != 2 || draws[0].Vertices != 8 || draws[1].Vertices != 8 {
		t.Fatalf("draws = %+v", draws)
	}

	r.DeleteList(list)
	r.FreeBuffer(buf)
	if r.LiveLists() != 0 || r.LiveBuffers() != 0 {
		t.Error("resources leaked")
	}

	r.CallList(math.Identity(), list, Material{})
	if len(r.Errors) != 1 || !errors.Is(r.Errors[0], ErrUnknownHandle) {
		t.Errorf("Errors = %v, want one ErrUnknownHandle", r.Errors)
	}
}

func TestRecorderUpload(t *testing.T) {
	r := NewRecorder()
	id, err := r.UploadTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil || id == 0 {
		t.Fatalf("UploadTexture() = %d, %v", id, err)
	}

	r.FailUpload = errors.New("out of memory")
	if _, err := r.UploadTexture(image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("expected injected failure")
	}
}

func TestRecorderReadPixels(t *testing.T) {
	r := NewRecorder()
	if _, _, _, err := r.ReadPixels(); err == nil {
		t.Error("expected error before any frame")
	}
	r.BeginFrame(Frame{Width: 3, Height: 2})
	px, w, h, err := r.ReadPixels()
	if err != nil || w != 3 || h != 2 || len(px) != 24 {
		t.Fatalf("ReadPixels() = %d bytes, %dx%d, %v", len(px), w, h, err)
	}
}

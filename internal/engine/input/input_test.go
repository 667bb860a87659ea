package input

import "testing"

func TestInputCollectsAndResets(t *testing.T) {
	in := New()
	in.Push(Event{Type: EventKeyDown, Key: KeyF12})
	in.Push(Event{Type: EventMouseWheel, WheelY: 1})

	if len(in.Events()) != 2 {
		t.Fatalf("Events() = %d, want 2", len(in.Events()))
	}
	if !in.IsKeyPressed(KeyF12) {
		t.Error("IsKeyPressed(KeyF12) = false")
	}
	if in.IsKeyPressed(KeyEscape) {
		t.Error("IsKeyPressed(KeyEscape) = true")
	}
	if in.Quit() {
		t.Error("Quit() = true without quit event")
	}

	in.Reset()
	if len(in.Events()) != 0 {
		t.Error("Reset() did not clear events")
	}
	in.Push(Event{Type: EventQuit})
	if !in.Quit() {
		t.Error("Quit() = false")
	}
}

package render

import (
	"sync"
	"testing"
)

func TestSchedulerFirstFramePending(t *testing.T) {
	s := NewScheduler()
	if !s.Pending() {
		t.Fatal("new scheduler should have a pending redraw")
	}
	if !s.TakeRedraw() {
		t.Fatal("TakeRedraw() = false on first frame")
	}
	if s.TakeRedraw() {
		t.Error("TakeRedraw() should clear the flag")
	}
}

func TestSchedulerCoalescesRequests(t *testing.T) {
	s := NewScheduler()
	s.TakeRedraw()
	<-s.Wake()

	for i := 0; i < 3; i++ {
		s.RequestRedraw()
	}
	if !s.TakeRedraw() {
		t.Fatal("expected one redraw")
	}
	if s.TakeRedraw() {
		t.Error("three requests should yield exactly one redraw")
	}

	select {
	case <-s.Wake():
	default:
		t.Fatal("expected a buffered wake-up")
	}
	select {
	case <-s.Wake():
		t.Error("wake-ups should coalesce to one")
	default:
	}
}

func TestSchedulerConcurrentRequests(t *testing.T) {
	s := NewScheduler()
	s.TakeRedraw()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RequestRedraw()
			}
		}()
	}
	wg.Wait()

	if !s.TakeRedraw() {
		t.Fatal("requests from other goroutines were lost")
	}
	if s.Pending() {
		t.Error("flag should be clear after TakeRedraw")
	}
}

func TestParseDrawStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    DrawStyle
		wantErr bool
	}{
		{"", StyleFill, false},
		{"fill", StyleFill, false},
		{"LINE", StyleLine, false},
		{"point", StylePoint, false},
		{"dots", StyleFill, true},
	}
	for _, tt := range tests {
		got, err := ParseDrawStyle(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDrawStyle(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDrawStyle(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

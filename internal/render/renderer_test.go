package render

import (
	"math"
	"testing"

	"github.com/wavedeck/wavedeck/internal/window"
)

func TestNewFailsFastOnBadConfig(t *testing.T) {
	policy := window.MainView{Marker: 0.25}
	cases := []Config{
		{Width: 0, Height: 100, Scale: 1, Policy: policy},
		{Width: 100, Height: -1, Scale: 1, Policy: policy},
		{Width: 100, Height: 100, Scale: 0, Policy: policy},
		{Width: 100, Height: 100, Scale: 1, Policy: nil},
	}
	for i, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Errorf("case %d: config %+v accepted", i, cfg)
		}
	}
}

func TestResizeValidation(t *testing.T) {
	r, err := New(Config{Width: 100, Height: 50, Scale: 1, Policy: window.MainView{Marker: 0.25}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := r.Resize(0, 50, 1); err == nil {
		t.Error("zero width accepted")
	}
	if err := r.Resize(200, 80, 2); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if w, h := r.Size(); w != 200 || h != 80 {
		t.Errorf("size = %dx%d, want 200x80", w, h)
	}
}

func TestResizeAfterDisposeIsNoop(t *testing.T) {
	r, err := New(Config{Width: 100, Height: 50, Scale: 1, Policy: window.Minimap{}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r.Dispose()
	if err := r.Resize(200, 80, 2); err != nil {
		t.Fatalf("resize after dispose returned %v, want nil no-op", err)
	}
	if w, h := r.Size(); w != 100 || h != 50 {
		t.Errorf("disposed renderer resized to %dx%d", w, h)
	}
}

func TestCueXNilCue(t *testing.T) {
	if _, ok := cueX(nil, 100, window.Window{First: 0, Last: 1}, 1000, 0); ok {
		t.Fatal("nil cue produced a position")
	}
}

func TestCueXInsideWindow(t *testing.T) {
	cue := 30.0
	// Window [0.2, 0.4] over a 100s track: cue at 0.3 sits mid-canvas.
	x, ok := cueX(&cue, 100, window.Window{First: 0.2, Last: 0.4}, 1000, 0)
	if !ok {
		t.Fatal("visible cue not drawn")
	}
	if math.Abs(x-500) > 1e-9 {
		t.Errorf("cue x = %v, want 500", x)
	}
}

func TestCueXOutsideWindow(t *testing.T) {
	cue := 90.0
	if _, ok := cueX(&cue, 100, window.Window{First: 0.2, Last: 0.4}, 1000, 0); ok {
		t.Fatal("off-screen cue drawn")
	}
}

func TestCueXFollowsDragOffset(t *testing.T) {
	cue := 30.0
	win := window.Window{First: 0.2, Last: 0.4}
	base, ok := cueX(&cue, 100, win, 1000, 0)
	if !ok {
		t.Fatal("visible cue not drawn")
	}
	shifted, ok := cueX(&cue, 100, win, 1000, 25)
	if !ok {
		t.Fatal("shifted cue not drawn")
	}
	if math.Abs(shifted-base-25) > 1e-9 {
		t.Errorf("shifted cue x = %v, want %v", shifted, base+25)
	}
}

package window

import (
	"math"
	"testing"
)

func TestMainViewWindowAtZoomOne(t *testing.T) {
	p := MainView{Marker: 0.25}
	w := p.Window(0.5, 1.0)
	if w.First != 0.25 || w.Last != 1.25 {
		t.Fatalf("window = [%v, %v], want [0.25, 1.25]", w.First, w.Last)
	}
}

func TestMainViewWindowZoomedIn(t *testing.T) {
	p := MainView{Marker: 0.25}
	w := p.Window(0.5, 10.0)
	if math.Abs(w.First-0.475) > 1e-12 || math.Abs(w.Last-0.575) > 1e-12 {
		t.Fatalf("window = [%v, %v], want [0.475, 0.575]", w.First, w.Last)
	}
}

func TestMainViewWindowWidthInvariant(t *testing.T) {
	zooms := []float64{0.5, 1, 2, 5, 17.3, 50}
	positions := []float64{0, 0.1, 0.5, 0.999, 1}
	markers := []float64{0.1, 0.25, 0.5, 0.9}
	for _, m := range markers {
		p := MainView{Marker: m}
		for _, z := range zooms {
			for _, pos := range positions {
				w := p.Window(pos, z)
				if got, want := w.Width(), 1/z; math.Abs(got-want) > 1e-12 {
					t.Errorf("marker %v zoom %v pos %v: width = %v, want %v", m, z, pos, got, want)
				}
			}
		}
	}
}

func TestMainViewWindowExtendsPastTrackEdges(t *testing.T) {
	p := MainView{Marker: 0.25}
	if w := p.Window(0, 1); w.First >= 0 {
		t.Errorf("window at track start should extend before 0, got first %v", w.First)
	}
	if w := p.Window(1, 1); w.Last <= 1 {
		t.Errorf("window at track end should extend past 1, got last %v", w.Last)
	}
}

func TestMinimapWindowAlwaysFullTrack(t *testing.T) {
	p := Minimap{}
	for _, z := range []float64{0.5, 1, 10, 50} {
		for _, pos := range []float64{0, 0.3, 1} {
			w := p.Window(pos, z)
			if w.First != 0 || w.Last != 1 {
				t.Fatalf("minimap window = [%v, %v], want [0, 1]", w.First, w.Last)
			}
		}
	}
}

// The offset must place the play position exactly on the playhead column,
// give or take the mandatory whole-pixel rounding.
func TestMainViewPixelOffsetAlignsPlayhead(t *testing.T) {
	const width = 1000.0
	p := MainView{Marker: 0.25}
	for _, pos := range []float64{0, 0.1234567, 0.5, 0.87654321, 1} {
		w := p.Window(pos, 4)
		offset := p.PixelOffset(pos, w, width, 0)
		through := (pos - w.First) / w.Width()
		aligned := through*width + float64(offset)
		if err := math.Abs(aligned - p.Marker*width); err > 0.5 {
			t.Errorf("pos %v: playhead lands at %v, want %v +/- 0.5px", pos, aligned, p.Marker*width)
		}
	}
}

func TestMainViewPixelOffsetIncludesDrag(t *testing.T) {
	p := MainView{Marker: 0.25}
	pos := 0.5
	w := p.Window(pos, 2)
	base := p.PixelOffset(pos, w, 1000, 0)
	dragged := p.PixelOffset(pos, w, 1000, 37)
	if dragged != base+37 {
		t.Fatalf("offset with drag = %d, want %d", dragged, base+37)
	}
}

func TestMinimapNeverScrolls(t *testing.T) {
	p := Minimap{}
	if got := p.PixelOffset(0.7, Window{0, 1}, 1000, 42); got != 0 {
		t.Fatalf("minimap pixel offset = %d, want 0", got)
	}
}

func TestPlayheadPositions(t *testing.T) {
	main := MainView{Marker: 0.25}
	if got := main.PlayheadX(0.9, 800); got != 200 {
		t.Errorf("main playhead = %v, want fixed 200", got)
	}
	mini := Minimap{}
	if got := mini.PlayheadX(0.9, 800); math.Abs(got-720) > 1e-9 {
		t.Errorf("minimap playhead = %v, want 720", got)
	}
}

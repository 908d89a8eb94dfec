// Package window maps playback state onto the normalized slice of the
// envelope that the canvas shows. The two view kinds (scrolling main view,
// fixed full-track minimap) are expressed as policies so the geometry and
// draw code never branch on the view kind.
package window

import "math"

// Window is the normalized [First, Last) slice of the envelope currently
// mapped onto the canvas. It is deliberately not clamped to [0, 1]: near the
// track edges the window extends past the data so the pixel-to-time scale
// stays constant, and the out-of-range part renders as blank space.
type Window struct {
	First float64
	Last  float64
}

// Width returns the normalized span of the window.
func (w Window) Width() float64 { return w.Last - w.First }

// Policy derives the visible window, the playhead position and the scroll
// offset for one view kind.
type Policy interface {
	// Window computes the visible slice for a normalized play position
	// and zoom factor.
	Window(playPos, zoom float64) Window

	// PlayheadX returns the horizontal device-pixel position of the
	// playhead for a canvas width pixels wide.
	PlayheadX(playPos float64, width float64) float64

	// PixelOffset returns the whole-pixel shift that places playPos
	// exactly on the playhead column, plus any in-progress drag offset.
	// Whole pixels only: a fractional shift against the discrete sampling
	// grid shows up as one-pixel jitter while playback advances.
	PixelOffset(playPos float64, win Window, width, dragPx float64) int
}

// MainView scrolls the waveform under a playhead fixed at Marker
// (a fraction of the canvas width).
type MainView struct {
	Marker float64
}

func (p MainView) Window(playPos, zoom float64) Window {
	visible := 1 / zoom
	return Window{
		First: playPos - visible*p.Marker,
		Last:  playPos + visible*(1-p.Marker),
	}
}

func (p MainView) PlayheadX(playPos float64, width float64) float64 {
	return p.Marker * width
}

func (p MainView) PixelOffset(playPos float64, win Window, width, dragPx float64) int {
	through := (playPos - win.First) / win.Width()
	base := p.Marker*width - through*width
	return int(math.Round(base)) + int(math.Round(dragPx))
}

// Minimap always shows the whole track at fixed scale; only the playhead
// moves. It ignores zoom and never scrolls.
type Minimap struct{}

func (Minimap) Window(playPos, zoom float64) Window {
	return Window{First: 0, Last: 1}
}

func (Minimap) PlayheadX(playPos float64, width float64) float64 {
	return playPos * width
}

func (Minimap) PixelOffset(playPos float64, win Window, width, dragPx float64) int {
	return 0
}

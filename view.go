// Package wavedeck renders a scrolling, zoomable, three-band waveform
// synchronized to an external playback clock. A View owns one drawing
// surface and its interaction state; the immutable envelope may be shared
// between any number of views (typically a main view and its minimap).
package wavedeck

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"

	"github.com/wavedeck/wavedeck/internal/envelope"
	"github.com/wavedeck/wavedeck/internal/geometry"
	"github.com/wavedeck/wavedeck/internal/render"
	"github.com/wavedeck/wavedeck/internal/window"
)

const (
	defaultMarker  = 0.25
	defaultMinZoom = 0.5
	defaultMaxZoom = 50.0
)

type viewConfig struct {
	minimap bool
	marker  float64
	minZoom float64
	maxZoom float64
	cue     *float64
	colors  [geometry.NumBands]geometry.Color
}

// Option configures a View at construction.
type Option func(*viewConfig)

// WithMinimap makes the view show the whole track at fixed scale with a
// moving playhead. Minimap views support click-to-seek but neither
// drag-to-scrub nor wheel-zoom.
func WithMinimap() Option {
	return func(cfg *viewConfig) { cfg.minimap = true }
}

// WithPlayMarker sets the horizontal fraction (0, 1) where the fixed
// playhead sits in a non-minimap view.
func WithPlayMarker(frac float64) Option {
	return func(cfg *viewConfig) { cfg.marker = frac }
}

// WithZoomRange sets the zoom clamp range.
func WithZoomRange(min, max float64) Option {
	return func(cfg *viewConfig) { cfg.minZoom, cfg.maxZoom = min, max }
}

// WithCuePoint sets the cue marker time in seconds.
func WithCuePoint(seconds float64) Option {
	return func(cfg *viewConfig) { cfg.cue = &seconds }
}

// WithBandColors overrides the low/mid/high band palette. Colors are
// pre-scaled internally for additive compositing.
func WithBandColors(low, mid, high color.RGBA) Option {
	return func(cfg *viewConfig) {
		for i, c := range []color.RGBA{low, mid, high} {
			cfg.colors[i] = geometry.Color{
				R: float32(c.R) / 255,
				G: float32(c.G) / 255,
				B: float32(c.B) / 255,
				A: 1,
			}.Scale(0.7)
		}
	}
}

// View is one mounted waveform visualization: render state, render loop and
// interaction handling for a single drawing surface. A View must not be
// shared between goroutines; all methods are called from the frame loop.
type View struct {
	env   *envelope.Envelope
	clock Clock
	cue   *float64

	policy  window.Policy
	minimap bool

	renderer       *render.Renderer
	rendererColors [geometry.NumBands]geometry.Color
	width, height  int // device pixels
	scale          float64

	zoom             float64
	minZoom, maxZoom float64
	playPos          float64
	win              window.Window

	// drag state
	pressed        bool
	dragging       bool
	dragWasPlaying bool
	pressX         int
	dragPx         float64
	dragWin        window.Window

	state  loopState
	events <-chan ClockEvent
}

// New builds a View over an immutable envelope and an external clock. The
// renderer is never constructed against invalid data: a nil envelope or
// clock, or an out-of-range configuration, fails construction.
func New(env *envelope.Envelope, clock Clock, opts ...Option) (*View, error) {
	if env == nil {
		return nil, errors.New("wavedeck: nil envelope")
	}
	if clock == nil {
		return nil, errors.New("wavedeck: nil clock")
	}
	cfg := viewConfig{
		marker:  defaultMarker,
		minZoom: defaultMinZoom,
		maxZoom: defaultMaxZoom,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.marker <= 0 || cfg.marker >= 1 {
		return nil, errors.Errorf("wavedeck: play marker %v outside (0, 1)", cfg.marker)
	}
	if cfg.minZoom <= 0 || cfg.maxZoom < cfg.minZoom {
		return nil, errors.Errorf("wavedeck: invalid zoom range [%v, %v]", cfg.minZoom, cfg.maxZoom)
	}
	if cfg.cue != nil {
		c := clampF(*cfg.cue, 0, env.Duration())
		cfg.cue = &c
	}

	v := &View{
		env:     env,
		clock:   clock,
		cue:     cfg.cue,
		minimap: cfg.minimap,
		minZoom: cfg.minZoom,
		maxZoom: cfg.maxZoom,
		zoom:    1,
	}
	if cfg.minimap {
		// The minimap is pinned to the full track at zoom 1.
		v.policy = window.Minimap{}
		v.minZoom, v.maxZoom = 1, 1
	} else {
		v.policy = window.MainView{Marker: cfg.marker}
		v.zoom = clampF(1, v.minZoom, v.maxZoom)
	}
	v.rendererColors = cfg.colors
	v.win = v.policy.Window(v.playPos, v.zoom)
	return v, nil
}

// SetSize sizes the drawing surface in device pixels (CSS-equivalent size
// multiplied by the device pixel ratio). It must be called before the first
// Draw and again whenever the host layout or scale factor changes.
func (v *View) SetSize(width, height int, scale float64) error {
	if v.state == loopDisposed {
		return nil
	}
	if v.renderer != nil {
		if err := v.renderer.Resize(width, height, scale); err != nil {
			return err
		}
		v.width, v.height, v.scale = width, height, scale
		return nil
	}
	r, err := render.New(render.Config{
		Width:   width,
		Height:  height,
		Scale:   scale,
		Policy:  v.policy,
		Minimap: v.minimap,
		Colors:  v.rendererColors,
	})
	if err != nil {
		return err
	}
	v.renderer = r
	v.width, v.height, v.scale = width, height, scale
	return nil
}

// Draw renders the current frame onto screen at the given device-pixel
// origin. It is a no-op unless the view is running with a sized surface.
func (v *View) Draw(screen *ebiten.Image, x, y int) {
	if v.state != loopRunning || v.renderer == nil {
		return
	}
	canvas := v.renderer.Draw(v.env, v.frame())
	if canvas == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(canvas, op)
}

func (v *View) frame() render.Frame {
	return render.Frame{
		PlayPos:  v.playPos,
		Window:   v.win,
		DragPx:   v.dragPx,
		Cue:      v.cue,
		Duration: v.env.Duration(),
	}
}

// SetCuePoint replaces the cue marker; pass a negative time to clear it.
// The time clamps to the track bounds.
func (v *View) SetCuePoint(seconds float64) {
	if v.state == loopDisposed {
		return
	}
	if seconds < 0 {
		v.cue = nil
		return
	}
	c := clampF(seconds, 0, v.env.Duration())
	v.cue = &c
}

// Zoom returns the current zoom factor.
func (v *View) Zoom() float64 { return v.zoom }

// PlayPosition returns the normalized [0, 1] play position.
func (v *View) PlayPosition() float64 { return v.playPos }

// Window returns the current display window as normalized first/last
// positions. The window may extend past [0, 1] near the track edges.
func (v *View) Window() (first, last float64) {
	return v.win.First, v.win.Last
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clampF(v, 0, 1) }

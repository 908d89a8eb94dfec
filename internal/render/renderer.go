// Package render owns the drawing surface and the per-frame draw path: clear,
// build band geometry, composite the three bands additively, then draw the
// playhead and cue overlays.
package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/pkg/errors"

	"github.com/wavedeck/wavedeck/internal/envelope"
	"github.com/wavedeck/wavedeck/internal/geometry"
	"github.com/wavedeck/wavedeck/internal/window"
)

// bandOpacity keeps overlapping bands legible under additive blending.
const bandOpacity = 0.7

// DefaultColors is the band palette (low, mid, high), already pre-scaled by
// the band opacity so the draw path can blend additively without further
// color math.
var DefaultColors = [geometry.NumBands]geometry.Color{
	geometry.Color{R: 0.16, G: 0.38, B: 1.0, A: 1}.Scale(bandOpacity), // low: blue
	geometry.Color{R: 1.0, G: 0.62, B: 0.12, A: 1}.Scale(bandOpacity), // mid: amber
	geometry.Color{R: 0.92, G: 0.95, B: 1.0, A: 1}.Scale(bandOpacity), // high: near-white
}

var (
	backgroundColor = color.RGBA{12, 13, 18, 255}
	playheadColor   = color.RGBA{235, 235, 240, 255}
	cueColor        = color.RGBA{255, 140, 40, 255}
)

// Config describes one renderer instance. Width and Height are device
// pixels; Scale is the device pixel ratio used to size overlay strokes.
type Config struct {
	Width, Height int
	Scale         float64
	Policy        window.Policy
	Minimap       bool
	Colors        [geometry.NumBands]geometry.Color
}

// Frame is everything a single draw needs. DragPx is the in-progress manual
// drag offset in device pixels; Cue is nil when no cue point is set.
type Frame struct {
	PlayPos  float64
	Window   window.Window
	DragPx   float64
	Cue      *float64
	Duration float64
}

// Renderer draws one view's waveform. The offscreen canvas and the white
// source pixel for triangle fills are created lazily on first draw and
// recreated after a resize, so a remounted view never reuses a stale surface.
type Renderer struct {
	width, height int
	scale         float64
	policy        window.Policy
	minimap       bool
	colors        [geometry.NumBands]geometry.Color

	canvas *ebiten.Image
	white  *ebiten.Image
	mesh   geometry.Mesh
	verts  []ebiten.Vertex

	disposed bool
}

// New validates the configuration and builds a renderer. It fails fast on an
// unusable surface description rather than silently producing a blank canvas.
func New(cfg Config) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Errorf("render: invalid canvas size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Scale <= 0 {
		return nil, errors.Errorf("render: invalid device scale %v", cfg.Scale)
	}
	if cfg.Policy == nil {
		return nil, errors.New("render: nil view policy")
	}
	colors := cfg.Colors
	if colors == [geometry.NumBands]geometry.Color{} {
		colors = DefaultColors
	}
	return &Renderer{
		width:   cfg.Width,
		height:  cfg.Height,
		scale:   cfg.Scale,
		policy:  cfg.Policy,
		minimap: cfg.Minimap,
		colors:  colors,
	}, nil
}

// Resize updates the device-pixel dimensions. The canvas is dropped and
// recreated on the next draw.
func (r *Renderer) Resize(width, height int, scale float64) error {
	if r.disposed {
		return nil
	}
	if width <= 0 || height <= 0 || scale <= 0 {
		return errors.Errorf("render: invalid resize %dx%d scale %v", width, height, scale)
	}
	if width == r.width && height == r.height && scale == r.scale {
		return nil
	}
	r.width, r.height, r.scale = width, height, scale
	r.releaseCanvas()
	return nil
}

// Size returns the canvas dimensions in device pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// PixelOffset exposes the whole-pixel scroll shift for the given frame.
func (r *Renderer) PixelOffset(f Frame) int {
	return r.policy.PixelOffset(f.PlayPos, f.Window, float64(r.width), f.DragPx)
}

// Draw renders the frame and returns the canvas, or nil after disposal.
func (r *Renderer) Draw(env *envelope.Envelope, f Frame) *ebiten.Image {
	if r.disposed {
		return nil
	}
	r.ensureCanvas()
	r.canvas.Fill(backgroundColor)

	offset := r.PixelOffset(f)
	geometry.Build(&r.mesh, env, geometry.Params{
		Window:      f.Window,
		Width:       r.width,
		Height:      r.height,
		PixelOffset: offset,
		Minimap:     r.minimap,
		Colors:      r.colors,
	})

	op := &ebiten.DrawTrianglesOptions{Blend: ebiten.BlendLighter}
	for b := 0; b < geometry.NumBands; b++ {
		for i := range r.mesh.Bands[b] {
			batch := &r.mesh.Bands[b][i]
			if len(batch.Vertices) == 0 {
				continue
			}
			r.verts = r.verts[:0]
			for _, v := range batch.Vertices {
				r.verts = append(r.verts, ebiten.Vertex{
					DstX: v.X, DstY: v.Y,
					SrcX: 1, SrcY: 1,
					ColorR: v.R, ColorG: v.G, ColorB: v.B, ColorA: v.A,
				})
			}
			r.canvas.DrawTriangles(r.verts, batch.Indices, r.white, op)
		}
	}

	r.drawPlayhead(f)
	r.drawCuePoint(f, offset)
	return r.canvas
}

// Dispose releases the drawing surface. Draw and Resize become no-ops;
// frame callbacks already in flight at dispose time must not touch a
// released surface.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.releaseCanvas()
}

func (r *Renderer) ensureCanvas() {
	if r.canvas == nil {
		r.canvas = ebiten.NewImage(r.width, r.height)
	}
	if r.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		r.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
}

func (r *Renderer) releaseCanvas() {
	if r.canvas != nil {
		r.canvas.Deallocate()
		r.canvas = nil
	}
	r.white = nil
}

func (r *Renderer) drawPlayhead(f Frame) {
	x := r.policy.PlayheadX(f.PlayPos, float64(r.width))
	r.vline(x, playheadColor)
}

// cueX maps a cue time through the display window to a canvas column,
// including the current scroll offset. ok is false when there is no cue to
// draw or it falls outside the canvas.
func cueX(cue *float64, duration float64, win window.Window, width float64, offset int) (float64, bool) {
	if cue == nil || duration <= 0 {
		return 0, false
	}
	pos := *cue / duration
	through := (pos - win.First) / win.Width()
	x := through*width + float64(offset)
	if x < 0 || x >= width {
		return 0, false
	}
	return x, true
}

// drawCuePoint draws the cue line and its bottom triangle marker. No cue
// point, or a cue outside the visible window, draws nothing.
func (r *Renderer) drawCuePoint(f Frame, offset int) {
	x, ok := cueX(f.Cue, f.Duration, f.Window, float64(r.width), offset)
	if !ok {
		return
	}
	r.vline(x, cueColor)

	s := 4 * r.scale
	h := float32(r.height)
	cr, cg, cb := float32(cueColor.R)/255, float32(cueColor.G)/255, float32(cueColor.B)/255
	tri := []ebiten.Vertex{
		{DstX: float32(x - s), DstY: h, SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1},
		{DstX: float32(x + s), DstY: h, SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1},
		{DstX: float32(x), DstY: h - float32(2*s), SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1},
	}
	r.canvas.DrawTriangles(tri, []uint16{0, 1, 2}, r.white, &ebiten.DrawTrianglesOptions{})
}

func (r *Renderer) vline(x float64, c color.Color) {
	w := r.scale
	if w < 1 {
		w = 1
	}
	ebitenutil.DrawRect(r.canvas, x-w/2, 0, w, float64(r.height), c)
}

// Package geometry turns a display window over an envelope into colored
// quads, one per band per pixel column. Build is a pure function of its
// inputs so a frame can never observe half-updated state, and it appends
// into caller-owned buffers so the per-frame hot path stays allocation-free.
package geometry

import (
	"math"

	"github.com/wavedeck/wavedeck/internal/envelope"
	"github.com/wavedeck/wavedeck/internal/window"
)

// NumBands is the number of frequency bands per envelope, drawn low to high.
const NumBands = 3

// Vertex is one corner of a band quad: a device-pixel position and a
// premultiplied RGBA color ready for additive compositing.
type Vertex struct {
	X, Y       float32
	R, G, B, A float32
}

// Color is a premultiplied RGBA band color.
type Color struct {
	R, G, B, A float32
}

// Scale returns the color with every component pre-scaled by opacity.
func (c Color) Scale(opacity float32) Color {
	return Color{c.R * opacity, c.G * opacity, c.B * opacity, c.A * opacity}
}

// maxBatchVertices is the most vertices one batch may hold, the address
// range of a uint16 index.
const maxBatchVertices = math.MaxUint16 + 1

// Batch is one uploadable vertex/index run. Indices are batch-local.
type Batch struct {
	Vertices []Vertex
	Indices  []uint16
}

// Mesh holds the built geometry as per-band batch lists, drawn in band
// order. A band usually fits one batch; canvases wider than a uint16 index
// range spill into further batches rather than losing columns.
type Mesh struct {
	Bands [NumBands][]Batch
}

// Reset empties the mesh while keeping its buffers.
func (m *Mesh) Reset() {
	for b := 0; b < NumBands; b++ {
		for i := range m.Bands[b] {
			m.Bands[b][i].Vertices = m.Bands[b][i].Vertices[:0]
			m.Bands[b][i].Indices = m.Bands[b][i].Indices[:0]
		}
		m.Bands[b] = m.Bands[b][:0]
	}
}

// batch returns the band's current batch, opening a new one when the next
// quad would overflow the uint16 index range. Truncated batches left behind
// by Reset are reused before any allocation.
func (m *Mesh) batch(band int) *Batch {
	bs := m.Bands[band]
	if n := len(bs); n > 0 && len(bs[n-1].Vertices)+4 <= maxBatchVertices {
		return &bs[n-1]
	}
	if len(bs) < cap(bs) {
		bs = bs[:len(bs)+1]
	} else {
		bs = append(bs, Batch{})
	}
	m.Bands[band] = bs
	return &bs[len(bs)-1]
}

// Params describes one geometry build.
type Params struct {
	Window window.Window
	// Width and Height are the canvas size in device pixels.
	Width, Height int
	// PixelOffset is the whole-pixel shift that aligns the play position
	// with the playhead column. Columns shifted outside the canvas are
	// dropped.
	PixelOffset int
	// Minimap anchors quads to the bottom edge instead of the center line.
	Minimap bool
	Colors  [NumBands]Color
}

// Build fills dst with band quads for every visible pixel column.
func Build(dst *Mesh, env *envelope.Envelope, p Params) {
	dst.Reset()
	if env == nil || p.Width <= 0 || p.Height <= 0 {
		return
	}

	n := float64(env.Len())
	firstIndex := math.Floor(p.Window.First * n)
	lastIndex := math.Floor(p.Window.Last * n)
	samplesPerPixel := (lastIndex - firstIndex) / float64(p.Width)
	if samplesPerPixel < 0 {
		return
	}
	// Half a sample minimum so a column always covers at least one sample
	// when zoomed in past the envelope's native resolution. This also keeps
	// a window narrower than one sample drawing that sample in every column
	// instead of going blank.
	radius := samplesPerPixel / 2
	if radius < 0.5 {
		radius = 0.5
	}

	half := float64(p.Height) / 2
	for x := 0; x < p.Width; x++ {
		screenX := x + p.PixelOffset
		if screenX < 0 || screenX >= p.Width {
			continue
		}
		center := firstIndex + (float64(x)+0.5)*samplesPerPixel
		low, mid, high, ok := samplePeak(env, center, radius)
		if !ok {
			continue
		}
		for b, v := range [NumBands]float64{low, mid, high} {
			if v <= 0 {
				continue
			}
			amp := v * half
			var y0, y1 float64
			if p.Minimap {
				y0, y1 = float64(p.Height)-amp*2, float64(p.Height)
			} else {
				y0, y1 = half-amp, half+amp
			}
			appendQuad(dst, b, screenX, y0, y1, p.Colors[b])
		}
	}
}

// samplePeak aggregates each band over the sample window
// [center-radius, center+radius) as the maximum of value*weight, where the
// weight is the sample's overlap with the window. The fractional edge
// weights are what keep the display from flickering as the window slides by
// sub-sample amounts; the peak-hold (rather than an average) keeps
// transients visible. ok is false when the window misses the data entirely.
func samplePeak(env *envelope.Envelope, center, radius float64) (low, mid, high float64, ok bool) {
	n := env.Len()
	from := center - radius
	to := center + radius
	i0 := int(math.Floor(from))
	i1 := int(math.Ceil(to))
	if i1 <= 0 || i0 >= n {
		return 0, 0, 0, false
	}
	if i0 < 0 {
		i0 = 0
	}
	if i1 > n {
		i1 = n
	}
	for i := i0; i < i1; i++ {
		w := math.Min(float64(i+1), to) - math.Max(float64(i), from)
		if w <= 0 {
			continue
		}
		if w > 1 {
			w = 1
		}
		l, m, h := env.At(i)
		low = math.Max(low, l*w)
		mid = math.Max(mid, m*w)
		high = math.Max(high, h*w)
	}
	return low, mid, high, true
}

func appendQuad(m *Mesh, band int, x int, y0, y1 float64, c Color) {
	bt := m.batch(band)
	base := uint16(len(bt.Vertices))
	x0, x1 := float32(x), float32(x+1)
	bt.Vertices = append(bt.Vertices,
		Vertex{X: x0, Y: float32(y0), R: c.R, G: c.G, B: c.B, A: c.A},
		Vertex{X: x1, Y: float32(y0), R: c.R, G: c.G, B: c.B, A: c.A},
		Vertex{X: x0, Y: float32(y1), R: c.R, G: c.G, B: c.B, A: c.A},
		Vertex{X: x1, Y: float32(y1), R: c.R, G: c.G, B: c.B, A: c.A},
	)
	bt.Indices = append(bt.Indices, base, base+1, base+2, base+1, base+3, base+2)
}

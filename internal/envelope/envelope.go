// Package envelope holds the pre-computed three-band amplitude data for a
// track's waveform: one low/mid/high value per fixed time-slice, plus the
// track duration. An Envelope is immutable once built and may be shared by
// any number of views.
package envelope

import (
	"github.com/pkg/errors"
)

// Envelope is the fixed-rate three-band amplitude data for one track.
// Index i corresponds to normalized track position i/Len().
type Envelope struct {
	low      []float64
	mid      []float64
	high     []float64
	duration float64
}

// New validates the band arrays and builds an Envelope. The three bands must
// have equal, non-zero length and the duration must be positive. Band values
// are clamped into [0, 1]; a slightly out-of-range peak is a routine encoding
// artifact, not a malformed envelope.
func New(low, mid, high []float64, duration float64) (*Envelope, error) {
	if len(low) == 0 {
		return nil, errors.New("envelope: empty band data")
	}
	if len(mid) != len(low) || len(high) != len(low) {
		return nil, errors.Errorf("envelope: mismatched band lengths low=%d mid=%d high=%d",
			len(low), len(mid), len(high))
	}
	if duration <= 0 {
		return nil, errors.Errorf("envelope: non-positive duration %v", duration)
	}
	return &Envelope{
		low:      clampBand(low),
		mid:      clampBand(mid),
		high:     clampBand(high),
		duration: duration,
	}, nil
}

func clampBand(src []float64) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	return out
}

// Len returns the number of time-slices per band.
func (e *Envelope) Len() int { return len(e.low) }

// Duration returns the track length in seconds.
func (e *Envelope) Duration() float64 { return e.duration }

// At returns the low, mid and high amplitudes of slice i.
// The index must be within [0, Len()).
func (e *Envelope) At(i int) (low, mid, high float64) {
	return e.low[i], e.mid[i], e.high[i]
}

package envelope

import (
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Band crossover frequencies. Everything below lowCrossoverHz is bass,
// everything above highCrossoverHz is treble, the rest is mids.
const (
	lowCrossoverHz  = 200.0
	highCrossoverHz = 2000.0
)

// defaultBars is the number of time-slices generated per track: enough for a
// ~2000px wide full-track view at 3px per bar.
const defaultBars = 666

// Generate builds a three-band envelope from mono PCM. The signal is split
// into fixed-size chunks, each chunk's spectrum is summed into low/mid/high
// energy, and all bands are normalized by the single loudest value so the
// relative loudness of the bands survives normalization.
func Generate(pcm []float64, sampleRate int) (*Envelope, error) {
	if len(pcm) == 0 {
		return nil, errors.New("envelope: no samples")
	}
	if sampleRate <= 0 {
		return nil, errors.Errorf("envelope: invalid sample rate %d", sampleRate)
	}

	samplesPerPeak := len(pcm) / defaultBars
	if samplesPerPeak < 1 {
		samplesPerPeak = 1
	}

	fft := fourier.NewFFT(samplesPerPeak)
	in := make([]float64, samplesPerPeak)
	coeffs := make([]complex128, samplesPerPeak/2+1)
	binHz := float64(sampleRate) / float64(samplesPerPeak)

	var low, mid, high []float64
	for start := 0; start < len(pcm); start += samplesPerPeak {
		end := start + samplesPerPeak
		if end > len(pcm) {
			end = len(pcm)
		}
		n := copy(in, pcm[start:end])
		// Zero-pad the final short chunk so one FFT plan serves all chunks.
		for i := n; i < len(in); i++ {
			in[i] = 0
		}
		fft.Coefficients(coeffs, in)

		var lo, md, hi float64
		for k := 1; k < len(coeffs); k++ { // skip DC
			m := cmplx.Abs(coeffs[k])
			switch f := float64(k) * binHz; {
			case f < lowCrossoverHz:
				lo += m
			case f < highCrossoverHz:
				md += m
			default:
				hi += m
			}
		}
		low = append(low, lo)
		mid = append(mid, md)
		high = append(high, hi)
	}

	peak := 0.0
	for _, band := range [][]float64{low, mid, high} {
		for _, v := range band {
			if v > peak {
				peak = v
			}
		}
	}
	if peak > 0 {
		for _, band := range [][]float64{low, mid, high} {
			for i := range band {
				band[i] /= peak
			}
		}
	}

	duration := float64(len(pcm)) / float64(sampleRate)
	return New(low, mid, high, duration)
}

// Package audioclock implements the wavedeck playback clock over a local
// audio file: beep owns the decode-and-play pipeline, the clock only reads
// the streamer position and requests seeks on it.
package audioclock

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	"github.com/wavedeck/wavedeck"
)

// Clock plays one audio file and reports its transport state.
type Clock struct {
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	format   beep.Format
	watchers []chan wavedeck.ClockEvent
	closed   bool
}

var _ wavedeck.Clock = (*Clock)(nil)

// Open decodes the file, initializes the speaker and starts the transport
// paused at position zero.
func Open(path string) (*Clock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "audioclock: open")
	}
	streamer, format, err := decode(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		streamer.Close()
		return nil, errors.Wrap(err, "audioclock: speaker init")
	}
	c := &Clock{
		streamer: streamer,
		ctrl:     &beep.Ctrl{Streamer: streamer, Paused: true},
		format:   format,
	}
	speaker.Play(c.ctrl)
	return c, nil
}

func decode(r io.ReadSeekCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, errors.Errorf("audioclock: unsupported format %q", ext)
	}
}

// Position returns the playback position in seconds.
func (c *Clock) Position() float64 {
	speaker.Lock()
	pos := c.streamer.Position()
	speaker.Unlock()
	return c.format.SampleRate.D(pos).Seconds()
}

// Duration returns the track length in seconds.
func (c *Clock) Duration() float64 {
	return c.format.SampleRate.D(c.streamer.Len()).Seconds()
}

// Playing reports whether the transport is advancing.
func (c *Clock) Playing() bool {
	speaker.Lock()
	playing := !c.ctrl.Paused && c.streamer.Position() < c.streamer.Len()
	speaker.Unlock()
	return playing
}

// Play resumes the transport.
func (c *Clock) Play() {
	speaker.Lock()
	c.ctrl.Paused = false
	speaker.Unlock()
}

// Pause halts the transport without losing position.
func (c *Clock) Pause() {
	speaker.Lock()
	c.ctrl.Paused = true
	speaker.Unlock()
}

// Seek jumps to the given time, clamped to the track bounds, and emits a
// position-change event so paused observers notice the jump.
func (c *Clock) Seek(seconds float64) {
	d := c.Duration()
	if seconds < 0 {
		seconds = 0
	}
	if seconds > d {
		seconds = d
	}
	n := c.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if max := c.streamer.Len() - 1; n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	speaker.Lock()
	err := c.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return
	}
	for _, w := range c.watchers {
		select {
		case w <- wavedeck.ClockEvent{Position: seconds}:
		default:
		}
	}
}

// Watch returns a fresh position-change channel. Each watcher gets its own
// channel so several views of the same clock all see every seek.
func (c *Clock) Watch() <-chan wavedeck.ClockEvent {
	w := make(chan wavedeck.ClockEvent, 16)
	c.watchers = append(c.watchers, w)
	return w
}

// Close stops playback and releases the decoder.
func (c *Clock) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	speaker.Clear()
	return c.streamer.Close()
}

// DecodePCM decodes an entire file to mono float64 samples for envelope
// generation. It opens its own reader so it never disturbs a playing clock.
func DecodePCM(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "audioclock: open")
	}
	streamer, format, err := decode(f, path)
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	defer streamer.Close()

	var out []float64
	buf := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(buf)
		for _, s := range buf[:n] {
			out = append(out, (s[0]+s[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "audioclock: decode")
	}
	return out, int(format.SampleRate), nil
}

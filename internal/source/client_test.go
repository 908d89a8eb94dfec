package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/waveforms/7" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestWaveformFetch(t *testing.T) {
	c := serve(t, http.StatusOK, `{
		"data": {
			"duration": 120.5,
			"cue_point_time": 32.25,
			"bands": {
				"low":  [0.1, 0.9, 0.3],
				"mid":  [0.2, 0.5, 0.4],
				"high": [0.0, 0.3, 0.8]
			}
		}
	}`)

	env, cue, err := c.Waveform(context.Background(), 7)
	if err != nil {
		t.Fatalf("waveform: %v", err)
	}
	if env.Len() != 3 {
		t.Errorf("len = %d, want 3", env.Len())
	}
	if env.Duration() != 120.5 {
		t.Errorf("duration = %v, want 120.5", env.Duration())
	}
	if cue == nil || *cue != 32.25 {
		t.Errorf("cue = %v, want 32.25", cue)
	}
	if low, mid, high := env.At(1); low != 0.9 || mid != 0.5 || high != 0.3 {
		t.Errorf("At(1) = %v, %v, %v", low, mid, high)
	}
}

func TestWaveformNilCue(t *testing.T) {
	c := serve(t, http.StatusOK, `{
		"data": {
			"duration": 10,
			"cue_point_time": null,
			"bands": {"low": [0.1], "mid": [0.2], "high": [0.3]}
		}
	}`)
	_, cue, err := c.Waveform(context.Background(), 7)
	if err != nil {
		t.Fatalf("waveform: %v", err)
	}
	if cue != nil {
		t.Errorf("cue = %v, want nil", *cue)
	}
}

func TestWaveformMalformedBands(t *testing.T) {
	c := serve(t, http.StatusOK, `{
		"data": {
			"duration": 10,
			"bands": {"low": [0.1, 0.2], "mid": [0.2], "high": [0.3]}
		}
	}`)
	if _, _, err := c.Waveform(context.Background(), 7); err == nil {
		t.Fatal("mismatched band lengths accepted")
	}
}

func TestWaveformNotFound(t *testing.T) {
	c := serve(t, http.StatusNotFound, `{"detail": "Track not found"}`)
	_, _, err := c.Waveform(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestWaveformPending(t *testing.T) {
	c := serve(t, http.StatusAccepted, ``)
	_, _, err := c.Waveform(context.Background(), 7)
	if !errors.Is(err, ErrPending) {
		t.Fatalf("err = %v, want ErrPending", err)
	}
}

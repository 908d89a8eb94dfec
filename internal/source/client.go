// Package source fetches pre-computed waveform envelopes from the library
// backend. The backend serves three equal-length band arrays plus the track
// duration and an optional cue point; generation happens server-side in a
// background worker, so a fresh track may legitimately not have its waveform
// yet.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wavedeck/wavedeck/internal/envelope"
)

var (
	// ErrNotFound means the track does not exist on the backend.
	ErrNotFound = errors.New("source: track not found")
	// ErrPending means the backend has not finished generating the
	// waveform yet; retrying later is the caller's decision.
	ErrPending = errors.New("source: waveform generation pending")
)

// Client talks to the waveform endpoint of the library backend.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient builds a client for the given base URL.
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

type waveformResponse struct {
	Data struct {
		Duration     float64  `json:"duration"`
		CuePointTime *float64 `json:"cue_point_time"`
		Bands        struct {
			Low  []float64 `json:"low"`
			Mid  []float64 `json:"mid"`
			High []float64 `json:"high"`
		} `json:"bands"`
	} `json:"data"`
}

// Waveform fetches and validates the envelope for a track. The cue point is
// nil when the track has none. A malformed payload never reaches the caller
// as a partial envelope; it is an error.
func (c *Client) Waveform(ctx context.Context, trackID int) (*envelope.Envelope, *float64, error) {
	url := fmt.Sprintf("%s/waveforms/%d", c.base, trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "source: build request")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "source: fetch waveform for track %d", trackID)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil, ErrNotFound
	case http.StatusAccepted:
		return nil, nil, ErrPending
	default:
		return nil, nil, errors.Errorf("source: unexpected status %s for track %d", resp.Status, trackID)
	}

	var payload waveformResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil, errors.Wrapf(err, "source: decode waveform for track %d", trackID)
	}
	env, err := envelope.New(
		payload.Data.Bands.Low,
		payload.Data.Bands.Mid,
		payload.Data.Bands.High,
		payload.Data.Duration,
	)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "source: invalid waveform for track %d", trackID)
	}
	return env, payload.Data.CuePointTime, nil
}

package wavedeck

// ClockEvent is a discrete position-change notification from the playback
// clock, emitted on seeks. A paused view has no playing branch advancing it,
// so these events are the only way it learns about externally-driven seeks.
type ClockEvent struct {
	// Position is the new playback position in seconds.
	Position float64
}

// Clock is the external playback transport the view synchronizes to. The
// view never owns audio decode or playback; it only reads the position and
// requests seeks. Implementations clamp out-of-range seek times silently.
type Clock interface {
	// Position returns the current playback position in seconds.
	Position() float64

	// Duration returns the track length in seconds.
	Duration() float64

	// Playing reports whether the transport is currently advancing.
	Playing() bool

	// Seek requests a jump to the given time in seconds.
	Seek(seconds float64)

	Play()
	Pause()

	// Watch returns a channel of discrete position changes. The view
	// drains it every frame; implementations must not block on send.
	Watch() <-chan ClockEvent
}

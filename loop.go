package wavedeck

// loopState is the render loop's explicit state machine. The host's frame
// loop supplies the per-frame callback; the state gates whether a tick does
// any work, so teardown is one deterministic transition instead of a race
// against in-flight callbacks.
type loopState int

const (
	loopIdle loopState = iota
	loopRunning
	loopDisposed
)

// Start transitions the view to running and subscribes to the clock's
// discrete position changes. Starting a running or disposed view is a no-op.
func (v *View) Start() {
	if v.state != loopIdle {
		return
	}
	if v.events == nil {
		v.events = v.clock.Watch()
	}
	v.state = loopRunning
}

// Stop transitions the view back to idle. No further ticks or draws take
// effect until Start is called again.
func (v *View) Stop() {
	if v.state == loopRunning {
		v.state = loopIdle
	}
}

// Running reports whether the view is participating in the frame loop.
func (v *View) Running() bool { return v.state == loopRunning }

// Tick is the per-frame driver, called once per host frame. It drains
// pending clock events, follows the clock while it is playing, and
// recomputes the display window so the subsequent Draw never reads stale
// state. The draw itself always happens, playing or paused, so drag-driven
// updates repaint too.
func (v *View) Tick() {
	if v.state != loopRunning {
		return
	}
	v.drainClock()
	if !v.dragging && v.clock.Playing() {
		if d := v.clock.Duration(); d > 0 {
			v.playPos = clamp01(v.clock.Position() / d)
		}
	}
	v.win = v.policy.Window(v.playPos, v.zoom)
}

// drainClock applies queued position-change events. While paused the playing
// branch in Tick never runs, so seeks made elsewhere reach the view only
// through these events.
func (v *View) drainClock() {
	for {
		select {
		case ev, ok := <-v.events:
			if !ok {
				v.events = nil
				return
			}
			if v.dragging {
				continue
			}
			if d := v.clock.Duration(); d > 0 {
				v.playPos = clamp01(ev.Position / d)
			}
		default:
			return
		}
	}
}

// Close disposes the view: the loop stops, the clock subscription is
// abandoned, and the drawing surface is released. Any render, resize or
// input call after Close is a no-op; frame callbacks already in flight must
// not touch the released surface.
func (v *View) Close() {
	if v.state == loopDisposed {
		return
	}
	v.state = loopDisposed
	v.events = nil
	if v.renderer != nil {
		v.renderer.Dispose()
	}
}

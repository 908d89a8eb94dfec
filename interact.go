package wavedeck

// zoomStep is the zoom multiplier applied per wheel tick.
const zoomStep = 1.2

// dragThresholdPx is how far the pointer must travel, in device pixels,
// before a press becomes a drag instead of a click.
const dragThresholdPx = 3

// Wheel applies one zoom step per wheel tick: zoom in for positive dy, out
// for negative, clamped to the configured range. Minimap views ignore it.
func (v *View) Wheel(dy float64) {
	if v.state == loopDisposed || v.minimap || dy == 0 {
		return
	}
	if dy > 0 {
		v.zoom *= zoomStep
	} else {
		v.zoom /= zoomStep
	}
	v.zoom = clampF(v.zoom, v.minZoom, v.maxZoom)
	v.win = v.policy.Window(v.playPos, v.zoom)
}

// PointerDown begins a gesture at device-pixel x within the view.
func (v *View) PointerDown(x, y int) {
	if v.state == loopDisposed || v.width <= 0 {
		return
	}
	v.pressed = true
	v.pressX = x
	v.dragPx = 0
}

// PointerMove continues a gesture. Once the pointer travels past the drag
// threshold the press becomes a scrub: playback pauses so the live clock
// cannot fight the user's pointer, and the accumulated pixel delta is
// applied as a purely visual offset until release. Minimap views do not
// scrub.
func (v *View) PointerMove(x, y int) {
	if v.state == loopDisposed || !v.pressed || v.minimap {
		return
	}
	dx := x - v.pressX
	if !v.dragging {
		if dx > -dragThresholdPx && dx < dragThresholdPx {
			return
		}
		v.dragging = true
		v.dragWasPlaying = v.clock.Playing()
		if v.dragWasPlaying {
			v.clock.Pause()
		}
		// Deltas convert through the window captured here, not the live
		// one, so the conversion cannot feed back into itself.
		v.dragWin = v.win
	}
	v.dragPx = float64(dx)
}

// PointerUp ends the gesture. A press that never became a drag is a
// click-to-seek at the release column. A drag commits its pixel offset into
// the play position, seeks the clock there, and restores the pre-drag
// playing state. The host must deliver the release even when the pointer has
// left the view, so a drag can never get stuck.
func (v *View) PointerUp(x, y int) {
	if v.state == loopDisposed || !v.pressed {
		return
	}
	v.pressed = false
	if !v.dragging {
		v.seekToColumn(x)
		return
	}
	v.dragging = false
	v.dragPx = 0
	dx := float64(x - v.pressX)
	// Dragging right moves the window back in time.
	delta := -dx / float64(v.width) * v.dragWin.Width()
	v.playPos = clamp01(v.playPos + delta)
	v.win = v.policy.Window(v.playPos, v.zoom)
	v.clock.Seek(v.playPos * v.env.Duration())
	if v.dragWasPlaying {
		v.clock.Play()
	}
	v.dragWasPlaying = false
}

// seekToColumn maps a canvas column through the current display window to a
// track time and requests the seek. The time clamps to the track bounds.
func (v *View) seekToColumn(x int) {
	fx := float64(x) / float64(v.width)
	v.playPos = clamp01(v.win.First + fx*v.win.Width())
	v.win = v.policy.Window(v.playPos, v.zoom)
	v.clock.Seek(v.playPos * v.env.Duration())
}

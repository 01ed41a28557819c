// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
	"github.com/inputcore/dispatch/window"
)

// findTargetsLocked resolves the consumer(s) for e. It returns
// ok=false when target selection must wait on a window or
// application that is not yet ready to receive input; the caller
// (dispatch_once.go) re-drives the same pending event on the next
// iteration once anrState reports the wait resolved or timed out.
func (d *Dispatcher) findTargetsLocked(e event.Event, now int64) (ok bool) {
	d.startFindingTargetsLocked()

	switch ev := e.(type) {
	case *key.Event:
		return d.findKeyTargetsLocked(ev, now)
	case *motion.Event:
		return d.findMotionTargetsLocked(ev, now)
	case *event.ConfigChanged:
		return d.findBroadcastTargetsLocked(now)
	default:
		return false
	}
}

// findKeyTargetsLocked routes keys to the focused window, waiting for
// one (and for its owning application)
// to become ready if necessary.
func (d *Dispatcher) findKeyTargetsLocked(e *key.Event, now int64) bool {
	idx, waiting := d.selectFocusedWindowLocked(now)
	if waiting != waitNone {
		return false
	}
	if idx < 0 {
		if d.focusedApp == nil {
			// Neither a focused window nor a focused application:
			// nothing to wait on, so the event is dropped.
			d.resolveInjectionResultLocked(e, event.ResultFailed)
			d.finishFindingTargetsLocked(-1, e.Kind())
			return true
		}
		return false
	}
	d.finishFindingTargetsLocked(idx, e.Kind())
	d.addWindowTargetLocked(idx, TargetSync, 0, 0)
	d.appendMonitorTargetsLocked()
	return true
}

// findMotionTargetsLocked: DOWN picks (and locks in) the touched
// window via hit-testing; every other action on
// an active stream continues to the same window regardless of where
// the pointer has since moved.
func (d *Dispatcher) findMotionTargetsLocked(e *motion.Event, now int64) bool {
	if !e.Src.IsPointer() {
		idx, waiting := d.selectFocusedWindowLocked(now)
		if waiting == waitNone && idx < 0 && d.focusedApp == nil {
			d.resolveInjectionResultLocked(e, event.ResultFailed)
			d.finishFindingTargetsLocked(-1, e.Kind())
			return true
		}
		if waiting != waitNone || idx < 0 {
			return false
		}
		d.finishFindingTargetsLocked(idx, e.Kind())
		d.addWindowTargetLocked(idx, TargetSync, 0, 0)
		d.appendMonitorTargetsLocked()
		return true
	}

	coords := e.First().Coords[0]

	switch e.Action {
	case motion.ActionDown:
		idx, waiting := d.selectTouchedWindowLocked(coords.X, coords.Y, now)
		if waiting != waitNone {
			return false
		}
		if idx < 0 {
			// No window wants the DOWN; drop, not an ANR condition.
			d.finishFindingTargetsLocked(-1, e.Kind())
			return true
		}
		d.touch.down = true
		d.touch.windowIdx = idx
		d.touch.obscured = d.isWindowObscuredLocked(idx)
		d.touch.wallpaperChannels = d.wallpaperChannelNamesLocked()
		d.finishFindingTargetsLocked(idx, e.Kind())
		flags := TargetSync
		if d.touch.obscured {
			flags |= TargetWindowObscured
		}
		d.addWindowTargetLocked(idx, flags, 0, 0)
		for _, out := range d.collectOutsideTouchTargetsLocked() {
			outFlags := TargetOutside
			if out.obscured {
				outFlags |= TargetWindowObscured
			}
			d.addWindowTargetLocked(out.idx, outFlags, 0, 0)
		}
		d.addWallpaperTargetsLocked()
		d.appendMonitorTargetsLocked()
		return true

	case motion.ActionUp, motion.ActionCancel:
		idx := d.touch.windowIdx
		if !d.touch.hasWindow() {
			d.finishFindingTargetsLocked(-1, e.Kind())
			return true
		}
		flags := TargetSync
		if e.Action == motion.ActionCancel {
			flags |= TargetCancel
		}
		if d.touch.obscured {
			flags |= TargetWindowObscured
		}
		d.finishFindingTargetsLocked(idx, e.Kind())
		d.addWindowTargetLocked(idx, flags, 0, 0)
		d.addWallpaperTargetsLocked()
		d.appendMonitorTargetsLocked()
		d.touch.clear()
		return true

	default: // MOVE
		if !d.touch.hasWindow() {
			d.finishFindingTargetsLocked(-1, e.Kind())
			return true
		}
		idx := d.touch.windowIdx
		flags := TargetSync
		if d.touch.obscured {
			flags |= TargetWindowObscured
		}
		d.finishFindingTargetsLocked(idx, e.Kind())
		d.addWindowTargetLocked(idx, flags, 0, 0)
		d.addWallpaperTargetsLocked()
		d.appendMonitorTargetsLocked()
		return true
	}
}

// findBroadcastTargetsLocked sends configuration-changed events to
// every registered connection.
func (d *Dispatcher) findBroadcastTargetsLocked(now int64) bool {
	d.finishFindingTargetsLocked(-1, event.KindConfigChanged)
	for i := range d.windows {
		d.addWindowTargetLocked(i, 0, 0, 0)
	}
	return true
}

// selectFocusedWindowLocked: if a focused window exists, use it
// unless it is paused, in which case target selection waits against
// it; otherwise wait on the focused application (if any) via
// anrState, per the window-manager contract that a brief focus gap
// during an app switch should not itself ANR.
func (d *Dispatcher) selectFocusedWindowLocked(now int64) (idx int, waiting waitCause) {
	if d.focusedWindowIdx >= 0 && d.focusedWindowIdx < len(d.windows) {
		w := &d.windows[d.focusedWindowIdx]
		if w.IsPaused() {
			d.beginWaitForWindowLocked(w, now)
			return -1, waitApplicationNotReady
		}
		return d.focusedWindowIdx, waitNone
	}
	if d.focusedApp == nil {
		return -1, waitNone
	}
	if d.hasAppSwitchDue && time.Now().Before(d.appSwitchDueTime) {
		return -1, waitNone
	}
	d.beginWaitForApplicationLocked(d.focusedApp.Handle, now)
	return -1, waitApplicationNotReady
}

// selectTouchedWindowLocked hit-tests windows front-to-back (index 0
// is frontmost): it remembers the first SYSTEM_ERROR window seen along
// the way, then separately finds the first touchable window containing
// (x, y), honoring touch-modal windows that claim the whole frame
// rather than only their touchable region. A top error window
// different from the hit window blocks target selection outright; a
// paused hit window blocks it too, rather than falling through to
// whatever touchable window sits underneath.
func (d *Dispatcher) selectTouchedWindowLocked(x, y float32, now int64) (idx int, waiting waitCause) {
	topErrorIdx := -1
	hitIdx := -1
	for i := range d.windows {
		w := &d.windows[i]
		if topErrorIdx < 0 && w.IsSystemError() {
			topErrorIdx = i
		}
		if hitIdx >= 0 || w.Monitor || !w.IsVisible() || !w.IsTouchable() {
			continue
		}
		region := w.TouchableRegion
		if w.IsTouchModal() {
			region = w.Frame
		}
		if region.Contains(x, y) {
			hitIdx = i
		}
	}

	if topErrorIdx >= 0 && topErrorIdx != hitIdx {
		d.beginWaitForSystemLocked(now)
		return -1, waitSystemNotReady
	}
	if hitIdx < 0 {
		if d.focusedApp == nil {
			return -1, waitNone
		}
		d.beginWaitForApplicationLocked(d.focusedApp.Handle, now)
		return -1, waitApplicationNotReady
	}
	if d.windows[hitIdx].IsPaused() {
		d.beginWaitForWindowLocked(&d.windows[hitIdx], now)
		return -1, waitApplicationNotReady
	}
	return hitIdx, waitNone
}

// outsideWindowTarget is one visible, not-touchable window watching
// outside touches, collected at DOWN time alongside the hit window.
type outsideWindowTarget struct {
	idx      int
	obscured bool
}

// collectOutsideTouchTargetsLocked gathers every visible, not-touchable
// window with WATCH_OUTSIDE_TOUCH set: a DOWN fans out to these as
// additional "outside" targets distinct from the window actually hit.
func (d *Dispatcher) collectOutsideTouchTargetsLocked() []outsideWindowTarget {
	var targets []outsideWindowTarget
	for i := range d.windows {
		w := &d.windows[i]
		if w.Monitor || !w.IsVisible() || w.IsTouchable() || !w.WatchesOutsideTouch() {
			continue
		}
		targets = append(targets, outsideWindowTarget{idx: i, obscured: d.isWindowObscuredLocked(i)})
	}
	return targets
}

// isWindowObscuredLocked reports whether any other visible, touchable
// window in front of idx overlaps its frame and belongs to a
// different application. Windows sharing an application handle never
// obscure each other (a dialog obscuring its own parent is not a
// tap-jacking risk).
func (d *Dispatcher) isWindowObscuredLocked(idx int) bool {
	target := &d.windows[idx]
	frame, visible := target.VisibleFrame()
	if !visible {
		return false
	}
	for i := 0; i < idx; i++ {
		other := &d.windows[i]
		if other.Monitor || !other.IsVisible() {
			continue
		}
		of, ok := other.VisibleFrame()
		if !ok || !of.Intersects(frame) {
			continue
		}
		if other.ApplicationHandle == target.ApplicationHandle {
			continue
		}
		return true
	}
	return false
}

// wallpaperChannelNamesLocked snapshots every window with
// HasWallpaper set: a touch stream's wallpaper windows are fixed at
// DOWN time.
func (d *Dispatcher) wallpaperChannelNamesLocked() []window.ChannelName {
	var names []window.ChannelName
	for i := range d.windows {
		if d.windows[i].HasWallpaper() {
			names = append(names, d.windows[i].Channel)
		}
	}
	return names
}

// addWindowTargetLocked appends a target entry for d.windows[idx],
// computing the offset that converts screen coordinates into the
// window's local space.
func (d *Dispatcher) addWindowTargetLocked(idx int, flags TargetFlags, xOffset, yOffset float32) {
	if idx < 0 || idx >= len(d.windows) {
		return
	}
	w := &d.windows[idx]
	conn := d.connections[w.Channel]
	if conn == nil {
		return
	}
	timeout := w.DispatchingTimeout
	if timeout <= 0 {
		timeout = DefaultDispatchingTimeout
	}
	d.targets.entries = append(d.targets.entries, targetEntry{
		conn:    conn,
		flags:   flags,
		xOffset: xOffset - float32(w.Frame.Left),
		yOffset: yOffset - float32(w.Frame.Top),
		timeout: timeout,
	})
}

// addWallpaperTargetsLocked adds the touch session's snapshotted
// wallpaper windows as TargetOutside-less additional recipients.
func (d *Dispatcher) addWallpaperTargetsLocked() {
	if len(d.touch.wallpaperChannels) == 0 {
		return
	}
	for _, name := range d.touch.wallpaperChannels {
		conn := d.connections[name]
		if conn == nil {
			continue
		}
		for i := range d.windows {
			if d.windows[i].Channel == name {
				d.addWindowTargetLocked(i, 0, 0, 0)
				break
			}
		}
	}
}

// appendMonitorTargetsLocked adds every registered monitor channel as
// an additional recipient of the current event.
func (d *Dispatcher) appendMonitorTargetsLocked() {
	for i := range d.windows {
		if d.windows[i].Monitor {
			d.addWindowTargetLocked(i, 0, 0, 0)
		}
	}
}

func (d *Dispatcher) beginWaitForApplicationLocked(app window.ApplicationHandle, now int64) {
	d.anr.cause = waitApplicationNotReady
	d.anr.app = app
	d.anr.hasApp = true
	d.anr.timeout = d.waitTimeoutLocked(nil)
	d.anr.startTime = time.Unix(0, now)
	d.anr.hasTimeout = false
	d.anr.expired = false
}

// beginWaitForWindowLocked begins an application-not-ready wait
// against a window that exists but cannot receive input yet (paused):
// escalation goes to the window's own application, if it has one.
func (d *Dispatcher) beginWaitForWindowLocked(w *window.InputWindow, now int64) {
	d.anr.cause = waitApplicationNotReady
	if w.ApplicationHandle != nil {
		d.anr.app = w.ApplicationHandle
		d.anr.hasApp = true
	} else {
		d.anr.hasApp = false
	}
	d.anr.timeout = d.waitTimeoutLocked(w)
	d.anr.startTime = time.Unix(0, now)
	d.anr.hasTimeout = false
	d.anr.expired = false
}

// beginWaitForSystemLocked begins a system-not-ready wait with no
// application or window to escalate to (e.g. a top error window
// blocking touch target selection): it waits indefinitely.
func (d *Dispatcher) beginWaitForSystemLocked(now int64) {
	d.anr.cause = waitSystemNotReady
	d.anr.hasApp = false
	d.anr.startTime = time.Unix(0, now)
	d.anr.hasTimeout = false
	d.anr.expired = false
}

// waitTimeoutLocked resolves the escalation deadline for a wait: the
// window's own timeout if it has one, else the focused application's,
// else the default.
func (d *Dispatcher) waitTimeoutLocked(w *window.InputWindow) time.Duration {
	if w != nil && w.DispatchingTimeout > 0 {
		return w.DispatchingTimeout
	}
	if d.focusedApp != nil && d.focusedApp.DispatchingTimeout > 0 {
		return d.focusedApp.DispatchingTimeout
	}
	return DefaultDispatchingTimeout
}

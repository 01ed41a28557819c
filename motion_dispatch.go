// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/motion"
	"github.com/inputcore/dispatch/policy"
)

// processMotionEventLocked performs classification, throttling, touch
// tracking and delivery for one motion event
// popped from the inbound queue. aloneInQueue is passed through from
// dispatch_once so the throttle predicate can see the queue depth it
// was computed against.
func (d *Dispatcher) processMotionEventLocked(e *motion.Event, now int64, aloneInQueue bool) bool {
	if e.Src.IsPointer() && d.shouldThrottleMoveLocked(e, aloneInQueue) {
		if d.mergeIntoInFlightMoveLocked(e) {
			releaseEvent(e)
			return true
		}
	}

	if !d.findTargetsLocked(e, now) {
		return false
	}

	d.deliverToTargetsLocked(e, now)

	mem := MotionMemento{
		DeviceID:     e.DeviceID,
		Source:       uint32(e.Src),
		XPrecision:   e.XPrecision,
		YPrecision:   e.YPrecision,
		DownTime:     e.DownTime,
		PointerCount: e.PointerCount,
		PointerIDs:   e.PointerIDs,
		Coords:       e.First().Coords,
	}
	for _, t := range d.targets.entries {
		if t.flags&TargetCancel != 0 {
			continue
		}
		t.conn.InputState.trackMotion(mem, e.Action)
	}

	if e.Src.IsPointer() {
		d.recordDeliveredMoveLocked(e)
	}
	d.pokeUserActivityForMotionLocked(e, now)
	releaseEvent(e)
	return true
}

// mergeIntoInFlightMoveLocked appends e's sample onto the head entry
// of the window's queue already in flight for the same touched
// window, rather than enqueueing e as a new DispatchEntry. It reports
// whether a suitable in-flight entry was
// found; callers fall back to full dispatch when it was not (e.g. the
// connection's queue had already drained between the throttle check
// and this call).
func (d *Dispatcher) mergeIntoInFlightMoveLocked(e *motion.Event) bool {
	if !d.touch.hasWindow() {
		return false
	}
	idx := d.touch.windowIdx
	if idx < 0 || idx >= len(d.windows) {
		return false
	}
	conn := d.connections[d.windows[idx].Channel]
	if conn == nil {
		return false
	}
	head := conn.Outbound.head()
	if head == nil {
		return false
	}
	if _, ok := head.Event.(*motion.Event); !ok {
		return false
	}
	appendMotionSample(head.Event.(*motion.Event), e.First().EventTime, e.First().Coords)
	return true
}

// pokeUserActivityForMotionLocked classifies e's contribution to user
// activity: DOWN/UP on a pointer report TOUCH/TOUCH_UP, any other
// pointer action reports LONG_TOUCH while still within
// LongTouchThreshold of the stream's DownTime and TOUCH afterward, and
// any non-pointer motion (e.g. trackball) reports BUTTON regardless
// of action.
func (d *Dispatcher) pokeUserActivityForMotionLocked(e *motion.Event, now int64) {
	var act policy.UserActivityType
	switch {
	case !e.Src.IsPointer():
		act = policy.ActivityButton
	case e.Action == motion.ActionDown:
		act = policy.ActivityTouch
	case e.Action == motion.ActionUp:
		act = policy.ActivityTouchUp
	default:
		if time.Duration(now-e.DownTime) < LongTouchThreshold {
			act = policy.ActivityLongTouch
		} else {
			act = policy.ActivityTouch
		}
	}
	d.postCommandLocked(func(d *Dispatcher) {
		d.policy.PokeUserActivity(now, 0, act)
	})
}

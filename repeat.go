// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/key"
)

// trackKeyForRepeatLocked updates repeatState from a key event that
// just finished being dispatched to its target: a DOWN arms the
// repeat timer, an UP for the same device and key code (or any key
// from a different device, which implies the original is no longer
// the most recently pressed key) disarms it.
func (d *Dispatcher) trackKeyForRepeatLocked(e *key.Event, now int64) {
	if e.Flags&key.FlagCanceled != 0 {
		d.clearRepeatLocked()
		return
	}
	switch e.Action {
	case key.ActionDown:
		// A nonzero repeat_count here can only mean
		// adoptDriverRepeatLocked already took this DOWN over as a
		// continuation (our own synthesized repeats never reach this
		// point, since the caller skips tracking them): the driver is
		// supplying repeats for this key, so our synthesizer stays off.
		driverRepeat := e.RepeatCount != 0
		d.repeat.lastKey = &keyRepeatSource{
			deviceID:    e.DeviceID,
			source:      e.Source,
			keyCode:     int32(e.KeyCode),
			scanCode:    e.ScanCode,
			metaState:   e.MetaState,
			policyFlags: uint32(e.PolicyFlags),
			downTime:    e.DownTime,
			repeatCount: e.RepeatCount,
		}
		if driverRepeat {
			d.repeat.hasNextRepeat = false
		} else {
			d.armRepeatTimerLocked(now, d.cachedKeyRepeatTimeout)
		}
	case key.ActionUp:
		last := d.repeat.lastKey
		if last != nil && (last.deviceID != e.DeviceID || last.keyCode == int32(e.KeyCode)) {
			d.clearRepeatLocked()
		}
	}
}

func (d *Dispatcher) armRepeatTimerLocked(now int64, delay time.Duration) {
	if d.cachedKeyRepeatTimeout < 0 {
		// A negative timeout means repeats are disabled outright:
		// arming against it would otherwise schedule a repeat in the
		// past, firing continuously instead of never.
		d.clearRepeatLocked()
		return
	}
	if delay <= 0 {
		delay = d.cachedKeyRepeatTimeout
	}
	d.repeat.nextRepeatTime = time.Unix(0, now).Add(delay)
	d.repeat.hasNextRepeat = true
}

func (d *Dispatcher) clearRepeatLocked() {
	d.repeat.lastKey = nil
	d.repeat.hasNextRepeat = false
}

// repeatDueLocked reports whether a repeat key event should be
// synthesized now, and if so returns it. The returned event's ref
// count is already 1 and it has not been enqueued anywhere; the
// caller is responsible for pushing it onto the inbound queue.
func (d *Dispatcher) repeatDueLocked(now int64) *key.Event {
	if d.repeat.lastKey == nil || !d.repeat.hasNextRepeat {
		return nil
	}
	if time.Unix(0, now).Before(d.repeat.nextRepeatTime) {
		return nil
	}
	src := d.repeat.lastKey
	src.repeatCount++

	var e *key.Event
	if src.lastEvent != nil && src.lastEvent.RefCount() == 1 {
		// Sole remaining reference: mutate in place rather than
		// reallocate.
		e = src.lastEvent
		e.Head().Init(now)
	} else {
		e = obtainKeyEvent(now)
	}
	e.DeviceID = src.deviceID
	e.Source = src.source
	e.PolicyFlags = key.PolicyFlags(src.policyFlags)
	e.Action = key.ActionDown
	e.Flags = 0
	e.KeyCode = key.Code(src.keyCode)
	e.ScanCode = src.scanCode
	e.MetaState = src.metaState
	e.RepeatCount = src.repeatCount
	e.DownTime = src.downTime
	e.SyntheticRepeat = true
	src.lastEvent = e

	d.armRepeatTimerLocked(now, d.cachedKeyRepeatDelay)
	return e
}

// nextRepeatDeadlineLocked reports the time the looper should wake up
// for key repeat, used by dispatch_once to compute its Wait timeout.
func (d *Dispatcher) nextRepeatDeadlineLocked() (time.Time, bool) {
	return d.repeat.nextRepeatTime, d.repeat.hasNextRepeat
}

// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/policy"
)

// processKeyEventLocked routes and delivers one key event. It
// returns false only when target selection must wait (the caller
// leaves e as the pending event and retries on the next dispatch_once
// iteration).
func (d *Dispatcher) processKeyEventLocked(e *key.Event, now int64) bool {
	if d.checkAppSwitchKeyLocked(e, now) {
		return true
	}

	d.adoptDriverRepeatLocked(e)

	if !d.findTargetsLocked(e, now) {
		return false
	}
	if d.targets.primaryWindowIdx < 0 {
		releaseEvent(e)
		return true
	}

	consumed, ready := d.interceptKeyLocked(e)
	if !ready {
		return false
	}
	if consumed {
		d.pokeUserActivityLocked(e, now)
		releaseEvent(e)
		return true
	}

	d.deliverToTargetsLocked(e, now)
	for _, t := range d.targets.entries {
		if t.flags&TargetCancel != 0 {
			continue
		}
		t.conn.InputState.trackKey(e.DeviceID, e.Source, int32(e.KeyCode), e.ScanCode, e.DownTime, e.Action, e.Flags)
	}
	if !e.SyntheticRepeat {
		d.trackKeyForRepeatLocked(e, now)
	}
	if e.Action == key.ActionUp && isAppSwitchKey(e.KeyCode) {
		d.armAppSwitchLocked(now)
	}
	d.pokeUserActivityLocked(e, now)
	releaseEvent(e)
	return true
}

// interceptKeyLocked asks Policy whether e should be consumed before
// dispatch. The call runs from a deferred command with the lock
// released, never inline: on the first attempt for e it posts the
// command and reports ready=false, so the caller leaves e pending and
// retries on the next DispatchOnce iteration (re-resolving target
// selection from scratch, since nothing about the window list is
// cached across the wait). Once the command's answer lands it reports
// ready=true together with the verdict.
func (d *Dispatcher) interceptKeyLocked(e *key.Event) (consumed, ready bool) {
	if d.intercept.ready && d.intercept.forEvent == e {
		consumed = d.intercept.result
		d.intercept = interceptState{}
		return consumed, true
	}
	if d.intercept.inFlight && d.intercept.forEvent == e {
		return false, false
	}
	if d.targets.primaryWindowIdx < 0 || d.targets.primaryWindowIdx >= len(d.windows) {
		return false, true
	}
	cc := d.connections[d.windows[d.targets.primaryWindowIdx].Channel]
	if cc == nil {
		return false, true
	}
	ch := cc.Channel
	policyFlags := uint32(e.PolicyFlags)
	d.intercept = interceptState{inFlight: true, forEvent: e}
	d.postCommandLocked(func(d *Dispatcher) {
		verdict := d.policy.InterceptKeyBeforeDispatching(ch, e, policyFlags)
		d.lock()
		defer d.unlock()
		if d.intercept.forEvent != e {
			return // superseded or dropped while the call was outstanding
		}
		if kp, ok := d.pending.(*key.Event); !ok || kp != e {
			d.intercept = interceptState{}
			return
		}
		d.intercept.ready = true
		d.intercept.result = verdict
	})
	return false, false
}

// adoptDriverRepeatLocked recognizes a DOWN that is really the driver
// generating its own key repeat rather than a fresh press: same
// device and key code as the most recently tracked DOWN, not
// injected, and still carrying repeat_count zero. When that happens
// the event's repeat_count is corrected to continue the existing
// count before it reaches target selection, and the synthesizer is
// disabled for this key since the driver is now the one producing
// repeats.
func (d *Dispatcher) adoptDriverRepeatLocked(e *key.Event) {
	if e.Action != key.ActionDown || e.RepeatCount != 0 {
		return
	}
	if e.PolicyFlags&key.PolicyFlagInjected != 0 {
		return
	}
	prev := d.repeat.lastKey
	if prev == nil || prev.deviceID != e.DeviceID || prev.keyCode != int32(e.KeyCode) {
		return
	}
	e.RepeatCount = prev.repeatCount + 1
	d.repeat.hasNextRepeat = false
}

func (d *Dispatcher) pokeUserActivityLocked(e *key.Event, now int64) {
	act := policy.ActivityButton
	d.postCommandLocked(func(d *Dispatcher) {
		d.policy.PokeUserActivity(now, 0, act)
	})
}

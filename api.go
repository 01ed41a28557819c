// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"fmt"
	"time"

	"github.com/inputcore/dispatch/channel"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
	"github.com/inputcore/dispatch/window"
)

// NotifyKey enqueues a key event from an input device. The returned
// event's lifetime belongs to the dispatcher from this call onward;
// callers must not touch fields on it afterward.
func (d *Dispatcher) NotifyKey(now int64, deviceID int32, source uint32, policyFlags key.PolicyFlags, action key.Action, flags key.Flags, keyCode key.Code, scanCode, metaState int32, downTime int64) {
	e := obtainKeyEvent(now)
	e.DeviceID = deviceID
	e.Source = source
	e.PolicyFlags = policyFlags
	e.Action = action
	e.Flags = flags
	e.KeyCode = keyCode
	e.ScanCode = scanCode
	e.MetaState = uint32(metaState)
	e.DownTime = downTime

	d.lock()
	d.inbound.pushBack(e)
	d.unlock()
	d.wake()
}

// NotifyMotion enqueues a motion event carrying a single sample. A
// non-injected MOVE that matches the device, source, and pointer
// count of whatever MOVE is already waiting at the back of the
// inbound queue is instead folded into it as an extra sample: the
// dispatcher still only ever sees one event per gesture segment, with
// every intermediate sample preserved for velocity tracking, rather
// than a storm of single-sample events when an input device reports
// faster than the consumer can keep up with.
func (d *Dispatcher) NotifyMotion(now int64, deviceID int32, src motion.Source, policyFlags motion.PolicyFlags, action motion.Action, flags motion.Flags, metaState uint32, edgeFlags uint32, xPrecision, yPrecision float32, downTime int64, pointerCount int32, pointerIDs [motion.MaxPointers]int32, coords [motion.MaxPointers]motion.PointerCoords) {
	d.lock()
	if action == motion.ActionMove && policyFlags&motion.PolicyFlagInjected == 0 {
		if tail, ok := d.inbound.tail().(*motion.Event); ok && motionBatchCompatibleLocked(tail, deviceID, src, pointerCount) {
			appendMotionSample(tail, now, coords)
			d.unlock()
			d.wake()
			return
		}
	}

	e := obtainMotionEvent(now, coords)
	e.DeviceID = deviceID
	e.Src = src
	e.PolicyFlags = policyFlags
	e.Action = action
	e.Flags = flags
	e.MetaState = metaState
	e.EdgeFlags = edgeFlags
	e.XPrecision = xPrecision
	e.YPrecision = yPrecision
	e.DownTime = downTime
	e.PointerCount = pointerCount
	e.PointerIDs = pointerIDs

	d.inbound.pushBack(e)
	d.unlock()
	d.wake()
}

// motionBatchCompatibleLocked reports whether tail is still sitting
// unprocessed in the inbound queue (so appending to it is safe) and
// matches the device, source, and pointer count of an incoming MOVE
// closely enough to absorb it as another sample.
func motionBatchCompatibleLocked(tail *motion.Event, deviceID int32, src motion.Source, pointerCount int32) bool {
	return tail.Action == motion.ActionMove &&
		tail.PolicyFlags&motion.PolicyFlagInjected == 0 &&
		tail.DeviceID == deviceID &&
		tail.Src == src &&
		tail.PointerCount == pointerCount
}

// NotifyConfigurationChanged enqueues a broadcast ConfigChanged event,
// delivered to every registered window.
func (d *Dispatcher) NotifyConfigurationChanged(now int64) {
	e := obtainConfigChangedEvent(now)
	d.lock()
	d.inbound.pushBack(e)
	d.unlock()
	d.wake()
}

// SetInputWindows replaces the window list used for target selection.
// Any touch session whose window is not present in the new list is
// dropped (synthesizing no cancellation on its own — the connection's
// next dispatch cycle will notice it is out of sync and synthesize as
// usual).
func (d *Dispatcher) SetInputWindows(windows []window.InputWindow) {
	defer d.wake()
	d.lock()
	defer d.unlock()

	var touchedName window.ChannelName
	hadTouch := d.touch.hasWindow()
	if hadTouch && d.touch.windowIdx < len(d.windows) {
		touchedName = d.windows[d.touch.windowIdx].Channel
	}
	var focusedName window.ChannelName
	hadFocus := d.focusedWindowIdx >= 0 && d.focusedWindowIdx < len(d.windows)
	if hadFocus {
		focusedName = d.windows[d.focusedWindowIdx].Channel
	}

	d.windows = windows

	d.focusedWindowIdx = -1
	if hadFocus {
		for i := range d.windows {
			if d.windows[i].Channel == focusedName {
				d.focusedWindowIdx = i
				break
			}
		}
	}

	if hadTouch {
		found := -1
		for i := range d.windows {
			if d.windows[i].Channel == touchedName {
				found = i
				break
			}
		}
		if found < 0 {
			d.touch.clear()
			for _, conn := range d.connections {
				conn.InputState.MarkOutOfSync()
			}
		} else {
			d.touch.windowIdx = found
		}
	}
}

// SetFocusedApplication sets the application consulted when no
// focused window is present yet.
func (d *Dispatcher) SetFocusedApplication(app *window.Application) {
	d.lock()
	d.focusedApp = app
	d.unlock()
	d.wake()
}

// SetInputDispatchMode enables or disables dispatch, and marks
// whether it is frozen (queued but not processed) versus fully
// suspended. A frozen-to-unfrozen transition clears any in-flight ANR
// escalation and every connection's accumulated timeout, so a window
// that was merely frozen (not actually unresponsive) does not carry a
// stale deadline into resumed dispatch.
func (d *Dispatcher) SetInputDispatchMode(enabled, frozen bool) {
	d.lock()
	wasFrozen := d.dispatchFrozen
	d.dispatchEnabled = enabled
	d.dispatchFrozen = frozen
	if wasFrozen && !frozen {
		d.anr.cause = waitNone
		d.anr.hasApp = false
		d.anr.hasTimeout = false
		d.anr.expired = false
		for _, conn := range d.connections {
			conn.clearTimeout()
			if conn.Status == StatusNotResponding {
				conn.Status = StatusNormal
			}
		}
	}
	d.unlock()
	d.wake()
}

// PreemptInputDispatch clears the in-flight dispatch cycle of every
// active connection without waiting for a finished signal; used when
// the window manager needs to seize input immediately (e.g. for a
// system gesture) rather than waiting for the ANR path.
func (d *Dispatcher) PreemptInputDispatch() {
	defer d.wake()
	d.lock()
	defer d.unlock()
	for _, conn := range append([]*Connection(nil), d.active...) {
		d.abortDispatchCycleLocked(conn)
	}
	d.touch.clear()
}

// RegisterInputChannel adds ch to the registry and begins polling its
// receive fd. It is an error to register a channel whose name is
// already registered.
func (d *Dispatcher) RegisterInputChannel(ch *channel.Channel) (*Connection, error) {
	d.lock()
	defer d.unlock()

	name := window.ChannelName(ch.Name)
	if _, exists := d.connections[name]; exists {
		return nil, fmt.Errorf("%s: %w", ch.Name, ErrAlreadyRegistered)
	}
	conn, err := d.connPool.borrow(ch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ch.Name, err)
	}
	d.connections[name] = conn
	fd := ch.Publisher.ReceiveFD()
	if fd >= 0 {
		d.channelsByFD[fd] = &connChannel{conn: conn}
		if d.looper != nil {
			d.looper.RegisterFD(fd)
		}
	}
	return conn, nil
}

// UnregisterInputChannel removes ch from the registry, aborts its
// outstanding dispatch cycle, and marks its Connection ZOMBIE until
// any in-flight callback still referencing it finishes.
func (d *Dispatcher) UnregisterInputChannel(ch *channel.Channel) error {
	defer d.wake()
	d.lock()
	defer d.unlock()

	name := window.ChannelName(ch.Name)
	conn, ok := d.connections[name]
	if !ok {
		return fmt.Errorf("%s: %w", ch.Name, ErrChannelNotFound)
	}
	delete(d.connections, name)
	fd := ch.Publisher.ReceiveFD()
	if fd >= 0 {
		delete(d.channelsByFD, fd)
		if d.looper != nil {
			d.looper.UnregisterFD(fd)
		}
	}
	d.abortDispatchCycleLocked(conn)
	conn.Status = StatusZombie
	d.connPool.release(conn)
	return nil
}

// RefreshPolicyTunables re-reads the cached repeat timing and event
// rate limit from Policy. Call it after any configuration reload
// (package config) that could have changed them. Policy is called
// before the lock is taken.
func (d *Dispatcher) RefreshPolicyTunables() {
	timeout := d.policy.KeyRepeatTimeout()
	delay := d.policy.KeyRepeatDelay()
	maxEvents := d.policy.MaxEventsPerSecond()
	d.lock()
	defer d.unlock()
	d.cachedKeyRepeatTimeout = timeout
	d.cachedKeyRepeatDelay = delay
	d.cachedMaxEventsPerSec = maxEvents
}

// SetMotionThrottle sets the minimum interval required between
// delivered MOVE samples for the same device and source.
func (d *Dispatcher) SetMotionThrottle(minBetween time.Duration) {
	d.lock()
	d.throttle.minBetween = minBetween
	d.unlock()
}

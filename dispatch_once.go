// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

// DispatchOnce runs one iteration of the dispatcher's loop: it drains
// deferred commands, resumes or pops the pending event, processes it,
// services any finished-dispatch signals ready on the looper, and
// returns the duration the caller should wait before calling
// DispatchOnce again. Exactly one goroutine must call this at a time.
func (d *Dispatcher) DispatchOnce() time.Duration {
	d.runCommands()

	d.lock()
	now := d.now()

	if !d.dispatchEnabled {
		if d.pending != nil {
			releaseEvent(d.pending)
			d.pending = nil
			d.intercept = interceptState{}
		}
		for !d.inbound.isEmpty() {
			releaseEvent(d.inbound.popFront())
		}
		d.unlock()
		return d.waitOnLooper(idleWait)
	}
	if d.dispatchFrozen {
		d.unlock()
		return d.waitOnLooper(idleWait)
	}

	if d.cachedKeyRepeatTimeout < 0 {
		d.clearRepeatLocked()
	}

	d.checkTargetWaitLocked(time.Unix(0, now))
	d.checkConnectionTimeoutsLocked(time.Unix(0, now))
	d.demoteSyncTargetsPastDeadlineLocked(time.Unix(0, now))

	if d.pending == nil && !d.havePendingSyncLocked() {
		d.pending = d.nextPendingLocked(now)
	}

	aloneInQueue := d.inbound.len1()
	if d.pending != nil {
		pending := d.pending
		done := d.dispatchPendingLocked(pending, now, aloneInQueue)
		if done {
			d.pending = nil
		}
	}

	wait := d.computeWaitLocked(now)
	d.unlock()
	return d.waitOnLooper(wait)
}

// idleWait is the duration DispatchOnce blocks for while dispatch is
// disabled or frozen: long enough to not busy-loop, short enough that
// a missed wake() still self-corrects within a bounded time.
const idleWait = 24 * time.Hour

// waitOnLooper blocks on the looper for wait (if positive and a
// looper is configured) and services whatever finished-dispatch
// signals that unblocked it, matching the tail of the old inline
// DispatchOnce wait logic now shared by every early-return path.
func (d *Dispatcher) waitOnLooper(wait time.Duration) time.Duration {
	if wait <= 0 || d.looper == nil {
		return wait
	}
	ready, err := d.looper.Wait(wait)
	if err == nil {
		d.serviceReadyChannels(ready)
	}
	return 0
}

// havePendingSyncLocked reports whether any active connection's
// in-flight head entry carries the SYNC flag: while one does, no new
// inbound event is picked, so dispatch for the connection currently
// being waited on cannot be starved or reordered by events arriving
// behind it.
func (d *Dispatcher) havePendingSyncLocked() bool {
	for _, conn := range d.active {
		head := conn.Outbound.head()
		if head != nil && head.InProgress && head.TargetFlags&TargetSync != 0 {
			return true
		}
	}
	return false
}

// nextPendingLocked pops the next event to work on: a due key repeat
// takes priority over the inbound queue, since repeat is synthesized
// rather than merely queued behind whatever else arrived.
func (d *Dispatcher) nextPendingLocked(now int64) event.Event {
	if repeatEvent := d.repeatDueLocked(now); repeatEvent != nil {
		return repeatEvent
	}
	return d.inbound.popFront()
}

// dispatchPendingLocked routes pending to its kind-specific handler
// and reports whether it was fully handled (true) or must remain
// pending for a retry (false, because target selection is waiting).
func (d *Dispatcher) dispatchPendingLocked(pending event.Event, now int64, aloneInQueue bool) bool {
	switch e := pending.(type) {
	case *key.Event:
		return d.processKeyEventLocked(e, now)
	case *motion.Event:
		return d.processMotionEventLocked(e, now, aloneInQueue)
	case *event.ConfigChanged:
		return d.processConfigChangedLocked(e, now)
	default:
		releaseEvent(pending)
		return true
	}
}

func (d *Dispatcher) processConfigChangedLocked(e *event.ConfigChanged, now int64) bool {
	if !d.findTargetsLocked(e, now) {
		return false
	}
	d.deliverToTargetsLocked(e, now)
	ch := e
	d.postCommandLocked(func(d *Dispatcher) {
		d.policy.NotifyConfigurationChanged(ch.EventTime)
	})
	releaseEvent(e)
	return true
}

// computeWaitLocked returns how long DispatchOnce should let the
// looper block before the next call: as soon as work is outstanding
// (pending event, non-empty inbound queue, due repeat, or an
// in-flight ANR/timeout check) it is zero.
func (d *Dispatcher) computeWaitLocked(now int64) time.Duration {
	if d.pending != nil || !d.inbound.isEmpty() || !d.commands.isEmpty() {
		return 0
	}
	wait := 24 * time.Hour
	if t, ok := d.nextRepeatDeadlineLocked(); ok {
		if until := t.Sub(time.Unix(0, now)); until < wait {
			wait = until
		}
	}
	for _, conn := range d.active {
		if conn.hasTimeout {
			if until := conn.NextTimeout.Sub(time.Unix(0, now)); until < wait {
				wait = until
			}
		}
	}
	if d.anr.cause != waitNone && d.anr.hasTimeout {
		if until := d.anr.timeoutTime.Sub(time.Unix(0, now)); until < wait {
			wait = until
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// serviceReadyChannels drains a finished-dispatch signal from every
// connection whose receive fd the looper reported as readable.
func (d *Dispatcher) serviceReadyChannels(readyFDs []int) {
	if len(readyFDs) == 0 {
		return
	}
	d.lock()
	defer d.unlock()
	now := d.now()
	for _, fd := range readyFDs {
		cc := d.channelsByFD[fd]
		if cc == nil {
			continue
		}
		conn := cc.conn
		consumed, err := conn.Channel.Publisher.ReceiveFinishedSignal()
		if err != nil {
			d.handleChannelBrokenLocked(conn)
			continue
		}
		d.finishDispatchCycleLocked(conn, consumed, now)
	}
}

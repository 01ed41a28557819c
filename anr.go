// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/window"
)

// checkTargetWaitLocked escalates a stalled wait to Policy:
// once a wait on a not-ready window or application has run long
// enough, it is escalated to Policy exactly once via a deferred
// command. The command's answer either extends the wait (a positive
// duration) or gives up, at which point the pending event is dropped
// and normal dispatch resumes.
func (d *Dispatcher) checkTargetWaitLocked(now time.Time) {
	if d.anr.cause == waitNone || d.anr.expired {
		return
	}
	if d.anr.cause == waitSystemNotReady {
		// A system-not-ready wait (e.g. a top error window blocking
		// touch target selection) has no owning application to
		// escalate to, and waits indefinitely.
		return
	}
	if !d.anr.hasTimeout {
		d.anr.timeoutTime = d.anr.startTime.Add(d.anr.timeout)
		d.anr.hasTimeout = true
		return
	}
	if now.Before(d.anr.timeoutTime) {
		return
	}
	d.anr.expired = true
	app := d.anr.app
	hasApp := d.anr.hasApp
	d.postCommandLocked(func(d *Dispatcher) {
		var extend time.Duration
		if hasApp {
			extend = d.policy.NotifyANR(app)
		}
		d.lock()
		defer d.unlock()
		if extend > 0 {
			d.anr.timeoutTime = time.Now().Add(extend)
			d.anr.expired = false
			return
		}
		d.abandonPendingTargetWaitLocked()
	})
}

// abandonPendingTargetWaitLocked gives up on the current wait and
// drops the pending event, letting dispatch_once move on to the next
// inbound event.
func (d *Dispatcher) abandonPendingTargetWaitLocked() {
	d.anr.cause = waitNone
	d.anr.hasApp = false
	d.anr.hasTimeout = false
	d.anr.expired = false
	if d.pending != nil {
		releaseEvent(d.pending)
		d.pending = nil
		d.intercept = interceptState{}
	}
}

// checkConnectionTimeoutsLocked walks every active connection whose
// in-flight head entry has exceeded its per-window dispatching
// timeout. Each overdue connection is escalated to Policy via a
// deferred command at most once per timeout window.
func (d *Dispatcher) checkConnectionTimeoutsLocked(now time.Time) {
	for _, conn := range d.active {
		if conn.Status != StatusNormal && conn.Status != StatusNotResponding {
			continue
		}
		if !conn.timedOut(now) {
			continue
		}
		if conn.Status == StatusNotResponding {
			continue // already escalated, waiting on the command's answer
		}
		conn.Status = StatusNotResponding
		conn.LastANRTime = now.UnixNano()
		ch := conn.Channel
		d.postCommandLocked(func(d *Dispatcher) {
			extend := d.policy.NotifyInputChannelANR(ch)
			d.lock()
			defer d.unlock()
			cur := d.connections[window.ChannelName(ch.Name)]
			if cur == nil || cur.Status != StatusNotResponding {
				return
			}
			if extend > 0 {
				cur.setTimeout(time.Now().Add(extend))
				cur.Status = StatusNormal
				return
			}
			cur.clearTimeout()
			cur.Status = StatusNormal
			cur.InputState.MarkOutOfSync()
			if head := cur.Outbound.head(); head != nil && head.TargetFlags&TargetSync != 0 {
				head.TargetFlags &^= TargetSync
				h := head.Event.Head()
				if h.PendingSyncDispatches > 0 {
					h.PendingSyncDispatches--
					if h.PendingSyncDispatches == 0 {
						d.notifyFinishedDispatchLocked()
					}
				}
			}
			d.timeoutDispatchCycleLocked(cur)
		})
	}
}

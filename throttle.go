// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"github.com/inputcore/dispatch/motion"
)

// shouldThrottleMoveLocked decides whether a MOVE should be
// dropped (merged into the in-flight entry as an appended sample
// rather than enqueued as its own DispatchEntry) when it arrives
// alone in the inbound queue from the same device and source as the
// last delivered MOVE, sooner than minBetween after it.
func (d *Dispatcher) shouldThrottleMoveLocked(e *motion.Event, aloneInQueue bool) bool {
	if d.throttle.minBetween <= 0 {
		return false
	}
	if e.Action != motion.ActionMove {
		return false
	}
	if !aloneInQueue {
		return false
	}
	if !d.throttle.have {
		return false
	}
	if d.throttle.lastDeviceID != e.DeviceID || d.throttle.lastSource != e.Src {
		return false
	}
	elapsed := e.EventTime - d.throttle.lastEventTime
	return elapsed >= 0 && elapsed < d.throttle.minBetween.Nanoseconds()
}

// recordDeliveredMoveLocked updates the throttle window's bookkeeping
// after a MOVE (or the MOVE a DOWN/UP/CANCEL implicitly supersedes)
// has actually been handed to a target.
func (d *Dispatcher) recordDeliveredMoveLocked(e *motion.Event) {
	d.throttle.have = true
	d.throttle.lastDeviceID = e.DeviceID
	d.throttle.lastSource = e.Src
	d.throttle.lastEventTime = e.EventTime
}

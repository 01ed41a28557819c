// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
)

// isAppSwitchKey reports whether code is one of the two keys
// that trigger an app switch.
func isAppSwitchKey(code key.Code) bool {
	return code == key.CodeHome || code == key.CodeEndCall
}

// armAppSwitchLocked starts the app-switch deadline after a reliable
// UP of HOME or ENDCALL.
func (d *Dispatcher) armAppSwitchLocked(now int64) {
	d.appSwitchDueTime = time.Unix(0, now).Add(AppSwitchTimeout)
	d.hasAppSwitchDue = true
}

func (d *Dispatcher) clearAppSwitchLocked() {
	d.hasAppSwitchDue = false
}

// checkAppSwitchKeyLocked applies the armed-window checks to a key
// event about to be processed: an app-switch key clears the arm (the
// user is switching again), while any other
// key seen after the deadline has passed is dropped outright.
// Reports true when e was consumed here and must not be processed
// further.
func (d *Dispatcher) checkAppSwitchKeyLocked(e *key.Event, now int64) bool {
	if !d.hasAppSwitchDue {
		return false
	}
	if isAppSwitchKey(e.KeyCode) {
		d.clearAppSwitchLocked()
		return false
	}
	if !time.Unix(0, now).Before(d.appSwitchDueTime) {
		d.resolveInjectionResultLocked(e, event.ResultFailed)
		releaseEvent(e)
		return true
	}
	return false
}

// demoteSyncTargetsPastDeadlineLocked demotes any connection's
// pending SYNC target to async once the app-switch deadline has
// passed, so a consumer that is slow to
// release the old focus no longer blocks a WaitForFinished injector.
func (d *Dispatcher) demoteSyncTargetsPastDeadlineLocked(now time.Time) {
	if !d.hasAppSwitchDue || now.Before(d.appSwitchDueTime) {
		return
	}
	for _, conn := range d.active {
		for _, entry := range conn.Outbound.entries {
			if entry == nil || entry.TargetFlags&TargetSync == 0 {
				continue
			}
			entry.TargetFlags &^= TargetSync
			h := entry.Event.Head()
			if h.PendingSyncDispatches > 0 {
				h.PendingSyncDispatches--
				if h.PendingSyncDispatches == 0 {
					d.notifyFinishedDispatchLocked()
				}
			}
		}
	}
}

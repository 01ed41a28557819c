// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "testing"

func TestRunCommandsAllowsReentrantPublicCalls(t *testing.T) {
	d := New(newFakePolicy(), nil)
	ran := false
	d.lock()
	d.postCommandLocked(func(d *Dispatcher) {
		// A command is allowed to call back into a locking public
		// method; runCommands must not still hold the lock here.
		d.SetInputDispatchMode(false, false)
		ran = true
	})
	hasCommands := d.hasCommandsLocked()
	d.unlock()

	if !hasCommands {
		t.Fatal("hasCommandsLocked() = false right after postCommandLocked")
	}

	d.runCommands()

	if !ran {
		t.Fatal("runCommands did not execute the posted command")
	}
	snap := d.Snapshot()
	if snap.DispatchEnabled {
		t.Fatal("the command's SetInputDispatchMode call did not take effect")
	}
}

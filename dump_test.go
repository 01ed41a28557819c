// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"strings"
	"testing"
)

func TestSnapshotReflectsDispatcherState(t *testing.T) {
	d := New(newFakePolicy(), nil)
	d.SetInputDispatchMode(false, true)

	snap := d.Snapshot()
	if snap.DispatchEnabled {
		t.Fatal("Snapshot().DispatchEnabled = true after SetInputDispatchMode(false, ...)")
	}
	if !snap.DispatchFrozen {
		t.Fatal("Snapshot().DispatchFrozen = false after SetInputDispatchMode(..., true)")
	}
	if snap.FocusedWindow != -1 {
		t.Fatalf("Snapshot().FocusedWindow = %d, want -1 on a fresh dispatcher", snap.FocusedWindow)
	}
}

func TestDumpContainsFieldNames(t *testing.T) {
	d := New(newFakePolicy(), nil)
	out := d.Dump()
	if !strings.Contains(out, "DispatchEnabled") {
		t.Fatalf("Dump() output missing DumpState field names:\n%s", out)
	}
}

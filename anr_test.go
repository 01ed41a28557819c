// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"testing"
	"time"
)

func TestCheckConnectionTimeoutsEscalatesThenGivesUp(t *testing.T) {
	pol := newFakePolicy()
	pol.anrGrant = 0 // give up immediately
	d := New(pol, nil)
	ch := newFakeChannel("slow")
	conn, err := d.RegisterInputChannel(ch)
	if err != nil {
		t.Fatalf("RegisterInputChannel: %v", err)
	}

	d.lock()
	d.active = append(d.active, conn)
	conn.active = true
	conn.setTimeout(time.Unix(0, 0))
	d.checkConnectionTimeoutsLocked(time.Unix(0, int64(time.Second)))
	status := conn.Status
	d.unlock()

	if status != StatusNotResponding {
		t.Fatalf("conn.Status = %v after first overdue check, want StatusNotResponding", status)
	}

	d.runCommands()

	if len(pol.anrCalls) != 1 {
		t.Fatalf("NotifyInputChannelANR called %d times, want 1", len(pol.anrCalls))
	}
	d.lock()
	finalStatus := conn.Status
	hasTimeout := conn.hasTimeout
	outOfSync := conn.InputState.OutOfSync()
	d.unlock()
	if finalStatus != StatusNormal {
		t.Fatalf("conn.Status = %v after the policy gave up, want StatusNormal (connection stays alive)", finalStatus)
	}
	if hasTimeout {
		t.Fatalf("conn.hasTimeout = true after the policy gave up, want the timeout cleared")
	}
	if !outOfSync {
		t.Fatalf("conn.InputState.OutOfSync() = false after the policy gave up, want true so cancellation is synthesized next dispatch")
	}
}

func TestCheckConnectionTimeoutsExtendsOnPositiveGrant(t *testing.T) {
	pol := newFakePolicy()
	pol.anrGrant = time.Second
	d := New(pol, nil)
	ch := newFakeChannel("slow")
	conn, err := d.RegisterInputChannel(ch)
	if err != nil {
		t.Fatalf("RegisterInputChannel: %v", err)
	}

	d.lock()
	d.active = append(d.active, conn)
	conn.active = true
	conn.setTimeout(time.Unix(0, 0))
	d.checkConnectionTimeoutsLocked(time.Unix(0, int64(time.Second)))
	d.unlock()

	d.runCommands()

	d.lock()
	status := conn.Status
	d.unlock()
	if status != StatusNormal {
		t.Fatalf("conn.Status = %v after a positive grant, want StatusNormal", status)
	}
}

func TestAbandonPendingTargetWaitReleasesPendingEvent(t *testing.T) {
	d := New(newFakePolicy(), nil)
	e := obtainKeyEvent(0)

	d.lock()
	d.pending = e
	d.anr.cause = waitApplicationNotReady
	d.abandonPendingTargetWaitLocked()
	pendingNil := d.pending == nil
	cause := d.anr.cause
	d.unlock()

	if !pendingNil {
		t.Fatal("abandonPendingTargetWaitLocked did not clear the pending event")
	}
	if cause != waitNone {
		t.Fatal("abandonPendingTargetWaitLocked did not clear anr.cause")
	}
}

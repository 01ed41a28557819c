// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"testing"

	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
	"github.com/inputcore/dispatch/window"
)

func registerWindow(t *testing.T, d *Dispatcher, name string, frame window.Rect, flags window.Flags) window.InputWindow {
	t.Helper()
	ch := newFakeChannel(name)
	if _, err := d.RegisterInputChannel(ch); err != nil {
		t.Fatalf("RegisterInputChannel(%q): %v", name, err)
	}
	return windowFor(name, window.ChannelName(name), frame, flags)
}

func pub(w window.InputWindow, d *Dispatcher) *fakePublisher {
	return d.connections[w.Channel].Channel.Publisher.(*fakePublisher)
}

func TestNotifyKeyDeliversToFocusedWindow(t *testing.T) {
	d := New(newFakePolicy(), nil)
	w := registerWindow(t, d, "focused", window.Rect{Right: 100, Bottom: 100}, 0)
	d.SetInputWindows([]window.InputWindow{w})
	d.SetFocusedApplication(&window.Application{Handle: "app"})
	d.lock()
	d.focusedWindowIdx = 0
	d.unlock()

	d.NotifyKey(0, 1, 0, 0, key.ActionDown, 0, 30, 0, 0, 0)
	d.DispatchOnce() // posts the intercept command, retries next time
	d.DispatchOnce() // drains the command, delivers the key

	if len(pub(w, d).keys) != 1 {
		t.Fatalf("got %d published keys, want 1", len(pub(w, d).keys))
	}
}

func TestNotifyMotionDownRoutesByHitTest(t *testing.T) {
	d := New(newFakePolicy(), nil)
	near := registerWindow(t, d, "near", window.Rect{Right: 50, Bottom: 50}, 0)
	far := registerWindow(t, d, "far", window.Rect{Left: 50, Right: 100, Bottom: 100}, 0)
	d.SetInputWindows([]window.InputWindow{near, far})

	var coords [motion.MaxPointers]motion.PointerCoords
	coords[0] = motion.PointerCoords{X: 75, Y: 10}
	var ids [motion.MaxPointers]int32
	d.NotifyMotion(0, 1, motion.ClassPointer, 0, motion.ActionDown, 0, 0, 0, 0, 0, 0, 1, ids, coords)
	d.DispatchOnce()

	if len(pub(far, d).motions) != 1 {
		t.Fatalf("far window got %d motions, want 1", len(pub(far, d).motions))
	}
	if len(pub(near, d).motions) != 0 {
		t.Fatalf("near window got %d motions, want 0", len(pub(near, d).motions))
	}
}

func TestTouchSessionStaysWithDownWindowThroughMove(t *testing.T) {
	d := New(newFakePolicy(), nil)
	left := registerWindow(t, d, "left", window.Rect{Right: 50, Bottom: 100}, 0)
	right := registerWindow(t, d, "right", window.Rect{Left: 50, Right: 100, Bottom: 100}, 0)
	d.SetInputWindows([]window.InputWindow{left, right})

	var ids [motion.MaxPointers]int32
	var coords [motion.MaxPointers]motion.PointerCoords
	coords[0] = motion.PointerCoords{X: 10, Y: 10}
	d.NotifyMotion(0, 1, motion.ClassPointer, 0, motion.ActionDown, 0, 0, 0, 0, 0, 0, 1, ids, coords)
	d.DispatchOnce()

	// Finish the DOWN dispatch cycle so the connection can accept the
	// next entry.
	d.lock()
	conn := d.connections[left.Channel]
	d.unlock()
	d.finishDispatchCycleLocked(conn, true, 0)

	// MOVE lands far outside left's frame; the lock-in rule still
	// routes it to left, not right.
	coords[0] = motion.PointerCoords{X: 90, Y: 10}
	d.NotifyMotion(1, 1, motion.ClassPointer, 0, motion.ActionMove, 0, 0, 0, 0, 0, 0, 1, ids, coords)
	d.DispatchOnce()

	if len(pub(left, d).motions) != 2 {
		t.Fatalf("left window got %d motions, want 2 (DOWN and MOVE)", len(pub(left, d).motions))
	}
	if len(pub(right, d).motions) != 0 {
		t.Fatalf("right window got %d motions, want 0", len(pub(right, d).motions))
	}
}

func TestInterceptedKeyIsNotDelivered(t *testing.T) {
	pol := newFakePolicy()
	pol.interceptResult = true
	d := New(pol, nil)
	w := registerWindow(t, d, "focused", window.Rect{Right: 100, Bottom: 100}, 0)
	d.SetInputWindows([]window.InputWindow{w})
	d.lock()
	d.focusedWindowIdx = 0
	d.unlock()

	d.NotifyKey(0, 1, 0, 0, key.ActionDown, 0, 4, 0, 0, 0)
	d.DispatchOnce() // posts the intercept command, retries next time
	d.DispatchOnce() // drains the command, delivers the verdict

	if len(pub(w, d).keys) != 0 {
		t.Fatalf("got %d published keys for an intercepted event, want 0", len(pub(w, d).keys))
	}
	if len(pol.interceptCalls) != 1 {
		t.Fatalf("InterceptKeyBeforeDispatching called %d times, want 1", len(pol.interceptCalls))
	}
}

func TestUnregisterInputChannelRejectsUnknownChannel(t *testing.T) {
	d := New(newFakePolicy(), nil)
	err := d.UnregisterInputChannel(newFakeChannel("ghost"))
	if err == nil {
		t.Fatal("UnregisterInputChannel on an unregistered channel returned nil error")
	}
}

func TestRegisterInputChannelRejectsDuplicateName(t *testing.T) {
	d := New(newFakePolicy(), nil)
	ch1 := newFakeChannel("dup")
	ch2 := newFakeChannel("dup")
	if _, err := d.RegisterInputChannel(ch1); err != nil {
		t.Fatalf("first RegisterInputChannel: %v", err)
	}
	if _, err := d.RegisterInputChannel(ch2); err == nil {
		t.Fatal("second RegisterInputChannel with a duplicate name returned nil error")
	}
}

func TestSetInputWindowsDroppingTouchedWindowMarksOutOfSync(t *testing.T) {
	d := New(newFakePolicy(), nil)
	w := registerWindow(t, d, "w", window.Rect{Right: 100, Bottom: 100}, 0)
	d.SetInputWindows([]window.InputWindow{w})

	var ids [motion.MaxPointers]int32
	var coords [motion.MaxPointers]motion.PointerCoords
	coords[0] = motion.PointerCoords{X: 10, Y: 10}
	d.NotifyMotion(0, 1, motion.ClassPointer, 0, motion.ActionDown, 0, 0, 0, 0, 0, 0, 1, ids, coords)
	d.DispatchOnce()

	d.SetInputWindows(nil)

	d.lock()
	conn := d.connections[w.Channel]
	outOfSync := conn.InputState.OutOfSync()
	hasWindow := d.touch.hasWindow()
	d.unlock()

	if hasWindow {
		t.Fatal("touch session still has a window after its channel left the window list")
	}
	if !outOfSync {
		t.Fatal("connection was not marked out of sync after losing the touched window")
	}
}

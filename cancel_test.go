// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"testing"

	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

func TestSynthesizeCancellationEventsIsEmptyForNeutralState(t *testing.T) {
	d := New(newFakePolicy(), nil)
	conn := newConnection(newFakeChannel("c"))

	events := d.synthesizeCancellationEventsLocked(conn, 0)
	if len(events) != 0 {
		t.Fatalf("got %d synthesized events for a neutral InputState, want 0", len(events))
	}
}

func TestSynthesizeCancellationEventsCoversDownKeysAndMotions(t *testing.T) {
	d := New(newFakePolicy(), nil)
	conn := newConnection(newFakeChannel("c"))
	conn.InputState.trackKey(1, 0, 42, 0, 0, 0, 0)
	conn.InputState.trackMotion(MotionMemento{DeviceID: 7, PointerCount: 1}, motion.ActionDown)

	events := d.synthesizeCancellationEventsLocked(conn, 99)
	if len(events) != 2 {
		t.Fatalf("got %d synthesized events, want 2 (one key, one motion)", len(events))
	}

	ke, ok := events[0].(*key.Event)
	if !ok || ke.Action != key.ActionUp || ke.Flags&key.FlagCanceled == 0 {
		t.Fatalf("first synthesized event is not a canceled key UP: %+v", events[0])
	}
	me, ok := events[1].(*motion.Event)
	if !ok || me.Action != motion.ActionCancel {
		t.Fatalf("second synthesized event is not a motion CANCEL: %+v", events[1])
	}

	for _, e := range events {
		releaseEvent(e)
	}
}

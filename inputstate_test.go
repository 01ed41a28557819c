// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"testing"

	"github.com/inputcore/dispatch/motion"
)

func TestInputStateIsNeutralInitially(t *testing.T) {
	var s InputState
	if !s.IsNeutral() {
		t.Fatal("fresh InputState is not neutral")
	}
}

func TestTrackKeyDownThenUp(t *testing.T) {
	var s InputState
	s.trackKey(1, 0, 42, 0, 0, 0 /* actionDown */, 0)
	if s.IsNeutral() {
		t.Fatal("IsNeutral() true after a DOWN")
	}
	s.trackKey(1, 0, 42, 0, 0, 1 /* actionUp */, 0)
	if !s.IsNeutral() {
		t.Fatal("IsNeutral() false after the matching UP")
	}
}

func TestTrackKeyDuplicateDownReplacesMemento(t *testing.T) {
	var s InputState
	s.trackKey(1, 0, 42, 0, 100, 0, 0)
	s.trackKey(1, 0, 42, 0, 200, 0, 0)
	if len(s.keys) != 1 {
		t.Fatalf("len(keys) = %d after a duplicate DOWN, want 1", len(s.keys))
	}
	if s.keys[0].DownTime != 200 {
		t.Fatalf("DownTime = %d, want the later DOWN's value 200", s.keys[0].DownTime)
	}
}

func TestTrackMotionDownMoveUp(t *testing.T) {
	var s InputState
	m := MotionMemento{DeviceID: 7, PointerCount: 1}
	s.trackMotion(m, motion.ActionDown)
	if s.IsNeutral() {
		t.Fatal("IsNeutral() true after a motion DOWN")
	}
	m.PointerCount = 2
	s.trackMotion(m, motion.ActionMove)
	if len(s.motions) != 1 || s.motions[0].PointerCount != 2 {
		t.Fatal("MOVE did not update the existing memento in place")
	}
	s.trackMotion(m, motion.ActionUp)
	if !s.IsNeutral() {
		t.Fatal("IsNeutral() false after UP")
	}
}

func TestOutOfSyncIsSticky(t *testing.T) {
	var s InputState
	if s.OutOfSync() {
		t.Fatal("fresh InputState reports OutOfSync")
	}
	s.MarkOutOfSync()
	if !s.OutOfSync() {
		t.Fatal("MarkOutOfSync did not stick")
	}
}

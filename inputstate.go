// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

// KeyMemento remembers one currently-down key for a connection, so a
// cancellation UP can be synthesized if the connection falls out of
// sync with the dispatcher's view of the world.
type KeyMemento struct {
	DeviceID int32
	Source   uint32
	KeyCode  int32
	ScanCode int32
	DownTime int64
}

// MotionMemento remembers one active pointer stream for a connection.
type MotionMemento struct {
	DeviceID     int32
	Source       uint32
	XPrecision   float32
	YPrecision   float32
	DownTime     int64
	PointerCount int32
	PointerIDs   [motion.MaxPointers]int32
	Coords       [motion.MaxPointers]motion.PointerCoords
}

// InputState tracks what a connection's consumer currently believes
// is down, so that when the dispatcher's mementos drift from that
// belief — after an ANR give-up, or a channel reset — cancellation
// events can restore consistency before the next real event arrives.
type InputState struct {
	keys    []KeyMemento
	motions []MotionMemento

	// outOfSync is sticky: once the consumer's view of the world may
	// have drifted from the dispatcher's mementos, it stays set until
	// prepare_dispatch_cycle synthesizes cancellation and clears it.
	outOfSync bool
}

// IsNeutral reports whether no keys or pointers are currently tracked
// down, i.e. cancellation synthesis would be a no-op.
func (s *InputState) IsNeutral() bool {
	return len(s.keys) == 0 && len(s.motions) == 0
}

// MarkOutOfSync sets the sticky out-of-sync flag.
func (s *InputState) MarkOutOfSync() { s.outOfSync = true }

// OutOfSync reports the sticky flag's current value.
func (s *InputState) OutOfSync() bool { return s.outOfSync }

// trackKey updates the memento set for a key event that reached a
// target, adding a memento on DOWN and removing it on a real UP or
// CANCEL. A duplicate DOWN or a stray UP is tolerated (memento set
// stays consistent with "last one wins"): this is inconsistent input
// that is still delivered rather than rejected.
func (s *InputState) trackKey(deviceID int32, source uint32, keyCode, scanCode int32, downTime int64, action key.Action, flags key.Flags) {
	idx := -1
	for i := range s.keys {
		if s.keys[i].DeviceID == deviceID && s.keys[i].KeyCode == keyCode {
			idx = i
			break
		}
	}
	switch action {
	case key.ActionDown:
		m := KeyMemento{DeviceID: deviceID, Source: source, KeyCode: keyCode, ScanCode: scanCode, DownTime: downTime}
		if idx >= 0 {
			s.keys[idx] = m
		} else {
			s.keys = append(s.keys, m)
		}
	case key.ActionUp:
		if idx >= 0 {
			s.keys = append(s.keys[:idx], s.keys[idx+1:]...)
		}
	}
	_ = flags
}

// trackMotion mirrors trackKey for pointer streams, keyed by device
// id since a device has at most one active stream at a time.
func (s *InputState) trackMotion(m MotionMemento, action motion.Action) {
	idx := -1
	for i := range s.motions {
		if s.motions[i].DeviceID == m.DeviceID {
			idx = i
			break
		}
	}
	switch action {
	case motion.ActionDown, motion.ActionMove:
		if idx >= 0 {
			s.motions[idx] = m
		} else {
			s.motions = append(s.motions, m)
		}
	case motion.ActionUp, motion.ActionCancel:
		if idx >= 0 {
			s.motions = append(s.motions[:idx], s.motions[idx+1:]...)
		}
	}
}

// SPDX-License-Identifier: Unlicense OR MIT

// Package motion defines the wire vocabulary for pointer/trackball
// events: actions, flags, the per-pointer coordinate type, the
// singly-linked MotionSample chain, and the Event type itself.
package motion

import "github.com/inputcore/dispatch/event"

// MaxPointers bounds the pointer_count of any motion event, matching
// the fixed-size arrays used throughout the dispatch cycle.
const MaxPointers = 10

// Action is the on-the-wire pointer transition. ActionCancel and
// ActionOutside are never produced by the reader; the dispatcher
// synthesizes them when building DispatchEntry targets.
type Action int32

const (
	ActionDown Action = iota
	ActionMove
	ActionUp
	ActionCancel
	ActionOutside
)

func (a Action) String() string {
	switch a {
	case ActionDown:
		return "DOWN"
	case ActionMove:
		return "MOVE"
	case ActionUp:
		return "UP"
	case ActionCancel:
		return "CANCEL"
	case ActionOutside:
		return "OUTSIDE"
	default:
		return "UNKNOWN"
	}
}

// Flags is a bit-set of per-event motion flags.
type Flags uint32

const (
	FlagWindowIsObscured Flags = 1 << 0
)

// PolicyFlags mirrors the policy_flags carried alongside every raw
// event from the reader.
type PolicyFlags uint32

const (
	PolicyFlagInjected PolicyFlags = 1 << 0
)

// Source classifies the originating device; CLASS_POINTER determines
// whether an event is routed through hit-testing or through focus.
type Source uint32

const (
	ClassPointer Source = 1 << 0
	ClassNavigation Source = 1 << 1
	ClassPosition Source = 1 << 2
	ClassJoystick Source = 1 << 3
)

// IsPointer reports whether the source belongs to the pointer class.
func (s Source) IsPointer() bool { return s&ClassPointer != 0 }

// PointerCoords carries one pointer's position within a sample.
type PointerCoords struct {
	X, Y float32
}

// Sample is one node of a motion event's singly-linked sample chain.
// pointer_count is fixed for the life of the event, so Coords is a
// fixed MaxPointers array of which only the first PointerCount entries
// are meaningful, rather than carrying its own count.
type Sample struct {
	EventTime int64
	Coords    [MaxPointers]PointerCoords
	Next      *Sample
}

// Event is the pointer/trackball event variant of the dispatcher's
// tagged event union.
type Event struct {
	event.Header

	DeviceID    int32
	Src         Source
	PolicyFlags PolicyFlags
	Action      Action
	Flags       Flags
	MetaState   uint32
	EdgeFlags   uint32
	XPrecision  float32
	YPrecision  float32
	DownTime    int64

	PointerCount int32
	PointerIDs   [MaxPointers]int32

	first Sample // inline first sample.
	Last  *Sample
}

func (e *Event) Head() *event.Header { return &e.Header }
func (e *Event) Kind() event.Kind    { return event.KindMotion }

// First returns the head of the sample chain.
func (e *Event) First() *Sample { return &e.first }

// InitChain sets the event's inline first sample and makes Last point
// at it, establishing the non-empty-chain invariant.
func (e *Event) InitChain(eventTime int64, coords [MaxPointers]PointerCoords) {
	e.first = Sample{EventTime: eventTime, Coords: coords, Next: nil}
	e.Last = &e.first
}

// Reset clears an Event for reuse from a pool, leaving the embedded
// Header for the caller to reinitialize.
func (e *Event) Reset() {
	*e = Event{Header: e.Header}
}

// Append links a new sample after the chain's current tail and
// returns it. It is the sole mutation permitted on an already
// enqueued motion event.
func (e *Event) Append(s *Sample) {
	e.Last.Next = s
	e.Last = s
}

// Samples returns every sample in event-time order, walking the
// chain. Used by tests; the hot dispatch path walks the
// chain directly instead of allocating this slice.
func (e *Event) Samples() []*Sample {
	var out []*Sample
	for s := e.First(); s != nil; s = s.Next {
		out = append(out, s)
	}
	return out
}

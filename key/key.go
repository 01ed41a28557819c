// SPDX-License-Identifier: Unlicense OR MIT

// Package key defines the wire vocabulary for keyboard events routed by
// the dispatcher: actions, flags, and the Event type itself.
package key

import "github.com/inputcore/dispatch/event"

// Action is the key transition carried by an Event.
type Action int32

const (
	ActionDown Action = iota
	ActionUp
)

func (a Action) String() string {
	if a == ActionDown {
		return "DOWN"
	}
	return "UP"
}

// Flags is a bit-set of per-event key flags.
type Flags uint32

const (
	FlagWokeHere   Flags = 1 << 0
	FlagSoftKeyboard Flags = 1 << 1
	FlagCanceled   Flags = 1 << 2
	FlagLongPress  Flags = 1 << 3
	FlagVirtualHardKey Flags = 1 << 4
)

// PolicyFlags mirrors the policy_flags carried alongside every raw
// event from the reader (e.g. whether it was injected).
type PolicyFlags uint32

const (
	PolicyFlagInjected PolicyFlags = 1 << 0
	PolicyFlagFilterInputEvents PolicyFlags = 1 << 1
)

// InterceptResult records the outcome of the policy's
// intercept_key_before_dispatching callback for this event.
type InterceptResult int32

const (
	InterceptUnknown InterceptResult = iota
	InterceptSkip
	InterceptContinue
)

// Code is a device-independent key code.
type Code int32

// CodeHome and CodeEndCall are the two app-switch keys the dispatcher
// itself recognizes to arm the app-switch deadline.
// Every other code is opaque to the dispatcher and left to the
// caller's keymap.
const (
	CodeHome    Code = 3
	CodeEndCall Code = 6
)

// Event is the keyboard event variant of the dispatcher's tagged
// event union. It embeds event.Header for the ref-count/injection
// bookkeeping shared by every variant.
type Event struct {
	event.Header

	DeviceID    int32
	Source      uint32
	PolicyFlags PolicyFlags
	Action      Action
	Flags       Flags
	KeyCode     Code
	ScanCode    int32
	MetaState   uint32
	RepeatCount int32
	DownTime    int64

	SyntheticRepeat bool
	InterceptResult InterceptResult
}

func (e *Event) Head() *event.Header { return &e.Header }
func (e *Event) Kind() event.Kind    { return event.KindKey }

// Reset reinitializes an Event taken from a pool for reuse with fresh
// field values, leaving the embedded Header to be initialized
// separately by Header.Init.
func (e *Event) Reset() {
	*e = Event{Header: e.Header}
}

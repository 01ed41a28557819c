// SPDX-License-Identifier: Unlicense OR MIT

// Package channel defines the per-consumer transport abstraction the
// dispatcher publishes events through: the Publisher capability set
// and the Channel that pairs a name with one. Concrete transports
// (package channel/shm, or a test fake) implement Publisher; the
// dispatcher core only ever depends on the interface.
package channel

import (
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

// AppendResult is the outcome of Publisher.AppendMotionSample.
type AppendResult int

const (
	AppendOK AppendResult = iota
	AppendNoMemory
	AppendFailedTransaction
	AppendError
)

// Target flags bits as they travel on the wire, mirroring the
// dispatcher's own TargetFlags: SYNC=1, OUTSIDE=2, CANCEL=4,
// WINDOW_IS_OBSCURED=8. A transport never needs SYNC or CANCEL
// itself, but FlagOutside changes what it must serialize: a motion
// event published to an outside target reports action OUTSIDE
// regardless of the event's own action.
const FlagOutside uint32 = 1 << 1

// Publisher is the per-connection shared-memory transport the
// dispatcher calls out to. Each call only ever touches a specific
// connection's send buffer, so these calls run under the dispatcher's
// single lock — unlike Policy, which is deferred to a command.
type Publisher interface {
	PublishKey(e *key.Event, flags uint32, xOffset, yOffset float32) error
	PublishMotion(e *motion.Event, flags uint32, xOffset, yOffset float32, first *motion.Sample) error
	AppendMotionSample(eventTime int64, coords [motion.MaxPointers]motion.PointerCoords) AppendResult
	SendDispatchSignal() error
	// ReceiveFinishedSignal drains one "finished" notification,
	// reporting whether the consumer requested its own event to
	// be treated as handled (consumed).
	ReceiveFinishedSignal() (consumed bool, err error)
	Reset() error
	// ReceiveFD returns the file descriptor the event loop polls to
	// learn a finished signal is ready, or -1 if the transport is not
	// fd-backed (e.g. a test fake).
	ReceiveFD() int
	Close() error
}

// Channel pairs a stable name with the Publisher used to reach it.
// It is deliberately small: all per-consumer state that changes over
// the connection's lifetime lives in the dispatcher's Connection, not
// here, so a Channel can be shared freely between the registry and
// the window list.
type Channel struct {
	Name      string
	Publisher Publisher
	// Monitor marks a read-only observer channel that receives every
	// event regardless of targeting.
	Monitor bool
}

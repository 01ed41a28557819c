// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/channel"
)

// ConnectionStatus is the lifecycle state of a Connection.
type ConnectionStatus int

const (
	StatusNormal ConnectionStatus = iota
	StatusBroken
	StatusNotResponding
	StatusZombie
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusNormal:
		return "NORMAL"
	case StatusBroken:
		return "BROKEN"
	case StatusNotResponding:
		return "NOT_RESPONDING"
	case StatusZombie:
		return "ZOMBIE"
	default:
		return "UNKNOWN"
	}
}

// Connection is the dispatcher's per-channel state: its outbound
// queue, its input-state mementos, and the timestamps the ANR and
// dispatch-cycle machinery consult. A Connection is shared between
// the dispatcher and the event loop's receive-fd callback; once
// unregistered it transitions to ZOMBIE and is only dropped once no
// callback still references it.
type Connection struct {
	Channel *channel.Channel
	Status  ConnectionStatus

	Outbound   outboundQueue
	InputState InputState

	LastEventTime    int64
	LastDispatchTime int64
	LastANRTime      int64

	// NextTimeout is the deadline of the in-progress head entry, or
	// zero if none is in flight. It is compared against "now" on
	// every dispatch_once iteration.
	NextTimeout time.Time
	hasTimeout  bool

	// active mirrors membership in Dispatcher.active; kept
	// here too so start_next_dispatch_cycle can tell at a glance
	// whether deactivation already happened.
	active bool
}

func newConnection(ch *channel.Channel) *Connection {
	return &Connection{Channel: ch, Status: StatusNormal}
}

func (c *Connection) setTimeout(t time.Time) {
	c.NextTimeout = t
	c.hasTimeout = true
}

func (c *Connection) clearTimeout() {
	c.NextTimeout = time.Time{}
	c.hasTimeout = false
}

// timedOut reports whether NextTimeout is set and has passed now.
func (c *Connection) timedOut(now time.Time) bool {
	return c.hasTimeout && !c.NextTimeout.After(now)
}

// reset clears a recycled Connection back to its initial state for
// reuse by the connection pool (connpool.go) when a new channel
// registers after a prior one went ZOMBIE.
func (c *Connection) reset(ch *channel.Channel) {
	c.Channel = ch
	c.Status = StatusNormal
	c.Outbound = outboundQueue{}
	c.InputState = InputState{}
	c.LastEventTime = 0
	c.LastDispatchTime = 0
	c.LastANRTime = 0
	c.clearTimeout()
	c.active = false
}

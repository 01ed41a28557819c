// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// DumpState is a structured snapshot of the dispatcher's internal
// state for diagnostics, mirroring what a production input dispatcher
// exposes over its debug dump interface.
type DumpState struct {
	DispatchEnabled bool
	DispatchFrozen  bool
	InboundDepth    int
	CommandDepth    int
	WindowCount     int
	FocusedWindow   int
	TouchedWindow   int
	Connections     []ConnectionDump
}

// ConnectionDump is one Connection's diagnostic snapshot.
type ConnectionDump struct {
	Name         string
	Status       string
	OutboundSize int
	OutOfSync    bool
}

// Snapshot captures the dispatcher's current state without mutating
// it, for use by Dump or by tests asserting on internal invariants.
func (d *Dispatcher) Snapshot() DumpState {
	d.lock()
	defer d.unlock()

	s := DumpState{
		DispatchEnabled: d.dispatchEnabled,
		DispatchFrozen:  d.dispatchFrozen,
		InboundDepth:    len(d.inbound.events),
		CommandDepth:    len(d.commands.entries),
		WindowCount:     len(d.windows),
		FocusedWindow:   d.focusedWindowIdx,
		TouchedWindow:   d.touch.windowIdx,
	}
	for _, conn := range d.active {
		s.Connections = append(s.Connections, ConnectionDump{
			Name:         conn.Channel.Name,
			Status:       conn.Status.String(),
			OutboundSize: len(conn.Outbound.entries),
			OutOfSync:    conn.InputState.OutOfSync(),
		})
	}
	return s
}

// Dump renders the current dispatcher state with go-spew, matching
// the level of structural detail a developer debugging a stuck
// connection would want: nested slices and pointers expanded rather
// than collapsed to addresses.
func (d *Dispatcher) Dump() string {
	snap := d.Snapshot()
	var b strings.Builder
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	cfg.Fdump(&b, snap)
	return b.String()
}

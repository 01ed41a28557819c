// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

// synthesizeCancellationEventsLocked builds one event per memento
// tracked by conn's InputState — a key UP with CANCELED for every
// down key, a motion CANCEL for every active pointer stream — in
// memento order. InputState itself is not mutated: a later real
// UP/CANCEL flowing through normal tracking removes the memento,
// which is what makes this idempotent for a neutral InputState
// (synthesis then produces zero events).
func (d *Dispatcher) synthesizeCancellationEventsLocked(conn *Connection, now int64) []event.Event {
	st := &conn.InputState
	var out []event.Event
	for _, m := range st.keys {
		e := obtainKeyEvent(now)
		e.DeviceID = m.DeviceID
		e.Source = m.Source
		e.Action = key.ActionUp
		e.Flags = key.FlagCanceled
		e.KeyCode = key.Code(m.KeyCode)
		e.ScanCode = m.ScanCode
		e.DownTime = m.DownTime
		out = append(out, e)
	}
	for _, m := range st.motions {
		e := obtainMotionEvent(now, m.Coords)
		e.DeviceID = m.DeviceID
		e.Src = motion.Source(m.Source)
		e.Action = motion.ActionCancel
		e.XPrecision = m.XPrecision
		e.YPrecision = m.YPrecision
		e.DownTime = m.DownTime
		e.PointerCount = m.PointerCount
		e.PointerIDs = m.PointerIDs
		out = append(out, e)
	}
	return out
}

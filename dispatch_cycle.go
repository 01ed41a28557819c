// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

// deliverToTargetsLocked prepares and starts a dispatch cycle for
// every resolved target: it synthesizes cancellation for an
// out-of-sync connection ahead of the new event, enqueues a
// DispatchEntry, and starts the cycle immediately if the entry landed
// at the head of an idle queue.
func (d *Dispatcher) deliverToTargetsLocked(e event.Event, now int64) {
	for _, t := range d.targets.entries {
		conn := t.conn
		if conn.InputState.OutOfSync() {
			d.prepareDispatchCycleLocked(conn, now)
		}

		entry := obtainDispatchEntry(e, t.flags)
		entry.XOffset = t.xOffset
		entry.YOffset = t.yOffset
		entry.Timeout = t.timeout

		wasEmpty := conn.Outbound.isEmpty()
		conn.Outbound.pushBack(entry)
		if !d.activeLocked(conn) {
			d.active = append(d.active, conn)
			conn.active = true
		}
		if wasEmpty {
			d.startDispatchCycleLocked(conn, now)
		}
	}
}

func (d *Dispatcher) activeLocked(conn *Connection) bool { return conn.active }

// prepareDispatchCycleLocked synthesizes and enqueues cancellation
// entries for conn ahead of whatever is about to be delivered to it,
// then clears the sticky out-of-sync flag.
func (d *Dispatcher) prepareDispatchCycleLocked(conn *Connection, now int64) {
	cancels := d.synthesizeCancellationEventsLocked(conn, now)
	for _, c := range cancels {
		entry := obtainDispatchEntry(c, TargetCancel)
		entry.Timeout = DefaultDispatchingTimeout
		wasEmpty := conn.Outbound.isEmpty()
		conn.Outbound.pushBack(entry)
		if wasEmpty {
			d.startDispatchCycleLocked(conn, now)
		}
	}
	conn.InputState.outOfSync = false
}

// startDispatchCycleLocked publishes the head entry of conn's queue
// to its transport and arms the per-connection dispatch timeout.
func (d *Dispatcher) startDispatchCycleLocked(conn *Connection, now int64) {
	entry := conn.Outbound.head()
	if entry == nil {
		return
	}
	entry.InProgress = true
	conn.LastDispatchTime = now
	conn.setTimeout(time.Unix(0, now).Add(entry.Timeout))

	d.publishEntryLocked(conn, entry)

	if _, ok := entry.Event.(*event.ConfigChanged); ok {
		// ConfigChanged carries no payload for the consumer to ack;
		// the cycle completes as soon as it is handed to the
		// transport.
		d.finishDispatchCycleLocked(conn, true, now)
	}
}

// finishDispatchCycleLocked pops the completed head entry, resolves
// any injection waiter, and starts the next entry if one is queued.
func (d *Dispatcher) finishDispatchCycleLocked(conn *Connection, consumed bool, now int64) {
	entry := conn.Outbound.popHead()
	if entry == nil {
		return
	}
	res := event.ResultFailed
	if consumed {
		res = event.ResultSucceeded
	}
	d.resolveInjectionResultLocked(entry.Event, res)
	if entry.TargetFlags&TargetSync != 0 {
		h := entry.Event.Head()
		if h.PendingSyncDispatches > 0 {
			h.PendingSyncDispatches--
		}
		if h.PendingSyncDispatches == 0 {
			d.notifyFinishedDispatchLocked()
		}
	}
	releaseDispatchEntry(entry)
	d.startNextDispatchCycleLocked(conn, now)
}

// startNextDispatchCycleLocked starts the new head entry, if any, or
// deactivates conn when its queue has drained.
func (d *Dispatcher) startNextDispatchCycleLocked(conn *Connection, now int64) {
	if conn.Outbound.isEmpty() {
		conn.clearTimeout()
		d.deactivateConnectionLocked(conn)
		return
	}
	d.startDispatchCycleLocked(conn, now)
}

func (d *Dispatcher) deactivateConnectionLocked(conn *Connection) {
	if i := slices.Index(d.active, conn); i >= 0 {
		d.active = slices.Delete(d.active, i, i+1)
	}
	conn.active = false
}

// timeoutDispatchCycleLocked drains and releases everything queued
// behind the wedged head entry so a single unresponsive consumer
// cannot back up every other event bound for it. The head entry itself
// is left in place until the consumer's finished signal pops it; the
// ANR give-up path (anr.go) calls this after demoting that head to
// async.
func (d *Dispatcher) timeoutDispatchCycleLocked(conn *Connection) {
	for _, entry := range conn.Outbound.drainExceptHead() {
		d.resolveInjectionResultLocked(entry.Event, event.ResultTimedOut)
		releaseDispatchEntry(entry)
	}
}

// abortDispatchCycleLocked is used once a connection's queued work is
// given up on entirely (the channel broke, it is being unregistered,
// or input dispatch is preempted): every queued entry, including the
// in-flight head, is drained and released.
func (d *Dispatcher) abortDispatchCycleLocked(conn *Connection) {
	for _, entry := range conn.Outbound.drainAll() {
		d.resolveInjectionResultLocked(entry.Event, event.ResultFailed)
		releaseDispatchEntry(entry)
	}
	conn.clearTimeout()
	d.deactivateConnectionLocked(conn)
}

// publishEntryLocked hands entry to conn's transport. Publisher calls
// run with the dispatcher's lock held: each call only ever touches
// the one connection's own send buffer, so unlike Policy (command.go)
// there is no re-entrancy hazard to defer around (see package channel's
// doc comment).
func (d *Dispatcher) publishEntryLocked(conn *Connection, entry *DispatchEntry) {
	pub := conn.Channel.Publisher
	var err error
	switch ev := entry.Event.(type) {
	case *key.Event:
		err = pub.PublishKey(ev, uint32(entry.TargetFlags), entry.XOffset, entry.YOffset)
	case *motion.Event:
		first := entry.HeadSample
		if first == nil {
			first = ev.First()
		}
		err = pub.PublishMotion(ev, uint32(entry.TargetFlags), entry.XOffset, entry.YOffset, first)
	}
	if err != nil {
		d.handleChannelBrokenLocked(conn)
	}
}

func (d *Dispatcher) handleChannelBrokenLocked(conn *Connection) {
	if conn.Status == StatusBroken {
		return
	}
	conn.Status = StatusBroken
	ch := conn.Channel
	d.abortDispatchCycleLocked(conn)
	d.postCommandLocked(func(d *Dispatcher) {
		d.policy.NotifyInputChannelBroken(ch)
	})
}

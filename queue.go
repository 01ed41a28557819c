// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "github.com/inputcore/dispatch/event"

// inboundQueue is the dispatcher's single inbound FIFO. A sentinel-
// node intrusive linked list is purely a branch-avoidance device in
// languages without growable slices; a grow-only slice with
// head-index trimming gives the same FIFO/O(1)-amortized-pop contract
// with far less code.
type inboundQueue struct {
	events []event.Event
}

func (q *inboundQueue) pushBack(e event.Event) {
	q.events = append(q.events, e)
}

func (q *inboundQueue) isEmpty() bool { return len(q.events) == 0 }

func (q *inboundQueue) front() event.Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

// tail returns the queue's most recently pushed event, or nil if
// empty. Used to find a compatible pending MOVE to batch a new sample
// onto instead of enqueueing a fresh event.
func (q *inboundQueue) tail() event.Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[len(q.events)-1]
}

func (q *inboundQueue) popFront() event.Event {
	if len(q.events) == 0 {
		return nil
	}
	e := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return e
}

// len1 reports whether the queue holds exactly one event, used by the
// motion throttling predicate.
func (q *inboundQueue) len1() bool { return len(q.events) == 1 }

// outboundQueue is a connection's per-channel FIFO of DispatchEntry.
// Ordering is strictly FIFO: entries complete, are
// drained, or are popped after a streamed replacement, but never
// reordered.
type outboundQueue struct {
	entries []*DispatchEntry
}

func (q *outboundQueue) isEmpty() bool { return len(q.entries) == 0 }

func (q *outboundQueue) head() *DispatchEntry {
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0]
}

func (q *outboundQueue) tail() *DispatchEntry {
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[len(q.entries)-1]
}

func (q *outboundQueue) pushBack(d *DispatchEntry) {
	q.entries = append(q.entries, d)
}

func (q *outboundQueue) popHead() *DispatchEntry {
	if len(q.entries) == 0 {
		return nil
	}
	d := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	return d
}

// drainExceptHead removes and returns every entry but the head,
// preserving the in-flight head so a wedged consumer's in-progress
// delivery is not torn out from under it.
func (q *outboundQueue) drainExceptHead() []*DispatchEntry {
	if len(q.entries) <= 1 {
		return nil
	}
	drained := q.entries[1:]
	q.entries = q.entries[:1:1]
	return drained
}

// drainAll removes and returns every entry, used by
// abort_dispatch_cycle.
func (q *outboundQueue) drainAll() []*DispatchEntry {
	drained := q.entries
	q.entries = nil
	return drained
}

// commandEntry is a deferred closure posted by post_command and run
// outside the dispatcher's lock by runCommands.
type commandEntry struct {
	run func(d *Dispatcher)
}

type commandQueue struct {
	entries []commandEntry
}

func (q *commandQueue) pushBack(c commandEntry) {
	q.entries = append(q.entries, c)
}

func (q *commandQueue) popFront() (commandEntry, bool) {
	if len(q.entries) == 0 {
		return commandEntry{}, false
	}
	c := q.entries[0]
	q.entries[0] = commandEntry{}
	q.entries = q.entries[1:]
	return c, true
}

func (q *commandQueue) isEmpty() bool { return len(q.entries) == 0 }

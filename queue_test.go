// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"testing"

	"github.com/inputcore/dispatch/event"
)

func TestInboundQueueFIFO(t *testing.T) {
	var q inboundQueue
	if !q.isEmpty() {
		t.Fatal("new inboundQueue is not empty")
	}

	a := &event.ConfigChanged{}
	b := &event.ConfigChanged{}
	q.pushBack(a)
	q.pushBack(b)

	if len(q.events) != 2 {
		t.Fatalf("unexpected queue length %d", len(q.events))
	}
	if q.front() != a {
		t.Fatal("front() did not return the first pushed event")
	}
	if got := q.popFront(); got != a {
		t.Fatal("popFront() did not return events in FIFO order")
	}
	if !q.len1() {
		t.Fatal("len1() false after popping down to one element")
	}
	if got := q.popFront(); got != b {
		t.Fatal("popFront() did not return the second event")
	}
	if !q.isEmpty() {
		t.Fatal("queue not empty after draining both events")
	}
	if q.popFront() != nil {
		t.Fatal("popFront() on an empty queue must return nil")
	}
}

func TestOutboundQueueDrainExceptHead(t *testing.T) {
	var q outboundQueue
	e1, e2, e3 := &DispatchEntry{}, &DispatchEntry{}, &DispatchEntry{}
	q.pushBack(e1)
	q.pushBack(e2)
	q.pushBack(e3)

	drained := q.drainExceptHead()
	if len(drained) != 2 || drained[0] != e2 || drained[1] != e3 {
		t.Fatalf("drainExceptHead() = %v, want [e2 e3]", drained)
	}
	if q.head() != e1 {
		t.Fatal("drainExceptHead() disturbed the head entry")
	}
	if len(q.entries) != 1 {
		t.Fatalf("queue has %d entries after drainExceptHead, want 1", len(q.entries))
	}
}

func TestOutboundQueueDrainAll(t *testing.T) {
	var q outboundQueue
	q.pushBack(&DispatchEntry{})
	q.pushBack(&DispatchEntry{})

	drained := q.drainAll()
	if len(drained) != 2 {
		t.Fatalf("drainAll() returned %d entries, want 2", len(drained))
	}
	if !q.isEmpty() {
		t.Fatal("queue not empty after drainAll")
	}
}

func TestCommandQueueFIFO(t *testing.T) {
	var q commandQueue
	order := []int{}
	q.pushBack(commandEntry{run: func(d *Dispatcher) { order = append(order, 1) }})
	q.pushBack(commandEntry{run: func(d *Dispatcher) { order = append(order, 2) }})

	for {
		c, ok := q.popFront()
		if !ok {
			break
		}
		c.run(nil)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("commands ran out of order: %v", order)
	}
}

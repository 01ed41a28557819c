// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"testing"

	"github.com/inputcore/dispatch/motion"
)

func TestNotifyMotionBatchesConsecutiveMovesIntoOneEvent(t *testing.T) {
	d := New(newFakePolicy(), nil)

	var ids [motion.MaxPointers]int32
	var down [motion.MaxPointers]motion.PointerCoords
	down[0] = motion.PointerCoords{X: 1, Y: 1}
	d.NotifyMotion(0, 1, motion.ClassPointer, 0, motion.ActionDown, 0, 0, 0, 0, 0, 0, 1, ids, down)

	var move1, move2 [motion.MaxPointers]motion.PointerCoords
	move1[0] = motion.PointerCoords{X: 2, Y: 2}
	move2[0] = motion.PointerCoords{X: 3, Y: 3}
	d.NotifyMotion(1, 1, motion.ClassPointer, 0, motion.ActionMove, 0, 0, 0, 0, 0, 0, 1, ids, move1)
	d.NotifyMotion(2, 1, motion.ClassPointer, 0, motion.ActionMove, 0, 0, 0, 0, 0, 0, 1, ids, move2)

	d.lock()
	if len(d.inbound.events) != 2 {
		t.Fatalf("got %d inbound events (DOWN + MOVE), want 2 — the two MOVEs should have folded into one", len(d.inbound.events))
	}
	tail, ok := d.inbound.tail().(*motion.Event)
	if !ok {
		t.Fatalf("inbound tail is %T, want *motion.Event", d.inbound.tail())
	}
	samples := tail.Samples()
	d.unlock()

	if len(samples) != 2 {
		t.Fatalf("got %d samples on the batched MOVE, want 2", len(samples))
	}
	if samples[0].Coords[0].X != 2 || samples[1].Coords[0].X != 3 {
		t.Fatalf("batched samples out of order: %+v", samples)
	}
}

func TestNotifyMotionDoesNotBatchAcrossDevices(t *testing.T) {
	d := New(newFakePolicy(), nil)

	var ids [motion.MaxPointers]int32
	var c1, c2 [motion.MaxPointers]motion.PointerCoords
	c1[0] = motion.PointerCoords{X: 1, Y: 1}
	c2[0] = motion.PointerCoords{X: 2, Y: 2}
	d.NotifyMotion(0, 1, motion.ClassPointer, 0, motion.ActionMove, 0, 0, 0, 0, 0, 0, 1, ids, c1)
	d.NotifyMotion(1, 2, motion.ClassPointer, 0, motion.ActionMove, 0, 0, 0, 0, 0, 0, 1, ids, c2)

	d.lock()
	n := len(d.inbound.events)
	d.unlock()
	if n != 2 {
		t.Fatalf("got %d inbound events for two different devices, want 2 (no cross-device batching)", n)
	}
}

func TestNotifyMotionDoesNotBatchInjectedMoves(t *testing.T) {
	d := New(newFakePolicy(), nil)

	var ids [motion.MaxPointers]int32
	var c1, c2 [motion.MaxPointers]motion.PointerCoords
	c1[0] = motion.PointerCoords{X: 1, Y: 1}
	c2[0] = motion.PointerCoords{X: 2, Y: 2}
	d.NotifyMotion(0, 1, motion.ClassPointer, motion.PolicyFlagInjected, motion.ActionMove, 0, 0, 0, 0, 0, 0, 1, ids, c1)
	d.NotifyMotion(1, 1, motion.ClassPointer, motion.PolicyFlagInjected, motion.ActionMove, 0, 0, 0, 0, 0, 0, 1, ids, c2)

	d.lock()
	n := len(d.inbound.events)
	d.unlock()
	if n != 2 {
		t.Fatalf("got %d inbound events for injected MOVEs, want 2 (injected events never batch)", n)
	}
}

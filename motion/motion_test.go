// SPDX-License-Identifier: Unlicense OR MIT

package motion

import "testing"

func TestInitChainEstablishesNonEmptyInvariant(t *testing.T) {
	var e Event
	e.Header.Init(10)
	var coords [MaxPointers]PointerCoords
	coords[0] = PointerCoords{X: 1, Y: 2}
	e.InitChain(10, coords)

	if e.First() == nil {
		t.Fatal("First() is nil after InitChain")
	}
	if e.Last != e.First() {
		t.Fatal("Last does not point at the inline first sample after InitChain")
	}
	if e.First().Coords[0] != coords[0] {
		t.Fatalf("First().Coords[0] = %+v, want %+v", e.First().Coords[0], coords[0])
	}
}

func TestAppendGrowsChainAndMovesTail(t *testing.T) {
	var e Event
	e.Header.Init(0)
	var coords [MaxPointers]PointerCoords
	e.InitChain(0, coords)

	s1 := &Sample{EventTime: 1}
	s2 := &Sample{EventTime: 2}
	e.Append(s1)
	e.Append(s2)

	samples := e.Samples()
	if len(samples) != 3 {
		t.Fatalf("Samples() returned %d entries, want 3", len(samples))
	}
	if samples[1] != s1 || samples[2] != s2 {
		t.Fatal("Append did not preserve insertion order")
	}
	if e.Last != s2 {
		t.Fatal("Last does not point at the most recently appended sample")
	}
}

func TestEventResetPreservesHeader(t *testing.T) {
	var e Event
	e.Header.Init(0)
	var coords [MaxPointers]PointerCoords
	e.InitChain(0, coords)
	e.DeviceID = 3

	e.Reset()

	if e.DeviceID != 0 {
		t.Fatalf("Reset() left stale DeviceID = %d", e.DeviceID)
	}
	if e.RefCount() != 1 {
		t.Fatalf("Reset() disturbed the embedded Header, RefCount() = %d", e.RefCount())
	}
}

func TestSourceIsPointer(t *testing.T) {
	if !ClassPointer.IsPointer() {
		t.Fatal("ClassPointer.IsPointer() = false")
	}
	if ClassNavigation.IsPointer() {
		t.Fatal("ClassNavigation.IsPointer() = true")
	}
}

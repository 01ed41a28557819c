// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"sync"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

// The allocator is a set of fixed-type free lists, one per event
// variant plus one for motion samples and one for dispatch entries,
// using sync.Pool for zero-allocation event handling on the hot path.
// Unlike a generic object pool with a Borrow/Return contract that can
// fail or block (see
// connpool.go for where that tradeoff is instead acceptable),
// sync.Pool.Get never fails and never blocks, matching the invariant
// that every allocation on the hot path is from pools and cannot fail.
var (
	keyEventPool = sync.Pool{New: func() any { return new(key.Event) }}
	motionEventPool = sync.Pool{New: func() any { return new(motion.Event) }}
	motionSamplePool = sync.Pool{New: func() any { return new(motion.Sample) }}
	configEventPool = sync.Pool{New: func() any { return new(event.ConfigChanged) }}
	dispatchEntryPool = sync.Pool{New: func() any { return new(DispatchEntry) }}
)

// obtainKeyEvent returns a fresh key.Event with ref=1 and the common
// header fields initialized.
func obtainKeyEvent(now int64) *key.Event {
	e := keyEventPool.Get().(*key.Event)
	e.Reset()
	e.Header.Init(now)
	return e
}

// obtainMotionEvent returns a fresh motion.Event with its sample
// chain seeded by one inline sample, satisfying the non-empty-chain
// invariant.
func obtainMotionEvent(now int64, coords [motion.MaxPointers]motion.PointerCoords) *motion.Event {
	e := motionEventPool.Get().(*motion.Event)
	e.Reset()
	e.Header.Init(now)
	e.InitChain(now, coords)
	return e
}

func obtainConfigChangedEvent(now int64) *event.ConfigChanged {
	e := configEventPool.Get().(*event.ConfigChanged)
	*e = event.ConfigChanged{}
	e.Header.Init(now)
	return e
}

// appendMotionSample allocates a sample from the pool, fills it, and
// links it after m's current tail — the sole mutation permitted on an
// already-enqueued motion event.
func appendMotionSample(m *motion.Event, eventTime int64, coords [motion.MaxPointers]motion.PointerCoords) *motion.Sample {
	s := motionSamplePool.Get().(*motion.Sample)
	*s = motion.Sample{EventTime: eventTime, Coords: coords}
	m.Append(s)
	return s
}

// releaseMotionSampleChain returns every non-inline sample of m to
// the sample pool and unlinks them from m, leaving only the inline
// first sample. Called only when m itself is being released: the
// last release of a motion event frees every non-inline sample in its
// chain.
func releaseMotionSampleChain(m *motion.Event) {
	s := m.First().Next
	for s != nil {
		next := s.Next
		*s = motion.Sample{}
		motionSamplePool.Put(s)
		s = next
	}
	m.First().Next = nil
	m.Last = m.First()
}

// releaseEvent decrements e's reference count and, if that was the
// last reference, returns it to the pool matching its variant. It
// panics (via event.Header.Release) if pending sync dispatches remain
// outstanding, which would violate the invariant that a
// pending-sync-dispatch event is never released.
func releaseEvent(e event.Event) {
	if !e.Head().Release() {
		return
	}
	switch ev := e.(type) {
	case *key.Event:
		keyEventPool.Put(ev)
	case *motion.Event:
		releaseMotionSampleChain(ev)
		motionEventPool.Put(ev)
	case *event.ConfigChanged:
		configEventPool.Put(ev)
	default:
		panic("dispatch: release of unknown event variant")
	}
}

// obtainDispatchEntry returns a fresh DispatchEntry bound to e,
// acquiring a reference on e's behalf.
func obtainDispatchEntry(e event.Event, flags TargetFlags) *DispatchEntry {
	d := dispatchEntryPool.Get().(*DispatchEntry)
	d.reset()
	d.Event = e
	d.TargetFlags = flags
	e.Head().Acquire()
	if flags&TargetSync != 0 {
		e.Head().PendingSyncDispatches++
	}
	return d
}

// releaseDispatchEntry releases the entry's reference to its event
// and returns the entry itself to its pool.
func releaseDispatchEntry(d *DispatchEntry) {
	ev := d.Event
	d.reset()
	dispatchEntryPool.Put(d)
	if ev != nil {
		releaseEvent(ev)
	}
}

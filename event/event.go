// SPDX-License-Identifier: Unlicense OR MIT

// Package event defines the common envelope shared by every event the
// dispatcher routes: a reference count, injection metadata, and the
// dispatch-in-progress bookkeeping the dispatch cycle needs. Concrete
// event kinds (package key, package motion, and ConfigChanged below)
// embed Header and implement Event.
package event

// Kind identifies which variant of the dispatcher's tagged event union
// a value holds.
type Kind int

const (
	KindConfigChanged Kind = iota
	KindKey
	KindMotion
)

func (k Kind) String() string {
	switch k {
	case KindConfigChanged:
		return "ConfigChanged"
	case KindKey:
		return "Key"
	case KindMotion:
		return "Motion"
	default:
		return "Unknown"
	}
}

// Result is the outcome of an injected event, as returned by
// Dispatcher.Inject.
type Result int32

const (
	ResultPending           Result = -1
	ResultSucceeded         Result = 0
	ResultPermissionDenied  Result = 1
	ResultFailed            Result = 2
	ResultTimedOut          Result = 3
)

// Header is embedded by every concrete event type. It carries the
// fields that are common across the tagged union and that the
// allocator, the ref-counting protocol, and the injection machinery
// all operate on without needing to know the concrete variant.
type Header struct {
	EventTime int64 // monotonic nanoseconds

	refCount int32

	DispatchInProgress bool

	InjectionResult       Result
	IsAsync               bool
	InjectorPID           int32
	InjectorUID           int32
	PendingSyncDispatches int32
}

// Event is the marker interface implemented by every concrete event
// variant (key.Event, motion.Event, ConfigChanged).
type Event interface {
	Head() *Header
	Kind() Kind
}

// Init resets a Header to the state obtain… functions promise: a
// single reference held by the caller, result pending, not injected.
func (h *Header) Init(now int64) {
	h.EventTime = now
	h.refCount = 1
	h.DispatchInProgress = false
	h.InjectionResult = ResultPending
	h.IsAsync = false
	h.InjectorPID = -1
	h.InjectorUID = -1
	h.PendingSyncDispatches = 0
}

// Acquire increments the reference count. Called whenever a
// DispatchEntry or the pending-event slot takes a reference.
func (h *Header) Acquire() {
	h.refCount++
}

// Release decrements the reference count and reports whether this was
// the last reference, in which case the caller must return the event
// to its pool. Releasing with pending sync dispatches still
// outstanding is a programmer error — the dispatcher never does it —
// and panics rather than silently corrupting the pool.
func (h *Header) Release() bool {
	if h.refCount <= 0 {
		panic("event: release of event with no references")
	}
	h.refCount--
	if h.refCount == 0 {
		if h.PendingSyncDispatches != 0 {
			panic("event: release of event with pending sync dispatches")
		}
		return true
	}
	return false
}

// RefCount reports the current reference count, for tests and for the
// key-repeat synthesizer's sole-reference check.
func (h *Header) RefCount() int32 { return h.refCount }

// Injected reports whether the event originated from Dispatcher.Inject.
func (h *Header) Injected() bool { return h.InjectorPID != -1 }

// ConfigChanged is the configuration-change event variant. It carries
// no payload beyond the common header.
type ConfigChanged struct {
	Header
}

func (e *ConfigChanged) Head() *Header { return &e.Header }
func (e *ConfigChanged) Kind() Kind    { return KindConfigChanged }

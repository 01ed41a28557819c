// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"sync"
	"time"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
	"github.com/inputcore/dispatch/policy"
	"github.com/inputcore/dispatch/window"
)

// Dispatcher is the input-event dispatch core. A single instance owns
// the inbound queue, the channel registry, the window list, and every
// connection's outbound queue; exactly one goroutine should ever call
// DispatchOnce at a time, while any number of goroutines
// may call the other public methods concurrently.
type Dispatcher struct {
	mu sync.Mutex

	policy policy.Policy
	looper Looper
	// now returns wall-clock Unix nanoseconds; overridable in tests.
	now func() int64

	inbound  inboundQueue
	commands commandQueue

	channelsByFD map[int]*connChannel
	connections  map[window.ChannelName]*Connection
	active       []*Connection

	windows          []window.InputWindow
	focusedWindowIdx int // -1 if none
	focusedApp       *window.Application

	touch touchSession

	targets targetSnapshot

	repeat repeatState

	appSwitchDueTime time.Time
	hasAppSwitchDue  bool

	throttle throttleState

	anr anrState

	intercept interceptState

	// pending is the single event currently being routed; it is
	// cleared once dispatch for it completes or it is explicitly
	// dropped.
	pending event.Event

	dispatchEnabled bool
	dispatchFrozen  bool

	inject injectState

	connPool *connPool

	cachedKeyRepeatTimeout time.Duration
	cachedKeyRepeatDelay   time.Duration
	cachedMaxEventsPerSec  float64
}

// connChannel pairs a registered *channel.Channel with the
// Connection tracking its dispatch state, indexed by receive fd so
// the event loop can map a readable fd back to its connection.
type connChannel struct {
	conn *Connection
}

// New constructs a Dispatcher. looper may be nil, in which case
// DispatchOnce's timeout-driven blocking is skipped and callers are
// expected to drive DispatchOnce themselves (as dispatcher tests do).
func New(p policy.Policy, looper Looper) *Dispatcher {
	d := &Dispatcher{
		policy:           p,
		looper:           looper,
		now:              func() int64 { return time.Now().UnixNano() },
		channelsByFD:     make(map[int]*connChannel),
		connections:      make(map[window.ChannelName]*Connection),
		focusedWindowIdx: -1,
		dispatchEnabled:  true,
		connPool:         newConnPool(),
	}
	d.touch.clear()
	d.anr.cause = waitNone
	d.inject.init(&d.mu)
	return d
}

func (d *Dispatcher) lock()   { d.mu.Lock() }
func (d *Dispatcher) unlock() { d.mu.Unlock() }

// nowNanos returns the current time in Unix nanoseconds.
func (d *Dispatcher) nowNanos() int64 { return d.now() }

// wake interrupts the event loop's Wait; producers call this after
// enqueueing to inbound and after every state change that could
// unblock the loop early.
func (d *Dispatcher) wake() {
	if d.looper != nil {
		d.looper.Wake()
	}
}

// targetSnapshot is "current targets": valid only while a single
// event is being routed. It is populated by
// start_finding_targets/finish_finding_targets and consumed by the
// dispatch-cycle step that delivers to each target.
type targetSnapshot struct {
	valid bool
	kind  event.Kind
	// primary indexes into d.windows for the focused/touched window;
	// -1 if the snapshot has no primary window target, in which case
	// the event is dropped.
	primaryWindowIdx int
	entries          []targetEntry
}

type targetEntry struct {
	conn    *Connection
	flags   TargetFlags
	xOffset float32
	yOffset float32
	timeout time.Duration
}

func (d *Dispatcher) startFindingTargetsLocked() {
	d.targets = targetSnapshot{primaryWindowIdx: -1}
	d.anr.cause = waitNone
}

func (d *Dispatcher) finishFindingTargetsLocked(windowIdx int, k event.Kind) {
	d.targets.valid = true
	d.targets.kind = k
	d.targets.primaryWindowIdx = windowIdx
}

// repeatState holds the key auto-repeat synthesizer's bookkeeping.
type repeatState struct {
	lastKey        *keyRepeatSource
	nextRepeatTime time.Time
	hasNextRepeat  bool
}

// keyRepeatSource remembers enough about the most recent key DOWN to
// either adopt a driver-generated repeat or synthesize our own. It
// intentionally does not hold a reference to the pooled event it was
// derived from — the repeat synthesizer builds fresh state, not
// aliases into events that may already be released.
type keyRepeatSource struct {
	deviceID    int32
	source      uint32
	keyCode     int32
	scanCode    int32
	metaState   uint32
	policyFlags uint32
	downTime    int64
	repeatCount int32
	// lastEvent, if non-nil and its ref count is 1, is mutated in
	// place by repeatDueLocked rather than reallocated.
	lastEvent *key.Event
}

// throttleState is the motion-throttling bookkeeping: minBetween plus
// the (device, source) of the last delivered MOVE.
type throttleState struct {
	minBetween    time.Duration
	lastDeviceID  int32
	lastSource    motion.Source
	lastEventTime int64
	have          bool
}

// anrState is the single wait-for-targets context.
type anrState struct {
	cause       waitCause
	startTime   time.Time
	timeoutTime time.Time
	hasTimeout  bool
	expired     bool

	// timeout is the window's (or, failing that, the focused
	// application's) dispatching_timeout, captured when the wait
	// begins; waitSystemNotReady ignores it and never times out.
	timeout time.Duration
	app     window.ApplicationHandle
	hasApp  bool
}

// interceptState tracks the single outstanding
// InterceptKeyBeforeDispatching call: at most one key event is ever
// awaiting Policy's answer, since the dispatcher only works on one
// pending event at a time. forEvent identifies which event the
// verdict belongs to, so a verdict that resolves after its event was
// dropped (dispatch disabled, target wait abandoned) is never
// mistaken for the answer to whatever unrelated event is pending next.
type interceptState struct {
	inFlight bool
	ready    bool
	result   bool
	forEvent *key.Event
}

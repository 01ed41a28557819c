// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"sync"
	"time"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

// injectState holds the two condition variables an injecting
// goroutine blocks on inside Inject: one signaled
// whenever any event's InjectionResult resolves, one signaled
// whenever any event's PendingSyncDispatches reaches zero. Both share
// the dispatcher's own lock so a signal is never missed between
// checking the predicate and waiting on it.
type injectState struct {
	once         sync.Once
	resultCond   *sync.Cond
	finishedCond *sync.Cond
}

func (s *injectState) init(mu *sync.Mutex) {
	s.once.Do(func() {
		s.resultCond = sync.NewCond(mu)
		s.finishedCond = sync.NewCond(mu)
	})
}

// Inject enqueues e as an injected event on behalf of (injectorPID,
// injectorUID). For SyncNone it returns as soon as
// the event is queued; for SyncWaitForResult and SyncWaitForFinished
// it blocks (up to timeout, or indefinitely if timeout<=0) until the
// corresponding header field resolves.
//
// Inject acquires its own reference on e for the duration of any
// wait, so the event cannot be recycled out from under the read of
// its header fields even after every real target has released its
// own reference.
func (d *Dispatcher) Inject(e event.Event, injectorPID, injectorUID int32, mode SyncMode, timeout time.Duration) (event.Result, error) {
	if err := validateInjectedEvent(e); err != nil {
		return event.ResultFailed, err
	}

	d.lock()
	if !d.policy.CheckInjectEventsPermission(injectorPID, injectorUID) {
		d.unlock()
		return event.ResultPermissionDenied, ErrPermissionDenied
	}
	h := e.Head()
	h.InjectorPID = injectorPID
	h.InjectorUID = injectorUID
	h.IsAsync = mode == SyncNone
	if mode != SyncNone {
		h.Acquire()
	}
	d.inbound.pushBack(e)
	d.unlock()
	d.wake()

	if mode == SyncNone {
		return event.ResultPending, nil
	}
	defer releaseEvent(e)

	var deadline time.Time
	hasDeadline := timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(timeout)
	}
	stop := make(chan struct{})
	if hasDeadline {
		go func() {
			t := time.NewTimer(timeout)
			defer t.Stop()
			select {
			case <-t.C:
				d.lock()
				d.inject.resultCond.Broadcast()
				d.inject.finishedCond.Broadcast()
				d.unlock()
			case <-stop:
			}
		}()
		defer close(stop)
	}

	d.lock()
	defer d.unlock()

	switch mode {
	case SyncWaitForResult:
		for h.InjectionResult == event.ResultPending {
			if hasDeadline && !time.Now().Before(deadline) {
				return event.ResultTimedOut, nil
			}
			d.inject.resultCond.Wait()
		}
		return h.InjectionResult, nil
	case SyncWaitForFinished:
		for h.InjectionResult == event.ResultPending {
			if hasDeadline && !time.Now().Before(deadline) {
				return event.ResultTimedOut, nil
			}
			d.inject.resultCond.Wait()
		}
		if h.InjectionResult != event.ResultSucceeded {
			return h.InjectionResult, nil
		}
		for h.PendingSyncDispatches > 0 {
			if hasDeadline && !time.Now().Before(deadline) {
				return event.ResultTimedOut, nil
			}
			d.inject.finishedCond.Wait()
		}
		return h.InjectionResult, nil
	default:
		return event.ResultPending, nil
	}
}

// validateInjectedEvent rejects malformed injected events before they
// ever reach the inbound queue: motions with a pointer count outside
// [1, MaxPointers] or an unrecognized action, and keys with an
// unrecognized action.
func validateInjectedEvent(e event.Event) error {
	switch ev := e.(type) {
	case *motion.Event:
		if ev.PointerCount < 1 || ev.PointerCount > motion.MaxPointers {
			return ErrInvalidPointers
		}
		switch ev.Action {
		case motion.ActionDown, motion.ActionMove, motion.ActionUp, motion.ActionCancel, motion.ActionOutside:
		default:
			return ErrInvalidAction
		}
	case *key.Event:
		switch ev.Action {
		case key.ActionDown, key.ActionUp:
		default:
			return ErrInvalidAction
		}
	}
	return nil
}

// resolveInjectionResultLocked records res on e's header and wakes
// any injector waiting on SyncWaitForResult. Called from the
// dispatch-cycle finish path, with the lock held.
func (d *Dispatcher) resolveInjectionResultLocked(e event.Event, res event.Result) {
	h := e.Head()
	if !h.Injected() {
		return
	}
	if h.InjectionResult == event.ResultPending {
		h.InjectionResult = res
	}
	if d.inject.resultCond != nil {
		d.inject.resultCond.Broadcast()
	}
}

// notifyFinishedDispatchLocked wakes any injector waiting on
// SyncWaitForFinished once PendingSyncDispatches has been
// decremented to zero by the caller.
func (d *Dispatcher) notifyFinishedDispatchLocked() {
	if d.inject.finishedCond != nil {
		d.inject.finishedCond.Broadcast()
	}
}

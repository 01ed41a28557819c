// SPDX-License-Identifier: Unlicense OR MIT

// Package policy defines the callback surface the dispatcher defers
// to a command queue so it is never invoked while the dispatcher's
// lock is held. Implementations may be slow and re-entrant; the
// dispatcher treats every method here as potentially calling back
// into the public API.
package policy

import (
	"time"

	"github.com/inputcore/dispatch/channel"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/window"
)

// UserActivityType classifies a poke_user_activity notification.
type UserActivityType int

const (
	ActivityButton UserActivityType = iota
	ActivityTouch
	ActivityTouchUp
	ActivityLongTouch
)

// Policy is the window manager's callback surface. Every notification
// and intercept method here is called only from a deferred command,
// and the three tunable getters are called by RefreshPolicyTunables
// before it takes the lock; none is called with the dispatcher's lock
// held, except CheckInjectEventsPermission, which is non-reentrant and
// safe to call locked.
type Policy interface {
	NotifyConfigurationChanged(eventTime int64)
	NotifyInputChannelBroken(ch *channel.Channel)
	// NotifyInputChannelANR returns the additional time to wait, or a
	// non-positive duration to give up.
	NotifyInputChannelANR(ch *channel.Channel) time.Duration
	NotifyInputChannelRecovered(ch *channel.Channel)
	// NotifyANR is the application-handle analogue of
	// NotifyInputChannelANR, used when waiting on a focused
	// application that has no window yet.
	NotifyANR(app window.ApplicationHandle) time.Duration
	// InterceptKeyBeforeDispatching reports whether the event was
	// fully consumed by the policy and should not be delivered.
	InterceptKeyBeforeDispatching(ch *channel.Channel, e *key.Event, policyFlags uint32) (consumed bool)
	PokeUserActivity(eventTime int64, windowType int32, activity UserActivityType)
	// CheckInjectEventsPermission may be called with the dispatcher
	// lock held; implementations must not re-enter the dispatcher.
	CheckInjectEventsPermission(injectorPID, injectorUID int32) bool

	KeyRepeatTimeout() time.Duration
	KeyRepeatDelay() time.Duration
	MaxEventsPerSecond() float64
}

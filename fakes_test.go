// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/channel"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
	"github.com/inputcore/dispatch/policy"
	"github.com/inputcore/dispatch/window"
)

// fakePolicy is a minimal policy.Policy used across the dispatcher's
// own tests: a hand-written test double rather than a generated mock.
type fakePolicy struct {
	keyRepeatTimeout time.Duration
	keyRepeatDelay   time.Duration
	maxEventsPerSec  float64

	anrGrant        time.Duration
	interceptResult bool

	interceptCalls []*key.Event
	brokenCalls    []*channel.Channel
	anrCalls       []*channel.Channel
	pokeCalls      []policy.UserActivityType
}

func newFakePolicy() *fakePolicy {
	return &fakePolicy{
		keyRepeatTimeout: 500 * time.Millisecond,
		keyRepeatDelay:   50 * time.Millisecond,
		maxEventsPerSec:  0,
	}
}

func (p *fakePolicy) NotifyConfigurationChanged(eventTime int64) {}
func (p *fakePolicy) NotifyInputChannelBroken(ch *channel.Channel) {
	p.brokenCalls = append(p.brokenCalls, ch)
}
func (p *fakePolicy) NotifyInputChannelANR(ch *channel.Channel) time.Duration {
	p.anrCalls = append(p.anrCalls, ch)
	return p.anrGrant
}
func (p *fakePolicy) NotifyInputChannelRecovered(ch *channel.Channel) {}
func (p *fakePolicy) NotifyANR(app window.ApplicationHandle) time.Duration {
	return p.anrGrant
}
func (p *fakePolicy) InterceptKeyBeforeDispatching(ch *channel.Channel, e *key.Event, policyFlags uint32) bool {
	p.interceptCalls = append(p.interceptCalls, e)
	return p.interceptResult
}
func (p *fakePolicy) PokeUserActivity(eventTime int64, windowType int32, activity policy.UserActivityType) {
	p.pokeCalls = append(p.pokeCalls, activity)
}
func (p *fakePolicy) CheckInjectEventsPermission(injectorPID, injectorUID int32) bool { return true }
func (p *fakePolicy) KeyRepeatTimeout() time.Duration                                 { return p.keyRepeatTimeout }
func (p *fakePolicy) KeyRepeatDelay() time.Duration                                   { return p.keyRepeatDelay }
func (p *fakePolicy) MaxEventsPerSecond() float64                                     { return p.maxEventsPerSec }

// fakePublisher records every published event instead of writing to a
// real transport, and never exposes a receive fd, so tests drive the
// finished-signal path directly through finishDispatchCycleLocked
// rather than through a Looper.
type fakePublisher struct {
	keys        []*key.Event
	motions     []*motion.Event
	motionFlags []uint32
	closed      bool
}

func (p *fakePublisher) PublishKey(e *key.Event, flags uint32, xOffset, yOffset float32) error {
	p.keys = append(p.keys, e)
	return nil
}
func (p *fakePublisher) PublishMotion(e *motion.Event, flags uint32, xOffset, yOffset float32, first *motion.Sample) error {
	p.motions = append(p.motions, e)
	p.motionFlags = append(p.motionFlags, flags)
	return nil
}
func (p *fakePublisher) AppendMotionSample(eventTime int64, coords [motion.MaxPointers]motion.PointerCoords) channel.AppendResult {
	return channel.AppendOK
}
func (p *fakePublisher) SendDispatchSignal() error            { return nil }
func (p *fakePublisher) ReceiveFinishedSignal() (bool, error) { return true, nil }
func (p *fakePublisher) Reset() error                         { return nil }
func (p *fakePublisher) ReceiveFD() int                       { return -1 }
func (p *fakePublisher) Close() error                         { p.closed = true; return nil }

func newFakeChannel(name string) *channel.Channel {
	return &channel.Channel{Name: name, Publisher: &fakePublisher{}}
}

func windowFor(name string, ch window.ChannelName, frame window.Rect, flags window.Flags) window.InputWindow {
	return window.InputWindow{
		Name:               name,
		Channel:            ch,
		Flags:              flags | window.FlagVisible | window.FlagTouchable,
		Frame:              frame,
		TouchableRegion:    frame,
		DispatchingTimeout: DefaultDispatchingTimeout,
	}
}

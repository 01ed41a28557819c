// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"log/slog"
	"time"

	"github.com/inputcore/dispatch/channel"
	"github.com/inputcore/dispatch/config"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/policy"
	"github.com/inputcore/dispatch/window"
)

// loggingPolicy is a minimal Policy that logs every callback and
// answers ANR escalations by giving up immediately; it exists so the
// daemon binary has something concrete to wire the dispatcher to
// without depending on a real window manager.
type loggingPolicy struct {
	log *slog.Logger
	cfg config.Config
}

func newLoggingPolicy(log *slog.Logger, cfg config.Config) *loggingPolicy {
	return &loggingPolicy{log: log, cfg: cfg}
}

func (p *loggingPolicy) NotifyConfigurationChanged(eventTime int64) {
	p.log.Debug("configuration changed", "eventTime", eventTime)
}

func (p *loggingPolicy) NotifyInputChannelBroken(ch *channel.Channel) {
	p.log.Warn("input channel broken", "channel", ch.Name)
}

func (p *loggingPolicy) NotifyInputChannelANR(ch *channel.Channel) time.Duration {
	p.log.Warn("input channel not responding", "channel", ch.Name)
	return 0
}

func (p *loggingPolicy) NotifyInputChannelRecovered(ch *channel.Channel) {
	p.log.Info("input channel recovered", "channel", ch.Name)
}

func (p *loggingPolicy) NotifyANR(app window.ApplicationHandle) time.Duration {
	p.log.Warn("application not responding", "app", app)
	return 0
}

func (p *loggingPolicy) InterceptKeyBeforeDispatching(ch *channel.Channel, e *key.Event, policyFlags uint32) bool {
	return false
}

func (p *loggingPolicy) PokeUserActivity(eventTime int64, windowType int32, activity policy.UserActivityType) {
	p.log.Debug("user activity", "eventTime", eventTime, "activity", activity)
}

func (p *loggingPolicy) CheckInjectEventsPermission(injectorPID, injectorUID int32) bool {
	return injectorUID == 0
}

func (p *loggingPolicy) KeyRepeatTimeout() time.Duration { return p.cfg.KeyRepeat.Timeout }
func (p *loggingPolicy) KeyRepeatDelay() time.Duration   { return p.cfg.KeyRepeat.Delay }
func (p *loggingPolicy) MaxEventsPerSecond() float64     { return p.cfg.Events.MaxPerSecond }

// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "time"

// TargetFlags is a bit-set describing how a DispatchEntry's event
// should be delivered and tracked.
type TargetFlags uint32

const (
	TargetSync           TargetFlags = 1 << 0
	TargetOutside        TargetFlags = 1 << 1
	TargetCancel         TargetFlags = 1 << 2
	TargetWindowObscured TargetFlags = 1 << 3
)

// SyncMode selects how Dispatcher.Inject waits for the injected
// event's progress.
type SyncMode int

const (
	SyncNone SyncMode = iota
	SyncWaitForResult
	SyncWaitForFinished
)

// Fixed tunables. The dispatcher reads these constants directly; no
// Dispatcher field or package config setting overrides them.
// DefaultDispatchingTimeout applies only where a window or the
// focused application carries no dispatching timeout of its own.
const (
	DefaultDispatchingTimeout = 5 * time.Second
	AppSwitchTimeout          = 500 * time.Millisecond
	LongTouchThreshold        = 300 * time.Millisecond
)

// waitCause identifies why target selection is blocked waiting for a
// window or application to become ready.
type waitCause int

const (
	waitNone waitCause = iota
	waitSystemNotReady
	waitApplicationNotReady
)

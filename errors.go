// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "errors"

// Sentinel errors surfaced through the injection return code or
// through log records; none of these escape the dispatcher goroutine
// as panics.
var (
	ErrNoTarget          = errors.New("dispatch: no target for event")
	ErrPermissionDenied  = errors.New("dispatch: injection permission denied")
	ErrInvalidPointers   = errors.New("dispatch: invalid pointer count")
	ErrInvalidAction     = errors.New("dispatch: invalid action")
	ErrChannelNotFound   = errors.New("dispatch: channel not registered")
	ErrChannelBroken     = errors.New("dispatch: channel broken")
	ErrAlreadyRegistered = errors.New("dispatch: channel already registered")
)

// SPDX-License-Identifier: Unlicense OR MIT

// Package dispatch implements the input-event dispatch core of a
// window/compositor stack: it receives raw key and pointer events
// from a reader, selects which registered channel should receive
// each one, serializes delivery per channel, enforces per-channel
// response deadlines, and surfaces application-not-responding
// conditions to a Policy. It also supports synthetic injection of
// events with three synchronization modes.
//
// The dispatcher owns a single mutex that serializes all of its
// state. Internal methods that assume the lock is already held are
// suffixed Locked; the only place the lock is ever released mid
// operation is runCommands, which is how Policy is called without
// ever holding the lock across a potentially slow, re-entrant call.
package dispatch

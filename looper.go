// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "time"

// Looper is the event-loop collaborator: a pollable wait primitive
// with a timeout, plus wake(). The dispatcher thread blocks only here;
// the two injection condition variables (inject.go) are waited on by
// goroutines calling Inject, not by the dispatcher thread. Package
// loop provides a unix.Poll-backed implementation; tests use a fake
// that never actually blocks.
type Looper interface {
	// RegisterFD starts polling fd for readability.
	RegisterFD(fd int)
	// UnregisterFD stops polling fd.
	UnregisterFD(fd int)
	// Wait blocks until timeout elapses, a registered fd becomes
	// readable, or Wake is called, returning the fds that are ready.
	Wait(timeout time.Duration) (readyFDs []int, err error)
	// Wake interrupts a concurrent or future Wait.
	Wake()
}

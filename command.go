// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

// postCommandLocked defers fn to run after the dispatcher's lock is
// released: Policy callbacks, and anything that might call back into
// the public API, must never run while mu is held.
func (d *Dispatcher) postCommandLocked(fn func(d *Dispatcher)) {
	d.commands.pushBack(commandEntry{run: fn})
}

// runCommands drains the command queue with the lock released between
// each entry, so a command that itself calls back into a public
// method (which re-acquires the lock) cannot deadlock. It must be
// called with the lock NOT held.
func (d *Dispatcher) runCommands() {
	for {
		d.lock()
		c, ok := d.commands.popFront()
		d.unlock()
		if !ok {
			return
		}
		c.run(d)
	}
}

// hasCommandsLocked reports whether any deferred command is queued.
func (d *Dispatcher) hasCommandsLocked() bool {
	return !d.commands.isEmpty()
}

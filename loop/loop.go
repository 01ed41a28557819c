// SPDX-License-Identifier: Unlicense OR MIT

// Package loop provides a unix.Poll-backed implementation of the
// dispatcher's Looper interface. It multiplexes every registered fd
// against a self-pipe used purely to interrupt a blocked poll from
// another goroutine.
package loop

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Poller polls a set of registered fds for readability, plus an
// internal self-pipe so Wake can interrupt a blocked Wait from any
// goroutine.
type Poller struct {
	mu  sync.Mutex
	fds []int

	wakeRead, wakeWrite int
}

// New creates a Poller. The self-pipe is opened non-blocking and
// close-on-exec, matching os_x11.go's notify pipe.
func New() (*Poller, error) {
	var pipe [2]int
	if err := unix.Pipe2(pipe[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	return &Poller{wakeRead: pipe[0], wakeWrite: pipe[1]}, nil
}

// RegisterFD starts polling fd for readability.
func (p *Poller) RegisterFD(fd int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.fds {
		if existing == fd {
			return
		}
	}
	p.fds = append(p.fds, fd)
}

// UnregisterFD stops polling fd.
func (p *Poller) UnregisterFD(fd int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.fds {
		if existing == fd {
			p.fds = append(p.fds[:i], p.fds[i+1:]...)
			return
		}
	}
}

// Wait blocks until timeout elapses, a registered fd becomes
// readable, or Wake is called, per os_x11.go's syscall.Poll(pollfds,
// -1) loop generalized to accept a bounded timeout and an arbitrary
// fd set.
func (p *Poller) Wait(timeout time.Duration) ([]int, error) {
	p.mu.Lock()
	fds := append([]int(nil), p.fds...)
	p.mu.Unlock()

	pollfds := make([]unix.PollFd, len(fds)+1)
	for i, fd := range fds {
		pollfds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}
	wakeIdx := len(fds)
	pollfds[wakeIdx] = unix.PollFd{Fd: int32(p.wakeRead), Events: unix.POLLIN}

	ms := int(timeout / time.Millisecond)
	if timeout < 0 {
		ms = -1
	}

	for {
		_, err := unix.Poll(pollfds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	if pollfds[wakeIdx].Revents&unix.POLLIN != 0 {
		var buf [64]byte
		for {
			_, err := unix.Read(p.wakeRead, buf[:])
			if err != nil {
				break
			}
		}
	}

	var ready []int
	for i, fd := range fds {
		if pollfds[i].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready = append(ready, fd)
		}
	}
	return ready, nil
}

// Wake interrupts a concurrent or future Wait, per os_x11.go's
// one-byte self-pipe write.
func (p *Poller) Wake() {
	var b [1]byte
	_, err := unix.Write(p.wakeWrite, b[:])
	if err != nil && err != unix.EAGAIN {
		// A full pipe still guarantees a pending byte will wake the
		// next Wait; nothing else to do here.
		_ = err
	}
}

// Close releases the self-pipe's file descriptors.
func (p *Poller) Close() error {
	_ = unix.Close(p.wakeWrite)
	return unix.Close(p.wakeRead)
}

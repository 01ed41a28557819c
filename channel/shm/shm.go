// SPDX-License-Identifier: Unlicense OR MIT

// Package shm implements channel.Publisher over a memfd-backed shared
// memory region plus a pair of eventfds. The dispatcher writes each
// event into the ring as a fixed-size record and signals the
// consumer's eventfd; the consumer acks back over a second eventfd
// whose read end Transport exposes via ReceiveFD for the event loop
// to poll.
package shm

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/inputcore/dispatch/channel"
	"github.com/inputcore/dispatch/key"
	"github.com/inputcore/dispatch/motion"
)

const (
	defaultRingSize  = 64 * 1024
	recordHeaderSize = 8 // kind (u32) + length (u32)

	kindKey    = 1
	kindMotion = 2
)

// Transport is the dispatcher-side half of a shared-memory channel.
type Transport struct {
	mu sync.Mutex

	fd   int
	data []byte
	woff int

	dispatchEventFD int
	finishedEventFD int
}

// New creates a Transport backed by a freshly allocated anonymous
// shared-memory file of size bytes (defaultRingSize if size<=0).
func New(size int) (*Transport, error) {
	if size <= 0 {
		size = defaultRingSize
	}
	fd, err := createAnonymousFile(int64(size))
	if err != nil {
		return nil, fmt.Errorf("shm: create anonymous file: %w", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}
	dispatchFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("shm: eventfd: %w", err)
	}
	finishedFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(dispatchFD)
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("shm: eventfd: %w", err)
	}
	return &Transport{fd: fd, data: data, dispatchEventFD: dispatchFD, finishedEventFD: finishedFD}, nil
}

// createAnonymousFile mirrors scm_linux.go's CreateAnonymousFile:
// memfd_create with sealing, falling back to O_TMPFILE, falling back
// to create-then-unlink.
func createAnonymousFile(size int64) (int, error) {
	fd, err := unix.MemfdCreate("dispatch-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		if err := unix.Ftruncate(fd, size); err != nil {
			unix.Close(fd)
			return -1, err
		}
		_, err = unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_GROW|unix.F_SEAL_SEAL)
		if err != nil {
			unix.Close(fd)
			return -1, err
		}
		return fd, nil
	}

	fd, err = unix.Open("/dev/shm", unix.O_TMPFILE|unix.O_RDWR|unix.O_CLOEXEC, 0600)
	if err == nil {
		if err := unix.Ftruncate(fd, size); err != nil {
			unix.Close(fd)
			return -1, err
		}
		return fd, nil
	}

	name := fmt.Sprintf("/dev/shm/dispatch-%d", unix.Getpid())
	fd, err = unix.Open(name, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0600)
	if err != nil {
		return -1, err
	}
	_ = unix.Unlink(name)
	if err := unix.Ftruncate(fd, size); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func (t *Transport) writeRecord(kind uint32, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	need := recordHeaderSize + len(payload)
	if t.woff+need > len(t.data) {
		t.woff = 0
		if need > len(t.data) {
			return fmt.Errorf("shm: record of %d bytes exceeds ring size %d", need, len(t.data))
		}
	}
	binary.LittleEndian.PutUint32(t.data[t.woff:], kind)
	binary.LittleEndian.PutUint32(t.data[t.woff+4:], uint32(len(payload)))
	copy(t.data[t.woff+recordHeaderSize:], payload)
	t.woff += need
	return nil
}

// PublishKey serializes e's delivered fields into the ring and signals
// the consumer's dispatch eventfd.
func (t *Transport) PublishKey(e *key.Event, flags uint32, xOffset, yOffset float32) error {
	buf := make([]byte, 40)
	binary.LittleEndian.PutUint32(buf[0:], uint32(e.DeviceID))
	binary.LittleEndian.PutUint32(buf[4:], e.Source)
	binary.LittleEndian.PutUint32(buf[8:], flags)
	binary.LittleEndian.PutUint32(buf[12:], uint32(e.Action))
	binary.LittleEndian.PutUint32(buf[16:], uint32(e.KeyCode))
	binary.LittleEndian.PutUint32(buf[20:], uint32(e.ScanCode))
	binary.LittleEndian.PutUint32(buf[24:], e.MetaState)
	binary.LittleEndian.PutUint64(buf[28:], uint64(e.DownTime))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(xOffset))
	if err := t.writeRecord(kindKey, buf); err != nil {
		return err
	}
	return t.signal(t.dispatchEventFD)
}

// PublishMotion serializes the samples from first onward into the
// ring and signals the consumer's dispatch eventfd.
func (t *Transport) PublishMotion(e *motion.Event, flags uint32, xOffset, yOffset float32, first *motion.Sample) error {
	samples := 0
	for s := first; s != nil; s = s.Next {
		samples++
	}
	action := e.Action
	if flags&channel.FlagOutside != 0 {
		action = motion.ActionOutside
	}

	buf := make([]byte, 24+samples*motion.MaxPointers*8)
	binary.LittleEndian.PutUint32(buf[0:], uint32(e.DeviceID))
	binary.LittleEndian.PutUint32(buf[4:], uint32(e.Src))
	binary.LittleEndian.PutUint32(buf[8:], flags)
	binary.LittleEndian.PutUint32(buf[12:], uint32(action))
	binary.LittleEndian.PutUint32(buf[16:], uint32(e.PointerCount))
	binary.LittleEndian.PutUint32(buf[20:], uint32(samples))
	off := 24
	for s := first; s != nil; s = s.Next {
		for p := 0; p < motion.MaxPointers; p++ {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(s.Coords[p].X))
			binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(s.Coords[p].Y))
			off += 8
		}
	}
	if err := t.writeRecord(kindMotion, buf); err != nil {
		return err
	}
	return t.signal(t.dispatchEventFD)
}

// AppendMotionSample is a no-op at the transport level in this
// implementation: the dispatcher's own motion.Event.Append already
// grows the sample chain before PublishMotion serializes it, and a
// stream that was already published cannot be retroactively amended
// without the consumer's cooperation, which Android's real memory
// layout affords and this ring buffer does not.
func (t *Transport) AppendMotionSample(eventTime int64, coords [motion.MaxPointers]motion.PointerCoords) channel.AppendResult {
	return channel.AppendOK
}

// SendDispatchSignal signals the dispatch eventfd without a
// corresponding record, used when a caller needs to nudge the
// consumer outside of PublishKey/PublishMotion (e.g. after Reset).
func (t *Transport) SendDispatchSignal() error {
	return t.signal(t.dispatchEventFD)
}

// ReceiveFinishedSignal drains the finished eventfd and reports
// whether the consumer flagged its own handling as "consumed" via the
// low bit of the accumulated counter.
func (t *Transport) ReceiveFinishedSignal() (bool, error) {
	var buf [8]byte
	n, err := unix.Read(t.finishedEventFD, buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return false, nil
		}
		return false, err
	}
	if n != 8 {
		return false, fmt.Errorf("shm: short eventfd read: %d bytes", n)
	}
	count := binary.LittleEndian.Uint64(buf[:])
	return count&1 != 0, nil
}

// Reset rewinds the ring's write offset, used after a consumer that
// fell behind is given up on and its channel is about to be reused.
func (t *Transport) Reset() error {
	t.mu.Lock()
	t.woff = 0
	t.mu.Unlock()
	return nil
}

// ReceiveFD returns the finished-signal eventfd for the event loop to
// poll for readability.
func (t *Transport) ReceiveFD() int { return t.finishedEventFD }

// Close unmaps the shared region and closes every owned fd.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var firstErr error
	if t.data != nil {
		if err := unix.Munmap(t.data); err != nil && firstErr == nil {
			firstErr = err
		}
		t.data = nil
	}
	for _, fd := range []int{t.fd, t.dispatchEventFD, t.finishedEventFD} {
		if fd >= 0 {
			if err := unix.Close(fd); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

var _ channel.Publisher = (*Transport)(nil)

func (t *Transport) signal(fd int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(fd, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

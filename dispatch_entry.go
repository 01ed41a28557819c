// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"time"

	"github.com/inputcore/dispatch/event"
	"github.com/inputcore/dispatch/motion"
)

// DispatchEntry is one per-connection unit of outbound work: a
// reference to an event, the flags and offsets computed for this
// particular target, and for motion events the resumption points
// used by streaming and multi-cycle delivery.
type DispatchEntry struct {
	Event event.Event

	TargetFlags TargetFlags
	XOffset     float32
	YOffset     float32
	Timeout     time.Duration

	InProgress bool

	// HeadSample is where this cycle resumes from; nil means "start
	// at the event's own first sample". TailSample holds whatever did
	// not fit in the transport buffer and must start the next cycle.
	HeadSample *motion.Sample
	TailSample *motion.Sample

	// queue linkage; entries live on exactly one Connection's
	// outbound slice at a time, addressed by index rather than by
	// pointer chasing, which is the idiomatic Go rendering of an
	// intrusive queue without reproducing a sentinel-node pattern
	// literally.
}

func (d *DispatchEntry) reset() {
	d.Event = nil
	d.TargetFlags = 0
	d.XOffset = 0
	d.YOffset = 0
	d.Timeout = 0
	d.InProgress = false
	d.HeadSample = nil
	d.TailSample = nil
}

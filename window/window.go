// SPDX-License-Identifier: Unlicense OR MIT

// Package window holds the window-manager-supplied data the target
// selector consults: the input window list, per-window flags and
// geometry, and the opaque application handle used for focus without
// a window.
package window

import "time"

// Flags is a bit-set of per-window properties that the touched-window
// and focused-window selectors consult.
type Flags uint32

const (
	FlagNotFocusable     Flags = 1 << 0
	FlagNotTouchModal    Flags = 1 << 1
	FlagWatchOutsideTouch Flags = 1 << 2
	FlagSystemError      Flags = 1 << 3
	FlagHasWallpaper     Flags = 1 << 4
	FlagPaused           Flags = 1 << 5
	FlagVisible          Flags = 1 << 6
	FlagTouchable        Flags = 1 << 7
)

// Rect is an axis-aligned rectangle in screen coordinates.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Contains reports whether the point (x, y) falls within the rect.
func (r Rect) Contains(x, y float32) bool {
	return x >= float32(r.Left) && x < float32(r.Right) &&
		y >= float32(r.Top) && y < float32(r.Bottom)
}

// Intersects reports whether two rects overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right &&
		r.Top < o.Bottom && o.Top < r.Bottom
}

// ApplicationHandle is an opaque key supplied by the window manager
// to identify an application independent of any particular window.
// It is never dereferenced by the dispatcher, only compared and
// handed back to Policy.
type ApplicationHandle any

// Application is the focused-application record consulted when no
// focused window exists yet.
type Application struct {
	Handle             ApplicationHandle
	DispatchingTimeout time.Duration
}

// Channel identifies, by name, the channel a window is bound to
// without import-cycling on package channel; the dispatcher resolves
// the name to a live *channel.Channel via its registry.
type ChannelName string

// InputWindow is one entry of the window list supplied to
// SetInputWindows, in front-to-back hit-test order.
type InputWindow struct {
	Name    string
	Channel ChannelName
	// Monitor marks a read-only observer channel that receives every
	// event regardless of targeting; it is never hit-tested and never
	// becomes the focused or touched window.
	Monitor bool

	Flags Flags

	// Frame is the window's full visible frame, used for obscured
	// checks and as the offset subtracted from pointer coordinates
	// delivered to the window.
	Frame Rect
	// TouchableRegion is the area within Frame that accepts DOWN
	// events; callers that want the whole frame touchable set it
	// equal to Frame.
	TouchableRegion Rect

	DispatchingTimeout time.Duration

	ApplicationHandle ApplicationHandle
}

func (w *InputWindow) IsVisible() bool   { return w.Flags&FlagVisible != 0 }
func (w *InputWindow) IsTouchable() bool { return w.Flags&FlagTouchable != 0 }
func (w *InputWindow) IsPaused() bool    { return w.Flags&FlagPaused != 0 }

// IsTouchModal reports whether the window accepts a DOWN anywhere in
// its frame rather than only within its touchable region: neither
// NotFocusable nor NotTouchModal is set.
func (w *InputWindow) IsTouchModal() bool {
	return w.Flags&(FlagNotFocusable|FlagNotTouchModal) == 0
}

func (w *InputWindow) WatchesOutsideTouch() bool { return w.Flags&FlagWatchOutsideTouch != 0 }
func (w *InputWindow) IsSystemError() bool       { return w.Flags&FlagSystemError != 0 }
func (w *InputWindow) HasWallpaper() bool        { return w.Flags&FlagHasWallpaper != 0 }

// VisibleFrame is the frame used by obscured checks; a non-visible
// window never participates.
func (w *InputWindow) VisibleFrame() (Rect, bool) {
	if !w.IsVisible() {
		return Rect{}, false
	}
	return w.Frame, true
}

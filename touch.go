// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "github.com/inputcore/dispatch/window"

// touchSession binds all non-DOWN pointer events to the window that
// received the DOWN that started the stream.
type touchSession struct {
	down bool
	// windowIdx indexes d.windows, or -1 if there is no touched
	// window. Indices rather than pointers so the session survives
	// SetInputWindows replacing the backing slice as long as the
	// caller re-resolves it: the touched window must be
	// cleared/re-resolved whenever the window list changes.
	windowIdx int
	obscured  bool
	// wallpaperChannels snapshots the wallpaper window channel names
	// at the moment the session started.
	wallpaperChannels []window.ChannelName
}

func (t *touchSession) clear() {
	*t = touchSession{windowIdx: -1}
}

func (t *touchSession) hasWindow() bool { return t.windowIdx >= 0 }

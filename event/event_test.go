// SPDX-License-Identifier: Unlicense OR MIT

package event

import "testing"

func TestHeaderInit(t *testing.T) {
	var h Header
	h.Init(100)
	if h.RefCount() != 1 {
		t.Fatalf("RefCount() = %d, want 1", h.RefCount())
	}
	if h.InjectionResult != ResultPending {
		t.Fatalf("InjectionResult = %v, want ResultPending", h.InjectionResult)
	}
	if h.Injected() {
		t.Fatal("freshly initialized header reports Injected()")
	}
}

func TestHeaderAcquireRelease(t *testing.T) {
	var h Header
	h.Init(0)
	h.Acquire()
	if h.RefCount() != 2 {
		t.Fatalf("RefCount() = %d, want 2", h.RefCount())
	}
	if h.Release() {
		t.Fatal("Release() reported last reference too early")
	}
	if !h.Release() {
		t.Fatal("Release() did not report last reference")
	}
}

func TestHeaderReleaseWithoutReferencesPanics(t *testing.T) {
	var h Header
	h.Init(0)
	h.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic releasing an already-released header")
		}
	}()
	h.Release()
}

func TestHeaderReleaseWithPendingSyncDispatchesPanics(t *testing.T) {
	var h Header
	h.Init(0)
	h.PendingSyncDispatches = 1
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic releasing a header with pending sync dispatches")
		}
	}()
	h.Release()
}

func TestHeaderInjected(t *testing.T) {
	var h Header
	h.Init(0)
	h.InjectorPID = 42
	if !h.Injected() {
		t.Fatal("Injected() = false for a header with a real injector PID")
	}
}

func TestConfigChangedImplementsEvent(t *testing.T) {
	var c ConfigChanged
	c.Init(0)
	if c.Kind() != KindConfigChanged {
		t.Fatalf("Kind() = %v, want KindConfigChanged", c.Kind())
	}
	if c.Head() != &c.Header {
		t.Fatal("Head() did not return the embedded Header")
	}
}

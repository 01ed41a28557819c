// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "testing"

func TestConnPoolBorrowReleaseRoundTrip(t *testing.T) {
	cp := newConnPool()
	ch := newFakeChannel("a")

	conn, err := cp.borrow(ch)
	if err != nil {
		t.Fatalf("borrow(): %v", err)
	}
	if conn == nil {
		t.Fatal("borrow() returned a nil Connection")
	}
	if conn.Channel != ch {
		t.Fatal("borrow() did not bind the Connection to the given channel")
	}

	cp.release(conn)

	ch2 := newFakeChannel("b")
	conn2, err := cp.borrow(ch2)
	if err != nil {
		t.Fatalf("borrow() after release: %v", err)
	}
	if conn2.Channel != ch2 {
		t.Fatal("borrow() after release did not rebind the recycled Connection")
	}
}

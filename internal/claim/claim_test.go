package claim

import (
	"testing"

	"lpc81x-go/errcode"
)

func expectMisuse(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		e, ok := recover().(*errcode.E)
		if !ok || e.C != errcode.Misuse {
			t.Fatalf("expected misuse panic, got %#v", e)
		}
	}()
	f()
}

func TestMoveInvalidatesSource(t *testing.T) {
	a := New("pin 4")
	b := a.Move("test")
	if a.Live() || !b.Live() {
		t.Fatalf("live: a=%v b=%v", a.Live(), b.Live())
	}
	if b.What() != "pin 4" {
		t.Fatalf("What = %q", b.What())
	}
	expectMisuse(t, func() { a.Spend("again") })
	expectMisuse(t, func() { a.Check("check") })
	b.Check("fine")
}

func TestNilCellIsNeverLive(t *testing.T) {
	var c *Cell
	if c.Live() {
		t.Fatal("nil cell live")
	}
	expectMisuse(t, func() { c.Spend("nil") })
}

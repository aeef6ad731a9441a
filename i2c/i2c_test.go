package i2c

import (
	"errors"
	"testing"

	"lpc81x-go/errcode"
	"lpc81x-go/pins"
	"lpc81x-go/regmap"
	"lpc81x-go/sim"
	"lpc81x-go/swm"
)

func mustMisuse(t *testing.T, f func()) {
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

func inactive() (*sim.Board, *Inactive, pins.Set) {
	b := sim.NewBoard()
	s, _, _ := pins.New(b.Mem)
	return b, New(b.Mem, swm.New(b.Mem)), s
}

func TestActivationRegisters(t *testing.T) {
	b, p, s := inactive()
	b.Poke(regmap.PRESETCTRL, 0) // everything held in reset
	b.Poke(regmap.SYSAHBCLKCTRL, regmap.ClockSWM)

	a := p.Activate(s.GPIO10)
	if b.Peek(regmap.SYSAHBCLKCTRL)&regmap.ClockI2C == 0 || b.Peek(regmap.PRESETCTRL)&regmap.ResetI2C == 0 {
		t.Fatal("controller not engaged")
	}
	if got := b.Peek(regmap.PinAssign(8)) & 0xFF; got != 10 {
		t.Fatalf("SCL field = %d", got)
	}
	if a.SCL() != 10 {
		t.Fatalf("SCL = %d", a.SCL())
	}
	mustMisuse(t, func() { p.Activate(s.GPIO11) })

	a = a.WithSDA(s.GPIO11)
	if got := b.Peek(regmap.PinAssign(7)) >> 24; got != 11 {
		t.Fatalf("SDA field = %d", got)
	}
	h := a.EnableHost()
	if b.Peek(regmap.I2C_CFG) != regmap.I2C_CFG_MSTEN {
		t.Fatalf("CFG = %#x", b.Peek(regmap.I2C_CFG))
	}
	mustMisuse(t, func() { a.EnableHost() })

	h = h.EnableMonitor()
	a = h.DisableHost()
	if b.Peek(regmap.I2C_CFG) != regmap.I2C_CFG_MONEN {
		t.Fatalf("CFG = %#x", b.Peek(regmap.I2C_CFG))
	}
	mustMisuse(t, func() { h.Write(0x10, nil) })
}

func TestDeactivateRequiresReleasedPins(t *testing.T) {
	b, p, s := inactive()
	a := p.Activate(s.GPIO10).WithSDA(s.GPIO11)
	mustMisuse(t, func() { a.Deactivate() })

	a, sda := a.ReleaseSDA()
	if sda.ID() != 11 {
		t.Fatalf("released %d", sda.ID())
	}
	a = a.EnableDevice()
	mustMisuse(t, func() { a.Deactivate() })
	a = a.DisableDevice()

	p2, scl := a.Deactivate()
	if scl.ID() != 10 {
		t.Fatalf("released %d", scl.ID())
	}
	for _, r := range []uint32{regmap.PinAssign(7), regmap.PinAssign(8)} {
		if b.Peek(r) != 0xFFFF_FFFF {
			t.Fatalf("PINASSIGN %#x = %08x", r, b.Peek(r))
		}
	}
	if b.Peek(regmap.SYSAHBCLKCTRL)&regmap.ClockI2C != 0 || b.Peek(regmap.PRESETCTRL)&regmap.ResetI2C != 0 {
		t.Fatal("controller still engaged")
	}
	if b.Peek(regmap.I2C_CFG) != 0 {
		t.Fatalf("CFG = %#x", b.Peek(regmap.I2C_CFG))
	}

	// the cycle can be repeated with the returned handles
	h := p2.ActivateHost(scl, sda)
	if err := h.Write(0x68, nil); !errors.Is(err, errcode.Nack) {
		t.Fatalf("empty bus: %v", err)
	}
}

func TestSlotsStayWithTheController(t *testing.T) {
	b := sim.NewBoard()
	s, _, _ := pins.New(b.Mem)
	mx := swm.New(b.Mem)
	a := New(b.Mem, mx).Activate(s.GPIO10)

	mustMisuse(t, func() { mx.Bind(swm.I2C_SCL, s.GPIO4) })
	if got, _ := mx.Selected(swm.I2C_SCL); got != 10 || a.SCL() != 10 {
		t.Fatalf("SCL field = %d, handle = %d", got, a.SCL())
	}

	_, scl := a.Deactivate()
	if mx.Held(swm.I2C_SCL) {
		t.Fatal("SCL slot still held after deactivate")
	}
	mx.Bind(swm.I2C_SCL, s.GPIO4)
	if got, _ := mx.Selected(swm.I2C_SCL); got != 4 || scl.ID() != 10 {
		t.Fatalf("SCL field = %d", got)
	}
}

package swm

import (
	"testing"

	"lpc81x-go/errcode"
	"lpc81x-go/pins"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

func setup() (*regs.Mem, *Matrix, pins.Set, pins.Inputs) {
	m := regs.NewMem()
	for n := 0; n <= 8; n++ {
		m.Poke(regmap.PinAssign(n), 0xFFFF_FFFF)
	}
	s, in, _ := pins.New(m)
	return m, New(m), s, in
}

func TestBindWritesOnlyItsField(t *testing.T) {
	mem, mx, s, _ := setup()
	a := mx.Bind(I2C_SDA, s.GPIO10)
	if got := mem.Peek(regmap.PinAssign(7)); got != 0x0AFF_FFFF {
		t.Fatalf("PINASSIGN7 = %08x", got)
	}
	if a.Pin() != 10 || a.Function() != I2C_SDA {
		t.Fatalf("assigned = %v/%v", a.Pin(), a.Function())
	}
	b := mx.Bind(SPI0_MISO, s.GPIO0)
	if got := mem.Peek(regmap.PinAssign(4)); got != 0xFFFF_00FF {
		t.Fatalf("PINASSIGN4 = %08x", got)
	}
	mx.Unbind(b)
	if got := mem.Peek(regmap.PinAssign(4)); got != 0xFFFF_FFFF {
		t.Fatalf("PINASSIGN4 after unbind = %08x", got)
	}
}

// The field always holds the pin of the latest bind still in force.
func TestBindUnbindSequences(t *testing.T) {
	const unbind = pins.ID(0xFF)
	tests := []struct {
		name  string
		steps []pins.ID
	}{
		{"bind", []pins.ID{5}},
		{"bind-unbind", []pins.ID{5, unbind}},
		{"rebind-other", []pins.ID{5, unbind, 17}},
		{"cycle", []pins.ID{0, unbind, 0, unbind, 13, unbind}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, mx, s, _ := setup()
			for _, fn := range Functions {
				var held *Assigned
				for _, id := range tc.steps {
					if id == unbind {
						want := held.Pin()
						o := mx.Unbind(held)
						if o.ID() != want {
							t.Fatalf("%v: unbind returned pin %d, want %d", fn, o.ID(), want)
						}
						s.Put(o)
						held = nil
						continue
					}
					p, ok := s.Take(id)
					if !ok {
						t.Fatalf("pin %d unavailable", id)
					}
					held = mx.Bind(fn, p)
				}
				got, ok := mx.Selected(fn)
				switch {
				case held == nil && ok:
					t.Fatalf("%v: selected %d after unbind", fn, got)
				case held != nil && (!ok || got != held.Pin()):
					t.Fatalf("%v: selected %d,%v want %d", fn, got, ok, held.Pin())
				}
				if held != nil {
					s.Put(mx.Unbind(held))
				}
			}
		})
	}
}

func TestUnbindTwicePanics(t *testing.T) {
	_, mx, s, _ := setup()
	a := mx.Bind(SPI1_SCK, s.GPIO1)
	mx.Unbind(a)
	defer func() {
		e, ok := recover().(*errcode.E)
		if !ok || e.C != errcode.Misuse {
			t.Fatalf("expected misuse panic, got %#v", e)
		}
	}()
	mx.Unbind(a)
}

func TestListenLeavesOutputFree(t *testing.T) {
	mem, mx, s, in := setup()
	l := mx.Listen(SPI0_SCK, in.GPIO14)
	if got, _ := mx.Selected(SPI0_SCK); got != 14 {
		t.Fatalf("selected = %d", got)
	}
	// the output role is still available
	d := s.GPIO14.ToDigitalOutput(true)
	d.Low()
	mx.Unlisten(l)
	if got := mem.Peek(regmap.PinAssign(3)); got != 0xFFFF_FFFF {
		t.Fatalf("PINASSIGN3 = %08x", got)
	}
}

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

func TestRoutedSlotHasOneOwner(t *testing.T) {
	mem, mx, s, in := setup()
	a := mx.Bind(I2C_SCL, s.GPIO10)

	mustMisuse(t, func() { mx.Bind(I2C_SCL, s.GPIO4) })
	mustMisuse(t, func() { mx.Listen(I2C_SCL, in.GPIO4) })
	if got := mem.Peek(regmap.PinAssign(8)); got != 0xFFFF_FF0A {
		t.Fatalf("PINASSIGN8 = %08x", got)
	}
	if !mx.Held(I2C_SCL) || mx.Held(I2C_SDA) {
		t.Fatal("held flags wrong")
	}
	// the refused pin was not consumed
	s.GPIO4 = s.GPIO4.ToDigitalOutput(false).Release()

	mx.Unbind(a)
	if mx.Held(I2C_SCL) {
		t.Fatal("slot still held after unbind")
	}
	b := mx.Bind(I2C_SCL, s.GPIO4)
	if got, _ := mx.Selected(I2C_SCL); got != 4 || b.Pin() != 4 {
		t.Fatalf("selected = %d", got)
	}

	l := mx.Listen(SPI1_SCK, in.GPIO2)
	mustMisuse(t, func() { mx.Bind(SPI1_SCK, s.GPIO2) })
	mx.Unlisten(l)
	mx.Bind(SPI1_SCK, s.GPIO2)
}

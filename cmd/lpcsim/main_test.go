package main

import (
	"bytes"
	"strings"
	"testing"

	"lpc81x-go/pins"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
	"lpc81x-go/sim"
	"lpc81x-go/swm"
)

// hal.Take succeeds once per process, so this is the only test that runs
// the app end to end.
func TestRTCScenarioOnSim(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"lpcsim", "--max-polls", "100000", "--trace", "rtc", "--ticks", "3"})
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}
	got := out.String()
	for _, want := range []string{
		"tick 0  ch0 falling=true",
		"tick 1",
		"tick 2",
		"led PIO0_7",
		"led PIO0_17",
		"led PIO0_16",
		"I2C0_SCL",
		"PIO0_10",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q", want)
		}
	}
	if strings.Contains(got, "tick 3") {
		t.Error("ran past --ticks")
	}
	lower := strings.ToLower(got)
	for _, want := range []string{"switch matrix", "register trace"} {
		if !strings.Contains(lower, want) {
			t.Errorf("output lacks the %s table", want)
		}
	}
	if t.Failed() {
		t.Log(got)
	}
}

func TestRenderRouting(t *testing.T) {
	b := sim.NewBoard()
	s, _, _ := pins.New(b.Mem)
	mx := swm.New(b.Mem)
	mx.Bind(swm.I2C_SDA, s.GPIO11)

	var out bytes.Buffer
	renderRouting(&out, mx)
	lines := strings.Split(out.String(), "\n")

	var sda, scl string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "I2C0_SDA"):
			sda = l
		case strings.Contains(l, "I2C0_SCL"):
			scl = l
		}
	}
	if !strings.Contains(sda, "PIO0_11") {
		t.Fatalf("SDA row = %q", sda)
	}
	if scl == "" || strings.Contains(scl, "PIO0_") {
		t.Fatalf("SCL row = %q", scl)
	}
	for _, fn := range swm.Functions {
		if !strings.Contains(out.String(), string(fn.Name)) {
			t.Errorf("no row for %s", fn.Name)
		}
	}
}

func TestRenderTrace(t *testing.T) {
	trace := []regs.Access{
		{Op: regs.OpStore, Addr: regmap.I2C_MSTCTL, Value: regmap.I2C_MSTCTL_START},
		{Op: regs.OpLoad, Addr: regmap.PinAssign(8), Value: 0xFFFF_FF0A},
		{Op: regs.OpLoad, Addr: 0x1000_0000, Value: 0},
	}
	var out bytes.Buffer
	renderTrace(&out, trace)
	got := out.String()

	for _, want := range []string{
		"40050020", "00000002", "i2c",
		"4000C020", "FFFFFF0A", "swm",
		"10000000", "?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("trace table lacks %q", want)
		}
	}
	if !strings.Contains(strings.ToLower(got), "accesses") {
		t.Error("no footer")
	}
	if t.Failed() {
		t.Log(got)
	}
}

func TestBlockOf(t *testing.T) {
	tests := []struct {
		addr uint32
		want string
	}{
		{regmap.PinAssign(0), "swm"},
		{regmap.I2C_MSTCTL, "i2c"},
		{regmap.SPI1Block.Base + 0xFFF, "spi1"},
		{regmap.SPI1Block.Base + 0x1000, "?"},
		{0, "?"},
	}
	for _, tc := range tests {
		if got := blockOf(tc.addr); got != tc.want {
			t.Errorf("blockOf(%#x) = %q, want %q", tc.addr, got, tc.want)
		}
	}
}

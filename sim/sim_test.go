package sim

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lpc81x-go/regmap"
)

func TestResetValues(t *testing.T) {
	b := NewBoard()
	if got := b.Peek(regmap.DEVICE_ID); got != DefaultDeviceID {
		t.Fatalf("DEVICE_ID = %#x", got)
	}
	if got := b.Peek(regmap.PinAssign(4)); got != 0xFFFF_FFFF {
		t.Fatalf("PINASSIGN4 = %#x", got)
	}
	if got := b.Peek(regmap.PinEnable0); got&regmap.PinEnableSWCLK != 0 {
		t.Fatalf("SWCLK disabled at reset: %#x", got)
	}
}

func TestDS3231Registers(t *testing.T) {
	d := NewDS3231(time.Date(2101, time.February, 3, 21, 7, 59, 0, time.UTC))
	got := make([]byte, 7)
	for i := range got {
		got[i] = d.Register(i)
	}
	want := []byte{0x59, 0x07, 0x21, 0x05, 0x03, 0x82, 0x01}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("time registers (-want +got):\n%s", diff)
	}

	// Pointer write, then a read that wraps past the last register.
	if !d.Address(false) || !d.Receive(0x12) {
		t.Fatal("write refused")
	}
	d.Stop()
	d.Address(true)
	if b := d.Transmit(); b != 0x40 {
		t.Fatalf("temp LSB = %#x", b)
	}
	if b := d.Transmit(); b != 0x59 {
		t.Fatalf("wrapped read = %#x", b)
	}

	// Data bytes after the pointer are stored and advance it.
	d.Address(false)
	d.Receive(0x0E)
	d.Receive(0x00)
	d.Receive(0x08)
	if d.Register(0x0E) != 0 || d.Register(0x0F) != 0x08 {
		t.Fatalf("control = %#x status = %#x", d.Register(0x0E), d.Register(0x0F))
	}
}

func TestI2CNeedsMasterEnable(t *testing.T) {
	b := NewBoard()
	b.I2C.Attach(DS3231Address, NewDS3231(time.Unix(0, 0)))
	b.Store(regmap.I2C_MSTDAT, DS3231Address<<1)
	b.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_START)
	if s := b.I2C.Stats(); s.Starts != 0 {
		t.Fatalf("start counted with MSTEN clear: %+v", s)
	}

	b.Store(regmap.I2C_CFG, regmap.I2C_CFG_MSTEN)
	b.Store(regmap.I2C_MSTDAT, 0x50<<1)
	b.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_START)
	stat := b.Load(regmap.I2C_STAT)
	if state := (stat & regmap.I2C_STAT_MSTSTATE) >> 1; state != regmap.MstNackAddress {
		t.Fatalf("state = %d, want address NACK", state)
	}
	if stat&regmap.I2C_STAT_MSTPENDING == 0 {
		t.Fatal("not pending")
	}
}

func TestI2CLatency(t *testing.T) {
	b := NewBoard()
	b.I2C.Attach(DS3231Address, NewDS3231(time.Unix(0, 0)))
	b.I2C.SetLatency(2)
	b.Store(regmap.I2C_CFG, regmap.I2C_CFG_MSTEN)
	b.Store(regmap.I2C_MSTDAT, DS3231Address<<1|1)
	b.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_START)

	var pending []bool
	for i := 0; i < 3; i++ {
		pending = append(pending, b.Load(regmap.I2C_STAT)&regmap.I2C_STAT_MSTPENDING != 0)
	}
	if diff := cmp.Diff([]bool{false, false, true}, pending); diff != "" {
		t.Fatalf("pending (-want +got):\n%s", diff)
	}
	if s := b.I2C.Stats(); s.ReadyPolls != 1 || s.Polls != 3 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestSPIOverrunAndLoopback(t *testing.T) {
	b := NewBoard()
	r := regmap.SPI0
	b.SPI0.Attach(PeerFunc(func(out uint16, _ int) uint16 { return ^out }))

	b.Store(r.TXDATCTL, 7<<regmap.SPI_TXDATCTL_LEN_SH|0x5A)
	if len(b.SPI0.Frames()) != 0 {
		t.Fatal("disabled controller exchanged a word")
	}

	b.Store(r.CFG, regmap.SPI_CFG_ENABLE|regmap.SPI_CFG_MASTER)
	b.Store(r.TXDATCTL, 7<<regmap.SPI_TXDATCTL_LEN_SH|0x5A)
	b.Store(r.TXDATCTL, 3<<regmap.SPI_TXDATCTL_LEN_SH|0x1F)
	stat := b.Load(r.STAT)
	if stat&regmap.SPI_STAT_RXOV == 0 || stat&regmap.SPI_STAT_RXRDY == 0 {
		t.Fatalf("STAT = %#x, want RXRDY|RXOV", stat)
	}
	if got := b.Load(r.RXDAT); got != 0x0 {
		t.Fatalf("RXDAT = %#x, want 0x0", got)
	}
	b.Store(r.STAT, regmap.SPI_STAT_RXOV)
	if stat := b.Load(r.STAT); stat&(regmap.SPI_STAT_RXOV|regmap.SPI_STAT_RXRDY) != 0 {
		t.Fatalf("STAT after clear = %#x", stat)
	}

	b.Store(r.CFG, regmap.SPI_CFG_ENABLE|regmap.SPI_CFG_MASTER|regmap.SPI_CFG_LOOP)
	b.Store(r.TXDATCTL, 15<<regmap.SPI_TXDATCTL_LEN_SH|0xBEEF)
	want := []Frame{
		{Out: 0x5A, In: 0xA5, Bits: 8},
		{Out: 0xF, In: 0x0, Bits: 4},
		{Out: 0xBEEF, In: 0xBEEF, Bits: 16},
	}
	if diff := cmp.Diff(want, b.SPI0.Frames()); diff != "" {
		t.Fatalf("frames (-want +got):\n%s", diff)
	}
}

func TestPortLevelsAndEdges(t *testing.T) {
	b := NewBoard()
	p := b.GPIO

	p.Drive(4, true)
	b.Store(regmap.GPIO_DIR0, 1<<5)
	b.Store(regmap.GPIO_SET0, 1<<5|1<<4)
	if !p.Level(4) || !p.Level(5) {
		t.Fatal("levels low")
	}
	p.Drive(4, false)
	if p.Level(4) {
		t.Fatal("input pin follows output latch")
	}
	b.Store(regmap.GPIO_NOT0, 1<<5)
	if p.Level(5) {
		t.Fatal("toggle ignored")
	}

	b.Store(regmap.PINTSEL(1), 4)
	b.Store(regmap.PININT_SIENF, 1<<1)
	p.Drive(4, true)
	if p.Latched() != 0 {
		t.Fatal("rising edge latched on a falling-only channel")
	}
	p.Drive(4, false)
	p.Drive(4, false)
	if got := b.Load(regmap.PININT_IST); got != 1<<1 {
		t.Fatalf("IST = %#x", got)
	}
	if got := b.Load(regmap.PININT_FALL); got != 1<<1 {
		t.Fatalf("FALL = %#x", got)
	}
	b.Store(regmap.PININT_IST, 1<<1)
	if p.Latched() != 0 {
		t.Fatal("IST not cleared")
	}

	b.Store(regmap.PININT_CIENF, 1<<1)
	p.Drive(4, true)
	p.Drive(4, false)
	if p.Latched() != 0 {
		t.Fatal("disabled channel latched")
	}
}

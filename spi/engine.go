package spi

import (
	"periph.io/x/conn/v3/physic"

	"lpc81x-go/errcode"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
	"lpc81x-go/x/mathx"
)

// SystemClock is the main clock the divider works from.
const SystemClock = 12 * physic.MegaHertz

// MaxDivider is the largest clock divider the controller accepts.
const MaxDivider = regmap.SPI_DIV_MAX + 1

// TrySend queues w for transmission. It returns errcode.WouldBlock if the
// transmitter is still busy with the previous word.
func (h *Host) TrySend(w Word) error {
	h.cell.Check("spi.TrySend")
	if w.bits == 0 {
		return &errcode.E{C: errcode.InvalidWord, Op: "spi.TrySend", Msg: "zero Word"}
	}
	r := &h.c.hw().regs
	if h.c.rf.Load(r.STAT)&regmap.SPI_STAT_TXRDY == 0 {
		return errcode.WouldBlock
	}
	bits := int(w.bits)
	h.c.rf.Store(r.TXDATCTL, uint32(w.v&mask(bits))|uint32(bits-1)<<regmap.SPI_TXDATCTL_LEN_SH)
	return nil
}

// TryReceive takes a received word of the given length. It returns
// errcode.WouldBlock if nothing has arrived.
func (h *Host) TryReceive(bits int) (Word, error) {
	h.cell.Check("spi.TryReceive")
	if !validBits(bits) {
		return Word{}, &errcode.E{C: errcode.InvalidWord, Op: "spi.TryReceive", Msg: "length out of range"}
	}
	r := &h.c.hw().regs
	if h.c.rf.Load(r.STAT)&regmap.SPI_STAT_RXRDY == 0 {
		return Word{}, errcode.WouldBlock
	}
	v := uint16(h.c.rf.Load(r.RXDAT)) & mask(bits)
	return Word{v: v, bits: uint8(bits)}, nil
}

// SetClockDivider sets SCK to the system clock divided by div, clamped to
// [1, MaxDivider].
func (h *Host) SetClockDivider(div uint32) {
	h.cell.Check("spi.SetClockDivider")
	div = mathx.Clamp(div, 1, MaxDivider)
	h.c.rf.Store(h.c.hw().regs.DIV, div-1)
}

// ClockDivider reads back the divider.
func (h *Host) ClockDivider() uint32 {
	h.cell.Check("spi.ClockDivider")
	return h.c.rf.Load(h.c.hw().regs.DIV)&regmap.SPI_DIV_MAX + 1
}

// SetFrequency picks the smallest divider that keeps SCK at or below f.
func (h *Host) SetFrequency(f physic.Frequency) error {
	if f <= 0 {
		return &errcode.E{C: errcode.Request, Op: "spi.SetFrequency", Msg: "frequency must be positive"}
	}
	div := mathx.CeilDiv(uint64(SystemClock), uint64(f))
	h.SetClockDivider(uint32(mathx.Min(div, MaxDivider)))
	return nil
}

// Frequency reports the SCK rate the divider yields.
func (h *Host) Frequency() physic.Frequency {
	return SystemClock / physic.Frequency(h.ClockDivider())
}

// Loopback connects the shift register's output to its input inside the
// controller, for self-test.
func (h *Host) Loopback(on bool) {
	h.cell.Check("spi.Loopback")
	regs.SetTo(h.c.rf, h.c.hw().regs.CFG, regmap.SPI_CFG_LOOP, on)
}

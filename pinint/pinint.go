// Package pinint drives the eight pin-change interrupt channels.
//
// Each channel watches one pin, selected through SYSCON PINTSEL, for edges
// or levels. Interrupt handlers are outside the HAL; they acknowledge
// channels here, or hand the work to a Dispatcher.
package pinint

import (
	"strconv"

	"lpc81x-go/internal/claim"
	"lpc81x-go/pins"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
	"lpc81x-go/syscon"
)

// Channels is the number of pin-interrupt channels.
const Channels = 8

// Inactive is the pin-interrupt block before its clock is enabled.
type Inactive struct {
	rf   regs.File
	cell *claim.Cell
}

// New returns the reset-state handle. Only hal.Take should call it.
func New(rf regs.File) *Inactive { return &Inactive{rf: rf, cell: claim.New("PININT")} }

// Interrupts holds the unselected channels.
type Interrupts struct {
	Int0, Int1, Int2, Int3, Int4, Int5, Int6, Int7 *Channel
}

// Activate enables the block's clock and returns its channels.
func (p *Inactive) Activate() Interrupts {
	p.cell.Spend("pinint.Activate")
	syscon.EnableClock(p.rf, regmap.ClockPININT)
	ch := func(n int) *Channel {
		return &Channel{line: line{rf: p.rf, n: n}, cell: claim.New("PININT" + strconv.Itoa(n))}
	}
	return Interrupts{ch(0), ch(1), ch(2), ch(3), ch(4), ch(5), ch(6), ch(7)}
}

type line struct {
	rf regs.File
	n  int
}

// Number returns the channel index.
func (l line) Number() int { return l.n }

// Mask is the channel's bit in the PININT registers.
func (l line) Mask() uint32 { return 1 << uint(l.n) }

// NVICMask is the channel's bit in the NVIC enable registers.
func (l line) NVICMask() uint32 { return 1 << uint(regmap.IRQ_PININT0+l.n) }

// Channel is a pin-interrupt channel with no pin selected.
type Channel struct {
	line
	cell *claim.Cell
}

// Trigger is the detection mode of a selected channel.
type Trigger uint8

const (
	Edge Trigger = iota
	Level
)

func (t Trigger) String() string {
	if t == Level {
		return "level"
	}
	return "edge"
}

// EdgeTriggered selects in and detects edges on it.
func (c *Channel) EdgeTriggered(in pins.Input) *Selected {
	return c.sel("pinint.EdgeTriggered", in, Edge)
}

// LevelTriggered selects in and detects levels on it.
func (c *Channel) LevelTriggered(in pins.Input) *Selected {
	return c.sel("pinint.LevelTriggered", in, Level)
}

func (c *Channel) sel(op string, in pins.Input, t Trigger) *Selected {
	c.cell.Spend(op)
	syscon.SelectPinInterrupt(c.rf, c.n, uint8(in.ID()))
	regs.SetTo(c.rf, regmap.PININT_ISEL, c.Mask(), t == Level)
	return &Selected{line: c.line, cell: claim.New(c.cell.What()), pin: in, trig: t}
}

// Selected is a channel watching a pin.
type Selected struct {
	line
	cell *claim.Cell
	pin  pins.Input
	trig Trigger
}

// Pin returns the watched pin.
func (s *Selected) Pin() pins.Input { return s.pin }

// Trigger returns the detection mode.
func (s *Selected) Trigger() Trigger { return s.trig }

// Enable arms the channel in the NVIC and for the given conditions. For a
// level-triggered channel rising enables the interrupt and falling selects
// an active-high level.
func (s *Selected) Enable(rising, falling bool) {
	s.cell.Check("pinint.Enable")
	m := s.Mask()
	if rising {
		s.rf.Store(regmap.PININT_SIENR, m)
	} else {
		s.rf.Store(regmap.PININT_CIENR, m)
	}
	if falling {
		s.rf.Store(regmap.PININT_SIENF, m)
	} else {
		s.rf.Store(regmap.PININT_CIENF, m)
	}
	s.rf.Store(regmap.NVIC_ISER0, s.NVICMask())
}

// Disable disarms the channel.
func (s *Selected) Disable() {
	s.cell.Check("pinint.Disable")
	s.rf.Store(regmap.PININT_CIENR, s.Mask())
	s.rf.Store(regmap.PININT_CIENF, s.Mask())
	s.rf.Store(regmap.NVIC_ICER0, s.NVICMask())
}

// Pending reports whether the channel has latched an event.
func (s *Selected) Pending() bool {
	s.cell.Check("pinint.Pending")
	return s.rf.Load(regmap.PININT_IST)&s.Mask() != 0
}

// Acknowledge clears the channel's latched event.
func (s *Selected) Acknowledge() {
	s.cell.Check("pinint.Acknowledge")
	s.rf.Store(regmap.PININT_IST, s.Mask())
}

// ReleasePin disarms the channel, deselects the pin and returns both.
func (s *Selected) ReleasePin() (*Channel, pins.Input) {
	s.Disable()
	s.cell.Spend("pinint.ReleasePin")
	syscon.SelectPinInterrupt(s.rf, s.n, 0)
	regs.Clear(s.rf, regmap.PININT_ISEL, s.Mask())
	return &Channel{line: s.line, cell: claim.New(s.cell.What())}, s.pin
}

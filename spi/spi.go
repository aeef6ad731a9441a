// Package spi drives the LPC81x SPI controllers.
//
// Each instance starts Inactive and is activated either as a bus master
// (Host) or as a slave (Device). Data and select lines are attached after
// activation and must all be released again before Deactivate. Only the
// master carries a transfer engine. Chip select for external devices is not
// managed here; drive a pins.DigitalOutput around each transfer.
package spi

import (
	"lpc81x-go/errcode"
	"lpc81x-go/internal/claim"
	"lpc81x-go/internal/gate"
	"lpc81x-go/pins"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
	"lpc81x-go/swm"
	"lpc81x-go/x/spin"
)

// Instance selects a controller.
type Instance int

const (
	SPI0 Instance = iota
	SPI1
)

type instance struct {
	name                  string
	regs                  regmap.SPIRegs
	gate                  gate.Gate
	sck, mosi, miso, ssel swm.Function
}

var instances = [...]instance{
	SPI0: {
		name: "SPI0",
		regs: regmap.SPI0,
		gate: gate.Gate{Clock: regmap.ClockSPI0, Reset: regmap.ResetSPI0},
		sck:  swm.SPI0_SCK,
		mosi: swm.SPI0_MOSI,
		miso: swm.SPI0_MISO,
		ssel: swm.SPI0_SSEL,
	},
	SPI1: {
		name: "SPI1",
		regs: regmap.SPI1,
		gate: gate.Gate{Clock: regmap.ClockSPI1, Reset: regmap.ResetSPI1},
		sck:  swm.SPI1_SCK,
		mosi: swm.SPI1_MOSI,
		miso: swm.SPI1_MISO,
		ssel: swm.SPI1_SSEL,
	},
}

func (i Instance) String() string { return instances[i].name }

// Mode is the clock polarity and phase, numbered as usual: bit 1 is CPOL,
// bit 0 is CPHA.
type Mode uint8

const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

// BitOrder selects which end of a word is shifted first.
type BitOrder uint8

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

// Config is written to CFG once, at activation.
type Config struct {
	Mode     Mode
	BitOrder BitOrder
}

func (c Config) bits() uint32 {
	var v uint32
	if c.Mode&2 != 0 {
		v |= regmap.SPI_CFG_CPOL
	}
	if c.Mode&1 != 0 {
		v |= regmap.SPI_CFG_CPHA
	}
	if c.BitOrder == LSBFirst {
		v |= regmap.SPI_CFG_LSBF
	}
	return v
}

// Polarity is the active level of the slave-select line.
type Polarity uint8

const (
	ActiveLow Polarity = iota
	ActiveHigh
)

// Inactive is a controller held in reset with its clock gated.
type Inactive struct {
	rf   regs.File
	mx   *swm.Matrix
	in   Instance
	cell *claim.Cell
}

// New returns the reset-state handle for inst. Only hal.Take should call it.
func New(rf regs.File, mx *swm.Matrix, inst Instance) *Inactive {
	return &Inactive{rf: rf, mx: mx, in: inst, cell: claim.New(inst.String())}
}

// ctl is the state shared by Host and Device.
type ctl struct {
	rf     regs.File
	mx     *swm.Matrix
	in     Instance
	sck    *swm.Assigned
	sckIn  swm.Listener
	mosi   *swm.Assigned
	miso   *swm.Assigned
	ssel   *swm.Assigned
	policy spin.Policy
}

func (c *ctl) hw() *instance { return &instances[c.in] }

func (p *Inactive) engage(op string, cfg uint32) *ctl {
	p.cell.Spend(op)
	hw := &instances[p.in]
	hw.gate.Engage(p.rf)
	p.rf.Store(hw.regs.CFG, cfg|regmap.SPI_CFG_ENABLE)
	return &ctl{rf: p.rf, mx: p.mx, in: p.in, policy: spin.Forever}
}

// ActivateAsHost enables the controller as bus master driving sclk.
func (p *Inactive) ActivateAsHost(sclk *pins.Output, cfg Config) *Host {
	c := p.engage("spi.ActivateAsHost", cfg.bits()|regmap.SPI_CFG_MASTER)
	c.sck = c.mx.Bind(c.hw().sck, sclk)
	return &Host{c: c, cell: claim.New(p.in.String())}
}

// ActivateAsDevice enables the controller as a slave clocked from sclk. The
// clock is an input, so the pin's output role stays free.
func (p *Inactive) ActivateAsDevice(sclk pins.Input, cfg Config) *Device {
	c := p.engage("spi.ActivateAsDevice", cfg.bits())
	c.sckIn = c.mx.Listen(c.hw().sck, sclk)
	return &Device{c: c, cell: claim.New(p.in.String())}
}

func (c *ctl) attach(op string, slot **swm.Assigned, fn swm.Function, p *pins.Output) {
	if *slot != nil {
		errcode.Panic(op, fn.String()+" already attached")
	}
	*slot = c.mx.Bind(fn, p)
}

func (c *ctl) release(op string, slot **swm.Assigned) *pins.Output {
	if *slot == nil {
		errcode.Panic(op, "line not attached")
	}
	p := c.mx.Unbind(*slot)
	*slot = nil
	return p
}

func (c *ctl) attachSSEL(op string, p *pins.Output, pol Polarity) {
	c.attach(op, &c.ssel, c.hw().ssel, p)
	regs.SetTo(c.rf, c.hw().regs.CFG, regmap.SPI_CFG_SPOL, pol == ActiveHigh)
}

func (c *ctl) releaseSSEL(op string) *pins.Output {
	regs.Clear(c.rf, c.hw().regs.CFG, regmap.SPI_CFG_SPOL)
	return c.release(op, &c.ssel)
}

// shutdown checks that only the clock is left, then disables and gates the
// controller.
func (c *ctl) shutdown(op string) {
	if c.mosi != nil || c.miso != nil || c.ssel != nil {
		errcode.Panic(op, "data or select line still attached")
	}
	hw := c.hw()
	c.rf.Store(hw.regs.CFG, 0)
	hw.gate.Release(c.rf)
}

func (c *ctl) inactive() *Inactive {
	return &Inactive{rf: c.rf, mx: c.mx, in: c.in, cell: claim.New(c.in.String())}
}

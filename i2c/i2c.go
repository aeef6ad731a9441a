// Package i2c drives the LPC81x I2C controller.
//
// The controller moves through distinct handle types as it is configured:
//
//	Inactive --Activate(scl)--> Active --EnableHost--> Host
//	         <--Deactivate----         <--DisableHost--
//
// Every transition consumes its receiver. The SCL pin is bound on
// activation and returned on deactivation; SDA is attached and released
// separately while Active. Device and monitor modes are CFG bits that can be
// toggled in either active state; the controller only implements master
// transfers.
package i2c

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

var i2cGate = gate.Gate{Clock: regmap.ClockI2C, Reset: regmap.ResetI2C}

// Inactive is the controller with its clock gated and no pins attached.
type Inactive struct {
	rf   regs.File
	mx   *swm.Matrix
	cell *claim.Cell
}

// New returns the reset-state handle. Only hal.Take should call it.
func New(rf regs.File, mx *swm.Matrix) *Inactive {
	return &Inactive{rf: rf, mx: mx, cell: claim.New("I2C0")}
}

// ctl is the state shared by the active handle types.
type ctl struct {
	rf     regs.File
	mx     *swm.Matrix
	scl    *swm.Assigned
	sda    *swm.Assigned
	policy spin.Policy
}

func (c *ctl) setCFG(bit uint32, on bool) { regs.SetTo(c.rf, regmap.I2C_CFG, bit, on) }

func (c *ctl) cfg(bit uint32) bool { return c.rf.Load(regmap.I2C_CFG)&bit != 0 }

// Active is the controller clocked, out of reset and driving SCL, with the
// master function off.
type Active struct {
	c    *ctl
	cell *claim.Cell
}

// Activate ungates the controller and binds SCL.
func (p *Inactive) Activate(scl *pins.Output) *Active {
	p.cell.Spend("i2c.Activate")
	i2cGate.Engage(p.rf)
	c := &ctl{rf: p.rf, mx: p.mx, policy: spin.Forever}
	c.scl = p.mx.Bind(swm.I2C_SCL, scl)
	return &Active{c: c, cell: claim.New("I2C0")}
}

// ActivateHost binds both lines and enables the master function.
func (p *Inactive) ActivateHost(scl, sda *pins.Output) *Host {
	return p.Activate(scl).WithSDA(sda).EnableHost()
}

// WithSDA binds the data line.
func (a *Active) WithSDA(sda *pins.Output) *Active {
	cell := a.cell.Move("i2c.WithSDA")
	if a.c.sda != nil {
		errcode.Panic("i2c.WithSDA", "SDA already attached")
	}
	a.c.sda = a.c.mx.Bind(swm.I2C_SDA, sda)
	return &Active{c: a.c, cell: cell}
}

// ReleaseSDA unbinds the data line and returns its pin.
func (a *Active) ReleaseSDA() (*Active, *pins.Output) {
	cell := a.cell.Move("i2c.ReleaseSDA")
	if a.c.sda == nil {
		errcode.Panic("i2c.ReleaseSDA", "SDA not attached")
	}
	p := a.c.mx.Unbind(a.c.sda)
	a.c.sda = nil
	return &Active{c: a.c, cell: cell}, p
}

// SCL reports the pin bound to the clock line.
func (a *Active) SCL() pins.ID {
	a.cell.Check("i2c.SCL")
	return a.c.scl.Pin()
}

// EnableHost turns on the master function.
func (a *Active) EnableHost() *Host {
	a.cell.Spend("i2c.EnableHost")
	a.c.setCFG(regmap.I2C_CFG_MSTEN, true)
	return &Host{c: a.c, cell: claim.New("I2C0")}
}

// EnableDevice turns on the slave function.
func (a *Active) EnableDevice() *Active {
	return a.withCFG("i2c.EnableDevice", regmap.I2C_CFG_SLVEN, true)
}

// DisableDevice turns off the slave function.
func (a *Active) DisableDevice() *Active {
	return a.withCFG("i2c.DisableDevice", regmap.I2C_CFG_SLVEN, false)
}

// EnableMonitor turns on the bus monitor.
func (a *Active) EnableMonitor() *Active {
	return a.withCFG("i2c.EnableMonitor", regmap.I2C_CFG_MONEN, true)
}

// DisableMonitor turns off the bus monitor.
func (a *Active) DisableMonitor() *Active {
	return a.withCFG("i2c.DisableMonitor", regmap.I2C_CFG_MONEN, false)
}

func (a *Active) withCFG(op string, bit uint32, on bool) *Active {
	cell := a.cell.Move(op)
	a.c.setCFG(bit, on)
	return &Active{c: a.c, cell: cell}
}

// Deactivate unbinds SCL, holds the controller in reset and gates its
// clock. SDA must have been released and the device and monitor modes
// turned off; calling it otherwise panics.
func (a *Active) Deactivate() (*Inactive, *pins.Output) {
	const op = "i2c.Deactivate"
	a.cell.Check(op)
	switch {
	case a.c.sda != nil:
		errcode.Panic(op, "SDA still attached")
	case a.c.cfg(regmap.I2C_CFG_SLVEN | regmap.I2C_CFG_MONEN):
		errcode.Panic(op, "device or monitor mode still enabled")
	}
	a.cell.Spend(op)
	a.c.rf.Store(regmap.I2C_CFG, 0)
	i2cGate.Release(a.c.rf)
	scl := a.c.mx.Unbind(a.c.scl)
	a.c.scl = nil
	return &Inactive{rf: a.c.rf, mx: a.c.mx, cell: claim.New("I2C0")}, scl
}

// Host is the controller with the master function enabled.
type Host struct {
	c    *ctl
	cell *claim.Cell
}

// DisableHost turns off the master function.
func (h *Host) DisableHost() *Active {
	h.cell.Spend("i2c.DisableHost")
	h.c.setCFG(regmap.I2C_CFG_MSTEN, false)
	return &Active{c: h.c, cell: claim.New("I2C0")}
}

// EnableDevice turns on the slave function alongside the master.
func (h *Host) EnableDevice() *Host {
	return h.withCFG("i2c.EnableDevice", regmap.I2C_CFG_SLVEN, true)
}

// DisableDevice turns off the slave function.
func (h *Host) DisableDevice() *Host {
	return h.withCFG("i2c.DisableDevice", regmap.I2C_CFG_SLVEN, false)
}

// EnableMonitor turns on the bus monitor.
func (h *Host) EnableMonitor() *Host {
	return h.withCFG("i2c.EnableMonitor", regmap.I2C_CFG_MONEN, true)
}

// DisableMonitor turns off the bus monitor.
func (h *Host) DisableMonitor() *Host {
	return h.withCFG("i2c.DisableMonitor", regmap.I2C_CFG_MONEN, false)
}

func (h *Host) withCFG(op string, bit uint32, on bool) *Host {
	cell := h.cell.Move(op)
	h.c.setCFG(bit, on)
	return &Host{c: h.c, cell: cell}
}

// SetPolicy replaces the busy-wait policy used by transfers. The default is
// spin.Forever.
func (h *Host) SetPolicy(p spin.Policy) {
	h.cell.Check("i2c.SetPolicy")
	if p == nil {
		p = spin.Forever
	}
	h.c.policy = p
}

// Package swm drives the switch matrix, the multiplexer that routes movable
// peripheral signals to any pin.
//
// Each movable function has one byte-wide field in a PINASSIGN register.
// Writing a pin number there connects the function to the pin; 0xFF
// disconnects it. The hardware only forbids one pin driving two outputs,
// which this package enforces by consuming the pin's output handle on Bind.
// A slot also has one owner at a time: binding a slot that is already
// routed panics until the holder unbinds it.
package swm

import (
	"periph.io/x/conn/v3/pin"

	"lpc81x-go/errcode"
	"lpc81x-go/internal/claim"
	"lpc81x-go/pins"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

// Function is a movable function slot.
type Function struct {
	Name  pin.Func
	Reg   int   // PINASSIGN index
	Shift uint8 // bit offset of the byte field
}

func (f Function) String() string { return string(f.Name) }

func (f Function) field() regs.Field {
	return regs.Field{Addr: regmap.PinAssign(f.Reg), Shift: f.Shift, Width: 8}
}

// Movable function slots used by the I2C and SPI state machines.
var (
	SPI0_SCK  = Function{"SPI0_CLK", 3, 24}
	SPI0_MOSI = Function{"SPI0_MOSI", 4, 0}
	SPI0_MISO = Function{"SPI0_MISO", 4, 8}
	SPI0_SSEL = Function{"SPI0_CS", 4, 16}
	SPI1_SCK  = Function{"SPI1_CLK", 4, 24}
	SPI1_MOSI = Function{"SPI1_MOSI", 5, 0}
	SPI1_MISO = Function{"SPI1_MISO", 5, 8}
	SPI1_SSEL = Function{"SPI1_CS", 5, 16}
	I2C_SDA   = Function{"I2C0_SDA", 7, 24}
	I2C_SCL   = Function{"I2C0_SCL", 8, 0}
)

// Functions lists every slot known to the package.
var Functions = []Function{
	SPI0_SCK, SPI0_MOSI, SPI0_MISO, SPI0_SSEL,
	SPI1_SCK, SPI1_MOSI, SPI1_MISO, SPI1_SSEL,
	I2C_SDA, I2C_SCL,
}

// Matrix is the switch-matrix register file.
type Matrix struct {
	rf   regs.File
	held map[Function]bool
}

// New wraps rf. Only hal.Take should call it.
func New(rf regs.File) *Matrix {
	return &Matrix{rf: rf, held: make(map[Function]bool, len(Functions))}
}

func (m *Matrix) vacant(op string, fn Function) {
	if m.held[fn] {
		errcode.Panic(op, fn.String()+" already routed")
	}
}

// Held reports whether fn is routed by a live Bind or Listen.
func (m *Matrix) Held(fn Function) bool { return m.held[fn] }

// Assigned is a pin whose output role is held by a movable function.
type Assigned struct {
	fn   Function
	tok  pins.Token
	cell *claim.Cell
}

// Function returns the slot holding the pin.
func (a *Assigned) Function() Function {
	a.cell.Check("swm.Assigned.Function")
	return a.fn
}

// Pin returns the assigned pin's number.
func (a *Assigned) Pin() pins.ID {
	a.cell.Check("swm.Assigned.Pin")
	return a.tok.ID()
}

// Bind connects fn to p, consuming p. fn must not be routed already.
func (m *Matrix) Bind(fn Function, p *pins.Output) *Assigned {
	m.vacant("swm.Bind", fn)
	tok := p.Surrender()
	m.held[fn] = true
	fn.field().Put(m.rf, uint32(tok.ID()))
	return &Assigned{fn: fn, tok: tok, cell: claim.New(fn.String())}
}

// Unbind disconnects the slot and returns the pin's unassigned handle.
func (m *Matrix) Unbind(a *Assigned) *pins.Output {
	a.cell.Spend("swm.Unbind")
	a.fn.field().Put(m.rf, regmap.PinAssignNothing)
	delete(m.held, a.fn)
	return a.tok.Reclaim()
}

// Listen connects an input-only function to in. Inputs are shared, so
// nothing is consumed; the returned value records the slot for Unlisten.
func (m *Matrix) Listen(fn Function, in pins.Input) Listener {
	m.vacant("swm.Listen", fn)
	m.held[fn] = true
	fn.field().Put(m.rf, uint32(in.ID()))
	return Listener{fn: fn, pin: in, cell: claim.New(fn.String())}
}

// Listener is an input-only function bound to a pin.
type Listener struct {
	fn   Function
	pin  pins.Input
	cell *claim.Cell
}

// Pin returns the input the function listens on.
func (l Listener) Pin() pins.Input { return l.pin }

// Unlisten disconnects a slot bound by Listen.
func (m *Matrix) Unlisten(l Listener) {
	l.cell.Spend("swm.Unlisten")
	l.fn.field().Put(m.rf, regmap.PinAssignNothing)
	delete(m.held, l.fn)
}

// Selected reads back the pin a slot currently routes to.
func (m *Matrix) Selected(fn Function) (pins.ID, bool) {
	v := fn.field().Get(m.rf)
	if v == regmap.PinAssignNothing {
		return 0, false
	}
	return pins.ID(v), true
}

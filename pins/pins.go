// Package pins is the pin capability registry.
//
// Each physical pin has exactly one output-capable handle (*Output) for the
// life of the program, handed out once through hal.Take. Moving the handle
// into the switch matrix or a GPIO output consumes it; the way back is the
// inverse operation, which issues a fresh handle for the same pin. The input
// side of every pin (Input) is a plain value and may be copied freely, since
// any number of readers can observe a pin at once.
package pins

import (
	"strconv"

	"lpc81x-go/internal/claim"
	"lpc81x-go/regs"
)

// ID is a pin's number: its switch-matrix selector and its GPIO bit.
type ID uint8

// Count is the number of GPIO pins on the package with the most pins.
const Count = 18

// SWCLK is PIO0_3. It carries the serial-wire debug clock at boot, so it is
// absent from the initial Set.
const SWCLK ID = 3

// Mask is the pin's bit in the GPIO port registers.
func (id ID) Mask() uint32 { return 1 << uint32(id) }

func (id ID) String() string { return "PIO0_" + strconv.Itoa(int(id)) }

// Valid reports whether id names a pin on this family.
func (id ID) Valid() bool { return id < Count }

// Output is the output-capable, unassigned handle for one pin.
type Output struct {
	id   ID
	rf   regs.File
	cell *claim.Cell
}

func newOutput(rf regs.File, id ID) *Output {
	return &Output{id: id, rf: rf, cell: claim.New(id.String())}
}

// ID returns the pin number.
func (o *Output) ID() ID {
	o.cell.Check("pins.Output.ID")
	return o.id
}

// Mask returns the pin's GPIO bit.
func (o *Output) Mask() uint32 { return o.ID().Mask() }

// Input returns the shareable input view of the pin without consuming o.
func (o *Output) Input() Input {
	o.cell.Check("pins.Output.Input")
	return Input{id: o.id, rf: o.rf}
}

// Surrender consumes o and returns the token that stands in for the pin while
// it is assigned elsewhere. It is the hook used by the switch matrix and the
// peripheral state machines; application code normally never calls it.
func (o *Output) Surrender() Token {
	o.cell.Spend("pins.Output.Surrender")
	return Token{id: o.id, rf: o.rf, cell: claim.New(o.id.String())}
}

// Token is proof that a pin's output role is held by some function. Only
// pins can mint one, and only by consuming an Output.
type Token struct {
	id   ID
	rf   regs.File
	cell *claim.Cell
}

// ID returns the pin the token stands for.
func (t Token) ID() ID {
	t.cell.Check("pins.Token.ID")
	return t.id
}

// Reclaim consumes the token and issues a fresh unassigned handle.
func (t Token) Reclaim() *Output {
	t.cell.Spend("pins.Token.Reclaim")
	return newOutput(t.rf, t.id)
}

// Input is the digital-input view of a pin.
type Input struct {
	id ID
	rf regs.File
}

// ID returns the pin number.
func (in Input) ID() ID { return in.id }

// Get reads the pin level.
func (in Input) Get() bool { return readLevel(in.rf, in.id) }

// Set holds the unassigned output handles available at reset. GPIO3 is
// missing while it carries SWCLK.
type Set struct {
	GPIO0, GPIO1, GPIO2, GPIO4, GPIO5, GPIO6, GPIO7, GPIO8, GPIO9  *Output
	GPIO10, GPIO11, GPIO12, GPIO13, GPIO14, GPIO15, GPIO16, GPIO17 *Output
}

// Inputs holds the input views of every pin, GPIO3 included.
type Inputs struct {
	GPIO0, GPIO1, GPIO2, GPIO3, GPIO4, GPIO5, GPIO6, GPIO7, GPIO8         Input
	GPIO9, GPIO10, GPIO11, GPIO12, GPIO13, GPIO14, GPIO15, GPIO16, GPIO17 Input
}

// New builds the reset-time registry. It also returns the SWCLK pin handle,
// which the caller keeps until the debug port is released. Only hal.Take
// should call New; calling it twice duplicates every handle.
func New(rf regs.File) (Set, Inputs, *Output) {
	var s Set
	var in Inputs
	for id := ID(0); id < Count; id++ {
		*in.slot(id) = Input{id: id, rf: rf}
		if id == SWCLK {
			continue
		}
		*s.slot(id) = newOutput(rf, id)
	}
	return s, in, newOutput(rf, SWCLK)
}

// Take removes and returns the handle for id, for callers that pick pins
// by number. ok is false if the handle was already taken or id is SWCLK.
func (s *Set) Take(id ID) (*Output, bool) {
	p := s.slot(id)
	if p == nil || *p == nil {
		return nil, false
	}
	o := *p
	*p = nil
	return o, true
}

// Put returns a handle to its slot. ok is false if o is nil or the slot is
// occupied.
func (s *Set) Put(o *Output) bool {
	if o == nil {
		return false
	}
	p := s.slot(o.ID())
	if p == nil || *p != nil {
		return false
	}
	*p = o
	return true
}

func (s *Set) slot(id ID) **Output {
	switch id {
	case 0:
		return &s.GPIO0
	case 1:
		return &s.GPIO1
	case 2:
		return &s.GPIO2
	case 4:
		return &s.GPIO4
	case 5:
		return &s.GPIO5
	case 6:
		return &s.GPIO6
	case 7:
		return &s.GPIO7
	case 8:
		return &s.GPIO8
	case 9:
		return &s.GPIO9
	case 10:
		return &s.GPIO10
	case 11:
		return &s.GPIO11
	case 12:
		return &s.GPIO12
	case 13:
		return &s.GPIO13
	case 14:
		return &s.GPIO14
	case 15:
		return &s.GPIO15
	case 16:
		return &s.GPIO16
	case 17:
		return &s.GPIO17
	}
	return nil
}

// ByID returns the input view for id.
func (in *Inputs) ByID(id ID) (Input, bool) {
	p := in.slot(id)
	if p == nil {
		return Input{}, false
	}
	return *p, true
}

func (in *Inputs) slot(id ID) *Input {
	switch id {
	case 0:
		return &in.GPIO0
	case 1:
		return &in.GPIO1
	case 2:
		return &in.GPIO2
	case 3:
		return &in.GPIO3
	case 4:
		return &in.GPIO4
	case 5:
		return &in.GPIO5
	case 6:
		return &in.GPIO6
	case 7:
		return &in.GPIO7
	case 8:
		return &in.GPIO8
	case 9:
		return &in.GPIO9
	case 10:
		return &in.GPIO10
	case 11:
		return &in.GPIO11
	case 12:
		return &in.GPIO12
	case 13:
		return &in.GPIO13
	case 14:
		return &in.GPIO14
	case 15:
		return &in.GPIO15
	case 16:
		return &in.GPIO16
	case 17:
		return &in.GPIO17
	}
	return nil
}

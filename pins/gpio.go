package pins

import (
	"lpc81x-go/internal/claim"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

func readLevel(rf regs.File, id ID) bool {
	return rf.Load(regmap.GPIO_PIN0)&id.Mask() != 0
}

// DigitalOutput is a pin driven by the GPIO port.
type DigitalOutput struct {
	id   ID
	rf   regs.File
	cell *claim.Cell
}

// ToDigitalOutput consumes o and drives the pin at the given initial level.
// The level is latched before the direction is switched so the pin never
// glitches to the opposite state.
func (o *Output) ToDigitalOutput(high bool) *DigitalOutput {
	o.cell.Spend("pins.Output.ToDigitalOutput")
	d := &DigitalOutput{id: o.id, rf: o.rf, cell: claim.New(o.id.String())}
	d.Set(high)
	regs.Set(o.rf, regmap.GPIO_DIR0, o.id.Mask())
	return d
}

// ID returns the pin number.
func (d *DigitalOutput) ID() ID {
	d.cell.Check("pins.DigitalOutput.ID")
	return d.id
}

func (d *DigitalOutput) High() { d.Set(true) }
func (d *DigitalOutput) Low()  { d.Set(false) }

// Set drives the pin high or low. SET0 and CLR0 are write-one registers, so
// no read-modify-write is needed.
func (d *DigitalOutput) Set(high bool) {
	d.cell.Check("pins.DigitalOutput.Set")
	if high {
		d.rf.Store(regmap.GPIO_SET0, d.id.Mask())
	} else {
		d.rf.Store(regmap.GPIO_CLR0, d.id.Mask())
	}
}

// Toggle inverts the driven level.
func (d *DigitalOutput) Toggle() {
	d.cell.Check("pins.DigitalOutput.Toggle")
	d.rf.Store(regmap.GPIO_NOT0, d.id.Mask())
}

// Get reads back the pin level.
func (d *DigitalOutput) Get() bool {
	d.cell.Check("pins.DigitalOutput.Get")
	return readLevel(d.rf, d.id)
}

// Release turns the pin back into an input and returns the unassigned handle.
func (d *DigitalOutput) Release() *Output {
	d.cell.Spend("pins.DigitalOutput.Release")
	regs.Clear(d.rf, regmap.GPIO_DIR0, d.id.Mask())
	return newOutput(d.rf, d.id)
}

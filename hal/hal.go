// Package hal hands out the LPC81x hardware exactly once.
//
// Take returns every pin handle and every inactive peripheral. Everything
// else in the module starts from these values; a second Take fails, since a
// second set of handles would alias the first.
package hal

import (
	"fmt"

	"go.uber.org/atomic"

	"lpc81x-go/errcode"
	"lpc81x-go/i2c"
	"lpc81x-go/pinint"
	"lpc81x-go/pins"
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
	"lpc81x-go/spi"
	"lpc81x-go/swm"
	"lpc81x-go/syscon"
)

var taken atomic.Bool

// Peripherals is the root of ownership.
type Peripherals struct {
	// Pins holds the output-capable handles. GPIO3 is missing until
	// ReleaseSWD.
	Pins pins.Set
	// PinInputs holds the shareable input views of all pins.
	PinInputs pins.Inputs

	SWM           *swm.Matrix
	I2C           *i2c.Inactive
	SPI0          *spi.Inactive
	SPI1          *spi.Inactive
	PinInterrupts *pinint.Inactive

	// Model is the part name read from DEVICE_ID, empty if unchecked.
	Model string

	rf  regs.File
	swd *pins.Output
}

type options struct {
	checkModel bool
}

// Option configures Take.
type Option func(*options)

// WithoutModelCheck skips the DEVICE_ID check.
func WithoutModelCheck() Option { return func(o *options) { o.checkModel = false } }

// Take claims the hardware behind rf. It fails with errcode.AlreadyTaken
// after the first call. A DEVICE_ID outside the LPC81x family halts with an
// errcode.UnknownModel panic.
func Take(rf regs.File, opts ...Option) (*Peripherals, error) {
	o := options{checkModel: true}
	for _, opt := range opts {
		opt(&o)
	}
	if !taken.CompareAndSwap(false, true) {
		return nil, errcode.Wrap(errcode.AlreadyTaken, "hal.Take")
	}

	p := &Peripherals{rf: rf}
	if o.checkModel {
		name, ok := syscon.Model(rf)
		if !ok {
			panic(&errcode.E{C: errcode.UnknownModel, Op: "hal.Take", Msg: fmt.Sprintf("DEVICE_ID %#x", syscon.DeviceID(rf))})
		}
		p.Model = name
	}

	p.Pins, p.PinInputs, p.swd = pins.New(rf)
	p.SWM = swm.New(rf)
	p.I2C = i2c.New(rf, p.SWM)
	p.SPI0 = spi.New(rf, p.SWM, spi.SPI0)
	p.SPI1 = spi.New(rf, p.SWM, spi.SPI1)
	p.PinInterrupts = pinint.New(rf)
	return p, nil
}

// ReleaseSWD turns off the debug clock function on PIO0_3 and returns the
// pin's output handle. The debugger cannot attach afterwards.
func (p *Peripherals) ReleaseSWD() *pins.Output {
	if p.swd == nil {
		errcode.Panic("hal.ReleaseSWD", "debug port already released")
	}
	regs.Set(p.rf, regmap.PinEnable0, regmap.PinEnableSWCLK)
	o := p.swd
	p.swd = nil
	return o
}

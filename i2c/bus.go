package i2c

import (
	pi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"

	"lpc81x-go/errcode"
	"lpc81x-go/regmap"
	"lpc81x-go/x/mathx"
)

// Host plugs into both driver ecosystems.
var (
	_ drivers.I2C = (*Host)(nil)
	_ pi2c.Bus    = (*Host)(nil)
)

// SystemClock is the main clock the controller divides down from.
const SystemClock = 12 * physic.MegaHertz

// clocksPerBit is SCL low plus SCL high with MSTTIME at reset.
const clocksPerBit = 4

func (h *Host) String() string { return "I2C0" }

// SetSpeed programs the clock divider for the closest bus frequency not
// above f.
func (h *Host) SetSpeed(f physic.Frequency) error {
	h.cell.Check("i2c.SetSpeed")
	if f <= 0 {
		return &errcode.E{C: errcode.Request, Op: "i2c.SetSpeed", Msg: "frequency must be positive"}
	}
	div := mathx.CeilDiv(uint64(SystemClock), uint64(f)*clocksPerBit)
	div = mathx.Clamp(div, 1, 1<<16)
	h.c.rf.Store(regmap.I2C_DIV, uint32(div-1))
	return nil
}

// Speed reports the bus frequency the divider currently yields.
func (h *Host) Speed() physic.Frequency {
	h.cell.Check("i2c.Speed")
	div := physic.Frequency(h.c.rf.Load(regmap.I2C_DIV)&0xFFFF) + 1
	return SystemClock / (div * clocksPerBit)
}

// Package sim models enough of an LPC812 to run the HAL on a host: the
// SYSCON and switch-matrix reset values, behavioural I2C and SPI
// controllers, the GPIO port and pin-interrupt latches, and a DS3231
// real-time clock on the I2C bus.
//
// The models hook a regs.Mem, so everything the HAL does is still visible
// in the register trace.
package sim

import (
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

// DefaultDeviceID is the part the board reports, an LPC812M101JDH16.
const DefaultDeviceID = 0x8120

// Reset values from the user manual.
const (
	resetSYSAHBCLKCTRL = 0x0000_00DF
	resetPRESETCTRL    = 0x0000_1FFF
	resetPINENABLE0    = 0x0000_01B3
)

// Board is a simulated chip.
type Board struct {
	*regs.Mem

	I2C  *I2CBus
	SPI0 *SPIBus
	SPI1 *SPIBus
	GPIO *Port
}

// NewBoard returns a board in its reset state.
func NewBoard() *Board {
	m := regs.NewMem()
	Reset(m, DefaultDeviceID)
	return &Board{
		Mem:  m,
		I2C:  NewI2C(m),
		SPI0: NewSPI(m, regmap.SPI0),
		SPI1: NewSPI(m, regmap.SPI1),
		GPIO: NewPort(m),
	}
}

// Reset pokes the reset values of the registers the HAL reads before
// writing.
func Reset(m *regs.Mem, deviceID uint32) {
	m.Poke(regmap.DEVICE_ID, deviceID)
	m.Poke(regmap.SYSAHBCLKCTRL, resetSYSAHBCLKCTRL)
	m.Poke(regmap.PRESETCTRL, resetPRESETCTRL)
	for n := 0; n <= 8; n++ {
		m.Poke(regmap.PinAssign(n), 0xFFFF_FFFF)
	}
	m.Poke(regmap.PinEnable0, resetPINENABLE0)
}

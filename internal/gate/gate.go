// Package gate sequences a peripheral's clock gate and reset line, the
// register half of every activation transition.
package gate

import (
	"lpc81x-go/regs"
	"lpc81x-go/syscon"
)

// Gate names a peripheral's SYSAHBCLKCTRL and PRESETCTRL bits.
type Gate struct {
	Clock uint32
	Reset uint32
}

// Engage starts the clock, then releases reset.
func (g Gate) Engage(rf regs.File) {
	syscon.EnableClock(rf, g.Clock)
	syscon.DeassertReset(rf, g.Reset)
}

// Release asserts reset, then stops the clock.
func (g Gate) Release(rf regs.File) {
	syscon.AssertReset(rf, g.Reset)
	syscon.DisableClock(rf, g.Clock)
}

// Engaged reports whether the peripheral is clocked and out of reset.
func (g Gate) Engaged(rf regs.File) bool {
	return syscon.ClockEnabled(rf, g.Clock) && !syscon.InReset(rf, g.Reset)
}

// Package syscon holds the system-control writes the peripheral state
// machines depend on: clock gating, peripheral resets, pin-interrupt input
// selection and the device id. These are plain register writes.
package syscon

import (
	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

// EnableClock ungates the AHB clocks in mask.
func EnableClock(rf regs.File, mask uint32) { regs.Set(rf, regmap.SYSAHBCLKCTRL, mask) }

// DisableClock gates the AHB clocks in mask.
func DisableClock(rf regs.File, mask uint32) { regs.Clear(rf, regmap.SYSAHBCLKCTRL, mask) }

// ClockEnabled reports whether every clock in mask runs.
func ClockEnabled(rf regs.File, mask uint32) bool {
	return rf.Load(regmap.SYSAHBCLKCTRL)&mask == mask
}

// AssertReset holds the peripherals in mask in reset. PRESETCTRL bits are
// active low.
func AssertReset(rf regs.File, mask uint32) { regs.Clear(rf, regmap.PRESETCTRL, mask) }

// DeassertReset releases the peripherals in mask from reset.
func DeassertReset(rf regs.File, mask uint32) { regs.Set(rf, regmap.PRESETCTRL, mask) }

// InReset reports whether any peripheral in mask is held in reset.
func InReset(rf regs.File, mask uint32) bool {
	return rf.Load(regmap.PRESETCTRL)&mask != mask
}

// SelectPinInterrupt routes pin id to pin-interrupt channel ch.
func SelectPinInterrupt(rf regs.File, ch int, id uint8) {
	rf.Store(regmap.PINTSEL(ch), uint32(id))
}

// DeviceID reads the part identification register.
func DeviceID(rf regs.File) uint32 { return rf.Load(regmap.DEVICE_ID) }

// Model names the part, or reports false for an id outside the LPC81x family.
func Model(rf regs.File) (string, bool) {
	name, ok := regmap.DeviceIDs[DeviceID(rf)]
	return name, ok
}

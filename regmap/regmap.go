// Package regmap is the LPC81x register map: block base addresses, register
// offsets and bit layouts, after the LPC81x user manual (UM10601).
//
// Everything above this package addresses hardware only through these
// constants, so porting to a sibling part means replacing this file.
package regmap

// Block is one memory-mapped peripheral window.
type Block struct {
	Name string
	Base uint32
	Size int
}

// Peripheral blocks.
var (
	SWMBlock    = Block{"swm", 0x4000_C000, 0x1000}
	SYSCONBlock = Block{"syscon", 0x4004_8000, 0x1000}
	I2CBlock    = Block{"i2c", 0x4005_0000, 0x1000}
	SPI0Block   = Block{"spi0", 0x4005_8000, 0x1000}
	SPI1Block   = Block{"spi1", 0x4005_C000, 0x1000}
	GPIOBlock   = Block{"gpio", 0xA000_0000, 0x4000}
	PININTBlock = Block{"pinint", 0xA000_4000, 0x1000}
	NVICBlock   = Block{"nvic", 0xE000_E000, 0x1000}
)

// Blocks lists every window the HAL touches.
var Blocks = []Block{SWMBlock, SYSCONBlock, I2CBlock, SPI0Block, SPI1Block, GPIOBlock, PININTBlock, NVICBlock}

// ---- Switch matrix ----

// PINASSIGN0..8 each hold four byte-wide function fields.
func PinAssign(n int) uint32 { return SWMBlock.Base + uint32(n)*4 }

const (
	PinEnable0 = 0x4000_C1C0

	// PinAssignNothing selects no pin for a movable function.
	PinAssignNothing = 0xFF
)

// PINENABLE0 bits (0 = fixed function enabled).
const (
	PinEnableSWCLK = 1 << 2 // PIO0_3
	PinEnableSWDIO = 1 << 3 // PIO0_2
	PinEnableRESET = 1 << 6 // PIO0_5
)

// ---- SYSCON ----

const (
	PRESETCTRL    = 0x4004_8004
	SYSAHBCLKCTRL = 0x4004_8080
	PINTSEL0      = 0x4004_8178
	DEVICE_ID     = 0x4004_83F8
)

// PRESETCTRL bits (1 = reset de-asserted).
const (
	ResetSPI0 = 1 << 0
	ResetSPI1 = 1 << 1
	ResetI2C  = 1 << 6
)

// SYSAHBCLKCTRL bits (1 = clock enabled).
const (
	ClockI2C    = 1 << 5
	ClockGPIO   = 1 << 6
	ClockSWM    = 1 << 7
	ClockSPI0   = 1 << 11
	ClockSPI1   = 1 << 12
	ClockIOCON  = 1 << 18
	ClockPININT = ClockGPIO // pin interrupts share the GPIO clock
)

// PINTSEL returns the PINTSELn address for pin interrupt channel n.
func PINTSEL(n int) uint32 { return PINTSEL0 + uint32(n)*4 }

// Known DEVICE_ID values.
var DeviceIDs = map[uint32]string{
	0x0000_8100: "LPC810M021FN8",
	0x0000_8110: "LPC811M001JDH16",
	0x0000_8120: "LPC812M101JDH16",
	0x0000_8121: "LPC812M101JD20",
	0x0000_8122: "LPC812M101JDH20",
}

// ---- I2C ----

const (
	I2C_CFG     = 0x4005_0000
	I2C_STAT    = 0x4005_0004
	I2C_INTSET  = 0x4005_0008
	I2C_INTCLR  = 0x4005_000C
	I2C_TIMEOUT = 0x4005_0010
	I2C_DIV     = 0x4005_0014
	I2C_MSTCTL  = 0x4005_0020
	I2C_MSTTIME = 0x4005_0024
	I2C_MSTDAT  = 0x4005_0028
)

// I2C CFG bits.
const (
	I2C_CFG_MSTEN = 1 << 0
	I2C_CFG_SLVEN = 1 << 1
	I2C_CFG_MONEN = 1 << 2
)

// I2C STAT fields.
const (
	I2C_STAT_MSTPENDING  = 1 << 0
	I2C_STAT_MSTSTATE    = 0x7 << 1
	I2C_STAT_MSTARBLOSS  = 1 << 4
	I2C_STAT_MSTSTSTPERR = 1 << 6
)

// MSTSTATE values (STAT[3:1]).
const (
	MstIdle        = 0
	MstReceiveRdy  = 1
	MstTransmitRdy = 2
	MstNackAddress = 3
	MstNackData    = 4
)

// I2C MSTCTL bits.
const (
	I2C_MSTCTL_CONTINUE = 1 << 0
	I2C_MSTCTL_START    = 1 << 1
	I2C_MSTCTL_STOP     = 1 << 2
)

// ---- SPI ----

// SPIRegs holds one SPI instance's register addresses.
type SPIRegs struct {
	CFG, DLY, STAT, INTENSET, INTENCLR, RXDAT, TXDATCTL, TXDAT, TXCTL, DIV uint32
}

func spiRegs(base uint32) SPIRegs {
	return SPIRegs{
		CFG:      base + 0x00,
		DLY:      base + 0x04,
		STAT:     base + 0x08,
		INTENSET: base + 0x0C,
		INTENCLR: base + 0x10,
		RXDAT:    base + 0x14,
		TXDATCTL: base + 0x18,
		TXDAT:    base + 0x1C,
		TXCTL:    base + 0x20,
		DIV:      base + 0x24,
	}
}

var (
	SPI0 = spiRegs(SPI0Block.Base)
	SPI1 = spiRegs(SPI1Block.Base)
)

// SPI CFG bits.
const (
	SPI_CFG_ENABLE = 1 << 0
	SPI_CFG_MASTER = 1 << 2
	SPI_CFG_LSBF   = 1 << 3
	SPI_CFG_CPHA   = 1 << 4
	SPI_CFG_CPOL   = 1 << 5
	SPI_CFG_LOOP   = 1 << 7
	SPI_CFG_SPOL   = 1 << 8
)

// SPI STAT bits.
const (
	SPI_STAT_RXRDY   = 1 << 0
	SPI_STAT_TXRDY   = 1 << 1
	SPI_STAT_RXOV    = 1 << 2
	SPI_STAT_TXUR    = 1 << 3
	SPI_STAT_MSTIDLE = 1 << 8
)

// SPI TXDATCTL fields.
const (
	SPI_TXDATCTL_DATA   = 0xFFFF
	SPI_TXDATCTL_LEN_SH = 24
	SPI_RXDAT_DATA      = 0xFFFF
	SPI_DIV_MAX         = 0xFFFF
)

// ---- GPIO port ----

const (
	GPIO_DIR0 = 0xA000_2000
	GPIO_PIN0 = 0xA000_2100
	GPIO_SET0 = 0xA000_2200
	GPIO_CLR0 = 0xA000_2280
	GPIO_NOT0 = 0xA000_2300
)

// ---- Pin interrupts ----

const (
	PININT_ISEL  = 0xA000_4000
	PININT_IENR  = 0xA000_4004
	PININT_SIENR = 0xA000_4008
	PININT_CIENR = 0xA000_400C
	PININT_IENF  = 0xA000_4010
	PININT_SIENF = 0xA000_4014
	PININT_CIENF = 0xA000_4018
	PININT_RISE  = 0xA000_401C
	PININT_FALL  = 0xA000_4020
	PININT_IST   = 0xA000_4024
)

// ---- NVIC ----

const (
	NVIC_ISER0 = 0xE000_E100
	NVIC_ICER0 = 0xE000_E180

	// PININT0 is the NVIC line of pin interrupt channel 0; channels are consecutive.
	IRQ_PININT0 = 24
)

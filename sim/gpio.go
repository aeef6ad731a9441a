package sim

import (
	"sync"

	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

// Port models the GPIO port and the pin-interrupt status latch.
//
// PIN0 reads the output latch for pins whose DIR bit is set and the
// externally driven level for the rest. Edge-mode channels latch in RISE
// and FALL; IST is their union and a write of one clears both.
type Port struct {
	mu   sync.Mutex
	m    *regs.Mem
	out  uint32
	ext  uint32
	rise uint32
	fall uint32
}

// NewPort attaches the port model to m.
func NewPort(m *regs.Mem) *Port {
	p := &Port{m: m}
	m.OnLoad(regmap.GPIO_PIN0, p.loadPin)
	m.OnStore(regmap.GPIO_SET0, func(_, v uint32) { p.update(func() { p.out |= v }) })
	m.OnStore(regmap.GPIO_CLR0, func(_, v uint32) { p.update(func() { p.out &^= v }) })
	m.OnStore(regmap.GPIO_NOT0, func(_, v uint32) { p.update(func() { p.out ^= v }) })
	m.OnLoad(regmap.PININT_IST, func(_, _ uint32) uint32 { return p.Latched() })
	m.OnLoad(regmap.PININT_RISE, func(_, _ uint32) uint32 {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.rise
	})
	m.OnLoad(regmap.PININT_FALL, func(_, _ uint32) uint32 {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.fall
	})
	setClear := func(set, clr, reg uint32) {
		m.OnStore(set, func(_, v uint32) { m.Poke(reg, m.Peek(reg)|v) })
		m.OnStore(clr, func(_, v uint32) { m.Poke(reg, m.Peek(reg)&^v) })
	}
	setClear(regmap.PININT_SIENR, regmap.PININT_CIENR, regmap.PININT_IENR)
	setClear(regmap.PININT_SIENF, regmap.PININT_CIENF, regmap.PININT_IENF)
	m.OnStore(regmap.PININT_IST, func(_, v uint32) {
		p.update(func() {
			p.rise &^= v
			p.fall &^= v
		})
	})
	return p
}

func (p *Port) update(f func()) {
	p.mu.Lock()
	f()
	p.mu.Unlock()
}

func (p *Port) loadPin(_, _ uint32) uint32 {
	dir := p.m.Peek(regmap.GPIO_DIR0)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out&dir | p.ext&^dir
}

// Drive sets the external level of pin id. Edges on a pin selected for an
// enabled pin-interrupt channel latch that channel in IST.
func (p *Port) Drive(id uint8, high bool) {
	mask := uint32(1) << id
	rise := p.m.Peek(regmap.PININT_IENR)
	fall := p.m.Peek(regmap.PININT_IENF)

	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.ext&mask != 0
	if high {
		p.ext |= mask
	} else {
		p.ext &^= mask
	}
	if was == high {
		return
	}
	for ch := 0; ch < 8; ch++ {
		if p.m.Peek(regmap.PINTSEL(ch)) != uint32(id) {
			continue
		}
		bit := uint32(1) << ch
		switch {
		case high && rise&bit != 0:
			p.rise |= bit
		case !high && fall&bit != 0:
			p.fall |= bit
		}
	}
}

// Level reports the level PIN0 would show for pin id.
func (p *Port) Level(id uint8) bool {
	return p.loadPin(0, 0)&(1<<id) != 0
}

// Latched returns the pending pin-interrupt channels.
func (p *Port) Latched() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rise | p.fall
}

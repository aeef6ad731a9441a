package sim

import (
	"sync"

	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

// Peer is a device on a simulated SPI bus. It sees each word as the master
// clocks it out and returns the word shifted back.
type Peer interface {
	Exchange(out uint16, bits int) uint16
}

// PeerFunc adapts a function to Peer.
type PeerFunc func(out uint16, bits int) uint16

func (f PeerFunc) Exchange(out uint16, bits int) uint16 { return f(out, bits) }

// Frame is one word exchanged on the bus.
type Frame struct {
	Out, In uint16
	Bits    int
}

// SPIBus models one SPI controller in master mode. A write to TXDATCTL
// exchanges the word with the attached peer (or loops it back when CFG.LOOP
// is set) and latches the reply in RXDAT.
type SPIBus struct {
	mu     sync.Mutex
	m      *regs.Mem
	r      regmap.SPIRegs
	peer   Peer
	stall  int
	rxFull bool
	ovr    bool
	frames []Frame
}

// NewSPI attaches a controller model for the instance at r to m.
func NewSPI(m *regs.Mem, r regmap.SPIRegs) *SPIBus {
	b := &SPIBus{m: m, r: r}
	m.OnLoad(r.STAT, b.loadStat)
	m.OnStore(r.STAT, b.storeStat)
	m.OnLoad(r.RXDAT, b.loadRX)
	m.OnStore(r.TXDATCTL, b.storeTX)
	return b
}

// Attach connects a peer. Without one the bus reads back all ones.
func (b *SPIBus) Attach(p Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peer = p
}

// Stall keeps TXRDY clear for the next n STAT reads.
func (b *SPIBus) Stall(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stall = n
}

// Frames returns the words exchanged so far.
func (b *SPIBus) Frames() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Frame, len(b.frames))
	copy(out, b.frames)
	return out
}

func (b *SPIBus) loadStat(_, _ uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var v uint32 = regmap.SPI_STAT_MSTIDLE
	if b.stall > 0 {
		b.stall--
	} else {
		v |= regmap.SPI_STAT_TXRDY
	}
	if b.rxFull {
		v |= regmap.SPI_STAT_RXRDY
	}
	if b.ovr {
		v |= regmap.SPI_STAT_RXOV
	}
	return v
}

func (b *SPIBus) storeStat(_, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v&regmap.SPI_STAT_RXOV != 0 {
		b.ovr = false
	}
}

func (b *SPIBus) loadRX(_, cur uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rxFull = false
	return cur
}

func (b *SPIBus) storeTX(_, v uint32) {
	cfg := b.m.Peek(b.r.CFG)
	if cfg&regmap.SPI_CFG_ENABLE == 0 {
		return
	}
	bits := int(v>>regmap.SPI_TXDATCTL_LEN_SH&0xF) + 1
	mask := uint16(1<<bits - 1)
	out := uint16(v) & mask

	b.mu.Lock()
	defer b.mu.Unlock()
	in := mask
	switch {
	case cfg&regmap.SPI_CFG_LOOP != 0:
		in = out
	case b.peer != nil:
		in = b.peer.Exchange(out, bits) & mask
	}
	if b.rxFull {
		b.ovr = true
	}
	b.rxFull = true
	b.m.Poke(b.r.RXDAT, uint32(in))
	b.frames = append(b.frames, Frame{Out: out, In: in, Bits: bits})
}

package sim

import (
	"sync"

	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

// Target is a device on the simulated I2C bus.
type Target interface {
	// Address is called on every start directed at the target. Returning
	// false NACKs the address.
	Address(read bool) bool
	// Receive takes one byte written by the master; false NACKs it.
	Receive(b byte) bool
	// Transmit supplies the next byte for the master to read.
	Transmit() byte
	// Stop ends the transaction.
	Stop()
}

// I2CStats counts what the master did.
type I2CStats struct {
	Polls      int // STAT reads
	ReadyPolls int // STAT reads that saw a pending transmit or receive state
	Starts     int
	Stops      int
	Continues  int
}

// I2CBus models the I2C master: MSTCTL actions move the master between
// states, and STAT reports pending once the configured latency has been
// polled away.
type I2CBus struct {
	mu      sync.Mutex
	m       *regs.Mem
	targets map[uint16]Target

	latency  int
	wait     int
	state    uint32
	cur      Target
	arbloss  bool
	ststperr bool

	arbAt, ststpAt int
	stats          I2CStats
}

// NewI2C attaches an I2C master model to m.
func NewI2C(m *regs.Mem) *I2CBus {
	b := &I2CBus{m: m, targets: map[uint16]Target{}, state: regmap.MstIdle}
	m.OnLoad(regmap.I2C_STAT, b.loadStat)
	m.OnStore(regmap.I2C_STAT, b.storeStat)
	m.OnStore(regmap.I2C_MSTCTL, b.storeCtl)
	return b
}

// Attach places t at the 7-bit address addr.
func (b *I2CBus) Attach(addr uint16, t Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.targets[addr] = t
}

// SetLatency makes every action take k non-pending polls to complete.
func (b *I2CBus) SetLatency(k int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latency = k
}

// LoseArbitrationAt reports arbitration loss on the n-th STAT poll,
// counted from the last ResetStats. Zero disables it.
func (b *I2CBus) LoseArbitrationAt(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.arbAt = n
}

// StartStopErrorAt reports a start/stop error on the n-th STAT poll.
func (b *I2CBus) StartStopErrorAt(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ststpAt = n
}

// Stats returns the counters.
func (b *I2CBus) Stats() I2CStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// ResetStats clears the counters and the poll numbering.
func (b *I2CBus) ResetStats() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = I2CStats{}
}

func (b *I2CBus) loadStat(_, _ uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Polls++
	if b.stats.Polls == b.arbAt {
		b.abort()
		b.arbloss = true
	}
	if b.stats.Polls == b.ststpAt {
		b.abort()
		b.ststperr = true
	}

	var v uint32
	if b.wait > 0 {
		b.wait--
	} else {
		v |= regmap.I2C_STAT_MSTPENDING
		if b.state == regmap.MstTransmitRdy || b.state == regmap.MstReceiveRdy {
			b.stats.ReadyPolls++
		}
	}
	v |= b.state << 1
	if b.arbloss {
		v |= regmap.I2C_STAT_MSTARBLOSS
	}
	if b.ststperr {
		v |= regmap.I2C_STAT_MSTSTSTPERR
	}
	return v
}

// abort drops the transaction the way the controller does on a bus error.
func (b *I2CBus) abort() {
	b.cur = nil
	b.state = regmap.MstIdle
	b.wait = 0
}

func (b *I2CBus) storeStat(_, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v&regmap.I2C_STAT_MSTARBLOSS != 0 {
		b.arbloss = false
	}
	if v&regmap.I2C_STAT_MSTSTSTPERR != 0 {
		b.ststperr = false
	}
}

func (b *I2CBus) storeCtl(_, v uint32) {
	if b.m.Peek(regmap.I2C_CFG)&regmap.I2C_CFG_MSTEN == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case v&regmap.I2C_MSTCTL_STOP != 0:
		b.stats.Stops++
		if b.cur != nil {
			b.cur.Stop()
		}
		b.cur = nil
		b.state = regmap.MstIdle
	case v&regmap.I2C_MSTCTL_START != 0:
		b.stats.Starts++
		dat := b.m.Peek(regmap.I2C_MSTDAT)
		read := dat&1 != 0
		t := b.targets[uint16(dat>>1)&0x7F]
		if t == nil || !t.Address(read) {
			b.cur = nil
			b.state = regmap.MstNackAddress
			break
		}
		b.cur = t
		if read {
			b.m.Poke(regmap.I2C_MSTDAT, uint32(t.Transmit()))
			b.state = regmap.MstReceiveRdy
		} else {
			b.state = regmap.MstTransmitRdy
		}
	case v&regmap.I2C_MSTCTL_CONTINUE != 0:
		b.stats.Continues++
		switch b.state {
		case regmap.MstTransmitRdy:
			if !b.cur.Receive(byte(b.m.Peek(regmap.I2C_MSTDAT))) {
				b.state = regmap.MstNackData
			}
		case regmap.MstReceiveRdy:
			b.m.Poke(regmap.I2C_MSTDAT, uint32(b.cur.Transmit()))
		}
	default:
		return
	}
	b.wait = b.latency
}

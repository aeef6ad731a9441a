package i2c

import (
	"lpc81x-go/errcode"
	"lpc81x-go/regmap"
	"lpc81x-go/x/spin"
)

const (
	dirWrite = 0
	dirRead  = 1
)

func mstState(stat uint32) uint32 { return (stat & regmap.I2C_STAT_MSTSTATE) >> 1 }

// Write sends w to the 7-bit address addr. An empty w addresses the device
// and stops, which is how a bus is scanned.
func (h *Host) Write(addr uint16, w []byte) error {
	return h.transfer("i2c.Write", addr, w, nil)
}

// Read fills r from the 7-bit address addr. An empty r is a no-op.
func (h *Host) Read(addr uint16, r []byte) error {
	if len(r) == 0 {
		h.cell.Check("i2c.Read")
		return nil
	}
	return h.transfer("i2c.Read", addr, nil, r)
}

// WriteRead sends w and then, after a repeated start, fills r.
func (h *Host) WriteRead(addr uint16, w, r []byte) error {
	return h.transfer("i2c.WriteRead", addr, w, r)
}

// Tx dispatches to Write, Read or WriteRead depending on which buffers are
// non-empty.
func (h *Host) Tx(addr uint16, w, r []byte) error {
	switch {
	case len(r) == 0:
		return h.Write(addr, w)
	case len(w) == 0:
		return h.Read(addr, r)
	default:
		return h.WriteRead(addr, w, r)
	}
}

// transfer runs one transaction. On error the bus is left as the controller
// reported it: no stop is issued. Recover releases it.
func (h *Host) transfer(op string, addr uint16, w, r []byte) error {
	h.cell.Check(op)
	if addr > 0x7F {
		return &errcode.E{C: errcode.Request, Op: op, Msg: "address is not 7-bit"}
	}
	if err := h.waitIdle(op); err != nil {
		return err
	}

	wrote := false
	if len(w) > 0 || len(r) == 0 {
		h.start(addr, dirWrite)
		for _, b := range w {
			if err := h.waitReady(op); err != nil {
				return err
			}
			h.c.rf.Store(regmap.I2C_MSTDAT, uint32(b))
			h.c.rf.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_CONTINUE)
		}
		wrote = true
	}

	if len(r) > 0 {
		if wrote {
			if err := h.waitReady(op); err != nil {
				return err
			}
		}
		h.start(addr, dirRead)
		for i := range r {
			if i > 0 {
				if err := h.waitReady(op); err != nil {
					return err
				}
				h.c.rf.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_CONTINUE)
			}
			if err := h.waitReady(op); err != nil {
				return err
			}
			r[i] = byte(h.c.rf.Load(regmap.I2C_MSTDAT))
		}
	}

	if err := h.waitReady(op); err != nil {
		return err
	}
	h.c.rf.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_STOP)
	return nil
}

func (h *Host) start(addr uint16, dir uint32) {
	h.c.rf.Store(regmap.I2C_MSTDAT, uint32(addr)<<1|dir)
	h.c.rf.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_START)
}

func (h *Host) waitIdle(op string) error {
	return spin.Until(h.c.policy, op, func() bool {
		stat := h.c.rf.Load(regmap.I2C_STAT)
		return stat&regmap.I2C_STAT_MSTPENDING != 0 && mstState(stat) == regmap.MstIdle
	})
}

// waitReady polls until the master is pending in a transmit or receive
// state, failing on arbitration loss, a start/stop error or a NACK.
func (h *Host) waitReady(op string) error {
	return spin.Poll(h.c.policy, op, func() (bool, error) {
		stat := h.c.rf.Load(regmap.I2C_STAT)
		switch {
		case stat&regmap.I2C_STAT_MSTARBLOSS != 0:
			return false, errcode.Wrap(errcode.ArbitrationLoss, op)
		case stat&regmap.I2C_STAT_MSTSTSTPERR != 0:
			return false, errcode.Wrap(errcode.IllegalStartStop, op)
		case stat&regmap.I2C_STAT_MSTPENDING == 0:
			return false, nil
		}
		switch mstState(stat) {
		case regmap.MstTransmitRdy, regmap.MstReceiveRdy:
			return true, nil
		case regmap.MstNackAddress:
			return false, &errcode.E{C: errcode.Nack, Op: op, Msg: "address not acknowledged"}
		case regmap.MstNackData:
			return false, &errcode.E{C: errcode.Nack, Op: op, Msg: "data not acknowledged"}
		}
		return false, nil
	})
}

// Recover clears latched errors and, if the master still holds the bus,
// issues a stop.
func (h *Host) Recover() {
	h.cell.Check("i2c.Recover")
	h.c.rf.Store(regmap.I2C_STAT, regmap.I2C_STAT_MSTARBLOSS|regmap.I2C_STAT_MSTSTSTPERR)
	if mstState(h.c.rf.Load(regmap.I2C_STAT)) != regmap.MstIdle {
		h.c.rf.Store(regmap.I2C_MSTCTL, regmap.I2C_MSTCTL_STOP)
	}
}

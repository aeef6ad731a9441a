package spi

import (
	"lpc81x-go/internal/claim"
	"lpc81x-go/pins"
	"lpc81x-go/x/spin"
)

// Host is a controller active as bus master.
type Host struct {
	c    *ctl
	cell *claim.Cell
}

func (h *Host) next(op string) *Host { return &Host{c: h.c, cell: h.cell.Move(op)} }

// Instance reports which controller h drives.
func (h *Host) Instance() Instance {
	h.cell.Check("spi.Instance")
	return h.c.in
}

// WithMOSI attaches the data output.
func (h *Host) WithMOSI(p *pins.Output) *Host {
	n := h.next("spi.WithMOSI")
	n.c.attach("spi.WithMOSI", &n.c.mosi, n.c.hw().mosi, p)
	return n
}

// WithMISO attaches the data input.
func (h *Host) WithMISO(p *pins.Output) *Host {
	n := h.next("spi.WithMISO")
	n.c.attach("spi.WithMISO", &n.c.miso, n.c.hw().miso, p)
	return n
}

// WithDataPins attaches both data lines.
func (h *Host) WithDataPins(mosi, miso *pins.Output) *Host {
	return h.WithMOSI(mosi).WithMISO(miso)
}

// WithSSEL attaches the controller's own slave-select output.
func (h *Host) WithSSEL(p *pins.Output, pol Polarity) *Host {
	n := h.next("spi.WithSSEL")
	n.c.attachSSEL("spi.WithSSEL", p, pol)
	return n
}

// ReleaseMOSI detaches the data output.
func (h *Host) ReleaseMOSI() (*Host, *pins.Output) {
	n := h.next("spi.ReleaseMOSI")
	return n, n.c.release("spi.ReleaseMOSI", &n.c.mosi)
}

// ReleaseMISO detaches the data input.
func (h *Host) ReleaseMISO() (*Host, *pins.Output) {
	n := h.next("spi.ReleaseMISO")
	return n, n.c.release("spi.ReleaseMISO", &n.c.miso)
}

// ReleaseDataPins detaches both data lines.
func (h *Host) ReleaseDataPins() (*Host, *pins.Output, *pins.Output) {
	n, mosi := h.ReleaseMOSI()
	n, miso := n.ReleaseMISO()
	return n, mosi, miso
}

// ReleaseSSEL detaches the slave-select output.
func (h *Host) ReleaseSSEL() (*Host, *pins.Output) {
	n := h.next("spi.ReleaseSSEL")
	return n, n.c.releaseSSEL("spi.ReleaseSSEL")
}

// Deactivate returns the clock pin and the inactive controller. Data and
// select lines must have been released; calling it otherwise panics.
func (h *Host) Deactivate() (*Inactive, *pins.Output) {
	const op = "spi.Deactivate"
	h.cell.Check(op)
	h.c.shutdown(op)
	h.cell.Spend(op)
	sck := h.c.mx.Unbind(h.c.sck)
	h.c.sck = nil
	return h.c.inactive(), sck
}

// SetPolicy replaces the busy-wait policy used by Bus. The default is
// spin.Forever.
func (h *Host) SetPolicy(p spin.Policy) {
	h.cell.Check("spi.SetPolicy")
	if p == nil {
		p = spin.Forever
	}
	h.c.policy = p
}

// Device is a controller active as a bus slave. It has no transfer engine.
type Device struct {
	c    *ctl
	cell *claim.Cell
}

func (d *Device) next(op string) *Device { return &Device{c: d.c, cell: d.cell.Move(op)} }

// WithMOSI attaches the data input.
func (d *Device) WithMOSI(p *pins.Output) *Device {
	n := d.next("spi.WithMOSI")
	n.c.attach("spi.WithMOSI", &n.c.mosi, n.c.hw().mosi, p)
	return n
}

// WithMISO attaches the data output.
func (d *Device) WithMISO(p *pins.Output) *Device {
	n := d.next("spi.WithMISO")
	n.c.attach("spi.WithMISO", &n.c.miso, n.c.hw().miso, p)
	return n
}

// WithDataPins attaches both data lines.
func (d *Device) WithDataPins(mosi, miso *pins.Output) *Device {
	return d.WithMOSI(mosi).WithMISO(miso)
}

// WithSSEL attaches the slave-select input.
func (d *Device) WithSSEL(p *pins.Output, pol Polarity) *Device {
	n := d.next("spi.WithSSEL")
	n.c.attachSSEL("spi.WithSSEL", p, pol)
	return n
}

// ReleaseMOSI detaches the data input.
func (d *Device) ReleaseMOSI() (*Device, *pins.Output) {
	n := d.next("spi.ReleaseMOSI")
	return n, n.c.release("spi.ReleaseMOSI", &n.c.mosi)
}

// ReleaseMISO detaches the data output.
func (d *Device) ReleaseMISO() (*Device, *pins.Output) {
	n := d.next("spi.ReleaseMISO")
	return n, n.c.release("spi.ReleaseMISO", &n.c.miso)
}

// ReleaseDataPins detaches both data lines.
func (d *Device) ReleaseDataPins() (*Device, *pins.Output, *pins.Output) {
	n, mosi := d.ReleaseMOSI()
	n, miso := n.ReleaseMISO()
	return n, mosi, miso
}

// ReleaseSSEL detaches the slave-select input.
func (d *Device) ReleaseSSEL() (*Device, *pins.Output) {
	n := d.next("spi.ReleaseSSEL")
	return n, n.c.releaseSSEL("spi.ReleaseSSEL")
}

// Deactivate returns the clock input and the inactive controller. Data and
// select lines must have been released; calling it otherwise panics.
func (d *Device) Deactivate() (*Inactive, pins.Input) {
	const op = "spi.Deactivate"
	d.cell.Check(op)
	d.c.shutdown(op)
	d.cell.Spend(op)
	sck := d.c.sckIn.Pin()
	d.c.mx.Unlisten(d.c.sckIn)
	return d.c.inactive(), sck
}

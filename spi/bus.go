package spi

import (
	"periph.io/x/conn/v3"
	pspi "periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"

	"lpc81x-go/errcode"
)

// Bus moves bytes over a Host for drivers written against tinygo's
// drivers.SPI or periph's spi.Conn. It does not touch chip select.
type Bus struct {
	h *Host
}

var (
	_ drivers.SPI = (*Bus)(nil)
	_ pspi.Conn   = (*Bus)(nil)
)

// Bus returns a byte-oriented view of h. It shares h's busy-wait policy.
func (h *Host) Bus() *Bus {
	h.cell.Check("spi.Bus")
	return &Bus{h: h}
}

func (b *Bus) String() string { return b.h.Instance().String() }

// Duplex reports that reads and writes happen together.
func (b *Bus) Duplex() conn.Duplex { return conn.Full }

// Transfer exchanges one byte.
func (b *Bus) Transfer(w byte) (byte, error) {
	in, err := Transfer(b.h, Byte(w), b.h.c.policy)
	return byte(in.Value()), err
}

// Tx exchanges bytes. The shorter of w and r is padded: missing output
// bytes are sent as zero and surplus input is discarded.
func (b *Bus) Tx(w, r []byte) error {
	n := max(len(w), len(r))
	for i := 0; i < n; i++ {
		var out byte
		if i < len(w) {
			out = w[i]
		}
		in, err := b.Transfer(out)
		if err != nil {
			return err
		}
		if i < len(r) {
			r[i] = in
		}
	}
	return nil
}

// TxPackets runs each packet with its own word length. Words longer than
// eight bits take two bytes, most significant first, so W and R must hold
// a whole number of words. Every packet is checked before the first word
// goes out. KeepCS is ignored because select is driven by the caller.
func (b *Bus) TxPackets(pkts []pspi.Packet) error {
	const op = "spi.TxPackets"
	frames := make([]frame, 0, len(pkts))
	for _, p := range pkts {
		f, err := newFrame(op, p)
		if err != nil {
			return err
		}
		frames = append(frames, f)
	}
	for _, f := range frames {
		if err := b.txFrame(f); err != nil {
			return err
		}
	}
	return nil
}

// frame is one packet split into words.
type frame struct {
	out  []Word
	r    []byte
	bits int
	size int
}

func newFrame(op string, p pspi.Packet) (frame, error) {
	bits := int(p.BitsPerWord)
	if bits == 0 {
		bits = 8
	}
	if !validBits(bits) {
		return frame{}, &errcode.E{C: errcode.InvalidWord, Op: op, Msg: "unsupported word length"}
	}
	size := 1
	if bits > 8 {
		size = 2
	}
	if len(p.W)%size != 0 || len(p.R)%size != 0 {
		return frame{}, &errcode.E{C: errcode.InvalidWord, Op: op, Msg: "buffer length is not a whole number of words"}
	}
	f := frame{r: p.R, bits: bits, size: size}
	for off := 0; off < len(p.W); off += size {
		var v uint16
		for _, c := range p.W[off : off+size] {
			v = v<<8 | uint16(c)
		}
		w, err := NewWord(v, bits)
		if err != nil {
			return frame{}, err
		}
		f.out = append(f.out, w)
	}
	return f, nil
}

// txFrame sends the frame's words, padding with zero words when R is the
// longer buffer.
func (b *Bus) txFrame(f frame) error {
	n := max(len(f.out), len(f.r)/f.size)
	for i := 0; i < n; i++ {
		w := Word{bits: uint8(f.bits)}
		if i < len(f.out) {
			w = f.out[i]
		}
		in, err := Transfer(b.h, w, b.h.c.policy)
		if err != nil {
			return err
		}
		if off := i * f.size; off < len(f.r) {
			v := in.v
			for j := f.size - 1; j >= 0; j-- {
				f.r[off+j] = byte(v)
				v >>= 8
			}
		}
	}
	return nil
}

// Package regs is the register-file boundary. The HAL reads and writes
// fixed-address 32-bit registers through File and knows nothing else about
// the memory behind them.
package regs

// File is an opaque bit-addressable register file.
type File interface {
	Load(addr uint32) uint32
	Store(addr uint32, v uint32)
}

// Set ORs mask into the register at addr.
func Set(f File, addr, mask uint32) { f.Store(addr, f.Load(addr)|mask) }

// Clear clears mask in the register at addr.
func Clear(f File, addr, mask uint32) { f.Store(addr, f.Load(addr)&^mask) }

// Modify clears then sets bits in a single read-modify-write.
func Modify(f File, addr, clear, set uint32) {
	f.Store(addr, (f.Load(addr)&^clear)|set)
}

// SetTo sets or clears mask depending on on.
func SetTo(f File, addr, mask uint32, on bool) {
	if on {
		Set(f, addr, mask)
	} else {
		Clear(f, addr, mask)
	}
}

// Field is a bit range inside one register.
type Field struct {
	Addr  uint32
	Shift uint8
	Width uint8
}

// Mask returns the in-register mask of the field.
func (fd Field) Mask() uint32 {
	if fd.Width >= 32 {
		return ^uint32(0)
	}
	return ((1 << fd.Width) - 1) << fd.Shift
}

// Get extracts the field value.
func (fd Field) Get(f File) uint32 {
	return (f.Load(fd.Addr) & fd.Mask()) >> fd.Shift
}

// Put replaces the field value, leaving the rest of the register untouched.
func (fd Field) Put(f File, v uint32) {
	Modify(f, fd.Addr, fd.Mask(), (v<<fd.Shift)&fd.Mask())
}

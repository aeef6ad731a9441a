package spi

import (
	"strconv"

	"lpc81x-go/errcode"
)

// MaxBits is the longest frame the controller shifts.
const MaxBits = 16

// Word is a frame of 1 to 16 bits.
type Word struct {
	v    uint16
	bits uint8
}

func mask(bits int) uint16 { return uint16(1<<bits - 1) }

func validBits(bits int) bool { return bits >= 1 && bits <= MaxBits }

// NewWord builds a word of the given length. It fails with
// errcode.InvalidWord if bits is out of range or v does not fit.
func NewWord(v uint16, bits int) (Word, error) {
	if !validBits(bits) {
		return Word{}, &errcode.E{C: errcode.InvalidWord, Op: "spi.NewWord", Msg: "length " + strconv.Itoa(bits) + " out of range"}
	}
	if v&^mask(bits) != 0 {
		return Word{}, &errcode.E{C: errcode.InvalidWord, Op: "spi.NewWord", Msg: "value does not fit in " + strconv.Itoa(bits) + " bits"}
	}
	return Word{v: v, bits: uint8(bits)}, nil
}

// Byte is an 8-bit word.
func Byte(b byte) Word { return Word{v: uint16(b), bits: 8} }

// Value returns the word's value.
func (w Word) Value() uint16 { return w.v }

// Bits returns the declared length; zero for the zero Word.
func (w Word) Bits() int { return int(w.bits) }

func (w Word) String() string {
	return "0x" + strconv.FormatUint(uint64(w.v), 16) + "/" + strconv.Itoa(int(w.bits))
}

// Package mmio backs regs.File with physical memory mappings, for hosted
// targets that expose the LPC81x register blocks through /dev/mem.
package mmio

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/host/v3/pmem"

	"lpc81x-go/errcode"
	"lpc81x-go/regmap"
)

type window struct {
	block regmap.Block
	view  *pmem.View
	words []uint32
}

func (w *window) contains(addr uint32) bool {
	return addr >= w.block.Base && addr < w.block.Base+uint32(w.block.Size)
}

// File is a regs.File over a set of mapped windows.
type File struct {
	windows []*window
}

// mapper is swapped in tests.
var mapper = func(base uint64, size int) (*pmem.View, error) { return pmem.Map(base, size) }

// Open maps the given blocks, or regmap.Blocks when none are given.
func Open(blocks ...regmap.Block) (*File, error) {
	if len(blocks) == 0 {
		blocks = regmap.Blocks
	}
	f := &File{}
	for _, b := range blocks {
		v, err := mapper(uint64(b.Base), b.Size)
		if err != nil {
			return nil, multierr.Append(errors.Wrapf(err, "mmio: map %s at %#x", b.Name, b.Base), f.Close())
		}
		f.windows = append(f.windows, &window{block: b, view: v, words: v.Uint32()})
	}
	sort.Slice(f.windows, func(i, j int) bool { return f.windows[i].block.Base < f.windows[j].block.Base })
	return f, nil
}

func (f *File) find(addr uint32) *window {
	i := sort.Search(len(f.windows), func(i int) bool {
		w := f.windows[i]
		return w.block.Base+uint32(w.block.Size) > addr
	})
	if i < len(f.windows) && f.windows[i].contains(addr) {
		return f.windows[i]
	}
	panic(&errcode.E{C: errcode.Unsupported, Op: "mmio", Msg: "address outside mapped blocks"})
}

func (f *File) Load(addr uint32) uint32 {
	w := f.find(addr)
	return w.words[(addr-w.block.Base)/4]
}

func (f *File) Store(addr, v uint32) {
	w := f.find(addr)
	w.words[(addr-w.block.Base)/4] = v
}

// Close unmaps every window.
func (f *File) Close() error {
	var err error
	for _, w := range f.windows {
		if w.view == nil {
			continue
		}
		err = multierr.Append(err, errors.Wrapf(w.view.Close(), "mmio: unmap %s", w.block.Name))
	}
	f.windows = nil
	return err
}

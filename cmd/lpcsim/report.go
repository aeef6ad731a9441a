package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"lpc81x-go/regmap"
	"lpc81x-go/regs"
	"lpc81x-go/swm"
)

func renderRouting(w io.Writer, mx *swm.Matrix) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("switch matrix")
	t.AppendHeader(table.Row{"Function", "PINASSIGN", "Pin"})
	for _, fn := range swm.Functions {
		pin := "-"
		if id, ok := mx.Selected(fn); ok {
			pin = id.String()
		}
		t.AppendRow(table.Row{fn.Name, fn.Reg, pin})
	}
	t.Render()
}

func blockOf(addr uint32) string {
	for _, b := range regmap.Blocks {
		if addr >= b.Base && addr < b.Base+uint32(b.Size) {
			return b.Name
		}
	}
	return "?"
}

func renderTrace(w io.Writer, trace []regs.Access) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("register trace")
	t.AppendHeader(table.Row{"#", "Op", "Block", "Address", "Value"})
	for i, a := range trace {
		t.AppendRow(table.Row{i, fmt.Sprintf("%c", a.Op), blockOf(a.Addr), fmt.Sprintf("%08X", a.Addr), fmt.Sprintf("%08X", a.Value)})
	}
	t.AppendFooter(table.Row{"", "", "", "accesses", len(trace)})
	t.Render()
}

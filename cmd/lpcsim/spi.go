package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/physic"

	"lpc81x-go/hal"
	"lpc81x-go/sim"
	"lpc81x-go/spi"
)

func spiCommand() *cli.Command {
	return &cli.Command{
		Name:      "spi",
		Usage:     "clock words through SPI0 with a GPIO chip select",
		ArgsUsage: "WORD...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "bits", Value: 8, Usage: "word length, 1 to 16"},
			&cli.IntFlag{Name: "mode", Value: 0, Usage: "clock mode, 0 to 3"},
			&cli.IntFlag{Name: "khz", Value: 1000, Usage: "SCK frequency in kHz"},
			&cli.BoolFlag{Name: "loopback", Usage: "connect MOSI to MISO inside the controller"},
		},
		Action: func(c *cli.Context) error {
			if m := c.Int("mode"); m < 0 || m > 3 {
				return errors.Errorf("mode %d out of range", m)
			}
			ws, err := parseWords(c.Args().Slice(), c.Int("bits"))
			if err != nil {
				return err
			}
			e, p, err := setup(c)
			if err != nil {
				return err
			}
			return finish(c, e, p, runSPI(c, e, p, ws))
		},
	}
}

func parseWords(args []string, bits int) ([]spi.Word, error) {
	if len(args) == 0 {
		args = []string{"0x9f", "0x00", "0x00", "0x00"}
	}
	ws := make([]spi.Word, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 0, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "word %q", a)
		}
		w, err := spi.NewWord(uint16(v), bits)
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, nil
}

// shiftRegister answers each word with the one before it, as a chain of
// shift registers does.
func shiftRegister() sim.PeerFunc {
	var last uint16
	return func(out uint16, _ int) uint16 {
		in := last
		last = out
		return in
	}
}

// runSPI drives SCK on PIO0_12, MOSI on PIO0_13, MISO on PIO0_14 and an
// active-low chip select on PIO0_15.
func runSPI(c *cli.Context, e *env, p *hal.Peripherals, ws []spi.Word) error {
	if e.board != nil {
		e.board.SPI0.Attach(shiftRegister())
	}

	h := p.SPI0.ActivateAsHost(p.Pins.GPIO12, spi.Config{Mode: spi.Mode(c.Int("mode"))}).
		WithDataPins(p.Pins.GPIO13, p.Pins.GPIO14)
	h.SetPolicy(e.policy)
	h.Loopback(c.Bool("loopback"))
	if err := h.SetFrequency(physic.Frequency(c.Int("khz")) * physic.KiloHertz); err != nil {
		return err
	}
	cs := p.Pins.GPIO15.ToDigitalOutput(true)

	out := append([]spi.Word(nil), ws...)
	cs.Low()
	err := spi.TransferWords(h, ws, e.policy)
	cs.High()
	if err != nil {
		return err
	}
	renderWords(c.App.Writer, h, out, ws)
	return nil
}

func renderWords(w io.Writer, h *spi.Host, out, in []spi.Word) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s at %s", h.Instance(), h.Frequency()))
	t.AppendHeader(table.Row{"#", "MOSI", "MISO"})
	for i := range out {
		t.AppendRow(table.Row{i, out[i], in[i]})
	}
	t.Render()
}

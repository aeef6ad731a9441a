// Command lpcsim runs demo programs for the HAL against the simulated
// LPC812 or, on a host that exposes the register blocks through /dev/mem,
// against real hardware.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lpc81x-go/hal"
	"lpc81x-go/regs"
	"lpc81x-go/regs/mmio"
	"lpc81x-go/sim"
	"lpc81x-go/x/spin"
)

const (
	flagBackend = "backend"
	flagPolls   = "max-polls"
	flagTimeout = "timeout"
	flagTrace   = "trace"
	flagDebug   = "debug"

	backendSim  = "sim"
	backendMMIO = "mmio"
)

// env is what every scenario runs against.
type env struct {
	rf     regs.File
	board  *sim.Board // nil on hardware
	rtc    *sim.DS3231
	rtcAt  time.Time
	policy spin.Policy
	log    *zap.Logger
	close  func() error
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "lpcsim:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lpcsim",
		Usage: "run LPC81x HAL scenarios",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagBackend,
				Value: backendSim,
				Usage: "register backend: sim or mmio",
			},
			&cli.IntFlag{
				Name:  flagPolls,
				Usage: "give up a busy-wait after this many polls (0 = no limit)",
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Usage: "give up a busy-wait after this long (0 = no limit)",
			},
			&cli.BoolFlag{
				Name:  flagTrace,
				Usage: "print the register trace when done (sim only)",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			rtcCommand(),
			spiCommand(),
		},
	}
}

// setup opens the backend and claims the hardware.
func setup(c *cli.Context) (*env, *hal.Peripherals, error) {
	log := zap.NewNop()
	if c.Bool(flagDebug) {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, errors.Wrap(err, "logger")
		}
		log = l
	}

	e := &env{log: log, policy: policyFrom(c)}
	switch b := c.String(flagBackend); b {
	case backendSim:
		e.board = sim.NewBoard()
		e.rtcAt = time.Now().UTC().Truncate(time.Second)
		e.rtc = sim.NewDS3231(e.rtcAt)
		e.board.I2C.Attach(sim.DS3231Address, e.rtc)
		e.board.Record(c.Bool(flagTrace))
		e.rf = e.board.Mem
		e.close = func() error { return nil }
	case backendMMIO:
		f, err := mmio.Open()
		if err != nil {
			return nil, nil, errors.Wrap(err, "open register blocks")
		}
		e.rf = f
		e.close = f.Close
	default:
		return nil, nil, errors.Errorf("unknown backend %q", b)
	}
	log.Debug("backend ready", zap.String("backend", c.String(flagBackend)))

	p, err := hal.Take(e.rf)
	if err != nil {
		return nil, nil, multierr.Append(err, e.close())
	}
	log.Info("hardware taken", zap.String("model", p.Model))
	return e, p, nil
}

func policyFrom(c *cli.Context) spin.Policy {
	switch {
	case c.Duration(flagTimeout) > 0:
		return spin.Deadline(c.Duration(flagTimeout), nil)
	case c.Int(flagPolls) > 0:
		return spin.MaxPolls(c.Int(flagPolls))
	}
	return spin.Forever
}

// finish prints the routing table and, if asked, the trace, then closes
// the backend.
func finish(c *cli.Context, e *env, p *hal.Peripherals, err error) error {
	w := c.App.Writer
	renderRouting(w, p.SWM)
	if e.board != nil && c.Bool(flagTrace) {
		renderTrace(w, e.board.Trace())
	}
	_ = e.log.Sync()
	return multierr.Append(err, e.close())
}

package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers/ds3231"

	"lpc81x-go/hal"
	"lpc81x-go/pinint"
	"lpc81x-go/pins"
	"lpc81x-go/sim"
	"lpc81x-go/x/spin"
)

func rtcCommand() *cli.Command {
	return &cli.Command{
		Name:  "rtc",
		Usage: "read a DS3231 on every square-wave edge and cycle the LEDs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "ticks", Value: 5, Usage: "square-wave edges to wait for"},
			&cli.IntFlag{Name: "khz", Value: 100, Usage: "I2C bus speed in kHz"},
		},
		Action: func(c *cli.Context) error {
			e, p, err := setup(c)
			if err != nil {
				return err
			}
			return finish(c, e, p, runRTC(c, e, p))
		},
	}
}

// runRTC is the clock demo: DS3231 on SCL PIO0_10 / SDA PIO0_11 with its
// 1 Hz square wave on PIO0_6, and active-low LEDs on PIO0_7, 17 and 16.
func runRTC(c *cli.Context, e *env, p *hal.Peripherals) error {
	w := c.App.Writer

	h := p.I2C.ActivateHost(p.Pins.GPIO10, p.Pins.GPIO11)
	h.SetPolicy(e.policy)
	if err := h.SetSpeed(physic.Frequency(c.Int("khz")) * physic.KiloHertz); err != nil {
		return err
	}
	e.log.Debug("i2c ready", zap.Stringer("speed", h.Speed()))

	// Control register: oscillator on, 1 Hz square wave, no alarms.
	if err := h.Write(sim.DS3231Address, []byte{0x0E, 0x00}); err != nil {
		return err
	}
	rtc := ds3231.New(h)

	ints := p.PinInterrupts.Activate()
	sqw := ints.Int0.EdgeTriggered(p.PinInputs.GPIO6)
	sqw.Enable(false, true)
	d := pinint.NewDispatcher(e.rf, 4, pinint.WithLogger(e.log))

	leds := []*pins.DigitalOutput{
		p.Pins.GPIO7.ToDigitalOutput(true),
		p.Pins.GPIO17.ToDigitalOutput(true),
		p.Pins.GPIO16.ToDigitalOutput(true),
	}

	for i := 0; i < c.Int("ticks"); i++ {
		if e.board != nil {
			e.rtcAt = e.rtcAt.Add(time.Second)
			e.rtc.Set(e.rtcAt)
			id := uint8(sqw.Pin().ID())
			e.board.GPIO.Drive(id, true)
			e.board.GPIO.Drive(id, false)
		}
		if err := spin.Until(e.policy, "rtc.sqw", func() bool { return d.Service() > 0 }); err != nil {
			return err
		}
		ev := <-d.Events()

		now, err := rtc.ReadTime()
		if err != nil {
			return err
		}
		led := leds[i%len(leds)]
		led.Low()
		if prev := leds[(i+len(leds)-1)%len(leds)]; prev != led {
			prev.High()
		}
		fmt.Fprintf(w, "tick %d  ch%d falling=%t  %s  led %s\n", i, ev.Channel, ev.Falling, now.Format("2006-01-02 15:04:05"), led.ID())
	}
	if n := d.Drops(); n > 0 {
		e.log.Warn("square-wave edges dropped", zap.Uint32("drops", n))
	}
	return nil
}

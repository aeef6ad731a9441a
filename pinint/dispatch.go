package pinint

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"lpc81x-go/regmap"
	"lpc81x-go/regs"
)

// Event reports one latched channel.
type Event struct {
	Channel int
	Rising  bool
	Falling bool
	At      time.Time
}

// Dispatcher moves latched pin interrupts out of interrupt context. Service
// is the handler body: it reads IST, acknowledges every pending channel and
// posts an Event per channel without blocking. Events that do not fit in
// the buffer are counted and dropped.
type Dispatcher struct {
	rf    regs.File
	out   chan Event
	drops atomic.Uint32
	clk   clock.Clock
	log   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger reports drops to log.
func WithLogger(log *zap.Logger) Option { return func(d *Dispatcher) { d.log = log } }

// WithClock timestamps events from clk.
func WithClock(clk clock.Clock) Option { return func(d *Dispatcher) { d.clk = clk } }

// NewDispatcher returns a dispatcher with room for buf undelivered events.
func NewDispatcher(rf regs.File, buf int, opts ...Option) *Dispatcher {
	if buf <= 0 {
		buf = 16
	}
	d := &Dispatcher{rf: rf, out: make(chan Event, buf), clk: clock.New(), log: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Events delivers serviced interrupts.
func (d *Dispatcher) Events() <-chan Event { return d.out }

// Drops is the number of events lost to a full buffer.
func (d *Dispatcher) Drops() uint32 { return d.drops.Load() }

// Service handles every latched channel and reports how many there were.
func (d *Dispatcher) Service() int {
	ist := d.rf.Load(regmap.PININT_IST) & (1<<Channels - 1)
	if ist == 0 {
		return 0
	}
	rise := d.rf.Load(regmap.PININT_RISE)
	fall := d.rf.Load(regmap.PININT_FALL)
	now := d.clk.Now()
	n := 0
	for ch := 0; ch < Channels; ch++ {
		bit := uint32(1) << ch
		if ist&bit == 0 {
			continue
		}
		d.rf.Store(regmap.PININT_IST, bit)
		n++
		ev := Event{Channel: ch, Rising: rise&bit != 0, Falling: fall&bit != 0, At: now}
		select {
		case d.out <- ev:
		default:
			total := d.drops.Inc()
			d.log.Warn("pin interrupt event dropped", zap.Int("channel", ch), zap.Uint32("drops", total))
		}
	}
	return n
}

// Poll calls Service every interval until ctx is done. It stands in for the
// interrupt on hosts where none is wired.
func (d *Dispatcher) Poll(ctx context.Context, interval time.Duration) {
	t := d.clk.Ticker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.Service()
		}
	}
}

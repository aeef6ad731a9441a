// Package spin bounds busy-waits on hardware status bits.
//
// Peripheral engines poll status registers until a condition holds. A Policy
// decides how long that may go on. Forever matches bare-metal semantics;
// the other policies turn a stuck bus into an errcode.Timeout.
package spin

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"lpc81x-go/errcode"
)

// Policy starts a budget for one wait.
type Policy interface {
	Start() Budget
}

// Budget is consulted before every re-poll. A non-nil error ends the wait.
type Budget interface {
	Next() error
}

// Forever never gives up.
var Forever Policy = forever{}

type forever struct{}

func (forever) Start() Budget { return forever{} }
func (forever) Next() error   { return nil }

// MaxPolls allows the condition to be evaluated at most n times.
func MaxPolls(n int) Policy { return maxPolls(n) }

type maxPolls int

func (n maxPolls) Start() Budget { return &polls{left: int(n) - 1, limit: int(n)} }

type polls struct{ left, limit int }

func (p *polls) Next() error {
	if p.left <= 0 {
		return errors.Errorf("gave up after %d polls", p.limit)
	}
	p.left--
	return nil
}

// Deadline allows polling for d as measured by clk. A nil clk means the
// wall clock.
func Deadline(d time.Duration, clk clock.Clock) Policy {
	if clk == nil {
		clk = clock.New()
	}
	return deadline{d: d, clk: clk}
}

type deadline struct {
	d   time.Duration
	clk clock.Clock
}

func (p deadline) Start() Budget {
	return &until{at: p.clk.Now().Add(p.d), d: p.d, clk: p.clk}
}

type until struct {
	at  time.Time
	d   time.Duration
	clk clock.Clock
}

func (u *until) Next() error {
	if !u.clk.Now().Before(u.at) {
		return errors.Errorf("gave up after %s", u.d)
	}
	return nil
}

// Context polls until ctx is done.
func Context(ctx context.Context) Policy { return ctxPolicy{ctx} }

type ctxPolicy struct{ ctx context.Context }

func (p ctxPolicy) Start() Budget { return p }
func (p ctxPolicy) Next() error   { return p.ctx.Err() }

// Until polls cond until it holds or the budget runs out.
func Until(p Policy, op string, cond func() bool) error {
	return Poll(p, op, func() (bool, error) { return cond(), nil })
}

// Poll is Until for conditions that can fail. An error from cond is returned
// unchanged; an exhausted budget is reported as errcode.Timeout.
func Poll(p Policy, op string, cond func() (bool, error)) error {
	if p == nil {
		p = Forever
	}
	b := p.Start()
	for {
		done, err := cond()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := b.Next(); err != nil {
			return &errcode.E{C: errcode.Timeout, Op: op, Err: err}
		}
	}
}

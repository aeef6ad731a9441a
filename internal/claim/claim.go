// Package claim tracks single-use ownership of hardware handles.
//
// Every handle carries a Cell. A state transition spends the receiver's cell
// and issues a new one for the handle it returns, so a value that has been
// moved cannot be used again.
package claim

import (
	"go.uber.org/atomic"

	"lpc81x-go/errcode"
)

// Cell is a consume-once ownership marker.
type Cell struct {
	what  string
	spent atomic.Bool
}

// New issues a live cell describing the resource it guards.
func New(what string) *Cell { return &Cell{what: what} }

// What names the guarded resource.
func (c *Cell) What() string {
	if c == nil {
		return "<nil>"
	}
	return c.what
}

// Live reports whether the cell has not yet been spent.
func (c *Cell) Live() bool { return c != nil && !c.spent.Load() }

// Check panics with errcode.Misuse unless the cell is live.
func (c *Cell) Check(op string) {
	if !c.Live() {
		errcode.Panic(op, c.What()+" handle already consumed")
	}
}

// Spend consumes the cell, panicking with errcode.Misuse if it was already
// spent or was never issued.
func (c *Cell) Spend(op string) {
	if c == nil || !c.spent.CompareAndSwap(false, true) {
		errcode.Panic(op, c.What()+" handle already consumed")
	}
}

// Move spends c and issues a fresh cell for the same resource.
func (c *Cell) Move(op string) *Cell {
	c.Spend(op)
	return New(c.what)
}

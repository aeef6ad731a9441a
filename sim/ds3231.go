package sim

import (
	"sync"
	"time"
)

// DS3231Address is the RTC's fixed bus address.
const DS3231Address = 0x68

const ds3231Regs = 0x13

// DS3231 is a register-level model of the Maxim DS3231 RTC. The clock does
// not tick; tests and scenarios set it explicitly.
type DS3231 struct {
	mu      sync.Mutex
	regs    [ds3231Regs]byte
	ptr     int
	pointer bool // next written byte sets the register pointer
}

// NewDS3231 returns an RTC holding t (24-hour mode) at 25.25 °C.
func NewDS3231(t time.Time) *DS3231 {
	d := &DS3231{}
	d.Set(t)
	d.regs[0x0E] = 0x1C // control: EOSC=0, INTCN=1, RS2=RS1=1
	d.regs[0x11] = 25
	d.regs[0x12] = 0x40
	return d
}

func toBCD(v int) byte { return byte(v/10<<4 | v%10) }

// Set loads the timekeeping registers.
func (d *DS3231) Set(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[0] = toBCD(t.Second())
	d.regs[1] = toBCD(t.Minute())
	d.regs[2] = toBCD(t.Hour())
	d.regs[3] = toBCD(int(t.Weekday()) + 1)
	d.regs[4] = toBCD(t.Day())
	month := toBCD(int(t.Month()))
	year := t.Year() - 2000
	if year >= 100 {
		month |= 0x80
		year -= 100
	}
	d.regs[5] = month
	d.regs[6] = toBCD(year)
}

// Register returns the value of register r.
func (d *DS3231) Register(r int) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[r%ds3231Regs]
}

func (d *DS3231) Address(read bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pointer = !read
	return true
}

func (d *DS3231) Receive(b byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pointer {
		d.ptr = int(b) % ds3231Regs
		d.pointer = false
		return true
	}
	d.regs[d.ptr] = b
	d.ptr = (d.ptr + 1) % ds3231Regs
	return true
}

func (d *DS3231) Transmit() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.regs[d.ptr]
	d.ptr = (d.ptr + 1) % ds3231Regs
	return b
}

func (d *DS3231) Stop() {}

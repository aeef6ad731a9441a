package regs

import (
	"fmt"
	"sync"
)

// Op tags an entry in a Mem trace.
type Op byte

const (
	OpLoad  Op = 'R'
	OpStore Op = 'W'
)

// Access is one recorded register access.
type Access struct {
	Op    Op
	Addr  uint32
	Value uint32
}

func (a Access) String() string {
	return fmt.Sprintf("%c %08x %08x", a.Op, a.Addr, a.Value)
}

// LoadHook supplies the value seen by a Load. cur is the stored value.
type LoadHook func(addr, cur uint32) uint32

// StoreHook observes a Store after the value has been written through.
type StoreHook func(addr, v uint32)

// Mem is an in-memory register file with per-address hooks, used by the
// simulator and by tests. Unwritten registers read as zero.
//
// Hooks run without Mem's lock held, so they may call Peek and Poke.
type Mem struct {
	mu      sync.Mutex
	cells   map[uint32]uint32
	onLoad  map[uint32]LoadHook
	onStore map[uint32]StoreHook
	tracing bool
	trace   []Access
}

// NewMem returns an empty register file.
func NewMem() *Mem {
	return &Mem{
		cells:   make(map[uint32]uint32),
		onLoad:  make(map[uint32]LoadHook),
		onStore: make(map[uint32]StoreHook),
	}
}

func (m *Mem) Load(addr uint32) uint32 {
	m.mu.Lock()
	v := m.cells[addr]
	h := m.onLoad[addr]
	m.mu.Unlock()

	if h != nil {
		v = h(addr, v)
	}

	m.mu.Lock()
	if m.tracing {
		m.trace = append(m.trace, Access{OpLoad, addr, v})
	}
	m.mu.Unlock()
	return v
}

func (m *Mem) Store(addr, v uint32) {
	m.mu.Lock()
	m.cells[addr] = v
	h := m.onStore[addr]
	if m.tracing {
		m.trace = append(m.trace, Access{OpStore, addr, v})
	}
	m.mu.Unlock()

	if h != nil {
		h(addr, v)
	}
}

// Peek reads a register without hooks or tracing.
func (m *Mem) Peek(addr uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cells[addr]
}

// Poke writes a register without hooks or tracing.
func (m *Mem) Poke(addr, v uint32) {
	m.mu.Lock()
	m.cells[addr] = v
	m.mu.Unlock()
}

// OnLoad installs (or with nil removes) a load hook for addr.
func (m *Mem) OnLoad(addr uint32, h LoadHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h == nil {
		delete(m.onLoad, addr)
		return
	}
	m.onLoad[addr] = h
}

// OnStore installs (or with nil removes) a store hook for addr.
func (m *Mem) OnStore(addr uint32, h StoreHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h == nil {
		delete(m.onStore, addr)
		return
	}
	m.onStore[addr] = h
}

// Record turns access tracing on or off. Turning it on clears the trace.
func (m *Mem) Record(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracing = on
	m.trace = m.trace[:0]
}

// Trace returns a copy of the recorded accesses.
func (m *Mem) Trace() []Access {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Access, len(m.trace))
	copy(out, m.trace)
	return out
}

// Stores returns the recorded stores, optionally restricted to addrs.
func (m *Mem) Stores(addrs ...uint32) []Access {
	want := make(map[uint32]bool, len(addrs))
	for _, a := range addrs {
		want[a] = true
	}
	var out []Access
	for _, a := range m.Trace() {
		if a.Op != OpStore {
			continue
		}
		if len(want) > 0 && !want[a.Addr] {
			continue
		}
		out = append(out, a)
	}
	return out
}

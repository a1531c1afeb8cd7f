// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package cdcsim

import (
	"github.com/pkg/errors"
)

// A Component is a piece of clocked logic mounted in a Domain.
//
// On every rising edge of the domain clock the simulator first calls Eval on
// every component of the domain, then Commit on every component. During Eval
// a component must only read committed state (its own or other components')
// and stage its next state; Commit publishes the staged state. Components
// must never read another component's staged state.
type Component interface {
	Eval()
	Commit()
}

// A Resetter is a Component that can be returned to its power-on state.
type Resetter interface {
	Reset()
}

// tickFn wraps a plain function into a Component with an empty Commit.
// Used for stimulus and probes.
type tickFn func()

func (f tickFn) Eval()   { f() }
func (f tickFn) Commit() {}

// A Domain is an independent clock domain. All components added to a domain
// are evaluated on that domain's rising edges only.
type Domain struct {
	name   string
	period uint64
	phase  uint64
	next   uint64
	ticks  uint64
	comps  []Component
}

// Name returns the domain name.
func (d *Domain) Name() string { return d.name }

// Period returns the domain clock period in simulation time units.
func (d *Domain) Period() uint64 { return d.period }

// Ticks returns the number of rising edges seen since the last reset.
func (d *Domain) Ticks() uint64 { return d.ticks }

// Add mounts components into the domain.
func (d *Domain) Add(cs ...Component) {
	d.comps = append(d.comps, cs...)
}

// OnTick registers f to run during the Eval phase of every rising edge.
// f follows the Eval contract: read committed state, stage next state.
func (d *Domain) OnTick(f func()) {
	d.Add(tickFn(f))
}

// Tick runs one rising edge of the domain clock: Eval on all components,
// then Commit on all components.
func (d *Domain) Tick() {
	for _, c := range d.comps {
		c.Eval()
	}
	for _, c := range d.comps {
		c.Commit()
	}
	d.ticks++
}

func (d *Domain) reset() {
	for _, c := range d.comps {
		if r, ok := c.(Resetter); ok {
			r.Reset()
		}
	}
	d.ticks = 0
	d.next = d.phase + d.period
}

// Sim schedules any number of free-running clock domains. Domains advance
// strictly by their own period and phase; no relationship between domain
// clocks is assumed or established.
type Sim struct {
	domains []*Domain
	now     uint64
}

// New returns an empty simulation.
func New() *Sim {
	return &Sim{}
}

// Domain creates a clock domain with the given period and phase offset
// (both in abstract simulation time units) and adds it to the simulation.
// The first rising edge of the domain occurs at time phase+period.
func (s *Sim) Domain(name string, period, phase uint64) (*Domain, error) {
	if name == "" {
		return nil, errors.New("empty domain name")
	}
	if period == 0 {
		return nil, errors.Errorf("domain %s: zero period", name)
	}
	for _, d := range s.domains {
		if d.name == name {
			return nil, errors.Errorf("duplicate domain name %s", name)
		}
	}
	d := &Domain{
		name:   name,
		period: period,
		phase:  phase,
		next:   phase + period,
	}
	s.domains = append(s.domains, d)
	return d, nil
}

// Now returns the current simulation time.
func (s *Sim) Now() uint64 { return s.now }

// Step advances simulation time to the earliest pending clock edge and runs
// the rising edge of every domain due at that instant. When several domains
// happen to fall due at the same instant they fire one after the other in
// the order they were created; domains only interact through synchronizer
// sampling, which tolerates a tick of skew, so the tie-break does not affect
// protocol behavior and keeps runs reproducible.
func (s *Sim) Step() {
	if len(s.domains) == 0 {
		panic("Step on a simulation with no domains")
	}
	next := s.domains[0].next
	for _, d := range s.domains[1:] {
		if d.next < next {
			next = d.next
		}
	}
	s.now = next
	for _, d := range s.domains {
		if d.next == next {
			d.Tick()
			d.next += d.period
		}
	}
}

// Run executes n scheduler steps.
func (s *Sim) Run(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// RunUntil steps the simulation until pred returns true, giving up after
// limit steps. It is the watchdog primitive: a handshake that never
// completes surfaces as an error here rather than as a hang.
func (s *Sim) RunUntil(limit int, pred func() bool) error {
	for i := 0; i < limit; i++ {
		if pred() {
			return nil
		}
		s.Step()
	}
	if pred() {
		return nil
	}
	return errors.Errorf("watchdog: condition not met after %d steps (t=%d)", limit, s.now)
}

// Reset returns every domain to its power-on state: components implementing
// Resetter are reset, tick counters are cleared and the schedule restarts
// from time zero.
func (s *Sim) Reset() {
	for _, d := range s.domains {
		d.reset()
	}
	s.now = 0
}

// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package cross provides clock-domain-crossing primitives: multi-flop
// synchronizers, a toggle handshake crosser and a one-deep data channel.
package cross

import (
	"github.com/cdckit/cdcsim"
	"github.com/pkg/errors"
)

// A Synchronizer resamples a single-bit level from another clock domain
// through a chain of flops clocked by the destination domain. Only the last
// stage is observable; intermediate stages stand in for the settling time
// real flops need to resolve metastability.
//
// A synchronizer carries levels, not events: an input that toggles faster
// than the destination clock samples it will lose transitions. Control
// events must go through a Pulse instead.
type Synchronizer struct {
	sample func() bool
	chain  []cdcsim.Reg[bool]
}

// NewSynchronizer mounts a depth-stage synchronizer in domain d. sample is
// called during Eval and must read only committed source-domain state.
// depth must be at least 2.
func NewSynchronizer(d *cdcsim.Domain, depth int, sample func() bool) (*Synchronizer, error) {
	if d == nil {
		return nil, errors.New("synchronizer: nil domain")
	}
	if depth < 2 {
		return nil, errors.Errorf("synchronizer: depth %d < 2", depth)
	}
	if sample == nil {
		return nil, errors.New("synchronizer: nil sample function")
	}
	s := &Synchronizer{
		sample: sample,
		chain:  make([]cdcsim.Reg[bool], depth),
	}
	d.Add(s)
	return s, nil
}

// Eval shifts the chain by one stage.
func (s *Synchronizer) Eval() {
	s.chain[0].Set(s.sample())
	for i := 1; i < len(s.chain); i++ {
		s.chain[i].Set(s.chain[i-1].Get())
	}
}

// Commit publishes all stages.
func (s *Synchronizer) Commit() {
	for i := range s.chain {
		s.chain[i].Commit()
	}
}

// Reset clears the chain.
func (s *Synchronizer) Reset() {
	for i := range s.chain {
		s.chain[i].Reset()
	}
}

// Out returns the committed value of the last stage. A stable input is
// reflected here after depth destination ticks; which exact tick observes a
// changing input is unspecified.
func (s *Synchronizer) Out() bool {
	return s.chain[len(s.chain)-1].Get()
}

// Depth returns the number of stages.
func (s *Synchronizer) Depth() int { return len(s.chain) }

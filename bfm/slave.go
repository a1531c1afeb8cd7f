// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package bfm

import (
	"math/rand"

	"github.com/cdckit/cdcsim"
	"github.com/cdckit/cdcsim/axilite"
	"github.com/pkg/errors"
)

// SlaveConfig tunes a Slave.
type SlaveConfig struct {
	// Stall is the per-tick probability of withholding ready on each of the
	// AW, W and AR ports, and of delaying B and R beats.
	Stall float64
	// Limit, when non-zero, is the size of the decoded address window.
	// Accesses at or above it complete with RespDecErr and do not touch
	// memory.
	Limit uint32
	// Seed for the stall randomness.
	Seed int64
}

// A Slave terminates the slave side of a Bridge with a memory. AW and W
// beats are accepted independently, in whichever order the bridge delivers
// them, and paired in arrival order; the bridge guarantees no order between
// the two channels. AR beats are served from the same memory. Random stalls
// on every port exercise back-pressure through the bridge.
type Slave struct {
	mem *Memory

	awQ []axilite.AW
	wQ  []axilite.W
	arQ []axilite.AR

	awRx *receiver[axilite.AW]
	wRx  *receiver[axilite.W]
	arRx *receiver[axilite.AR]
	bTx  *driver[axilite.B]
	rTx  *driver[axilite.R]

	limit uint32
}

// NewSlave mounts a slave model on the slave-side ports of br, in domain d.
// The slave owns mem; no one else may write it while the simulation runs.
func NewSlave(d *cdcsim.Domain, br *axilite.Bridge, mem *Memory, cfg SlaveConfig) (*Slave, error) {
	if d == nil || br == nil || mem == nil {
		return nil, errors.New("slave: nil domain, bridge or memory")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	s := &Slave{mem: mem, limit: cfg.Limit}
	s.awRx = &receiver[axilite.AW]{port: br.AW.Out, stall: stallFn(rng, cfg.Stall),
		fn: func(b axilite.AW) { s.awQ = append(s.awQ, b) }}
	s.wRx = &receiver[axilite.W]{port: br.W.Out, stall: stallFn(rng, cfg.Stall),
		fn: func(b axilite.W) { s.wQ = append(s.wQ, b) }}
	s.arRx = &receiver[axilite.AR]{port: br.AR.Out, stall: stallFn(rng, cfg.Stall),
		fn: func(b axilite.AR) { s.arQ = append(s.arQ, b) }}
	s.bTx = &driver[axilite.B]{port: br.B.In, gap: stallFn(rng, cfg.Stall)}
	s.rTx = &driver[axilite.R]{port: br.R.In, gap: stallFn(rng, cfg.Stall)}
	d.Add(s)
	return s, nil
}

func (s *Slave) decode(addr uint32) bool {
	return s.limit == 0 || addr < s.limit
}

// Eval runs one slave-domain tick: drain the address and data ports,
// complete at most one write and one read, and feed the response drivers.
func (s *Slave) Eval() {
	s.awRx.tick()
	s.wRx.tick()
	s.arRx.tick()

	if len(s.awQ) > 0 && len(s.wQ) > 0 {
		aw, w := s.awQ[0], s.wQ[0]
		s.awQ, s.wQ = s.awQ[1:], s.wQ[1:]
		resp := axilite.RespOkay
		if s.decode(aw.Addr) {
			s.mem.Write(aw.Addr, w)
		} else {
			resp = axilite.RespDecErr
		}
		s.bTx.push(axilite.B{Resp: resp})
	}

	if len(s.arQ) > 0 {
		ar := s.arQ[0]
		s.arQ = s.arQ[1:]
		if s.decode(ar.Addr) {
			s.rTx.push(axilite.R{Data: s.mem.Read(ar.Addr), Resp: axilite.RespOkay})
		} else {
			s.rTx.push(axilite.R{Data: Poison, Resp: axilite.RespDecErr})
		}
	}

	s.bTx.tick()
	s.rTx.tick()
}

// Commit is empty: the slave's own state is plain bookkeeping, the
// registered signals all live in the bridge ports.
func (s *Slave) Commit() {}

// Reset drops all queued beats.
func (s *Slave) Reset() {
	s.awQ, s.wQ, s.arQ = nil, nil, nil
	s.bTx.reset()
	s.rTx.reset()
}

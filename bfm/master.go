// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package bfm

import (
	"math/rand"

	"github.com/cdckit/cdcsim"
	"github.com/cdckit/cdcsim/axilite"
	"github.com/pkg/errors"
)

// A Cmd is one bus operation for a Master to issue.
type Cmd struct {
	Read bool
	Addr uint32
	// Data and Strb apply to writes only.
	Data uint32
	Strb uint8
}

// MasterConfig tunes a Master.
type MasterConfig struct {
	// Gap is the per-tick probability of holding off issuing the next beat
	// on each of the AW, W and AR ports, and of stalling the R and B ports.
	// Independent gaps on AW and W make their relative order across the
	// bridge vary, which is exactly what a correct slave must tolerate.
	Gap float64
	// Seed for the gap randomness.
	Seed int64
}

// A Master drives the master side of a Bridge from a queued command script
// and records the responses. Writes issue their AW and W beats through
// independently stalled drivers; reads issue AR beats. Responses arrive in
// command order because each sub-channel preserves order and the slave
// completes in arrival order.
type Master struct {
	cmds []Cmd

	awTx *driver[axilite.AW]
	wTx  *driver[axilite.W]
	arTx *driver[axilite.AR]
	bRx  *receiver[axilite.B]
	rRx  *receiver[axilite.R]

	wantB, wantR int

	// B and R hold the received responses in arrival order.
	B []axilite.B
	R []axilite.R
}

// NewMaster mounts a master model on the master-side ports of br, in
// domain d.
func NewMaster(d *cdcsim.Domain, br *axilite.Bridge, cfg MasterConfig) (*Master, error) {
	if d == nil || br == nil {
		return nil, errors.New("master: nil domain or bridge")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	m := &Master{}
	m.awTx = &driver[axilite.AW]{port: br.AW.In, gap: stallFn(rng, cfg.Gap)}
	m.wTx = &driver[axilite.W]{port: br.W.In, gap: stallFn(rng, cfg.Gap)}
	m.arTx = &driver[axilite.AR]{port: br.AR.In, gap: stallFn(rng, cfg.Gap)}
	m.bRx = &receiver[axilite.B]{port: br.B.Out, stall: stallFn(rng, cfg.Gap),
		fn: func(b axilite.B) { m.B = append(m.B, b) }}
	m.rRx = &receiver[axilite.R]{port: br.R.Out, stall: stallFn(rng, cfg.Gap),
		fn: func(b axilite.R) { m.R = append(m.R, b) }}
	d.Add(m)
	return m, nil
}

// Queue appends commands to the master's script.
func (m *Master) Queue(cmds ...Cmd) {
	for _, c := range cmds {
		if c.Read {
			m.wantR++
		} else {
			m.wantB++
		}
	}
	m.cmds = append(m.cmds, cmds...)
}

// Done reports whether every queued command has been issued and answered.
func (m *Master) Done() bool {
	return len(m.cmds) == 0 &&
		m.awTx.idle() && m.wTx.idle() && m.arTx.idle() &&
		len(m.B) == m.wantB && len(m.R) == m.wantR
}

// Eval runs one master-domain tick: hand the next command to its beat
// drivers, advance the drivers and drain the response ports.
func (m *Master) Eval() {
	if len(m.cmds) > 0 {
		c := m.cmds[0]
		m.cmds = m.cmds[1:]
		if c.Read {
			m.arTx.push(axilite.AR{Addr: c.Addr})
		} else {
			m.awTx.push(axilite.AW{Addr: c.Addr})
			m.wTx.push(axilite.W{Data: c.Data, Strb: c.Strb})
		}
	}
	m.awTx.tick()
	m.wTx.tick()
	m.arTx.tick()
	m.bRx.tick()
	m.rRx.tick()
}

// Commit is empty: all registered signals live in the bridge ports.
func (m *Master) Commit() {}

// Reset drops the script and the recorded responses.
func (m *Master) Reset() {
	m.cmds = nil
	m.B, m.R = nil, nil
	m.wantB, m.wantR = 0, 0
	m.awTx.reset()
	m.wTx.reset()
	m.arTx.reset()
}

// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package bfm provides bus functional models for exercising an axilite
// Bridge: a command-driven master, a memory-backed slave and a randomized
// write-then-readback traffic harness.
package bfm

import (
	"math/rand"

	"github.com/cdckit/cdcsim/cross"
)

// driver feeds queued beats into a ready/valid port, presenting at most one
// beat at a time. gap, when non-nil, is consulted before presenting the next
// beat and lets callers inject random idle ticks.
type driver[T any] struct {
	port *cross.Port[T]
	q    []T
	busy bool
	gap  func() bool
}

func (d *driver[T]) push(v T) { d.q = append(d.q, v) }

func (d *driver[T]) idle() bool { return !d.busy && len(d.q) == 0 }

func (d *driver[T]) tick() {
	if d.busy {
		if d.port.Xfer() {
			d.port.SetValid(false)
			d.busy = false
		}
		return
	}
	if len(d.q) == 0 || (d.gap != nil && d.gap()) {
		return
	}
	d.port.SetData(d.q[0])
	d.port.SetValid(true)
	d.q = d.q[1:]
	d.busy = true
}

func (d *driver[T]) reset() {
	d.q = nil
	d.busy = false
}

// receiver drains a ready/valid port, calling fn once per received beat.
// stall, when non-nil, is consulted when staging ready and lets callers
// inject random back-pressure.
type receiver[T any] struct {
	port  *cross.Port[T]
	fn    func(T)
	stall func() bool
}

func (r *receiver[T]) tick() {
	if r.port.Xfer() {
		r.fn(r.port.Data())
	}
	r.port.SetReady(r.stall == nil || !r.stall())
}

func stallFn(rng *rand.Rand, p float64) func() bool {
	if p <= 0 {
		return nil
	}
	return func() bool { return rng.Float64() < p }
}

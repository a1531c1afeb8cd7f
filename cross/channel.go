// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package cross

import (
	"github.com/cdckit/cdcsim"
	"github.com/pkg/errors"
)

// A Port is one ready/valid interface. The producer stages Valid and Data,
// the consumer stages Ready; a beat transfers on the one tick where both
// committed Valid and Ready are high. The port registers all three signals,
// so a value staged during Eval is seen by the other agent on the next tick.
type Port[T any] struct {
	valid cdcsim.Reg[bool]
	ready cdcsim.Reg[bool]
	data  cdcsim.Reg[T]
}

// Valid returns the committed valid signal.
func (p *Port[T]) Valid() bool { return p.valid.Get() }

// Ready returns the committed ready signal.
func (p *Port[T]) Ready() bool { return p.ready.Get() }

// Data returns the committed data bundle.
func (p *Port[T]) Data() T { return p.data.Get() }

// SetValid stages the valid signal. Producer side only.
func (p *Port[T]) SetValid(v bool) { p.valid.Set(v) }

// SetReady stages the ready signal. Consumer side only.
func (p *Port[T]) SetReady(v bool) { p.ready.Set(v) }

// SetData stages the data bundle. Producer side only.
func (p *Port[T]) SetData(v T) { p.data.Set(v) }

// Xfer reports whether a beat transfers on this tick.
func (p *Port[T]) Xfer() bool { return p.valid.Get() && p.ready.Get() }

// Eval is empty: ports hold no logic, only registered signals.
func (p *Port[T]) Eval() {}

// Commit publishes all staged signals.
func (p *Port[T]) Commit() {
	p.valid.Commit()
	p.ready.Commit()
	p.data.Commit()
}

// Reset clears the port.
func (p *Port[T]) Reset() {
	p.valid.Reset()
	p.ready.Reset()
	p.data.Reset()
}

// A Channel moves transaction payloads of type T across a clock-domain
// boundary, one at a time. It presents a ready/valid port on each side: In
// is driven by the source-domain producer, Out feeds the destination-domain
// consumer.
//
// The channel holds exactly one payload in flight. In.Ready stays low from
// the tick a payload is accepted until the full handshake round trip has
// completed, so a producer can never overrun it; if the consumer withholds
// Out.Ready forever, that stall propagates back to In.Ready with no payload
// lost or reordered.
type Channel[T any] struct {
	// In is the source-domain port. The producer stages Valid and Data.
	In *Port[T]
	// Out is the destination-domain port. The consumer stages Ready.
	Out *Port[T]

	pulse *Pulse
	hold  cdcsim.Reg[T]

	src chanSrc[T]
	dst chanDst[T]
}

type chanSrc[T any] struct{ ch *Channel[T] }
type chanDst[T any] struct{ ch *Channel[T] }

// NewChannel mounts a one-deep crossing channel from domain src to domain
// dst, with depth-stage synchronizers in its handshake.
func NewChannel[T any](src, dst *cdcsim.Domain, depth int) (*Channel[T], error) {
	p, err := NewPulse(src, dst, depth)
	if err != nil {
		return nil, errors.Wrap(err, "channel")
	}
	ch := &Channel[T]{
		In:    &Port[T]{},
		Out:   &Port[T]{},
		pulse: p,
	}
	ch.src.ch = ch
	ch.dst.ch = ch
	src.Add(&ch.src, ch.In)
	dst.Add(&ch.dst, ch.Out)
	return ch, nil
}

// Busy reports whether a payload is currently in flight.
func (ch *Channel[T]) Busy() bool { return !ch.pulse.Idle() }

func (s *chanSrc[T]) Eval() {
	ch := s.ch
	accept := ch.In.Xfer()
	if accept {
		ch.hold.Set(ch.In.Data())
		ch.pulse.Request()
	}
	// Ready goes registered: it reflects last tick's idle state, and drops
	// for at least the whole round trip after an accept.
	ch.In.SetReady(ch.pulse.Idle() && !accept)
}

func (s *chanSrc[T]) Commit() { s.ch.hold.Commit() }
func (s *chanSrc[T]) Reset()  { s.ch.hold.Reset() }

func (d *chanDst[T]) Eval() {
	ch := d.ch
	if ch.pulse.Fire() {
		// The holding register lives in the source domain, but the handshake
		// guarantees it stopped moving before the request pulse can land, so
		// sampling it here is safe. This is the software analogue of the
		// false-path timing exclusion on the register's fanout.
		ch.Out.SetData(ch.hold.Get())
		ch.Out.SetValid(true)
	}
	if ch.Out.Xfer() {
		ch.Out.SetValid(false)
		ch.pulse.Ack()
	}
}

func (d *chanDst[T]) Commit() {}
func (d *chanDst[T]) Reset()  {}

// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package cross

import (
	"github.com/cdckit/cdcsim"
	"github.com/pkg/errors"
)

// HandshakeState is the state of one Pulse crossing.
type HandshakeState int

const (
	// Idle: no request outstanding; a new request may be issued.
	Idle HandshakeState = iota
	// RequestPending: the source toggled its request level and the event has
	// not yet been observed in the destination domain.
	RequestPending
	// AckPending: the destination observed the request and toggled its
	// acknowledge level; the source has not yet observed the acknowledge.
	AckPending
)

func (s HandshakeState) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case RequestPending:
		return "REQUEST_PENDING"
	case AckPending:
		return "ACK_PENDING"
	}
	return "INVALID"
}

// A Pulse crosses a one-shot request from a source clock domain to a
// destination domain and returns an acknowledgment, with at most one request
// in flight. The request is encoded as a toggling level rather than a pulse
// so that no number of elapsed destination ticks can lose the event; each
// toggle is passed through a Synchronizer and edge-detected on the far side.
//
// The source side may only call Request while Idle; the destination side may
// only call Ack after Fire reported a request. Violating either is a design
// bug in the caller and panics.
type Pulse struct {
	state cdcsim.Reg[HandshakeState]

	src *pulseSrc
	dst *pulseDst
}

// pulseSrc is the source-domain half: it owns the request toggle and
// edge-detects the synchronized acknowledge toggle.
type pulseSrc struct {
	p       *Pulse
	req     cdcsim.Reg[bool]
	ackSync *Synchronizer
	lastAck cdcsim.Reg[bool]
}

// pulseDst is the destination-domain half: it edge-detects the synchronized
// request toggle and owns the acknowledge toggle.
type pulseDst struct {
	p       *Pulse
	ack     cdcsim.Reg[bool]
	reqSync *Synchronizer
	lastReq cdcsim.Reg[bool]
	fire    cdcsim.Reg[bool]
}

// NewPulse mounts a handshake crossing from domain src to domain dst, using
// depth-stage synchronizers in each direction.
func NewPulse(src, dst *cdcsim.Domain, depth int) (*Pulse, error) {
	if src == nil || dst == nil {
		return nil, errors.New("pulse: nil domain")
	}
	if src == dst {
		return nil, errors.Errorf("pulse: source and destination are both domain %s", src.Name())
	}
	p := &Pulse{}
	p.src = &pulseSrc{p: p}
	p.dst = &pulseDst{p: p}

	var err error
	p.dst.reqSync, err = NewSynchronizer(dst, depth, p.src.req.Get)
	if err != nil {
		return nil, errors.Wrap(err, "pulse: request synchronizer")
	}
	p.src.ackSync, err = NewSynchronizer(src, depth, p.dst.ack.Get)
	if err != nil {
		return nil, errors.Wrap(err, "pulse: acknowledge synchronizer")
	}
	src.Add(p.src)
	dst.Add(p.dst)
	return p, nil
}

// State returns the committed handshake state.
func (p *Pulse) State() HandshakeState { return p.state.Get() }

// Idle reports whether a new request may be issued.
func (p *Pulse) Idle() bool { return p.state.Get() == Idle }

// Request toggles the request level. Must be called from the Eval phase of
// the source domain, and only while Idle.
func (p *Pulse) Request() {
	if !p.Idle() {
		panic("cross: Request while handshake " + p.State().String())
	}
	p.src.req.Set(!p.src.req.Get())
	p.state.Set(RequestPending)
}

// Fire reports whether the request landed in the destination domain on this
// tick. It is true for exactly one destination tick per request.
func (p *Pulse) Fire() bool { return p.dst.fire.Get() }

// Ack toggles the acknowledge level, releasing the source once the toggle
// has propagated back. Must be called from the Eval phase of the
// destination domain, after Fire and at most once per request.
func (p *Pulse) Ack() {
	if p.state.Get() != AckPending {
		panic("cross: Ack with no request outstanding")
	}
	p.dst.ack.Set(!p.dst.ack.Get())
}

func (s *pulseSrc) Eval() {
	ack := s.ackSync.Out()
	if s.p.state.Get() == AckPending && ack != s.lastAck.Get() {
		s.p.state.Set(Idle)
	}
	s.lastAck.Set(ack)
}

func (s *pulseSrc) Commit() {
	s.req.Commit()
	s.lastAck.Commit()
	s.p.state.Commit()
}

func (s *pulseSrc) Reset() {
	s.req.Reset()
	s.lastAck.Reset()
	s.p.state.Reset()
}

func (d *pulseDst) Eval() {
	req := d.reqSync.Out()
	landed := d.p.state.Get() == RequestPending && req != d.lastReq.Get()
	d.fire.Set(landed)
	d.lastReq.Set(req)
	if landed {
		d.p.state.Set(AckPending)
	}
}

func (d *pulseDst) Commit() {
	d.ack.Commit()
	d.lastReq.Commit()
	d.fire.Commit()
	d.p.state.Commit()
}

func (d *pulseDst) Reset() {
	d.ack.Reset()
	d.lastReq.Reset()
	d.fire.Reset()
}

// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package axilite

import (
	"github.com/cdckit/cdcsim"
	"github.com/cdckit/cdcsim/cross"
	"github.com/pkg/errors"
)

// A Bridge carries an AXI-Lite bus between a master clock domain and a
// slave clock domain. It is purely structural: five independent crossing
// channels, one per sub-channel, with AR, AW and W crossing master to slave
// and R and B crossing back. The bridge adds no state and no coupling
// between channels.
//
// In particular the bridge gives no guarantee on the relative order in
// which an AW beat and its W beat emerge on the slave side; either may lead
// by an arbitrary number of slave ticks. AXI-Lite permits this, but a slave
// that assumes W follows AW promptly must buffer both sides and pair them
// itself, as bfm.Slave does.
type Bridge struct {
	AR *cross.Channel[AR]
	R  *cross.Channel[R]
	AW *cross.Channel[AW]
	W  *cross.Channel[W]
	B  *cross.Channel[B]
}

// NewBridge mounts a bridge between the master and slave domains, using
// depth-stage synchronizers in every handshake.
func NewBridge(master, slave *cdcsim.Domain, depth int) (*Bridge, error) {
	b := &Bridge{}
	var err error
	if b.AR, err = cross.NewChannel[AR](master, slave, depth); err != nil {
		return nil, errors.Wrap(err, "bridge: AR")
	}
	if b.R, err = cross.NewChannel[R](slave, master, depth); err != nil {
		return nil, errors.Wrap(err, "bridge: R")
	}
	if b.AW, err = cross.NewChannel[AW](master, slave, depth); err != nil {
		return nil, errors.Wrap(err, "bridge: AW")
	}
	if b.W, err = cross.NewChannel[W](master, slave, depth); err != nil {
		return nil, errors.Wrap(err, "bridge: W")
	}
	if b.B, err = cross.NewChannel[B](slave, master, depth); err != nil {
		return nil, errors.Wrap(err, "bridge: B")
	}
	return b, nil
}

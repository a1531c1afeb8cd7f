// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package axilite models the AXI-Lite split-transaction bus protocol: one
// beat type per sub-channel (AR, R, AW, W, B) and a bridge that carries all
// five across a clock-domain boundary.
package axilite

import "strconv"

// Resp is an AXI response code.
type Resp uint8

// AXI response encodings. EXOKAY does not occur on AXI-Lite.
const (
	RespOkay   Resp = 0x0 // access successful
	RespSlvErr Resp = 0x2 // slave reached, access failed
	RespDecErr Resp = 0x3 // no slave at the address
)

func (r Resp) String() string {
	switch r {
	case RespOkay:
		return "OKAY"
	case RespSlvErr:
		return "SLVERR"
	case RespDecErr:
		return "DECERR"
	}
	return "Resp(" + strconv.Itoa(int(r)) + ")"
}

// AR is one read-address beat.
type AR struct {
	Addr uint32
	Prot uint8
}

// R is one read-data beat.
type R struct {
	Data uint32
	Resp Resp
}

// AW is one write-address beat.
type AW struct {
	Addr uint32
	Prot uint8
}

// W is one write-data beat. Strb holds one byte-enable bit per data byte,
// bit 0 covering the least significant byte.
type W struct {
	Data uint32
	Strb uint8
}

// B is one write-response beat.
type B struct {
	Resp Resp
}

// StrbAll enables all four byte lanes of a W beat.
const StrbAll = 0xf

// Apply merges the beat into old under the byte strobes and returns the
// resulting word.
func (w W) Apply(old uint32) uint32 {
	out := old
	for lane := 0; lane < 4; lane++ {
		if w.Strb&(1<<lane) != 0 {
			shift := uint(8 * lane)
			out = out&^(0xff<<shift) | w.Data&(0xff<<shift)
		}
	}
	return out
}

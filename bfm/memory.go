// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package bfm

import "github.com/cdckit/cdcsim/axilite"

// Poison is the value Memory returns for words never written. A readback
// mismatch against fresh memory shows up as this pattern rather than zero.
const Poison uint32 = 0xdeadbeef

// Memory is a sparse word-addressed store used by the slave model. It is
// also usable directly as the shadow model a checker compares against.
type Memory struct {
	words map[uint32]uint32
}

// NewMemory returns an empty memory.
func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]uint32)}
}

// Read returns the word at the given byte address. Unwritten words read as
// Poison.
func (m *Memory) Read(addr uint32) uint32 {
	if v, ok := m.words[addr>>2]; ok {
		return v
	}
	return Poison
}

// Write merges a W beat into the word at the given byte address under the
// beat's byte strobes.
func (m *Memory) Write(addr uint32, w axilite.W) {
	m.words[addr>>2] = w.Apply(m.Read(addr))
}

// Len returns the number of words ever written.
func (m *Memory) Len() int { return len(m.words) }

// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package cdcsim

// A Reg is a typed register: a storage element with a committed value and a
// staged next value. Get returns the committed value, Set stages the value
// the register will hold after the next Commit. A register that is not Set
// during a tick holds its value.
//
// Reg carries the kernel's two-frame state discipline down to a single
// storage element: every flop, toggle and holding register in the cross and
// axilite packages is built on it.
type Reg[T any] struct {
	cur, nxt T
}

// Eval is empty: a bare register has no logic. It exists so a Reg can be
// mounted directly into a Domain as a Component.
func (r *Reg[T]) Eval() {}

// Get returns the committed register value.
func (r *Reg[T]) Get() T { return r.cur }

// Set stages v as the register value after the next Commit.
func (r *Reg[T]) Set(v T) { r.nxt = v }

// Commit publishes the staged value.
func (r *Reg[T]) Commit() { r.cur = r.nxt }

// Reset returns the register to the zero value of T.
func (r *Reg[T]) Reset() {
	var zero T
	r.cur, r.nxt = zero, zero
}

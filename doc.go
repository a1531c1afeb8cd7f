/*
Package cdcsim provides a small synchronous-logic simulator built around
independent clock domains.

Each Domain advances on its own periodic tick with no phase or frequency
relationship to any other domain. Clocked logic is expressed as Components
following a two-phase contract: during Eval a component may only read
committed state and stage its next state; during Commit the staged state is
published. This mirrors how registered logic behaves in hardware and makes
evaluation order within a tick irrelevant.

The cross subpackage builds clock-domain-crossing primitives on this kernel
(multi-flop synchronizers, a toggle handshake, a one-deep data channel), and
the axilite subpackage composes them into a bus bridge.
*/
package cdcsim

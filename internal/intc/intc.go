/*
 * rxvm - Interrupt controller.
 *
 * Copyright 2026, rxvm authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package intc implements the prioritized interrupt controller: a sparse
// table of sources indexed by vector number, request/acknowledge/return
// bookkeeping, and the three peripheral registers (IR, IER, IPR) the CPU
// and other peripherals poke through the memory controller. The CPU is
// the only component that actually moves PC/PSW around; this package
// only tracks which vector should fire next.
package intc

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

// Source is one interrupt vector's configuration and live state.
type Source struct {
	Vector   uint8
	Name     string
	Priority uint8
	Enabled  bool
	Pending  bool
	Kind     isa.InterruptKind
}

// RequestLogEntry records one pending-flag flip, for trace inspection.
type RequestLogEntry struct {
	Vector uint8
}

// Controller owns the interrupt source table and nest stack.
type Controller struct {
	sources []*Source // indexed by vector for the fixed range, else appended
	byVec   map[uint8]*Source
	nest    []uint8
	reqLog  []RequestLogEntry
}

// NewController builds a controller with the five fixed sources
// (reset, undefined-instruction, FPU, reserved, NMI) pre-populated;
// vectors 16..255 are materialized lazily on first use.
func NewController() *Controller {
	c := &Controller{byVec: map[uint8]*Source{}}
	fixed := []struct {
		v    uint8
		name string
	}{
		{isa.VectorReset, "reset"},
		{isa.VectorUndefinedOp, "undefined-instruction"},
		{isa.VectorFPU, "fpu"},
		{isa.VectorReserved, "reserved"},
		{isa.VectorNMI, "nmi"},
	}
	for _, f := range fixed {
		c.register(&Source{Vector: f.v, Name: f.name, Kind: isa.KindFixed})
	}
	return c
}

func (c *Controller) register(s *Source) {
	c.byVec[s.Vector] = s
	c.sources = append(c.sources, s)
}

// source returns the source for v, materializing a default peripheral
// source named INT<v> on first touch.
func (c *Controller) source(v uint8) *Source {
	s, ok := c.byVec[v]
	if !ok {
		s = &Source{Vector: v, Name: fmt.Sprintf("INT%d", v), Kind: isa.KindPeripheral}
		c.register(s)
	}
	return s
}

// Request sets pending for vector v and logs the request. A request for
// a disabled source is not an error; it simply will not be chosen by
// HighestPendingEnabled until the source is enabled.
func (c *Controller) Request(v uint8) {
	s := c.source(v)
	s.Pending = true
	c.reqLog = append(c.reqLog, RequestLogEntry{Vector: v})
	slog.Debug("interrupt requested", "vector", v, "name", s.Name)
}

// SetEnabled enables or disables vector v.
func (c *Controller) SetEnabled(v uint8, enabled bool) {
	c.source(v).Enabled = enabled
}

// SetPriority sets the 4-bit priority of vector v.
func (c *Controller) SetPriority(v uint8, priority uint8) {
	c.source(v).Priority = priority & 0xF
}

// Clear clears pending for vector v (IR(v) write of 0).
func (c *Controller) Clear(v uint8) {
	c.source(v).Pending = false
}

// HighestPendingEnabled returns the vector with the maximum priority
// among sources with pending && enabled, breaking ties by lowest vector
// number. ok is false if no such source exists.
func (c *Controller) HighestPendingEnabled() (vector uint8, priority uint8, ok bool) {
	best := -1
	for i, s := range c.sources {
		if !s.Pending || !s.Enabled {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		cur := c.sources[best]
		if s.Priority > cur.Priority || (s.Priority == cur.Priority && s.Vector < cur.Vector) {
			best = i
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	s := c.sources[best]
	return s.Vector, s.Priority, true
}

// Acknowledge clears pending for v and pushes it onto the nest stack.
// The engine calls this once it has committed to taking the interrupt.
func (c *Controller) Acknowledge(v uint8) {
	c.source(v).Pending = false
	c.nest = append(c.nest, v)
}

// Return pops the most recently acknowledged vector off the nest stack.
// This is bookkeeping only; restoring PC/PSW is the CPU engine's job.
func (c *Controller) Return() (vector uint8, ok bool) {
	if len(c.nest) == 0 {
		return 0, false
	}
	v := c.nest[len(c.nest)-1]
	c.nest = c.nest[:len(c.nest)-1]
	return v, true
}

// NestDepth returns the number of currently acknowledged, unreturned
// interrupts.
func (c *Controller) NestDepth() int {
	return len(c.nest)
}

// Reset clears all pending/enabled/priority state and the nest stack,
// preserving the set of known sources (and their names).
func (c *Controller) Reset() {
	for _, s := range c.sources {
		s.Pending = false
		s.Enabled = false
		s.Priority = 0
	}
	c.nest = nil
	c.reqLog = nil
}

// SourceSnapshot is an immutable view of one interrupt source, for the
// inspection surface.
type SourceSnapshot struct {
	Vector   uint8
	Name     string
	Priority uint8
	Enabled  bool
	Pending  bool
}

// Pending returns a snapshot of every pending source, ordered by vector.
func (c *Controller) Pending() []SourceSnapshot {
	return c.filterSnapshot(func(s *Source) bool { return s.Pending })
}

// Enabled returns a snapshot of every enabled source, ordered by vector.
func (c *Controller) Enabled() []SourceSnapshot {
	return c.filterSnapshot(func(s *Source) bool { return s.Enabled })
}

func (c *Controller) filterSnapshot(keep func(*Source) bool) []SourceSnapshot {
	var out []SourceSnapshot
	for _, s := range c.sources {
		if keep(s) {
			out = append(out, SourceSnapshot{
				Vector: s.Vector, Name: s.Name, Priority: s.Priority,
				Enabled: s.Enabled, Pending: s.Pending,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vector < out[j].Vector })
	return out
}

// Peripheral bindings: IR(v), IER(g), IPR(v) as described in spec 4.3.

// irWindow, ierWindow and iprWindow are the memio.Peripheral windows that
// expose IR, IER and IPR over the memory controller, one type per window.
type irWindow struct{ c *Controller }
type ierWindow struct{ c *Controller }
type iprWindow struct{ c *Controller }

func (w irWindow) ReadByte(addr uint32) (uint8, bool) {
	v := uint8(addr - isa.ICUBase - isa.ICUIROffset)
	s := w.c.source(v)
	if s.Pending {
		return 1, true
	}
	return 0, true
}

func (w irWindow) WriteByte(addr uint32, value uint8) bool {
	v := uint8(addr - isa.ICUBase - isa.ICUIROffset)
	if value == 0 {
		w.c.Clear(v)
	}
	return true
}

func (w ierWindow) ReadByte(addr uint32) (uint8, bool) {
	g := uint8(addr - isa.ICUBase - isa.ICUIEROffset)
	var mask uint8
	for bit := uint8(0); bit < 8; bit++ {
		v := g*8 + bit
		if w.c.source(v).Enabled {
			mask |= 1 << bit
		}
	}
	return mask, true
}

func (w ierWindow) WriteByte(addr uint32, value uint8) bool {
	g := uint8(addr - isa.ICUBase - isa.ICUIEROffset)
	for bit := uint8(0); bit < 8; bit++ {
		v := g*8 + bit
		w.c.SetEnabled(v, value&(1<<bit) != 0)
	}
	return true
}

func (w iprWindow) ReadByte(addr uint32) (uint8, bool) {
	v := uint8(addr - isa.ICUBase - isa.ICUIPROffset)
	return w.c.source(v).Priority & 0xF, true
}

func (w iprWindow) WriteByte(addr uint32, value uint8) bool {
	v := uint8(addr - isa.ICUBase - isa.ICUIPROffset)
	w.c.SetPriority(v, value&0xF)
	return true
}

// BindRegisters overlays IR/IER/IPR on mc at the addresses fixed by the
// isa package.
func (c *Controller) BindRegisters(mc *memio.Controller) {
	mc.Bind(isa.ICUBase+isa.ICUIROffset, uint32(isa.NumVectors), irWindow{c})
	mc.Bind(isa.ICUBase+isa.ICUIEROffset, uint32(isa.NumVectors/8), ierWindow{c})
	mc.Bind(isa.ICUBase+isa.ICUIPROffset, uint32(isa.NumVectors), iprWindow{c})
}

/*
 * rxvm - Memory controller: region dispatch and peripheral bindings.
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

// Package memio implements the synthetic memory map: a short sorted list
// of named byte-addressed blocks (RAM, Flash, Peripheral, Reserved) plus
// a table of peripheral bindings overlaid on the Peripheral region. Every
// access is byte-dispatched first through the peripheral table and only
// then through the block list, so 16/32-bit accesses compose correctly
// even when a peripheral only understands single bytes.
package memio

import "sort"

// Kind identifies what backs a Block.
type Kind int

const (
	KindRAM Kind = iota
	KindFlash
	KindPeripheral
	KindReserved
)

// Block is a named, contiguous, non-overlapping region of address space.
type Block struct {
	Name     string
	Start    uint32
	Size     uint32
	Kind     Kind
	ReadOnly bool
	data     []byte
}

func (b *Block) covers(addr uint32) bool {
	return addr >= b.Start && addr-b.Start < b.Size
}

// Peripheral intercepts byte-width accesses to the address range it is
// registered over. A missing write callback is a silent no-op; a missing
// read callback returns 0.
type Peripheral interface {
	ReadByte(addr uint32) (value uint8, ok bool)
	WriteByte(addr uint32, value uint8) (ok bool)
}

type binding struct {
	start uint32
	size  uint32
	p     Peripheral
}

func (b binding) covers(addr uint32) bool {
	return addr >= b.start && addr < b.start+b.size
}

// Outcome classifies what happened to a single access, for the log.
type Outcome int

const (
	OutcomePeripheral Outcome = iota
	OutcomeBlock
	OutcomeUnmapped
	OutcomeReadOnly
)

// AccessLogEntry records one byte-width access when logging is enabled.
type AccessLogEntry struct {
	Addr    uint32
	Write   bool
	Value   uint8
	Outcome Outcome
}

// Controller is the memory controller: block list plus peripheral table.
type Controller struct {
	blocks     []*Block
	bindings   []binding
	logEnabled bool
	log        []AccessLogEntry
}

// NewController returns an empty controller; use AddBlock to populate it.
func NewController() *Controller {
	return &Controller{}
}

// NewDefaultController builds the default memory map:
// 256 KiB RAM at 0, a 512 KiB peripheral window, 2 MiB flash, and the
// 128-byte fixed vector table at the top of the address space.
func NewDefaultController() *Controller {
	c := NewController()
	c.AddBlock(&Block{Name: "RAM", Start: 0x00000000, Size: 256 * 1024, Kind: KindRAM})
	c.AddBlock(&Block{Name: "Peripheral", Start: 0x00080000, Size: 512 * 1024, Kind: KindPeripheral})
	c.AddBlock(&Block{Name: "Flash", Start: 0xFFE00000, Size: 2 * 1024 * 1024, Kind: KindFlash})
	c.AddBlock(&Block{Name: "FixedVector", Start: 0xFFFFFF80, Size: 128, Kind: KindFlash})
	return c
}

// AddBlock installs a block, allocating its backing buffer. Blocks are
// kept sorted by start address so lookup can use a linear scan over a
// short list (N <= ~8 for this memory map).
func (c *Controller) AddBlock(b *Block) {
	b.data = make([]byte, b.Size)
	c.blocks = append(c.blocks, b)
	sort.Slice(c.blocks, func(i, j int) bool { return c.blocks[i].Start < c.blocks[j].Start })
}

// Bind registers a peripheral over [start, start+size) of the Peripheral
// region. It takes precedence over the backing block for every address
// it covers, including writes to blocks marked read-only.
func (c *Controller) Bind(start, size uint32, p Peripheral) {
	c.bindings = append(c.bindings, binding{start: start, size: size, p: p})
}

// EnableLog turns access logging on or off and clears any existing log.
func (c *Controller) EnableLog(enabled bool) {
	c.logEnabled = enabled
	c.log = nil
}

// AccessLog returns the recorded accesses since the last EnableLog(true).
func (c *Controller) AccessLog() []AccessLogEntry {
	return c.log
}

func (c *Controller) findBinding(addr uint32) Peripheral {
	for _, bnd := range c.bindings {
		if bnd.covers(addr) {
			return bnd.p
		}
	}
	return nil
}

func (c *Controller) findBlock(addr uint32) *Block {
	// Blocks are sorted and disjoint; linear scan is fine for N <= ~8.
	for _, b := range c.blocks {
		if b.covers(addr) {
			return b
		}
	}
	return nil
}

func (c *Controller) record(addr uint32, write bool, value uint8, outcome Outcome) {
	if !c.logEnabled {
		return
	}
	c.log = append(c.log, AccessLogEntry{Addr: addr, Write: write, Value: value, Outcome: outcome})
}

// ReadByte performs one byte-width read, dispatching to a peripheral
// binding first, then to the covering block, then returning 0xFF for an
// unmapped address.
func (c *Controller) ReadByte(addr uint32) uint8 {
	if p := c.findBinding(addr); p != nil {
		v, ok := p.ReadByte(addr)
		if !ok {
			v = 0
		}
		c.record(addr, false, v, OutcomePeripheral)
		return v
	}
	b := c.findBlock(addr)
	if b == nil {
		c.record(addr, false, 0xFF, OutcomeUnmapped)
		return 0xFF
	}
	v := b.data[addr-b.Start]
	c.record(addr, false, v, OutcomeBlock)
	return v
}

// WriteByte performs one byte-width write. Peripheral bindings take
// precedence over the backing block; read-only blocks silently discard
// the write; unmapped addresses silently discard the write.
func (c *Controller) WriteByte(addr uint32, value uint8) {
	if p := c.findBinding(addr); p != nil {
		p.WriteByte(addr, value)
		c.record(addr, true, value, OutcomePeripheral)
		return
	}
	b := c.findBlock(addr)
	if b == nil {
		c.record(addr, true, value, OutcomeUnmapped)
		return
	}
	if b.ReadOnly {
		c.record(addr, true, value, OutcomeReadOnly)
		return
	}
	b.data[addr-b.Start] = value
	c.record(addr, true, value, OutcomeBlock)
}

// ReadHalf reads a little-endian 16-bit value as two byte accesses.
func (c *Controller) ReadHalf(addr uint32) uint16 {
	lo := c.ReadByte(addr)
	hi := c.ReadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// WriteHalf writes a little-endian 16-bit value as two byte accesses.
func (c *Controller) WriteHalf(addr uint32, value uint16) {
	c.WriteByte(addr, uint8(value))
	c.WriteByte(addr+1, uint8(value>>8))
}

// ReadWord reads a little-endian 32-bit value as four byte accesses.
func (c *Controller) ReadWord(addr uint32) uint32 {
	b0 := c.ReadByte(addr)
	b1 := c.ReadByte(addr + 1)
	b2 := c.ReadByte(addr + 2)
	b3 := c.ReadByte(addr + 3)
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
}

// WriteWord writes a little-endian 32-bit value as four byte accesses.
func (c *Controller) WriteWord(addr uint32, value uint32) {
	c.WriteByte(addr, uint8(value))
	c.WriteByte(addr+1, uint8(value>>8))
	c.WriteByte(addr+2, uint8(value>>16))
	c.WriteByte(addr+3, uint8(value>>24))
}

// Load writes bytes sequentially starting at addr, through the same
// dispatch path as any other store, so a peripheral bound inside the
// range observes the write at load time exactly as it would at run time.
func (c *Controller) Load(addr uint32, data []byte) {
	for i, by := range data {
		c.WriteByte(addr+uint32(i), by)
	}
}

// ResetRAM zeroes every KindRAM block's backing buffer, preserving its
// size, position, and any peripheral bindings over it.
func (c *Controller) ResetRAM() {
	for _, b := range c.blocks {
		if b.Kind == KindRAM {
			for i := range b.data {
				b.data[i] = 0
			}
		}
	}
}

// Blocks returns the controller's block list for inspection, in address
// order. Callers must not mutate the returned blocks' backing buffers
// directly; use ReadByte/WriteByte.
func (c *Controller) Blocks() []*Block {
	out := make([]*Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

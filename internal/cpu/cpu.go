/*
 * rxvm - CPU execution engine.
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

// Package cpu implements the bytewise variable-length instruction decoder,
// its flag arithmetic, and the interrupt/exception state machine. Step is
// the engine's only entry point: it performs the interrupt gate, decodes
// and executes exactly one instruction, and reports how many cycles it
// consumed so the caller can drive the timer. There is no goroutine or
// channel anywhere in this package; the caller decides the pace.
package cpu

import (
	"fmt"
	"log/slog"

	"github.com/rxvm/rxvm/internal/intc"
	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

// State is the engine's run state.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateWaiting
	StateException
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateRunning:
		return "RUNNING"
	case StateWaiting:
		return "WAITING"
	case StateException:
		return "EXCEPTION"
	default:
		return "UNKNOWN"
	}
}

// Fault describes the instruction that triggered EXCEPTION state.
type Fault struct {
	PC     uint32
	Opcode uint8
}

func (f *Fault) Error() string {
	return fmt.Sprintf("undefined instruction %#02x at pc=%#08x", f.Opcode, f.PC)
}

// StepCallback is invoked after a Step that executed an instruction. It
// is not invoked when Step stops at a breakpoint, performs interrupt
// entry, or idles in WAITING state.
type StepCallback func(c *CPU)

// CPU is the register file plus the fetch/decode/execute loop.
type CPU struct {
	R   [16]uint32
	PC  uint32
	PSW uint32
	ISP uint32
	USP uint32

	State State
	Fault *Fault

	Cycles       uint64
	Instructions uint64

	mem          *memio.Controller
	intc         *intc.Controller
	breakpoints  map[uint32]bool
	stepCallback StepCallback
}

// New wires a CPU to its memory controller and interrupt controller. Both
// must already exist; the CPU does not own their lifecycle.
func New(mem *memio.Controller, ic *intc.Controller) *CPU {
	return &CPU{
		mem:         mem,
		intc:        ic,
		breakpoints: map[uint32]bool{},
	}
}

// SP returns the active stack pointer, which is R0. ISP and USP are kept
// as separate fields; PSW.PM does not swap either of them into R0.
func (c *CPU) SP() uint32 {
	return c.R[0]
}

func (c *CPU) setSP(v uint32) {
	c.R[0] = v
}

// flag reports whether PSW bit mask is set.
func (c *CPU) flag(mask uint32) bool {
	return c.PSW&mask != 0
}

func (c *CPU) setFlag(mask uint32, v bool) {
	if v {
		c.PSW |= mask
	} else {
		c.PSW &^= mask
	}
}

// IPL returns the processor's current interrupt priority level.
func (c *CPU) IPL() uint8 {
	return uint8((c.PSW & isa.PSWIPLMask) >> isa.PSWIPLShift)
}

func (c *CPU) setIPL(v uint8) {
	c.PSW = (c.PSW &^ isa.PSWIPLMask) | (uint32(v)<<isa.PSWIPLShift)&isa.PSWIPLMask
}

// OnStep installs cb, called at the end of every Step that executes an
// instruction.
func (c *CPU) OnStep(cb StepCallback) {
	c.stepCallback = cb
}

// SetBreakpoint arms or disarms a breakpoint at addr.
func (c *CPU) SetBreakpoint(addr uint32, set bool) {
	if set {
		c.breakpoints[addr] = true
	} else {
		delete(c.breakpoints, addr)
	}
}

// Breakpoints returns the set of armed breakpoint addresses.
func (c *CPU) Breakpoints() []uint32 {
	out := make([]uint32, 0, len(c.breakpoints))
	for a := range c.breakpoints {
		out = append(out, a)
	}
	return out
}

// Reset reinitializes registers: PSW.I set and
// everything else zero, then PC/SP loaded from the reset vector and the
// default user-stack constant. It does not touch memory contents or
// breakpoints; callers that want those cleared do so separately.
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	c.PSW = isa.PSWBitI
	c.ISP = 0
	c.USP = isa.DefaultUSP
	c.Cycles = 0
	c.Instructions = 0
	c.State = StateStopped
	c.Fault = nil
	c.PC = c.mem.ReadWord(isa.ResetVectorAddr)
	c.setSP(isa.DefaultUSP)
}

// Start transitions STOPPED → RUNNING.
func (c *CPU) Start() {
	if c.State == StateStopped {
		c.State = StateRunning
	}
}

// Stop transitions RUNNING/WAITING → STOPPED.
func (c *CPU) Stop() {
	if c.State == StateRunning || c.State == StateWaiting {
		c.State = StateStopped
	}
}

// Step performs the interrupt gate, one breakpoint check, and at most one
// instruction's worth of fetch/decode/execute. It returns the number of
// cycles consumed, which the caller feeds to the timer.
func (c *CPU) Step() int {
	if c.State == StateException || c.State == StateStopped {
		return 0
	}

	if c.breakpoints[c.PC] {
		c.State = StateStopped
		return 0
	}

	if c.tryInterruptEntry() {
		return 0
	}

	if c.State == StateWaiting {
		return 0
	}

	cycles := c.executeOne()
	c.Cycles += uint64(cycles)
	c.Instructions++
	if c.stepCallback != nil {
		c.stepCallback(c)
	}
	return cycles
}

// tryInterruptEntry checks the interrupt controller and, if a source
// qualifies, performs interrupt entry. It returns true if entry occurred.
func (c *CPU) tryInterruptEntry() bool {
	vector, priority, ok := c.intc.HighestPendingEnabled()
	if !ok || !c.flag(isa.PSWBitI) || priority <= c.IPL() {
		return false
	}

	c.pushWord(c.PSW)
	c.pushWord(c.PC)
	c.setFlag(isa.PSWBitI, false)
	c.setIPL(priority)
	handler := c.mem.ReadWord(isa.VectorTableBase + uint32(vector)*4)
	c.PC = handler
	c.intc.Acknowledge(vector)
	if c.State == StateWaiting {
		c.State = StateRunning
	}
	slog.Debug("interrupt entry", "vector", vector, "priority", priority, "handler", handler)
	return true
}

func (c *CPU) pushWord(v uint32) {
	sp := c.SP() - 4
	c.setSP(sp)
	c.mem.WriteWord(sp, v)
}

func (c *CPU) popWord() uint32 {
	sp := c.SP()
	v := c.mem.ReadWord(sp)
	c.setSP(sp + 4)
	return v
}

// rte performs return-from-exception: pop PC, pop PSW, notify the
// interrupt controller's nest-stack bookkeeping.
func (c *CPU) rte() {
	c.PC = c.popWord()
	c.PSW = c.popWord() &^ isa.PSWReserved
	c.intc.Return()
}

func sext8(v uint8) int32  { return int32(int8(v)) }
func sext16(v uint16) int32 { return int32(int16(v)) }
func sext4(v uint8) int32 {
	v &= 0xF
	if v&0x8 != 0 {
		return int32(v) - 16
	}
	return int32(v)
}

func (c *CPU) fetchByte(off uint32) uint8 {
	return c.mem.ReadByte(c.PC + off)
}

func (c *CPU) fault(opcode uint8) {
	c.State = StateException
	c.Fault = &Fault{PC: c.PC, Opcode: opcode}
	slog.Error("undefined instruction", "pc", c.PC, "opcode", opcode)
}

// executeOne decodes and executes the instruction at PC, advancing PC and
// returning the number of bytes consumed (used as the cycle count).
func (c *CPU) executeOne() int {
	op := c.fetchByte(0)

	switch {
	case op == isa.OpRTS:
		c.PC = c.popWord()
		return 1

	case op == isa.OpNOP:
		c.PC += 1
		return 1

	case op == isa.OpRTE:
		c.rte()
		return 1

	case op == isa.OpBEQ:
		disp := c.fetchByte(1)
		next := c.PC + 2
		if c.flag(isa.PSWBitZ) {
			next = uint32(int64(c.PC) + 2 + int64(sext8(disp)))
		}
		c.PC = next
		return 2

	case op == isa.OpBNE:
		disp := c.fetchByte(1)
		next := c.PC + 2
		if !c.flag(isa.PSWBitZ) {
			next = uint32(int64(c.PC) + 2 + int64(sext8(disp)))
		}
		c.PC = next
		return 2

	case op == isa.OpBRAW:
		disp := uint16(c.fetchByte(1)) | uint16(c.fetchByte(2))<<8
		c.PC = uint32(int64(c.PC) + 3 + int64(sext16(disp)))
		return 3

	case op == isa.OpBSRW:
		disp := uint16(c.fetchByte(1)) | uint16(c.fetchByte(2))<<8
		ret := c.PC + 3
		c.pushWord(ret)
		c.PC = uint32(int64(c.PC) + 3 + int64(sext16(disp)))
		return 3

	case op >= isa.OpSUBLo && op <= isa.OpSUBHi:
		rs, rd := regFields(c.fetchByte(1))
		a, b := c.R[rd], c.R[rs]
		r := a - b
		c.setArithFlagsSub(a, b, r)
		c.R[rd] = r
		c.PC += 2
		return 2

	case op >= isa.OpADDLo && op <= isa.OpADDHi:
		rs, rd := regFields(c.fetchByte(1))
		a, b := c.R[rd], c.R[rs]
		r := a + b
		c.setArithFlagsAdd(a, b, r)
		c.R[rd] = r
		c.PC += 2
		return 2

	case op >= isa.OpANDLo && op <= isa.OpANDHi:
		rs, rd := regFields(c.fetchByte(1))
		r := c.R[rd] & c.R[rs]
		c.setLogicalFlags(r)
		c.R[rd] = r
		c.PC += 2
		return 2

	case op >= isa.OpORLo && op <= isa.OpORHi:
		rs, rd := regFields(c.fetchByte(1))
		r := c.R[rd] | c.R[rs]
		c.setLogicalFlags(r)
		c.R[rd] = r
		c.PC += 2
		return 2

	case op >= isa.OpXORLo && op <= isa.OpXORHi:
		rs, rd := regFields(c.fetchByte(1))
		r := c.R[rd] ^ c.R[rs]
		c.setLogicalFlags(r)
		c.R[rd] = r
		c.PC += 2
		return 2

	case op == isa.OpCMPI:
		imm, rd := regFields(c.fetchByte(1))
		a := c.R[rd]
		b := uint32(sext4(imm))
		r := a - b
		c.setArithFlagsSub(a, b, r)
		c.PC += 2
		return 2

	case op == isa.OpADDI:
		imm, rd := regFields(c.fetchByte(1))
		a := c.R[rd]
		b := uint32(sext4(imm))
		r := a + b
		c.setArithFlagsAdd(a, b, r)
		c.R[rd] = r
		c.PC += 2
		return 2

	case op == isa.OpWAIT1:
		second := c.fetchByte(1)
		if second != isa.SecondWait {
			c.fault(second)
			return 0
		}
		c.State = StateWaiting
		c.PC += 2
		return 2

	case op == isa.OpPUSHL:
		_, rs := regFields(c.fetchByte(1))
		c.pushWord(c.R[rs])
		c.PC += 2
		return 2

	case op == isa.OpPOP:
		_, rd := regFields(c.fetchByte(1))
		c.R[rd] = c.popWord()
		c.PC += 2
		return 2

	case op >= isa.OpMOVBSt && op <= isa.OpMOVBStHi:
		rs, rd := regFields(c.fetchByte(1))
		c.mem.WriteByte(c.R[rd], uint8(c.R[rs]))
		c.PC += 2
		return 2

	case op >= isa.OpMOVBLd && op <= isa.OpMOVBLdHi:
		rs, rd := regFields(c.fetchByte(1))
		c.R[rd] = uint32(c.mem.ReadByte(c.R[rs]))
		c.PC += 2
		return 2

	case op >= isa.OpMOVLSt && op <= isa.OpMOVLStHi:
		rs, rd := regFields(c.fetchByte(1))
		c.mem.WriteWord(c.R[rd], c.R[rs])
		c.PC += 2
		return 2

	case op >= isa.OpMOVLLd && op <= isa.OpMOVLLdHi:
		rs, rd := regFields(c.fetchByte(1))
		c.R[rd] = c.mem.ReadWord(c.R[rs])
		c.PC += 2
		return 2

	case op == isa.OpMOVLRR:
		rs, rd := regFields(c.fetchByte(1))
		c.R[rd] = c.R[rs]
		c.PC += 2
		return 2

	case op == isa.OpMOVLIm:
		second := c.fetchByte(1)
		if second&isa.MovLImMask != 0 {
			c.fault(second)
			return 0
		}
		rr := second & 0xF
		imm := uint32(c.fetchByte(2)) | uint32(c.fetchByte(3))<<8 |
			uint32(c.fetchByte(4))<<16 | uint32(c.fetchByte(5))<<24
		c.R[rr] = imm
		c.PC += 6
		return 6

	case op == isa.OpPSWPfx:
		second := c.fetchByte(1)
		f := c.fetchByte(2)
		switch second {
		case isa.SecondSetPSW:
			c.setPSWBit(f, true)
		case isa.SecondClrPSW:
			c.setPSWBit(f, false)
		default:
			c.fault(second)
			return 0
		}
		c.PC += 3
		return 3

	default:
		c.fault(op)
		return 0
	}
}

func (c *CPU) setPSWBit(f uint8, v bool) {
	switch f {
	case isa.FlagC:
		c.setFlag(isa.PSWBitC, v)
	case isa.FlagZ:
		c.setFlag(isa.PSWBitZ, v)
	case isa.FlagS:
		c.setFlag(isa.PSWBitS, v)
	case isa.FlagO:
		c.setFlag(isa.PSWBitO, v)
	case isa.FlagI:
		c.setFlag(isa.PSWBitI, v)
	}
}

func regFields(b uint8) (rs, rd uint8) {
	return (b >> 4) & 0xF, b & 0xF
}

func (c *CPU) setLogicalFlags(r uint32) {
	c.setFlag(isa.PSWBitZ, r == 0)
	c.setFlag(isa.PSWBitS, r&0x80000000 != 0)
}

func (c *CPU) setArithFlagsAdd(a, b, r uint32) {
	c.setFlag(isa.PSWBitZ, r == 0)
	c.setFlag(isa.PSWBitS, r&0x80000000 != 0)
	c.setFlag(isa.PSWBitC, r < a)
	signA, signB, signR := a&0x80000000, b&0x80000000, r&0x80000000
	c.setFlag(isa.PSWBitO, signA == signB && signR != signA)
}

func (c *CPU) setArithFlagsSub(a, b, r uint32) {
	c.setFlag(isa.PSWBitZ, r == 0)
	c.setFlag(isa.PSWBitS, r&0x80000000 != 0)
	c.setFlag(isa.PSWBitC, a < b)
	signA, signB, signR := a&0x80000000, b&0x80000000, r&0x80000000
	c.setFlag(isa.PSWBitO, signA != signB && signR != signA)
}

// Snapshot is an immutable view of CPU state, for the inspection surface.
type Snapshot struct {
	PC, SP, PSW  uint32
	R            [16]uint32
	Z, S, C, O   bool
	I, U         bool
	IPL          uint8
	Cycles       uint64
	Instructions uint64
	State        State
	Fault        *Fault
}

// Snapshot returns the current CPU state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		PC: c.PC, SP: c.SP(), PSW: c.PSW &^ isa.PSWReserved, R: c.R,
		Z: c.flag(isa.PSWBitZ), S: c.flag(isa.PSWBitS),
		C: c.flag(isa.PSWBitC), O: c.flag(isa.PSWBitO),
		I: c.flag(isa.PSWBitI), U: c.flag(isa.PSWBitU),
		IPL: c.IPL(), Cycles: c.Cycles, Instructions: c.Instructions,
		State: c.State, Fault: c.Fault,
	}
}

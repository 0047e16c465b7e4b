/*
 * rxvm - Disassembler.
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

// Package disasm is a read-only inspector sharing the opcode table the
// CPU engine decodes against (internal/isa), producing mnemonic text and
// instruction length without mutating any machine state.
package disasm

import (
	"fmt"

	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

// Instruction is one decoded instruction, for listing and single-step
// display.
type Instruction struct {
	Address uint32
	Length  int
	Text    string
}

func regFields(b uint8) (rs, rd uint8) {
	return (b >> 4) & 0xF, b & 0xF
}

func sext8(v uint8) int32   { return int32(int8(v)) }
func sext16(v uint16) int32 { return int32(int16(v)) }
func sext4(v uint8) int32 {
	v &= 0xF
	if v&0x8 != 0 {
		return int32(v) - 16
	}
	return int32(v)
}

// Decode reads the instruction at addr through mc and returns its
// mnemonic text and length, without side effects.
func Decode(mc *memio.Controller, addr uint32) Instruction {
	b := func(off uint32) uint8 { return mc.ReadByte(addr + off) }
	op := b(0)

	switch {
	case op == isa.OpRTS:
		return Instruction{addr, 1, "RTS"}

	case op == isa.OpNOP:
		return Instruction{addr, 1, "NOP"}

	case op == isa.OpRTE:
		return Instruction{addr, 1, "RTE"}

	case op == isa.OpBEQ:
		disp := sext8(b(1))
		return Instruction{addr, 2, fmt.Sprintf("BEQ %+d", disp)}

	case op == isa.OpBNE:
		disp := sext8(b(1))
		return Instruction{addr, 2, fmt.Sprintf("BNE %+d", disp)}

	case op == isa.OpBRAW:
		disp := sext16(uint16(b(1)) | uint16(b(2))<<8)
		return Instruction{addr, 3, fmt.Sprintf("BRA.W %+d", disp)}

	case op == isa.OpBSRW:
		disp := sext16(uint16(b(1)) | uint16(b(2))<<8)
		return Instruction{addr, 3, fmt.Sprintf("BSR.W %+d", disp)}

	case op >= isa.OpSUBLo && op <= isa.OpSUBHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("SUB R%d,R%d", rs, rd)}

	case op >= isa.OpADDLo && op <= isa.OpADDHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("ADD R%d,R%d", rs, rd)}

	case op >= isa.OpANDLo && op <= isa.OpANDHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("AND R%d,R%d", rs, rd)}

	case op >= isa.OpORLo && op <= isa.OpORHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("OR R%d,R%d", rs, rd)}

	case op >= isa.OpXORLo && op <= isa.OpXORHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("XOR R%d,R%d", rs, rd)}

	case op == isa.OpCMPI:
		imm, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("CMP #%d,R%d", sext4(imm), rd)}

	case op == isa.OpADDI:
		imm, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("ADD #%d,R%d", sext4(imm), rd)}

	case op == isa.OpWAIT1:
		if b(1) != isa.SecondWait {
			return Instruction{addr, 1, fmt.Sprintf(".BYTE %#02x ; undefined", op)}
		}
		return Instruction{addr, 2, "WAIT"}

	case op == isa.OpPUSHL:
		_, rs := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("PUSH.L R%d", rs)}

	case op == isa.OpPOP:
		_, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("POP R%d", rd)}

	case op >= isa.OpMOVBSt && op <= isa.OpMOVBStHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("MOV.B R%d,[R%d]", rs, rd)}

	case op >= isa.OpMOVBLd && op <= isa.OpMOVBLdHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("MOV.B [R%d],R%d", rs, rd)}

	case op >= isa.OpMOVLSt && op <= isa.OpMOVLStHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("MOV.L R%d,[R%d]", rs, rd)}

	case op >= isa.OpMOVLLd && op <= isa.OpMOVLLdHi:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("MOV.L [R%d],R%d", rs, rd)}

	case op == isa.OpMOVLRR:
		rs, rd := regFields(b(1))
		return Instruction{addr, 2, fmt.Sprintf("MOV.L R%d,R%d", rs, rd)}

	case op == isa.OpMOVLIm:
		second := b(1)
		if second&isa.MovLImMask != 0 {
			return Instruction{addr, 1, fmt.Sprintf(".BYTE %#02x ; undefined", op)}
		}
		rr := second & 0xF
		imm := uint32(b(2)) | uint32(b(3))<<8 | uint32(b(4))<<16 | uint32(b(5))<<24
		return Instruction{addr, 6, fmt.Sprintf("MOV.L #%#08x,R%d", imm, rr)}

	case op == isa.OpPSWPfx:
		second := b(1)
		f := b(2)
		switch second {
		case isa.SecondSetPSW:
			return Instruction{addr, 3, fmt.Sprintf("SETPSW #%d", f)}
		case isa.SecondClrPSW:
			return Instruction{addr, 3, fmt.Sprintf("CLRPSW #%d", f)}
		default:
			return Instruction{addr, 1, fmt.Sprintf(".BYTE %#02x ; undefined", op)}
		}

	default:
		return Instruction{addr, 1, fmt.Sprintf(".BYTE %#02x ; undefined", op)}
	}
}

// DecodeRange decodes count consecutive instructions starting at addr,
// advancing by each instruction's own length.
func DecodeRange(mc *memio.Controller, addr uint32, count int) []Instruction {
	out := make([]Instruction, 0, count)
	a := addr
	for i := 0; i < count; i++ {
		ins := Decode(mc, a)
		out = append(out, ins)
		a += uint32(ins.Length)
	}
	return out
}

/*
 * rxvm - Instruction set and platform constant tables.
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

// Package isa holds the compile-time constant tables shared by the CPU
// engine and the disassembler: opcode values, PSW flag bits, the default
// memory map, and the handful of platform enumerations the emulator
// exposes (reset sources, clock sources, pin directions/modes, interrupt
// kinds). Nothing in this package is mutated at runtime.
package isa

// First-byte opcodes. Mnemonics follow the RX-style encoding used by the
// reference firmware this emulator targets.
const (
	OpRTS    uint8 = 0x02
	OpNOP    uint8 = 0x03
	OpBEQ    uint8 = 0x20
	OpBNE    uint8 = 0x21
	OpBRAW   uint8 = 0x38
	OpBSRW   uint8 = 0x39
	OpSUBLo  uint8 = 0x44 // SUB Rs,Rd: 0x44..0x47
	OpSUBHi  uint8 = 0x47
	OpADDLo  uint8 = 0x48 // ADD Rs,Rd: 0x48..0x4B
	OpADDHi  uint8 = 0x4B
	OpANDLo  uint8 = 0x50
	OpANDHi  uint8 = 0x53
	OpORLo   uint8 = 0x54
	OpORHi   uint8 = 0x57
	OpXORLo  uint8 = 0x58
	OpXORHi  uint8 = 0x5B
	OpCMPI   uint8 = 0x61
	OpADDI   uint8 = 0x62
	OpWAIT1  uint8 = 0x76 // prefix, second byte 0x90
	OpRTE    uint8 = 0x7D // return from exception: pop PC, pop PSW
	OpPUSHL  uint8 = 0x7E
	OpPOP    uint8 = 0x7F
	OpMOVBSt uint8 = 0xC0 // MOV.B Rs,[Rd]: 0xC0..0xC3
	OpMOVBStHi uint8 = 0xC3
	OpMOVBLd uint8 = 0xCC // MOV.B [Rs],Rd: 0xCC..0xCF
	OpMOVBLdHi uint8 = 0xCF
	OpMOVLSt uint8 = 0xE0 // MOV.L Rs,[Rd]: 0xE0..0xE3
	OpMOVLStHi uint8 = 0xE3
	OpMOVLLd uint8 = 0xEC // MOV.L [Rs],Rd: 0xEC..0xEE
	OpMOVLLdHi uint8 = 0xEE
	OpMOVLRR uint8 = 0xEF // MOV.L Rs,Rd
	OpMOVLIm uint8 = 0xFB // MOV.L #imm32,Rr, second byte 0x0r
	OpPSWPfx uint8 = 0xFD // prefix, second byte 0x72 (SETPSW) or 0x73 (CLRPSW)

	SecondWait    uint8 = 0x90
	SecondSetPSW  uint8 = 0x72
	SecondClrPSW  uint8 = 0x73
	MovLImMask    uint8 = 0xF0 // second byte of MOV.L #imm32,Rr is 0x0r
)

// PSW flag bit positions, as accepted by SETPSW/CLRPSW #f.
const (
	FlagC uint8 = 0
	FlagZ uint8 = 1
	FlagS uint8 = 2
	FlagO uint8 = 3
	FlagI uint8 = 8
)

// PSW bit layout within the 32-bit word.
const (
	PSWBitC   uint32 = 1 << 0
	PSWBitZ   uint32 = 1 << 1
	PSWBitS   uint32 = 1 << 2
	PSWBitO   uint32 = 1 << 3
	PSWBitI   uint32 = 1 << 8
	PSWBitU   uint32 = 1 << 9
	PSWBitPM  uint32 = 1 << 20
	PSWIPLShift      = 24
	PSWIPLMask uint32 = 0xF << PSWIPLShift
	PSWReserved uint32 = 0xF0000000 // bits 28..31 always read 0
)

// Default memory map.
const (
	RAMStart      uint32 = 0x00000000
	RAMSize       uint32 = 256 * 1024
	PeripheralStart uint32 = 0x00080000
	PeripheralSize  uint32 = 512 * 1024
	FlashStart    uint32 = 0xFFE00000
	FlashSize     uint32 = 2 * 1024 * 1024
	FixedVectorStart uint32 = 0xFFFFFF80
	FixedVectorSize  uint32 = 128

	VectorTableBase uint32 = 0xFFFFFF80
	ResetVectorAddr uint32 = 0xFFFFFFFC
	DefaultUSP      uint32 = 0x0003FFFC
)

// Interrupt controller register windows, relative to ICUBase.
const (
	ICUBase     uint32 = PeripheralStart + 0x1000
	ICUIROffset uint32 = 0x000 // IR(v)  at ICUBase + v
	ICUIEROffset uint32 = 0x200 // IER(g) at ICUBase + 0x200 + g
	ICUIPROffset uint32 = 0x300 // IPR(v) at ICUBase + 0x300 + v
	NumVectors  int    = 256
)

// Timer (CMT) register windows. Four channels, two units of two channels.
const (
	CMTBase        uint32 = PeripheralStart + 0x2000
	CMTChannelSpan uint32 = 0x10
	CMSTROffset    uint32 = 0x00 // per-unit start/stop word, 2 bytes
	CMCROffset     uint32 = 0x02 // per-channel control word, 2 bytes
	CMCNTOffset    uint32 = 0x04 // per-channel counter, 2 bytes
	CMCOROffset    uint32 = 0x06 // per-channel compare register, 2 bytes

	NumTimerChannels int = 4
	ChannelsPerUnit  int = 2

	PCLKB uint32 = 60_000_000 // 60 MHz peripheral clock, matches RX65N reference manual
)

// Prescale divisors selectable via CMCR bits 1:0.
var PrescaleDivisors = [4]uint32{8, 32, 128, 512}

// CMCRInterruptEnable is CMCR bit 6 (CMIE): compare-match interrupt enable.
const CMCRInterruptEnable uint16 = 0x0040

// GPIO register windows. Two ports are wired by the board model
// (PORT0 drives LEDs, PORT1 samples switches) but the layout supports more.
const (
	GPIOBase       uint32 = PeripheralStart + 0xC000
	GPIOPortSpan   uint32 = 0x20
	PDROffset      uint32 = 0x00
	PODROffset     uint32 = 0x02
	PIDROffset     uint32 = 0x04
	PMROffset      uint32 = 0x06
	PCROffset      uint32 = 0x08
)

// UART register window used by the board model's TX log.
const (
	UARTBase    uint32 = PeripheralStart + 0xD000
	UARTTDROffset uint32 = 0x00 // transmit data register, write-only byte
	UARTSSROffset uint32 = 0x01 // status register, TX-empty bit always set
)

// Fixed interrupt vectors (0..15).
const (
	VectorReset       uint8 = 0
	VectorUndefinedOp uint8 = 1
	VectorFPU         uint8 = 2
	VectorReserved    uint8 = 3
	VectorNMI         uint8 = 4
	FirstPeripheralVector int = 16
)

// InterruptKind classifies a source for inspection/reporting purposes.
type InterruptKind int

const (
	KindFixed InterruptKind = iota
	KindPeripheral
)

// ResetSource enumerates why reset() was invoked.
type ResetSource int

const (
	ResetPowerOn ResetSource = iota
	ResetWatchdog
	ResetSoftware
	ResetDebugger
)

// ClockSource enumerates the selectable system clock origins.
type ClockSource int

const (
	ClockHOCO ClockSource = iota // High-speed on-chip oscillator
	ClockLOCO                    // Low-speed on-chip oscillator
	ClockMain                    // External main clock
	ClockSubClock
	ClockPLL
)

// HOCOFrequencies enumerates the selectable HOCO output frequencies, in Hz.
var HOCOFrequencies = []uint32{16_000_000, 18_000_000, 20_000_000}

// PinDirection is the GPIO PDR bit meaning for a single pin.
type PinDirection int

const (
	PinInput PinDirection = iota
	PinOutput
)

// PinMode selects between GPIO and a peripheral function on a pin (PMR bit).
type PinMode int

const (
	PinModeGPIO PinMode = iota
	PinModePeripheral
)

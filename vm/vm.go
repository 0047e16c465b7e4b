/*
 * rxvm - Integration façade.
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

// Package vm wires the CPU, memory controller, interrupt controller,
// timer, and board into one machine and exposes the step/run/reset and
// inspection surface the CLI debugger drives. It is the single owner of
// every component; nothing else in the tree holds a reference into this
// graph except through the handles vm itself hands out.
package vm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxvm/rxvm/internal/board"
	"github.com/rxvm/rxvm/internal/cpu"
	"github.com/rxvm/rxvm/internal/disasm"
	"github.com/rxvm/rxvm/internal/intc"
	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/loader"
	"github.com/rxvm/rxvm/internal/memio"
	"github.com/rxvm/rxvm/internal/timer"
)

// firstTimerVector is the vector assigned to CMT channel (0,0); the three
// remaining channels take the next three vectors in order.
const firstTimerVector = 28

// Machine is the assembled virtual microcontroller.
type Machine struct {
	CPU   *cpu.CPU
	Mem   *memio.Controller
	Intc  *intc.Controller
	Timer *timer.Controller
	Board *board.Board

	stopRequested bool
}

// New assembles a machine with the default memory map and binds every
// peripheral's registers into it.
func New() *Machine {
	mem := memio.NewDefaultController()
	ic := intc.NewController()
	tm := timer.NewController(ic, firstTimerVector)
	bd := board.New()
	c := cpu.New(mem, ic)

	ic.BindRegisters(mem)
	tm.BindRegisters(mem)
	bd.BindRegisters(mem)

	m := &Machine{CPU: c, Mem: mem, Intc: ic, Timer: tm, Board: bd}
	m.Reset()
	return m
}

// Reset reinitializes every component, per the reset sequence: clear RAM,
// reinitialize CPU registers, clear interrupt state, stop timers, reset
// the board, then load PC/SP from the reset vector.
func (m *Machine) Reset() {
	m.Mem.ResetRAM()
	m.Intc.Reset()
	m.Timer.Reset()
	m.Board.Reset()
	m.CPU.Reset()
	m.stopRequested = false
}

// Step performs exactly one CPU step and, if it consumed cycles, ticks
// the timer by that many cycles.
func (m *Machine) Step() {
	cycles := m.CPU.Step()
	if cycles > 0 {
		m.Timer.Tick(cycles)
	}
}

// Run calls Step up to maxInstructions times, stopping early if the CPU
// leaves RUNNING/WAITING (breakpoint, exception, explicit Stop) or if
// Stop is called from another goroutine between steps.
func (m *Machine) Run(maxInstructions int) {
	m.stopRequested = false
	m.CPU.Start()
	for i := 0; i < maxInstructions; i++ {
		if m.stopRequested {
			break
		}
		state := m.CPU.State
		if state != cpu.StateRunning && state != cpu.StateWaiting {
			break
		}
		m.Step()
	}
}

// Stop requests that a running Run loop halt after its current step.
func (m *Machine) Stop() {
	m.stopRequested = true
	m.CPU.Stop()
}

// LoadFile reads path, picks a loader by extension (.s19/.srec/.mot for
// S-Record, .hex/.ihx for Intel HEX, .elf/.o for ELF32, anything else as
// raw binary at addr), and writes it into memory. On success, PC is set
// to the loader's entry point when one was reported.
func (m *Machine) LoadFile(path string, addr uint32) (*loader.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ld loader.Loader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".s19", ".srec", ".mot", ".s":
		ld = loader.SRecord{}
	case ".hex", ".ihx":
		ld = loader.IntelHex{}
	case ".elf", ".o", ".axf":
		ld = loader.ELF32{}
	default:
		ld = loader.Raw{Address: addr}
	}

	res := ld.Load(m.Mem, data)
	if !res.Success {
		slog.Error("load failed", "path", path, "errors", res.Errors)
		return res, fmt.Errorf("load %s: %s", path, strings.Join(res.Errors, "; "))
	}
	if res.HasEntry {
		m.CPU.PC = res.Entry
	}
	slog.Info("loaded image", "path", path, "entry", res.Entry)
	return res, nil
}

// Disassemble decodes count instructions starting at addr without
// touching machine state.
func (m *Machine) Disassemble(addr uint32, count int) []disasm.Instruction {
	return disasm.DecodeRange(m.Mem, addr, count)
}

// CPUSnapshot returns the current CPU inspection snapshot.
func (m *Machine) CPUSnapshot() cpu.Snapshot {
	return m.CPU.Snapshot()
}

// PendingInterrupts returns the pending-source snapshot list.
func (m *Machine) PendingInterrupts() []intc.SourceSnapshot {
	return m.Intc.Pending()
}

// EnabledInterrupts returns the enabled-source snapshot list.
func (m *Machine) EnabledInterrupts() []intc.SourceSnapshot {
	return m.Intc.Enabled()
}

// TimerSnapshots returns every CMT channel's inspection snapshot.
func (m *Machine) TimerSnapshots() []timer.Snapshot {
	return m.Timer.Snapshots()
}

// LEDs returns the board's current LED output byte.
func (m *Machine) LEDs() uint8 {
	return m.Board.LEDs()
}

// SetSwitch drives a board switch pin.
func (m *Machine) SetSwitch(bit int, pressed bool) {
	m.Board.SetSwitch(bit, pressed)
}

// UARTLog returns the board's transmitted-byte log tail.
func (m *Machine) UARTLog() []byte {
	return m.Board.TXLog()
}

// ResetVector returns the handler address currently installed at the
// reset vector, mostly useful for diagnostics after a load.
func (m *Machine) ResetVector() uint32 {
	return m.Mem.ReadWord(isa.ResetVectorAddr)
}

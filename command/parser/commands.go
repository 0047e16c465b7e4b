/*
 * rxvm - Debugger console commands.
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rxvm/rxvm/internal/cpu"
	"github.com/rxvm/rxvm/vm"
)

func step(line *cmdLine, m *vm.Machine) (bool, error) {
	n := 1
	if w := line.getWord(); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return false, errors.New("step count must be a number: " + w)
		}
		n = v
	}
	slog.Info("command step", "count", n)
	m.CPU.Start()
	for i := 0; i < n; i++ {
		if m.CPU.State != cpu.StateRunning && m.CPU.State != cpu.StateWaiting {
			break
		}
		m.Step()
	}
	printState(m)
	return false, nil
}

func run(line *cmdLine, m *vm.Machine) (bool, error) {
	max := 1_000_000
	if w := line.getWord(); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return false, errors.New("run limit must be a number: " + w)
		}
		max = v
	}
	slog.Info("command run", "limit", max)
	m.Run(max)
	printState(m)
	return false, nil
}

func stop(_ *cmdLine, m *vm.Machine) (bool, error) {
	slog.Info("command stop")
	m.Stop()
	return false, nil
}

func reset(_ *cmdLine, m *vm.Machine) (bool, error) {
	slog.Info("command reset")
	m.Reset()
	printState(m)
	return false, nil
}

func setBreak(line *cmdLine, m *vm.Machine) (bool, error) {
	addr, err := parseUint32(line.getWord())
	if err != nil {
		return false, err
	}
	m.CPU.SetBreakpoint(addr, true)
	fmt.Printf("breakpoint set at %#08x\n", addr)
	return false, nil
}

func clearBreak(line *cmdLine, m *vm.Machine) (bool, error) {
	addr, err := parseUint32(line.getWord())
	if err != nil {
		return false, err
	}
	m.CPU.SetBreakpoint(addr, false)
	fmt.Printf("breakpoint cleared at %#08x\n", addr)
	return false, nil
}

func examine(line *cmdLine, m *vm.Machine) (bool, error) {
	addrWord := line.getWord()
	count := 1
	if w := line.getWord(); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return false, errors.New("examine count must be a number: " + w)
		}
		count = v
	}
	if r, ok := registerIndex(addrWord); ok {
		fmt.Printf("R%d = %#08x\n", r, m.CPU.R[r])
		return false, nil
	}
	addr, err := parseUint32(addrWord)
	if err != nil {
		return false, err
	}
	for i := 0; i < count; i++ {
		a := addr + uint32(i)
		fmt.Printf("%#08x: %#02x\n", a, m.Mem.ReadByte(a))
	}
	return false, nil
}

func deposit(line *cmdLine, m *vm.Machine) (bool, error) {
	target := line.getWord()
	valWord := line.getWord()
	value, err := parseUint32(valWord)
	if err != nil {
		return false, err
	}
	if r, ok := registerIndex(target); ok {
		m.CPU.R[r] = value
		fmt.Printf("R%d = %#08x\n", r, value)
		return false, nil
	}
	addr, err := parseUint32(target)
	if err != nil {
		return false, err
	}
	m.Mem.WriteByte(addr, uint8(value))
	fmt.Printf("%#08x: %#02x\n", addr, uint8(value))
	return false, nil
}

func disassemble(line *cmdLine, m *vm.Machine) (bool, error) {
	addr := m.CPU.PC
	if w := line.getWord(); w != "" {
		a, err := parseUint32(w)
		if err != nil {
			return false, err
		}
		addr = a
	}
	count := 10
	if w := line.getWord(); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return false, errors.New("disassemble count must be a number: " + w)
		}
		count = v
	}
	for _, ins := range m.Disassemble(addr, count) {
		fmt.Printf("%#08x: %s\n", ins.Address, ins.Text)
	}
	return false, nil
}

func load(line *cmdLine, m *vm.Machine) (bool, error) {
	path := line.getWord()
	if path == "" {
		return false, errors.New("load requires a file path")
	}
	addr := uint32(0xFFE00000)
	if w := line.getWord(); w != "" {
		a, err := parseUint32(w)
		if err != nil {
			return false, err
		}
		addr = a
	}
	res, err := m.LoadFile(path, addr)
	if err != nil {
		return false, err
	}
	fmt.Printf("loaded %s, entry=%#08x\n", path, res.Entry)
	return false, nil
}

func setSwitch(line *cmdLine, m *vm.Machine) (bool, error) {
	bitWord := line.getWord()
	bit, err := strconv.Atoi(bitWord)
	if err != nil || bit < 0 || bit > 7 {
		return false, errors.New("switch bit must be 0-7: " + bitWord)
	}
	stateWord := line.getWord()
	var pressed bool
	switch strings.ToLower(stateWord) {
	case "on", "1", "press":
		pressed = true
	case "off", "0", "release":
		pressed = false
	default:
		return false, errors.New("switch state must be on/off: " + stateWord)
	}
	m.SetSwitch(bit, pressed)
	return false, nil
}

func show(line *cmdLine, m *vm.Machine) (bool, error) {
	switch line.getWord() {
	case "", "cpu":
		printState(m)
	case "timer":
		for _, s := range m.TimerSnapshots() {
			fmt.Printf("unit %d channel %d: CMCNT=%#04x CMCOR=%#04x running=%v freq=%dHz\n",
				s.Unit, s.Channel, s.CMCNT, s.CMCOR, s.Running, s.Frequency)
		}
	case "interrupts":
		for _, s := range m.EnabledInterrupts() {
			fmt.Printf("vector %d (%s): priority=%d pending=%v\n", s.Vector, s.Name, s.Priority, s.Pending)
		}
	case "board":
		fmt.Printf("LEDs=%#02x\n", m.LEDs())
		for _, b := range m.UARTLog() {
			fmt.Printf("%#02x ", b)
		}
		fmt.Println()
	case "breakpoints":
		for _, a := range m.CPU.Breakpoints() {
			fmt.Printf("%#08x\n", a)
		}
	default:
		return false, errors.New("unknown show target")
	}
	return false, nil
}

func quit(_ *cmdLine, _ *vm.Machine) (bool, error) {
	slog.Info("command quit")
	return true, nil
}

func help(_ *cmdLine, _ *vm.Machine) (bool, error) {
	fmt.Println("commands: step [n], run [max], stop, reset, break <addr>, unbreak <addr>,")
	fmt.Println("          examine <addr|reg> [count], deposit <addr|reg> <value>,")
	fmt.Println("          disassemble [addr] [count], load <path> [addr], switch <bit> <on|off>,")
	fmt.Println("          show [cpu|timer|interrupts|board|breakpoints], quit")
	return false, nil
}

func printState(m *vm.Machine) {
	s := m.CPUSnapshot()
	fmt.Printf("PC=%#08x SP=%#08x PSW=%#08x [Z=%v S=%v C=%v O=%v I=%v] IPL=%d state=%s\n",
		s.PC, s.SP, s.PSW, s.Z, s.S, s.C, s.O, s.I, s.IPL, s.State)
	if s.Fault != nil {
		fmt.Printf("fault: %s\n", s.Fault.Error())
	}
}

// registerIndex parses "r0".."r15" (or "R0".."R15"); ok is false for
// anything else, so callers fall back to address parsing.
func registerIndex(s string) (int, bool) {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "r") {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n > 15 {
		return 0, false
	}
	return n, true
}

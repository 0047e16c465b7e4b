/*
 * rxvm - Debugger command parser.
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

// Package parser tokenizes and dispatches debugger console commands
// against a running machine. Commands are matched by unambiguous
// prefix, so "ste" selects step and "sto" selects stop.
package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/rxvm/rxvm/vm"
)

// cmd describes one console command: its canonical name, the shortest
// prefix length that unambiguously selects it, its handler, and an
// optional tab-completion function.
type cmd struct {
	name     string
	min      int
	process  func(*cmdLine, *vm.Machine) (bool, error)
	complete func(*cmdLine) []string
}

// cmdLine is a cursor over one command line being tokenized.
type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "step", min: 2, process: step},
	{name: "run", min: 1, process: run},
	{name: "stop", min: 3, process: stop},
	{name: "reset", min: 3, process: reset},
	{name: "break", min: 3, process: setBreak, complete: completeAddr},
	{name: "unbreak", min: 3, process: clearBreak, complete: completeAddr},
	{name: "examine", min: 2, process: examine, complete: completeAddr},
	{name: "deposit", min: 2, process: deposit, complete: completeAddr},
	{name: "disassemble", min: 3, process: disassemble, complete: completeAddr},
	{name: "load", min: 2, process: load},
	{name: "switch", min: 3, process: setSwitch},
	{name: "show", min: 2, process: show, complete: completeShow},
	{name: "quit", min: 1, process: quit},
	{name: "help", min: 1, process: help},
}

// ProcessCommand parses and runs one command line against m. It
// returns true when the console should exit.
func ProcessCommand(commandLine string, m *vm.Machine) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	match := matchList(name)
	if len(match) == 0 {
		return false, errors.New("command not found: " + name)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + name)
	}

	return match[0].process(&line, m)
}

// CompleteCmd returns the tab-completion candidates for commandLine.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	if !line.isEOL() && line.line[line.pos-1] == ' ' {
		match := matchList(name)
		if len(match) != 1 || match[0].complete == nil {
			return nil
		}
		return match[0].complete(&line)
	}

	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.name, name) {
			matches = append(matches, m.name)
		}
	}
	return matches
}

// matchCommand reports whether typed matches name to at least its
// minimum unambiguous prefix length.
func matchCommand(c cmd, typed string) bool {
	if len(typed) < c.min || len(typed) > len(c.name) {
		return false
	}
	return c.name[:len(typed)] == typed
}

func matchList(typed string) []cmd {
	if typed == "" {
		return nil
	}
	var match []cmd
	for _, c := range cmdList {
		if matchCommand(c, typed) {
			match = append(match, c)
		}
	}
	return match
}

func (line *cmdLine) isEOL() bool {
	return line.pos >= len(line.line)
}

func (line *cmdLine) skipSpace() {
	for !line.isEOL() && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// getWord returns the next whitespace-delimited token, lower-cased,
// advancing past the token and any trailing space.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	word := strings.ToLower(line.line[start:line.pos])
	line.skipSpace()
	return word
}

// rest returns everything left on the line, unmodified.
func (line *cmdLine) rest() string {
	line.skipSpace()
	return line.line[line.pos:]
}

// parseUint32 parses a hex literal (optionally 0x-prefixed), or a decimal
// literal when prefixed with '#'.
func parseUint32(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 16
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	} else if strings.HasPrefix(s, "#") {
		s = s[1:]
		base = 10
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, errors.New("invalid number: " + s)
	}
	return uint32(v), nil
}

/*
 * rxvm - Session configuration file parser.
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

// Package config parses the debugger's session file: a flat list of
// "key = value" lines loaded before the CLI hands control to the user,
// used to preconfigure the load file, entry address, and breakpoints for
// a repeatable debugging session.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Session is the parsed contents of a configuration file.
type Session struct {
	LoadFile    string
	LoadAddress uint32
	HasAddress  bool
	Breakpoints []uint32
	LogFile     string
}

// Load reads and parses the session file at path.
func Load(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads key = value lines from r. '#' starts a line comment;
// blank lines are ignored. Recognized keys: load, address, breakpoint
// (repeatable), log.
func Parse(r io.Reader) (*Session, error) {
	s := &Session{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("config line %d: missing '=': %q", lineNumber, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "load":
			s.LoadFile = value
		case "log":
			s.LogFile = value
		case "address":
			addr, err := parseUint32(value)
			if err != nil {
				return nil, fmt.Errorf("config line %d: %w", lineNumber, err)
			}
			s.LoadAddress = addr
			s.HasAddress = true
		case "breakpoint":
			addr, err := parseUint32(value)
			if err != nil {
				return nil, fmt.Errorf("config line %d: %w", lineNumber, err)
			}
			s.Breakpoints = append(s.Breakpoints, addr)
		default:
			return nil, fmt.Errorf("config line %d: unknown key %q", lineNumber, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseUint32(value string) (uint32, error) {
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	v, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex address %q: %w", value, err)
	}
	return uint32(v), nil
}

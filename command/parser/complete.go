/*
 * rxvm - Debugger console tab completion.
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
	"strconv"
	"strings"
)

// completeAddr offers the register names as completions; anything else
// (a bare hex address) has nothing sensible to complete against.
func completeAddr(line *cmdLine) []string {
	prefix := strings.ToLower(line.rest())
	var out []string
	for i := 0; i < 16; i++ {
		name := "r" + strconv.Itoa(i)
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

var showTargets = []string{"cpu", "timer", "interrupts", "board", "breakpoints"}

func completeShow(line *cmdLine) []string {
	prefix := strings.ToLower(line.rest())
	var out []string
	for _, t := range showTargets {
		if strings.HasPrefix(t, prefix) {
			out = append(out, t)
		}
	}
	return out
}

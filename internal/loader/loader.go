/*
 * rxvm - Program image loaders.
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

// Package loader reads firmware images in the four formats the debugger
// accepts (raw binary, Motorola S-Record, Intel HEX, ELF32) and writes
// their contents into a memory controller. A loader never mutates target
// state on failure: it collects errors and returns success:false instead.
package loader

import "github.com/rxvm/rxvm/internal/memio"

// Symbol is one name→address pair recovered from a symbol table, when the
// format carries one (ELF only).
type Symbol struct {
	Name    string
	Address uint32
}

// Result reports what a Load call did.
type Result struct {
	Success bool
	Errors  []string
	Entry   uint32
	HasEntry bool
	Symbols []Symbol
}

func fail(errs ...string) *Result {
	return &Result{Success: false, Errors: errs}
}

// Loader is satisfied by each of the four format-specific loaders.
type Loader interface {
	Load(mc *memio.Controller, data []byte) *Result
}

// pendingWrite is one staged (address, bytes) write. The record/segment
// loaders accumulate these while parsing and only hand them to mc once
// the whole image has parsed successfully, so a malformed record or
// segment partway through an image can never leave earlier records'
// writes behind.
type pendingWrite struct {
	addr uint32
	data []byte
}

func applyWrites(mc *memio.Controller, writes []pendingWrite) {
	for _, w := range writes {
		mc.Load(w.addr, w.data)
	}
}

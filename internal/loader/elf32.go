/*
 * rxvm - ELF32 loader, restricted to machine=RX images.
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

package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/rxvm/rxvm/internal/memio"
)

const (
	emRX      = 173
	ptLoad    = 1
	shtSymtab = 2
	shtStrtab = 3
)

// ELF32 loads little-endian ELF32 images for machine = EM_RX (173) only.
// It iterates program headers, staging each PT_LOAD segment's file
// contents at p_paddr and a zero-fill of the remainder of p_memsz, then
// parses a SYMTAB/STRTAB pair if present for a name→address map. Staged
// writes are only applied once every program header has parsed
// successfully, so a malformed header never leaves earlier segments'
// writes behind.
type ELF32 struct{}

func (ELF32) Load(mc *memio.Controller, data []byte) *Result {
	if len(data) < 52 || string(data[:4]) != "\x7fELF" {
		return fail("not an ELF file")
	}
	if data[4] != 1 {
		return fail("only ELF32 is supported")
	}
	if data[5] != 1 {
		return fail("only little-endian ELF is supported")
	}

	e := binary.LittleEndian
	machine := e.Uint16(data[18:20])
	if machine != emRX {
		return fail(fmt.Sprintf("unsupported machine %d, want EM_RX (%d)", machine, emRX))
	}

	entry := e.Uint32(data[24:28])
	phoff := e.Uint32(data[28:32])
	shoff := e.Uint32(data[32:36])
	phentsize := e.Uint16(data[42:44])
	phnum := e.Uint16(data[44:46])
	shentsize := e.Uint16(data[46:48])
	shnum := e.Uint16(data[48:50])
	shstrndx := e.Uint16(data[50:52])

	res := &Result{Success: true, Entry: entry, HasEntry: true}
	var writes []pendingWrite

	for i := uint16(0); i < phnum; i++ {
		off := phoff + uint32(i)*uint32(phentsize)
		if int(off)+32 > len(data) {
			res.Errors = append(res.Errors, fmt.Sprintf("program header %d out of range", i))
			res.Success = false
			continue
		}
		ph := data[off:]
		pType := e.Uint32(ph[0:4])
		if pType != ptLoad {
			continue
		}
		pOffset := e.Uint32(ph[4:8])
		pPaddr := e.Uint32(ph[12:16])
		pFilesz := e.Uint32(ph[16:20])
		pMemsz := e.Uint32(ph[20:24])

		if int(pOffset+pFilesz) > len(data) {
			res.Errors = append(res.Errors, fmt.Sprintf("program header %d: segment data out of range", i))
			res.Success = false
			continue
		}
		writes = append(writes, pendingWrite{addr: pPaddr, data: append([]byte(nil), data[pOffset:pOffset+pFilesz]...)})
		if pMemsz > pFilesz {
			writes = append(writes, pendingWrite{addr: pPaddr + pFilesz, data: make([]byte, pMemsz-pFilesz)})
		}
	}

	if !res.Success {
		return res
	}
	applyWrites(mc, writes)

	res.Symbols = parseELFSymbols(data, e, shoff, shentsize, shnum, shstrndx)
	return res
}

func parseELFSymbols(data []byte, e binary.ByteOrder, shoff uint32, shentsize, shnum, shstrndx uint16) []Symbol {
	type section struct {
		shType uint32
		offset uint32
		size   uint32
		link   uint32
		entsz  uint32
	}
	sections := make([]section, 0, shnum)
	for i := uint16(0); i < shnum; i++ {
		off := shoff + uint32(i)*uint32(shentsize)
		if int(off)+40 > len(data) {
			return nil
		}
		sh := data[off:]
		sections = append(sections, section{
			shType: e.Uint32(sh[4:8]),
			offset: e.Uint32(sh[16:20]),
			size:   e.Uint32(sh[20:24]),
			link:   e.Uint32(sh[24:28]),
			entsz:  e.Uint32(sh[36:40]),
		})
	}

	var symtab *section
	for i := range sections {
		if sections[i].shType == shtSymtab {
			symtab = &sections[i]
			break
		}
	}
	if symtab == nil || symtab.entsz == 0 {
		return nil
	}
	strtab := sections[symtab.link]
	if strtab.shType != shtStrtab {
		return nil
	}

	var symbols []Symbol
	count := symtab.size / symtab.entsz
	for i := uint32(0); i < count; i++ {
		off := symtab.offset + i*symtab.entsz
		if int(off)+16 > len(data) {
			break
		}
		sym := data[off:]
		nameOff := e.Uint32(sym[0:4])
		value := e.Uint32(sym[4:8])
		name := readELFString(data, strtab.offset, strtab.size, nameOff)
		if name == "" {
			continue
		}
		symbols = append(symbols, Symbol{Name: name, Address: value})
	}
	return symbols
}

func readELFString(data []byte, strOff, strSize, nameOff uint32) string {
	if nameOff >= strSize {
		return ""
	}
	start := strOff + nameOff
	end := start
	for int(end) < len(data) && data[end] != 0 {
		end++
	}
	return string(data[start:end])
}

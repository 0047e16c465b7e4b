/*
 * rxvm - Motorola S-Record loader.
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
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/rxvm/rxvm/internal/memio"
)

// SRecord loads Motorola S-Record (SREC) images. S1/S2/S3 carry 16/24/32
// bit addressed data; S7/S8/S9 set the entry point; S0 is a header
// comment and is ignored.
type SRecord struct{}

// Load parses the whole image before writing anything: a record that
// fails to parse must not leave earlier, valid records' data behind in
// mc, so every data record's (address, bytes) pair is staged and only
// applied once the full image has parsed successfully.
func (SRecord) Load(mc *memio.Controller, data []byte) *Result {
	res := &Result{Success: true}
	var writes []pendingWrite
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := parseSRecordLine(&writes, res, line); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			res.Success = false
		}
	}
	if err := scanner.Err(); err != nil {
		return fail(err.Error())
	}
	if !res.Success {
		return res
	}
	applyWrites(mc, writes)
	return res
}

func parseSRecordLine(writes *[]pendingWrite, res *Result, line []byte) error {
	if len(line) < 4 || line[0] != 'S' {
		return fmt.Errorf("malformed record %q", line)
	}
	recType := line[1]
	raw, err := hex.DecodeString(string(line[2:]))
	if err != nil {
		return fmt.Errorf("bad hex: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("record too short")
	}
	count := int(raw[0])
	if count != len(raw)-1 {
		return fmt.Errorf("byte count mismatch: header says %d, got %d", count, len(raw)-1)
	}
	body := raw[1 : len(raw)-1] // drop count byte and trailing checksum

	var addrLen int
	switch recType {
	case '0':
		return nil // header/comment record, ignored
	case '1':
		addrLen = 2
	case '2':
		addrLen = 3
	case '3':
		addrLen = 4
	case '5', '6':
		return nil // record count, not used here
	case '7':
		addrLen = 4
	case '8':
		addrLen = 3
	case '9':
		addrLen = 2
	default:
		return fmt.Errorf("unsupported record type S%c", recType)
	}
	if len(body) < addrLen {
		return fmt.Errorf("record shorter than its address field")
	}
	addr := beUint(body[:addrLen])

	switch recType {
	case '1', '2', '3':
		*writes = append(*writes, pendingWrite{addr: addr, data: append([]byte(nil), body[addrLen:]...)})
	case '7', '8', '9':
		res.Entry = addr
		res.HasEntry = true
	}
	return nil
}

func beUint(b []byte) uint32 {
	var v uint32
	for _, by := range b {
		v = v<<8 | uint32(by)
	}
	return v
}

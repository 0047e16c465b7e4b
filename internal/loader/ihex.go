/*
 * rxvm - Intel HEX loader.
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

// IntelHex loads Intel HEX (.hex) images: type 0x00 data records, 0x01
// end-of-file, 0x02 extended segment address (<<4), 0x04 extended linear
// address (<<16), 0x05 start linear address (entry point).
type IntelHex struct{}

// Load parses the whole image before writing anything: a record that
// fails to parse must not leave earlier, valid records' data behind in
// mc, so every data record's (address, bytes) pair is staged and only
// applied once the full image has parsed successfully.
func (IntelHex) Load(mc *memio.Controller, data []byte) *Result {
	res := &Result{Success: true}
	var base uint32
	var writes []pendingWrite
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	done := false
	for scanner.Scan() && !done {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stop, err := parseIHexLine(&writes, res, &base, line)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			res.Success = false
			continue
		}
		done = stop
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

func parseIHexLine(writes *[]pendingWrite, res *Result, base *uint32, line []byte) (stop bool, err error) {
	if len(line) < 11 || line[0] != ':' {
		return false, fmt.Errorf("malformed record %q", line)
	}
	raw, err := hex.DecodeString(string(line[1:]))
	if err != nil {
		return false, fmt.Errorf("bad hex: %w", err)
	}
	if len(raw) < 5 {
		return false, fmt.Errorf("record too short")
	}
	count := int(raw[0])
	addr := uint32(raw[1])<<8 | uint32(raw[2])
	recType := raw[3]
	if len(raw) != 4+count+1 {
		return false, fmt.Errorf("byte count mismatch")
	}
	payload := raw[4 : 4+count]

	switch recType {
	case 0x00:
		*writes = append(*writes, pendingWrite{addr: *base + addr, data: append([]byte(nil), payload...)})
	case 0x01:
		return true, nil
	case 0x02:
		if count != 2 {
			return false, fmt.Errorf("extended segment address record must carry 2 bytes")
		}
		*base = (uint32(payload[0])<<8 | uint32(payload[1])) << 4
	case 0x04:
		if count != 2 {
			return false, fmt.Errorf("extended linear address record must carry 2 bytes")
		}
		*base = (uint32(payload[0])<<8 | uint32(payload[1])) << 16
	case 0x05:
		if count != 4 {
			return false, fmt.Errorf("start linear address record must carry 4 bytes")
		}
		res.Entry = uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
		res.HasEntry = true
	default:
		return false, fmt.Errorf("unsupported record type %#02x", recType)
	}
	return false, nil
}

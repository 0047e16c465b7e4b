/*
 * rxvm - Main process.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rxvm/rxvm/command/reader"
	"github.com/rxvm/rxvm/internal/config"
	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/util/logger"
	"github.com/rxvm/rxvm/vm"
)

var Logger *slog.Logger

// demoEntry is where the built-in demo program is loaded and where PC
// and the reset vector are pointed when --demo is given.
const demoEntry uint32 = 0xFFE00000

// demoProgram blinks the two LED pins the board model exposes on GPIO
// port 0 (PD6/PD7): it configures PDR for output, then loops forever
// alternating PODR between the two bits.
var demoProgram = []byte{
	// MOV.L #0, R1 (loop counter)
	0xFB, 0x01, 0x00, 0x00, 0x00, 0x00,
	// MOV.L #PODR(port0), R2
	0xFB, 0x02, byte(isa.GPIOBase + isa.PODROffset), byte((isa.GPIOBase + isa.PODROffset) >> 8), byte((isa.GPIOBase + isa.PODROffset) >> 16), byte((isa.GPIOBase + isa.PODROffset) >> 24),
	// MOV.L #PDR(port0), R3
	0xFB, 0x03, byte(isa.GPIOBase + isa.PDROffset), byte((isa.GPIOBase + isa.PDROffset) >> 8), byte((isa.GPIOBase + isa.PDROffset) >> 16), byte((isa.GPIOBase + isa.PDROffset) >> 24),
	// MOV.L #0xC0, R4 (PD6, PD7 as outputs)
	0xFB, 0x04, 0xC0, 0x00, 0x00, 0x00,
	// MOV.B R4,[R3] (write PDR)
	0xC0, 0x43,
	// main loop:
	// MOV.L #0x40, R5 (LED0 on)
	0xFB, 0x05, 0x40, 0x00, 0x00, 0x00,
	// MOV.B R5,[R2] (write PODR)
	0xC0, 0x52,
	// ADD #1, R1
	0x62, 0x11,
	// MOV.L #0x80, R5 (LED1 on)
	0xFB, 0x05, 0x80, 0x00, 0x00, 0x00,
	// MOV.B R5,[R2] (write PODR)
	0xC0, 0x52,
	// ADD #1, R1
	0x62, 0x11,
	// BRA.W -23 (back to main loop: 3 bytes past BRA.W, minus 23)
	0x38, 0xE9, 0xFF,
	// padding
	0x03, 0x03, 0x03,
}

func parseHexAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Session configuration file")
	optLoad := getopt.StringLong("load", 'f', "", "Firmware image to load")
	optAddr := getopt.StringLong("addr", 'a', "", "Load address (hex) for raw images")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optRun := getopt.BoolLong("run", 'r', "Run immediately instead of entering the console")
	optDemo := getopt.BoolLong("demo", 'd', "Load the built-in LED-blink demo program")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logWriter io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create log file:", err)
			os.Exit(1)
		}
		logWriter = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debug := false
	Logger = slog.New(logger.NewHandler(logWriter, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug))
	slog.SetDefault(Logger)

	Logger.Info("rxvm started")

	m := vm.New()

	loadPath := *optLoad
	loadAddr := uint32(0xFFE00000)
	var breakpoints []uint32

	if *optConfig != "" {
		session, err := config.Load(*optConfig)
		if err != nil {
			Logger.Error("failed to load configuration", "path", *optConfig, "error", err)
			os.Exit(1)
		}
		if session.LoadFile != "" {
			loadPath = session.LoadFile
		}
		if session.HasAddress {
			loadAddr = session.LoadAddress
		}
		breakpoints = session.Breakpoints
	}

	if *optAddr != "" {
		v, err := parseHexAddr(*optAddr)
		if err != nil {
			Logger.Error("invalid --addr value", "value", *optAddr)
			os.Exit(1)
		}
		loadAddr = v
	}

	if *optDemo {
		Logger.Info("loading built-in demo program", "addr", demoEntry)
		m.Mem.Load(demoEntry, demoProgram)
		m.Mem.WriteWord(isa.ResetVectorAddr, demoEntry)
		m.CPU.Reset()
	} else if loadPath != "" {
		if _, err := m.LoadFile(loadPath, loadAddr); err != nil {
			Logger.Error("failed to load firmware", "path", loadPath, "error", err)
			os.Exit(1)
		}
	}

	for _, bp := range breakpoints {
		m.CPU.SetBreakpoint(bp, true)
	}

	if *optRun {
		m.Run(1_000_000)
		os.Exit(0)
	}

	reader.ConsoleReader(m)
	Logger.Info("rxvm exiting")
}

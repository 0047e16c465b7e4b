/*
 * rxvm - Interactive console reader.
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

// Package reader runs the interactive line-edited console loop, handing
// each line to the parser package and printing whatever it reports.
package reader

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/peterh/liner"

	"github.com/rxvm/rxvm/command/parser"
	"github.com/rxvm/rxvm/vm"
)

const prompt = "rxvm> "

// ConsoleReader drives the interactive debugger loop against m until the
// user quits or aborts with Ctrl-D.
func ConsoleReader(m *vm.Machine) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(commandLine string) []string {
		return parser.CompleteCmd(commandLine)
	})

	for {
		command, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			return
		}

		if command == "" {
			continue
		}
		line.AppendHistory(command)

		quit, err := parser.ProcessCommand(command, m)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			slog.Debug("command error", "line", command, "error", err)
		}
		if quit {
			return
		}
	}
}

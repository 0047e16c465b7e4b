/*
 * rxvm - Board model: LEDs, switches, and UART console.
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

// Package board wires the two GPIO ports the reference hardware exposes
// (PORT0 driving on-board LEDs, PORT1 sampling on-board switches) plus a
// single UART peripheral that only implements the transmit side, logging
// every byte the firmware sends so a host can inspect console output
// without a real terminal attached.
package board

import (
	"github.com/rxvm/rxvm/internal/gpio"
	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

// txLogSize is the number of most recent transmitted bytes retained.
const txLogSize = 256

// uartWindow implements memio.Peripheral for the transmit-only UART: TDR
// is write-only and appends to the board's ring log; SSR always reads
// back "transmit empty" since transmission is instantaneous here.
type uartWindow struct {
	b *Board
}

func (w uartWindow) ReadByte(addr uint32) (uint8, bool) {
	switch addr - isa.UARTBase {
	case isa.UARTSSROffset:
		return 0x04, true // TDRE bit always set: ready for next byte
	}
	return 0, true
}

func (w uartWindow) WriteByte(addr uint32, value uint8) bool {
	if addr-isa.UARTBase != isa.UARTTDROffset {
		return false
	}
	w.b.appendTX(value)
	return true
}

// Board is the integration point between the GPIO controller and the
// fixed on-board peripherals (LEDs, switches, console UART).
type Board struct {
	GPIO *gpio.Controller

	leds     *gpio.Port
	switches *gpio.Port

	txLog    []byte
	txCursor int
	txFull   bool
}

// New creates a board with two ports — LEDs on port 0, switches on port
// 1. No port change callback is installed; LEDs reads port 0's registers
// on each call.
func New() *Board {
	leds := gpio.NewPort(0, "PORT0-LED")
	switches := gpio.NewPort(1, "PORT1-SW")
	b := &Board{
		GPIO:     gpio.NewController(leds, switches),
		leds:     leds,
		switches: switches,
		txLog:    make([]byte, txLogSize),
	}
	return b
}

// BindRegisters overlays the GPIO ports and the UART transmit window on
// mc.
func (b *Board) BindRegisters(mc *memio.Controller) {
	b.GPIO.BindRegisters(mc)
	mc.Bind(isa.UARTBase, 2, uartWindow{b: b})
}

// SetSwitch drives switch bit on port 1's external input, as if the user
// physically toggled it.
func (b *Board) SetSwitch(bit int, pressed bool) {
	b.switches.SetExternalInput(bit, pressed)
}

// LEDs returns the current LED output byte (PODR of port 0), masked to
// the bits actually configured as output; bits left as input read as 0.
func (b *Board) LEDs() uint8 {
	return b.leds.PODR & b.leds.PDR
}

func (b *Board) appendTX(value uint8) {
	b.txLog[b.txCursor] = value
	b.txCursor = (b.txCursor + 1) % txLogSize
	if b.txCursor == 0 {
		b.txFull = true
	}
}

// TXLog returns the transmitted bytes in chronological order, oldest
// first, capped at the most recent txLogSize bytes.
func (b *Board) TXLog() []byte {
	if !b.txFull {
		out := make([]byte, b.txCursor)
		copy(out, b.txLog[:b.txCursor])
		return out
	}
	out := make([]byte, txLogSize)
	copy(out, b.txLog[b.txCursor:])
	copy(out[txLogSize-b.txCursor:], b.txLog[:b.txCursor])
	return out
}

// Reset clears the GPIO ports and the TX log, but keeps port identity
// (LEDs stay port 0, switches stay port 1).
func (b *Board) Reset() {
	b.GPIO.Reset()
	b.txCursor = 0
	b.txFull = false
	for i := range b.txLog {
		b.txLog[i] = 0
	}
}

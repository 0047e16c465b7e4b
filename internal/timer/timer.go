/*
 * rxvm - Compare-match timer (CMT).
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

// Package timer implements the CMT: four prescaled 16-bit compare-match
// counters grouped into two units of two channels, ticked synchronously
// by cycle counts the CPU engine hands it after every instruction. It has
// no goroutine of its own — Tick is a plain method called from the
// integration façade, keeping the whole core single-threaded and
// deterministic.
package timer

import (
	"log/slog"

	"github.com/rxvm/rxvm/internal/intc"
	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

// Channel is one CMT counter.
type Channel struct {
	Vector           uint8
	CMCR             uint16 // control word; bits 1:0 select the prescale divisor
	CMCNT            uint16
	CMCOR            uint16
	Running          bool
	CompareMatch     bool
	InterruptEnabled bool

	acc uint32 // prescale accumulator, distinct from CMCNT
}

func (ch *Channel) divisor() uint32 {
	return isa.PrescaleDivisors[ch.CMCR&0x3]
}

// Frequency returns PCLKB / divisor / (CMCOR+1), the value the
// inspection API reports. CMCOR+1 is computed in uint32, so CMCOR ==
// 0xFFFF does not overflow.
func (ch *Channel) Frequency() uint32 {
	return isa.PCLKB / ch.divisor() / (uint32(ch.CMCOR) + 1)
}

// Unit is a pair of channels sharing one CMSTR start/stop word.
type Unit struct {
	Channels [isa.ChannelsPerUnit]*Channel
	CMSTR    uint16
}

// Controller owns all four channels across both units and requests
// interrupts through the shared intc.Controller when a channel's
// interrupt is enabled and its compare match fires.
type Controller struct {
	Units [isa.NumTimerChannels / isa.ChannelsPerUnit]*Unit
	intc  *intc.Controller
}

// NewController wires numChannels channels (isa.NumTimerChannels, in
// practice) in groups of isa.ChannelsPerUnit, each reporting matches to
// ic. Vectors are assigned sequentially starting at firstVector.
func NewController(ic *intc.Controller, firstVector uint8) *Controller {
	c := &Controller{intc: ic}
	v := firstVector
	chans := make([]*Channel, isa.NumTimerChannels)
	for i := range chans {
		chans[i] = &Channel{Vector: v}
		v++
	}
	for u := range c.Units {
		unit := &Unit{}
		for i := 0; i < isa.ChannelsPerUnit; i++ {
			unit.Channels[i] = chans[u*isa.ChannelsPerUnit+i]
		}
		c.Units[u] = unit
	}
	return c
}

// Start marks channel ch in unit u running, reflecting it into CMSTR.
func (c *Controller) Start(unit, ch int) {
	c.Units[unit].Channels[ch].Running = true
	c.Units[unit].CMSTR |= 1 << ch
}

// Stop marks channel ch in unit u stopped.
func (c *Controller) Stop(unit, ch int) {
	c.Units[unit].Channels[ch].Running = false
	c.Units[unit].CMSTR &^= 1 << ch
}

// Tick advances every running channel by cycles peripheral-clock ticks,
// firing every intermediate compare match — never skipping one, even
// when cycles spans several match intervals in a single call.
func (c *Controller) Tick(cycles int) {
	for _, u := range c.Units {
		for _, ch := range u.Channels {
			if !ch.Running {
				continue
			}
			c.tickChannel(ch, uint32(cycles))
		}
	}
}

func (c *Controller) tickChannel(ch *Channel, cycles uint32) {
	divisor := ch.divisor()
	ch.acc += cycles
	for ch.acc >= divisor {
		ch.acc -= divisor
		if ch.CMCNT != ch.CMCOR {
			ch.CMCNT++
			continue
		}
		// The count after CMCNT reached CMCOR clears it: one match every
		// CMCOR+1 counts, and every count when CMCOR is 0.
		ch.CMCNT = 0
		ch.CompareMatch = true
		if ch.InterruptEnabled {
			c.intc.Request(ch.Vector)
		}
		slog.Debug("timer compare match", "vector", ch.Vector)
	}
}

// Reset stops every channel and clears counters, preserving vector
// assignment and wiring to the interrupt controller.
func (c *Controller) Reset() {
	for _, u := range c.Units {
		u.CMSTR = 0
		for _, ch := range u.Channels {
			ch.Running = false
			ch.CMCNT = 0
			ch.CompareMatch = false
			ch.InterruptEnabled = false
			ch.acc = 0
		}
	}
}

// Snapshot is an immutable view of one channel, for the inspection
// surface.
type Snapshot struct {
	Unit, Channel int
	CMCNT, CMCOR  uint16
	Running       bool
	Frequency     uint32
}

// Snapshots returns every channel's state in unit/channel order.
func (c *Controller) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, isa.NumTimerChannels)
	for ui, u := range c.Units {
		for ci, ch := range u.Channels {
			out = append(out, Snapshot{
				Unit: ui, Channel: ci, CMCNT: ch.CMCNT, CMCOR: ch.CMCOR,
				Running: ch.Running, Frequency: ch.Frequency(),
			})
		}
	}
	return out
}

// Channel returns channel ch of unit u for direct configuration (CMCOR,
// CMCR, InterruptEnabled) by the façade or CLI.
func (c *Controller) Channel(u, ch int) *Channel {
	return c.Units[u].Channels[ch]
}

// registerWindow is the memio.Peripheral covering one channel's four
// 16-bit registers plus its unit's shared CMSTR, bound at
// isa.CMTBase + channelIndex*isa.CMTChannelSpan.
type registerWindow struct {
	c       *Controller
	unit    int
	channel int
}

func (w registerWindow) offset(addr uint32) uint32 {
	base := isa.CMTBase + uint32(w.unit*isa.ChannelsPerUnit+w.channel)*isa.CMTChannelSpan
	return addr - base
}

func (w registerWindow) ReadByte(addr uint32) (uint8, bool) {
	ch := w.c.Units[w.unit].Channels[w.channel]
	off := w.offset(addr)
	switch {
	case off == isa.CMSTROffset:
		return uint8(w.c.Units[w.unit].CMSTR), true
	case off == isa.CMSTROffset+1:
		return uint8(w.c.Units[w.unit].CMSTR >> 8), true
	case off == isa.CMCROffset:
		return uint8(ch.CMCR), true
	case off == isa.CMCROffset+1:
		return uint8(ch.CMCR >> 8), true
	case off == isa.CMCNTOffset:
		return uint8(ch.CMCNT), true
	case off == isa.CMCNTOffset+1:
		return uint8(ch.CMCNT >> 8), true
	case off == isa.CMCOROffset:
		return uint8(ch.CMCOR), true
	case off == isa.CMCOROffset+1:
		return uint8(ch.CMCOR >> 8), true
	}
	return 0, false
}

func (w registerWindow) WriteByte(addr uint32, value uint8) bool {
	ch := w.c.Units[w.unit].Channels[w.channel]
	off := w.offset(addr)
	switch {
	case off == isa.CMSTROffset:
		lo, hi := value, uint8(w.c.Units[w.unit].CMSTR>>8)
		w.applyCMSTR(uint16(lo) | uint16(hi)<<8)
	case off == isa.CMSTROffset+1:
		lo, hi := uint8(w.c.Units[w.unit].CMSTR), value
		w.applyCMSTR(uint16(lo) | uint16(hi)<<8)
	case off == isa.CMCROffset:
		ch.CMCR = (ch.CMCR &^ 0xFF) | uint16(value)
		ch.InterruptEnabled = ch.CMCR&isa.CMCRInterruptEnable != 0
	case off == isa.CMCROffset+1:
		ch.CMCR = (ch.CMCR & 0xFF) | uint16(value)<<8
		ch.InterruptEnabled = ch.CMCR&isa.CMCRInterruptEnable != 0
	case off == isa.CMCNTOffset:
		ch.CMCNT = (ch.CMCNT &^ 0xFF) | uint16(value)
	case off == isa.CMCNTOffset+1:
		ch.CMCNT = (ch.CMCNT & 0xFF) | uint16(value)<<8
	case off == isa.CMCOROffset:
		ch.CMCOR = (ch.CMCOR &^ 0xFF) | uint16(value)
	case off == isa.CMCOROffset+1:
		ch.CMCOR = (ch.CMCOR & 0xFF) | uint16(value)<<8
	default:
		return false
	}
	return true
}

func (w registerWindow) applyCMSTR(v uint16) {
	w.c.Units[w.unit].CMSTR = v
	for i, ch := range w.c.Units[w.unit].Channels {
		ch.Running = v&(1<<i) != 0
	}
}

// BindRegisters overlays every channel's register window on mc.
func (c *Controller) BindRegisters(mc *memio.Controller) {
	for u := range c.Units {
		for ch := range c.Units[u].Channels {
			base := isa.CMTBase + uint32(u*isa.ChannelsPerUnit+ch)*isa.CMTChannelSpan
			mc.Bind(base, isa.CMTChannelSpan, registerWindow{c: c, unit: u, channel: ch})
		}
	}
}

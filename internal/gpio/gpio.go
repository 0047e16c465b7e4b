/*
 * rxvm - GPIO ports.
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

// Package gpio implements the 8-bit GPIO ports: PDR (direction), PODR
// (driven output), PIDR (sampled input), PMR (GPIO/peripheral mux), and
// PCR (pullup). Each port's registers are bound at distinct addresses in
// the peripheral window by BindRegisters.
package gpio

import (
	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

// ChangeCallback is invoked after every write to PDR or PODR, whether or
// not the value changed.
type ChangeCallback func(port *Port)

// Port is one 8-bit GPIO port.
type Port struct {
	Name  string
	index int // port number; register placement comes from the port's position in NewController

	PDR  uint8 // 1 = output
	PODR uint8 // driven output value
	PMR  uint8 // 1 = peripheral function, 0 = GPIO
	PCR  uint8 // pullup enable

	external uint8 // externally driven input (board switches)
	onChange ChangeCallback
}

// NewPort creates port number index with the given name. Where its
// registers are bound is decided by its position in NewController, not
// by index.
func NewPort(index int, name string) *Port {
	return &Port{index: index, Name: name}
}

// OnChange installs cb, called after any write to PDR or PODR.
func (p *Port) OnChange(cb ChangeCallback) {
	p.onChange = cb
}

// SetExternalInput injects an external signal (e.g. a board switch) on
// bit, used when that pin is configured as input.
func (p *Port) SetExternalInput(bit int, value bool) {
	if value {
		p.external |= 1 << bit
	} else {
		p.external &^= 1 << bit
	}
}

// PIDR synthesizes the input register: for pins configured as input, the
// externally-driven value; for pins configured as output, the value the
// port itself is driving. This is a deliberate modeling choice (spec
// section 4.5/9) that lets firmware read back what it just wrote.
func (p *Port) PIDR() uint8 {
	var v uint8
	for bit := 0; bit < 8; bit++ {
		mask := uint8(1) << bit
		if p.PDR&mask != 0 {
			if p.PODR&mask != 0 {
				v |= mask
			}
		} else if p.external&mask != 0 {
			v |= mask
		}
	}
	return v
}

func (p *Port) setPDR(v uint8) {
	p.PDR = v
	if p.onChange != nil {
		p.onChange(p)
	}
}

func (p *Port) setPODR(v uint8) {
	p.PODR = v
	if p.onChange != nil {
		p.onChange(p)
	}
}

// Controller owns a small fixed set of ports and binds their registers
// into the memory controller's peripheral window.
type Controller struct {
	ports []*Port
}

// NewController wires the given ports, placing port i's registers at
// isa.GPIOBase + i*isa.GPIOPortSpan.
func NewController(ports ...*Port) *Controller {
	return &Controller{ports: ports}
}

// Port returns the i'th port.
func (c *Controller) Port(i int) *Port {
	return c.ports[i]
}

// Reset clears every port's registers and external inputs.
func (c *Controller) Reset() {
	for _, p := range c.ports {
		p.PDR, p.PODR, p.PMR, p.PCR, p.external = 0, 0, 0, 0, 0
	}
}

type portWindow struct{ p *Port }

func (w portWindow) ReadByte(addr uint32) (uint8, bool) {
	off := addr % isa.GPIOPortSpan
	switch off {
	case isa.PDROffset:
		return w.p.PDR, true
	case isa.PODROffset:
		return w.p.PODR, true
	case isa.PIDROffset:
		return w.p.PIDR(), true
	case isa.PMROffset:
		return w.p.PMR, true
	case isa.PCROffset:
		return w.p.PCR, true
	}
	return 0, false
}

func (w portWindow) WriteByte(addr uint32, value uint8) bool {
	off := addr % isa.GPIOPortSpan
	switch off {
	case isa.PDROffset:
		w.p.setPDR(value)
	case isa.PODROffset:
		w.p.setPODR(value)
	case isa.PIDROffset:
		return false // PIDR is synthesized, not writable
	case isa.PMROffset:
		w.p.PMR = value
	case isa.PCROffset:
		w.p.PCR = value
	default:
		return false
	}
	return true
}

// BindRegisters overlays every port's five registers on mc.
func (c *Controller) BindRegisters(mc *memio.Controller) {
	for i, p := range c.ports {
		base := isa.GPIOBase + uint32(i)*isa.GPIOPortSpan
		mc.Bind(base, isa.GPIOPortSpan, portWindow{p: p})
	}
}

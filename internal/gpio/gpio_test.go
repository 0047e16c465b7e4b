package gpio

import (
	"testing"

	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

func TestPIDRReflectsExternalInputWhenConfiguredAsInput(t *testing.T) {
	p := NewPort(0, "PORT0")
	p.PDR = 0x00 // all input
	p.SetExternalInput(3, true)
	if p.PIDR() != 0x08 {
		t.Fatalf("expected bit 3 set, got %#x", p.PIDR())
	}
}

func TestPIDRReflectsDrivenOutputWhenConfiguredAsOutput(t *testing.T) {
	p := NewPort(0, "PORT0")
	p.PDR = 0xFF // all output
	p.PODR = 0x55
	p.SetExternalInput(0, true) // must be ignored; pin 0 is output
	if p.PIDR() != 0x55 {
		t.Fatalf("expected PIDR to mirror PODR for output pins, got %#x", p.PIDR())
	}
}

func TestPIDRMixedDirections(t *testing.T) {
	p := NewPort(0, "PORT0")
	p.PDR = 0x0F     // low nibble output, high nibble input
	p.PODR = 0x0A    // drives low nibble to 1010
	p.SetExternalInput(4, true)
	p.SetExternalInput(7, true)
	got := p.PIDR()
	want := uint8(0x0A | 1<<4 | 1<<7)
	if got != want {
		t.Fatalf("got %#x want %#x", got, want)
	}
}

func TestOnChangeFiresOnPDRAndPODRWrites(t *testing.T) {
	p := NewPort(0, "PORT0")
	count := 0
	p.OnChange(func(*Port) { count++ })
	p.setPDR(0xFF)
	p.setPODR(0x01)
	if count != 2 {
		t.Fatalf("expected 2 callbacks, got %d", count)
	}
}

func TestRegisterWindowReadWrite(t *testing.T) {
	mc := memio.NewDefaultController()
	p0 := NewPort(0, "PORT0")
	p1 := NewPort(1, "PORT1")
	c := NewController(p0, p1)
	c.BindRegisters(mc)

	base1 := isa.GPIOBase + 1*isa.GPIOPortSpan
	mc.WriteByte(base1+isa.PDROffset, 0xFF)
	mc.WriteByte(base1+isa.PODROffset, 0x3C)
	if p1.PDR != 0xFF || p1.PODR != 0x3C {
		t.Fatalf("expected port1 registers updated via memory controller, got PDR=%#x PODR=%#x", p1.PDR, p1.PODR)
	}
	if got := mc.ReadByte(base1 + isa.PIDROffset); got != 0x3C {
		t.Fatalf("expected PIDR readback of driven output, got %#x", got)
	}

	// Port0's registers must be unaffected by port1's writes.
	if p0.PDR != 0 || p0.PODR != 0 {
		t.Fatalf("expected port0 untouched, got PDR=%#x PODR=%#x", p0.PDR, p0.PODR)
	}
}

func TestPIDRWriteIsRejected(t *testing.T) {
	p := NewPort(0, "PORT0")
	w := portWindow{p: p}
	base := isa.GPIOBase
	if ok := w.WriteByte(base+isa.PIDROffset, 0xFF); ok {
		t.Fatalf("expected PIDR write to be rejected")
	}
}

func TestResetClearsPortsAndExternalInputs(t *testing.T) {
	p0 := NewPort(0, "PORT0")
	p0.PDR, p0.PODR, p0.PMR, p0.PCR = 0xFF, 0xFF, 0xFF, 0xFF
	p0.SetExternalInput(2, true)
	c := NewController(p0)
	c.Reset()
	if p0.PDR != 0 || p0.PODR != 0 || p0.PMR != 0 || p0.PCR != 0 || p0.external != 0 {
		t.Fatalf("expected all port state cleared after Reset")
	}
}

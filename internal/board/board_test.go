package board

import (
	"testing"

	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

func TestLEDsReflectOutputConfiguredPins(t *testing.T) {
	b := New()
	mc := memio.NewDefaultController()
	b.BindRegisters(mc)

	base := isa.GPIOBase // port 0 (LEDs) is port index 0
	mc.WriteByte(base+isa.PDROffset, 0x0F)  // low nibble output
	mc.WriteByte(base+isa.PODROffset, 0xFF) // drive all high

	if got := b.LEDs(); got != 0x0F {
		t.Fatalf("expected LEDs masked to output pins, got %#x", got)
	}
}

func TestSetSwitchFeedsPort1Input(t *testing.T) {
	b := New()
	mc := memio.NewDefaultController()
	b.BindRegisters(mc)

	b.SetSwitch(2, true)
	base := isa.GPIOBase + isa.GPIOPortSpan // port 1
	got := mc.ReadByte(base + isa.PIDROffset)
	if got != 0x04 {
		t.Fatalf("expected switch bit reflected in PIDR, got %#x", got)
	}
}

func TestUARTTransmitAppendsToLog(t *testing.T) {
	b := New()
	mc := memio.NewDefaultController()
	b.BindRegisters(mc)

	mc.WriteByte(isa.UARTBase+isa.UARTTDROffset, 'h')
	mc.WriteByte(isa.UARTBase+isa.UARTTDROffset, 'i')

	log := b.TXLog()
	if string(log) != "hi" {
		t.Fatalf("expected TX log 'hi', got %q", log)
	}
}

func TestUARTStatusAlwaysReadyToTransmit(t *testing.T) {
	b := New()
	mc := memio.NewDefaultController()
	b.BindRegisters(mc)

	if got := mc.ReadByte(isa.UARTBase + isa.UARTSSROffset); got&0x04 == 0 {
		t.Fatalf("expected TDRE bit set, got %#x", got)
	}
}

func TestTXLogWrapsAfterCapacity(t *testing.T) {
	b := New()
	mc := memio.NewDefaultController()
	b.BindRegisters(mc)

	for i := 0; i < txLogSize+5; i++ {
		mc.WriteByte(isa.UARTBase+isa.UARTTDROffset, byte(i))
	}
	log := b.TXLog()
	if len(log) != txLogSize {
		t.Fatalf("expected log capped at %d bytes, got %d", txLogSize, len(log))
	}
	if log[len(log)-1] != byte((txLogSize+4)%256) {
		t.Fatalf("expected most recent byte last, got %d", log[len(log)-1])
	}
}

func TestResetClearsLEDsSwitchesAndTXLog(t *testing.T) {
	b := New()
	mc := memio.NewDefaultController()
	b.BindRegisters(mc)

	mc.WriteByte(isa.GPIOBase+isa.PDROffset, 0xFF)
	mc.WriteByte(isa.GPIOBase+isa.PODROffset, 0xFF)
	mc.WriteByte(isa.UARTBase+isa.UARTTDROffset, 'x')
	b.SetSwitch(0, true)

	b.Reset()

	if b.LEDs() != 0 {
		t.Fatalf("expected LEDs cleared after reset")
	}
	if len(b.TXLog()) != 0 {
		t.Fatalf("expected TX log cleared after reset")
	}
}

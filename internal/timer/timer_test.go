package timer

import (
	"testing"

	"github.com/rxvm/rxvm/internal/intc"
	"github.com/rxvm/rxvm/internal/isa"
)

func TestCompareMatchNeverSkipped(t *testing.T) {
	ic := intc.NewController()
	ic.SetEnabled(28, true)
	ic.SetPriority(28, 1)

	c := NewController(ic, 28)
	ch := c.Channel(0, 0)
	ch.CMCOR = 1000
	ch.CMCR = 0 // divisor 8
	ch.InterruptEnabled = true
	c.Start(0, 0)

	c.Tick(8 * 1001)

	if ch.CMCNT != 0 {
		t.Fatalf("expected CMCNT to wrap to 0, got %d", ch.CMCNT)
	}
	if !ch.CompareMatch {
		t.Fatalf("expected compare match flag set")
	}
	v, _, ok := ic.HighestPendingEnabled()
	if !ok || v != 28 {
		t.Fatalf("expected vector 28 pending, got v=%d ok=%v", v, ok)
	}
}

func TestCMCNTNeverExceedsCMCOR(t *testing.T) {
	ic := intc.NewController()
	c := NewController(ic, 28)
	ch := c.Channel(0, 0)
	ch.CMCOR = 10
	ch.CMCR = 0
	c.Start(0, 0)

	for i := 0; i < 1000; i++ {
		c.Tick(3)
		if ch.CMCNT > ch.CMCOR {
			t.Fatalf("CMCNT exceeded CMCOR: %d > %d", ch.CMCNT, ch.CMCOR)
		}
	}
}

func TestCMCORZeroFiresEveryIncrement(t *testing.T) {
	ic := intc.NewController()
	ic.SetEnabled(28, true)
	c := NewController(ic, 28)
	ch := c.Channel(0, 0)
	ch.CMCOR = 0
	ch.CMCR = 0
	ch.InterruptEnabled = true
	c.Start(0, 0)

	c.Tick(8 * 5)
	if ch.CMCNT != 0 {
		t.Fatalf("expected CMCNT to stay at 0 with CMCOR=0, got %d", ch.CMCNT)
	}
	if !ch.CompareMatch {
		t.Fatalf("expected compare match with CMCOR=0")
	}
}

func TestStoppedChannelDoesNotAdvance(t *testing.T) {
	ic := intc.NewController()
	c := NewController(ic, 28)
	ch := c.Channel(0, 0)
	ch.CMCOR = 10
	c.Tick(800)
	if ch.CMCNT != 0 {
		t.Fatalf("stopped channel should not advance, CMCNT=%d", ch.CMCNT)
	}
}

func TestFrequency(t *testing.T) {
	ic := intc.NewController()
	c := NewController(ic, 28)
	ch := c.Channel(0, 0)
	ch.CMCR = 0 // divisor 8
	ch.CMCOR = 999
	got := ch.Frequency()
	want := uint32(60_000_000) / 8 / 1000
	if got != want {
		t.Fatalf("frequency mismatch: got %d want %d", got, want)
	}
}

func TestCMCRRegisterWriteSetsInterruptEnabled(t *testing.T) {
	ic := intc.NewController()
	c := NewController(ic, 28)
	ch := c.Channel(0, 0)
	w := registerWindow{c: c, unit: 0, channel: 0}
	base := isa.CMTBase

	w.WriteByte(base+isa.CMCROffset, 0x40) // bit 6 set: enable interrupt, divisor bits 0
	if !ch.InterruptEnabled {
		t.Fatalf("expected CMCR low-byte write with bit 6 set to enable the interrupt")
	}
	if ch.CMCR&0x3 != 0 {
		t.Fatalf("expected divisor bits unchanged, got CMCR=%#x", ch.CMCR)
	}

	w.WriteByte(base+isa.CMCROffset, 0x00) // clear bit 6 again
	if ch.InterruptEnabled {
		t.Fatalf("expected clearing bit 6 to disable the interrupt")
	}

	w.WriteByte(base+isa.CMCROffset+1, 0x00) // high byte write must not clobber the low-byte-derived flag
	if ch.InterruptEnabled {
		t.Fatalf("expected interrupt still disabled after unrelated high-byte write")
	}
}

func TestCMSTRStartsBothChannelsInUnit(t *testing.T) {
	ic := intc.NewController()
	c := NewController(ic, 28)
	w := registerWindow{c: c, unit: 0, channel: 0}
	base := isa.CMTBase
	w.WriteByte(base+isa.CMSTROffset, 0x3) // start both channels of unit 0 via low byte of CMSTR
	if !c.Units[0].Channels[0].Running || !c.Units[0].Channels[1].Running {
		t.Fatalf("expected both channels running after CMSTR write")
	}
}

package intc

import (
	"testing"

	"github.com/rxvm/rxvm/internal/isa"
)

func TestHighestPendingEnabledPicksMaxPriorityTieBreakLowestVector(t *testing.T) {
	c := NewController()
	c.SetEnabled(20, true)
	c.SetPriority(20, 5)
	c.Request(20)

	c.SetEnabled(30, true)
	c.SetPriority(30, 5)
	c.Request(30)

	c.SetEnabled(40, true)
	c.SetPriority(40, 7)
	c.Request(40)

	v, p, ok := c.HighestPendingEnabled()
	if !ok || v != 40 || p != 7 {
		t.Fatalf("expected vector 40 priority 7, got v=%d p=%d ok=%v", v, p, ok)
	}

	c.Acknowledge(40)
	v, _, ok = c.HighestPendingEnabled()
	if !ok || v != 20 {
		t.Fatalf("expected tie-break to vector 20, got v=%d ok=%v", v, ok)
	}
}

func TestDisabledSourceNeverChosen(t *testing.T) {
	c := NewController()
	c.SetPriority(50, 10)
	c.Request(50)
	if _, _, ok := c.HighestPendingEnabled(); ok {
		t.Fatalf("disabled source should not be selected")
	}
}

func TestNestStackIsLIFO(t *testing.T) {
	c := NewController()
	c.Acknowledge(10)
	c.Acknowledge(20)
	if c.NestDepth() != 2 {
		t.Fatalf("expected nest depth 2, got %d", c.NestDepth())
	}
	v, ok := c.Return()
	if !ok || v != 20 {
		t.Fatalf("expected LIFO return of 20, got %d ok=%v", v, ok)
	}
	v, ok = c.Return()
	if !ok || v != 10 {
		t.Fatalf("expected return of 10, got %d ok=%v", v, ok)
	}
	if _, ok := c.Return(); ok {
		t.Fatalf("expected empty nest stack")
	}
}

func TestIRClearAndRequest(t *testing.T) {
	c := NewController()
	c.Request(28)
	if !c.source(28).Pending {
		t.Fatalf("expected pending after request")
	}
	c.Clear(28)
	if c.source(28).Pending {
		t.Fatalf("expected cleared pending")
	}
}

func TestLazyMaterializationDefaultName(t *testing.T) {
	c := NewController()
	c.SetEnabled(200, true)
	s := c.source(200)
	if s.Name != "INT200" {
		t.Fatalf("expected default name INT200, got %q", s.Name)
	}
}

func TestResetClearsStateButKeepsSources(t *testing.T) {
	c := NewController()
	c.SetEnabled(28, true)
	c.SetPriority(28, 3)
	c.Request(28)
	c.Acknowledge(28)
	c.Reset()
	if c.NestDepth() != 0 {
		t.Fatalf("expected nest stack cleared")
	}
	s := c.source(28)
	if s.Enabled || s.Pending || s.Priority != 0 {
		t.Fatalf("expected state cleared, got %+v", s)
	}
}

func TestRegisterWindowsIERIPR(t *testing.T) {
	// Checks the IPR and IER window register math in isolation, without a
	// memory controller.
	c := NewController()
	w := iprWindow{c}
	w.WriteByte(isa.ICUBase+isa.ICUIPROffset+0, 9) // vector 0 priority 9
	if c.source(0).Priority != 9 {
		t.Fatalf("IPR write did not set priority")
	}

	ie := ierWindow{c}
	ie.WriteByte(isa.ICUBase+isa.ICUIEROffset+0, 0x81) // group 0: enable vectors 0 and 7
	if !c.source(0).Enabled || !c.source(7).Enabled {
		t.Fatalf("IER write did not enable expected bits")
	}
	if c.source(1).Enabled {
		t.Fatalf("IER write enabled unexpected bit")
	}
}

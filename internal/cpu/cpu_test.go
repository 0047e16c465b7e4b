package cpu

import (
	"testing"

	"github.com/rxvm/rxvm/internal/intc"
	"github.com/rxvm/rxvm/internal/isa"
	"github.com/rxvm/rxvm/internal/memio"
)

func newTestCPU() (*CPU, *memio.Controller, *intc.Controller) {
	mc := memio.NewDefaultController()
	ic := intc.NewController()
	c := New(mc, ic)
	c.Reset()
	c.Start()
	return c, mc, ic
}

func TestLiteralLoadAndArithmeticScenario(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	mc.Load(c.PC, []byte{0xFB, 0x01, 0x78, 0x56, 0x34, 0x12})

	c.Step()

	if c.R[1] != 0x12345678 {
		t.Fatalf("expected R1=0x12345678, got %#x", c.R[1])
	}
	if c.PC != 0xFFE00006 {
		t.Fatalf("expected PC=0xFFE00006, got %#x", c.PC)
	}
	s := c.Snapshot()
	if s.Z || s.S || s.C || s.O {
		t.Fatalf("expected all flags clear, got %+v", s)
	}
}

func TestADDWithFlagsScenario(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	c.R[1] = 0x100
	c.R[2] = 0x50
	mc.Load(c.PC, []byte{0x48, 0x21}) // ADD R2,R1

	c.Step()

	if c.R[1] != 0x150 || c.R[2] != 0x50 {
		t.Fatalf("unexpected registers R1=%#x R2=%#x", c.R[1], c.R[2])
	}
	s := c.Snapshot()
	if s.Z || s.S || s.C || s.O {
		t.Fatalf("expected all flags clear, got %+v", s)
	}
}

func TestPushPopRoundTripScenario(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	c.setSP(0x0003FFFC)
	c.R[1] = 0xDEADBEEF
	mc.Load(c.PC, []byte{0x7E, 0x01, 0x7F, 0x02}) // PUSH.L R1; POP R2

	c.Step()
	c.Step()

	if c.R[2] != 0xDEADBEEF {
		t.Fatalf("expected R2=0xDEADBEEF, got %#x", c.R[2])
	}
	if c.SP() != 0x0003FFFC {
		t.Fatalf("expected SP restored to 0x0003FFFC, got %#x", c.SP())
	}
	if mc.ReadWord(0x0003FFF8) != 0xDEADBEEF {
		t.Fatalf("expected memory at 0x0003FFF8 to hold pushed value")
	}
}

func TestBackwardBranchScenario(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	mc.Load(c.PC, []byte{0x38, 0xFE, 0xFF}) // BRA.W disp16=-2

	c.Step()

	if c.PC != 0xFFE00001 {
		t.Fatalf("expected PC=0xFFE00001, got %#x", c.PC)
	}
}

func TestGPIOWriteReadScenario(t *testing.T) {
	mc := memio.NewDefaultController()
	mc.WriteByte(0x0008C000, 0xFF)
	mc.WriteByte(0x0008C020, 0x55)
	if mc.ReadByte(0x0008C000) != 0xFF {
		t.Fatalf("unexpected readback at 0x0008C000")
	}
	if mc.ReadByte(0x0008C020) != 0x55 {
		t.Fatalf("unexpected readback at 0x0008C020")
	}
}

func TestTimerInterruptScenario(t *testing.T) {
	c, mc, ic := newTestCPU()
	ic.SetEnabled(28, true)
	ic.SetPriority(28, 1)
	c.setIPL(0)
	c.setFlag(isa.PSWBitI, true)

	handler := uint32(0xFFE01000)
	mc.WriteWord(isa.VectorTableBase+28*4, handler)

	ic.Request(28)

	c.PC = 0xFFE00000
	mc.Load(c.PC, []byte{0x03}) // NOP, never executed since interrupt preempts
	c.Step()

	if c.PC != handler {
		t.Fatalf("expected interrupt entry to jump to handler %#x, got %#x", handler, c.PC)
	}
	if c.IPL() != 1 {
		t.Fatalf("expected IPL raised to 1, got %d", c.IPL())
	}
	if c.flag(isa.PSWBitI) {
		t.Fatalf("expected PSW.I cleared on entry")
	}
}

func TestUndefinedInstructionFaultsAndHalts(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	mc.Load(c.PC, []byte{0xAA})

	c.Step()

	if c.State != StateException {
		t.Fatalf("expected EXCEPTION state, got %v", c.State)
	}
	if c.Fault == nil || c.Fault.Opcode != 0xAA || c.Fault.PC != 0xFFE00000 {
		t.Fatalf("unexpected fault: %+v", c.Fault)
	}
	before := c.PC
	c.Step()
	if c.PC != before {
		t.Fatalf("expected no further execution once in EXCEPTION state")
	}
}

func TestBreakpointHaltsBeforeExecuting(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	mc.Load(c.PC, []byte{0x03}) // NOP
	c.SetBreakpoint(0xFFE00000, true)

	c.Step()

	if c.State != StateStopped {
		t.Fatalf("expected STOPPED at breakpoint, got %v", c.State)
	}
	if c.PC != 0xFFE00000 {
		t.Fatalf("expected PC unchanged at breakpoint, got %#x", c.PC)
	}
}

func TestWaitSuspendsUntilInterrupt(t *testing.T) {
	c, mc, ic := newTestCPU()
	c.PC = 0xFFE00000
	c.setFlag(isa.PSWBitI, true)
	mc.Load(c.PC, []byte{0x76, 0x90})

	c.Step()
	if c.State != StateWaiting {
		t.Fatalf("expected WAITING after WAIT instruction, got %v", c.State)
	}

	c.Step()
	if c.State != StateWaiting {
		t.Fatalf("expected to remain WAITING with no pending interrupt")
	}

	ic.SetEnabled(28, true)
	ic.SetPriority(28, 1)
	ic.Request(28)
	mc.WriteWord(isa.VectorTableBase+28*4, 0xFFE02000)

	c.Step()
	if c.State != StateRunning {
		t.Fatalf("expected RUNNING after interrupt wakes from WAIT, got %v", c.State)
	}
	if c.PC != 0xFFE02000 {
		t.Fatalf("expected PC at handler after wake, got %#x", c.PC)
	}
}

func TestCMPImmediateSignExtension(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	c.R[1] = 5
	// CMP #imm,Rd : imm=0x8 (sign-extends to -8), rd=1
	mc.Load(c.PC, []byte{0x61, 0x81})

	c.Step()

	if c.R[1] != 5 {
		t.Fatalf("CMP must not modify the register, got %#x", c.R[1])
	}
	s := c.Snapshot()
	if !s.C {
		t.Fatalf("expected carry since 5 < -8 interpreted unsigned as huge value")
	}
}

func TestADDImmediateSignExtendsNegativeNibble(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	c.R[1] = 10
	// ADD #imm,Rd : imm=0x8 (-8), rd=1 => 10 + (-8) = 2
	mc.Load(c.PC, []byte{0x62, 0x81})

	c.Step()

	if c.R[1] != 2 {
		t.Fatalf("expected R1=2 after ADD #-8, got %d", int32(c.R[1]))
	}
}

func TestInterruptEntryThenRTERestoresPCAndPSW(t *testing.T) {
	c, mc, ic := newTestCPU()
	c.PC = 0xFFE00000
	c.setSP(0x0003FFF0)
	c.setFlag(isa.PSWBitZ, true)
	c.setFlag(isa.PSWBitC, true)
	c.setIPL(2)
	origPC, origPSW := c.PC, c.PSW

	ic.SetEnabled(28, true)
	ic.SetPriority(28, 3)
	ic.Request(28)
	mc.WriteWord(isa.VectorTableBase+28*4, 0xFFE02000)
	// Handler body: a single RTE (0x7D) at the vector target.
	mc.Load(0xFFE02000, []byte{isa.OpRTE})

	c.Step() // interrupt entry: pushes PSW then PC, clears I, raises IPL
	if c.PC != 0xFFE02000 {
		t.Fatalf("expected PC at handler after interrupt entry, got %#x", c.PC)
	}
	if c.flag(isa.PSWBitI) {
		t.Fatalf("expected PSW.I cleared on interrupt entry")
	}
	if c.IPL() != 3 {
		t.Fatalf("expected IPL raised to source priority 3, got %d", c.IPL())
	}

	c.Step() // executes RTE at the handler
	if c.PC != origPC {
		t.Fatalf("expected RTE to restore PC to %#x, got %#x", origPC, c.PC)
	}
	if c.PSW != origPSW {
		t.Fatalf("expected RTE to restore PSW to %#x, got %#x", origPSW, c.PSW)
	}
	if !c.flag(isa.PSWBitZ) || !c.flag(isa.PSWBitC) {
		t.Fatalf("expected Z and C flags restored by RTE")
	}
}

func TestRTEMasksReservedPSWBits(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	c.setSP(0x0003FFF0)
	mc.Load(c.PC, []byte{isa.OpRTE})
	// Stack layout for RTE: pop PC first, then PSW (mirrors pushWord
	// order in interrupt entry, where PSW is pushed before PC).
	mc.WriteWord(0x0003FFF0, 0xFFE03000) // PC
	mc.WriteWord(0x0003FFF4, 0xFFFFFFFF) // PSW with reserved bits 28..31 set

	c.Step()

	if c.PC != 0xFFE03000 {
		t.Fatalf("expected PC restored to %#x, got %#x", 0xFFE03000, c.PC)
	}
	if c.PSW&isa.PSWReserved != 0 {
		t.Fatalf("expected reserved PSW bits masked to 0 after RTE, got %#x", c.PSW)
	}
	s := c.Snapshot()
	if s.PSW&isa.PSWReserved != 0 {
		t.Fatalf("expected Snapshot to mask reserved PSW bits too, got %#x", s.PSW)
	}
}

func TestSETPSWAndCLRPSWPreserveUnaffectedBits(t *testing.T) {
	c, mc, _ := newTestCPU()
	c.PC = 0xFFE00000
	c.setFlag(isa.PSWBitC, true) // set an unrelated flag that SETPSW/CLRPSW must not disturb
	// SETPSW #f: 0xFD 0x72 f. Set the Z flag (FlagZ = 1).
	mc.Load(c.PC, []byte{isa.OpPSWPfx, isa.SecondSetPSW, isa.FlagZ})

	c.Step()

	if !c.flag(isa.PSWBitZ) {
		t.Fatalf("expected SETPSW to set the Z flag")
	}
	if !c.flag(isa.PSWBitC) {
		t.Fatalf("expected SETPSW to leave the unrelated C flag untouched")
	}
	if c.PC != 0xFFE00003 {
		t.Fatalf("expected PC advanced by 3 after SETPSW, got %#x", c.PC)
	}

	// CLRPSW #f: 0xFD 0x73 f. Clear the Z flag again, leaving C set.
	mc.Load(c.PC, []byte{isa.OpPSWPfx, isa.SecondClrPSW, isa.FlagZ})
	c.Step()

	if c.flag(isa.PSWBitZ) {
		t.Fatalf("expected CLRPSW to clear the Z flag")
	}
	if !c.flag(isa.PSWBitC) {
		t.Fatalf("expected CLRPSW to leave the unrelated C flag untouched")
	}

	s := c.Snapshot()
	if s.PSW&isa.PSWReserved != 0 {
		t.Fatalf("expected reserved PSW bits to read 0, got %#x", s.PSW)
	}
}

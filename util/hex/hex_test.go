package hex

import (
	"strings"
	"testing"
)

func TestFormatWord(t *testing.T) {
	var b strings.Builder
	FormatWord(&b, []uint32{0x12345678})
	if b.String() != "12345678 " {
		t.Fatalf("unexpected output %q", b.String())
	}
}

func TestFormatAddr(t *testing.T) {
	var b strings.Builder
	FormatAddr(&b, 0xFFE00000)
	if b.String() != "FFE00000" {
		t.Fatalf("unexpected output %q", b.String())
	}
}

func TestFormatBytesWithAndWithoutSpacing(t *testing.T) {
	var b strings.Builder
	FormatBytes(&b, true, []byte{0xDE, 0xAD})
	if b.String() != "DE AD " {
		t.Fatalf("unexpected spaced output %q", b.String())
	}
	b.Reset()
	FormatBytes(&b, false, []byte{0xDE, 0xAD})
	if b.String() != "DEAD" {
		t.Fatalf("unexpected unspaced output %q", b.String())
	}
}

func TestFormatByte(t *testing.T) {
	var b strings.Builder
	FormatByte(&b, 0x0F)
	if b.String() != "0F" {
		t.Fatalf("unexpected output %q", b.String())
	}
}

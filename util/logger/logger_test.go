package logger

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestHandlerWritesToFileAndFormatsMessage(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, &debug)
	logger := slog.New(h)

	logger.Info("started", "port", 8080)

	out := buf.String()
	if out == "" {
		t.Fatalf("expected output written to file")
	}
	if !bytes.Contains(buf.Bytes(), []byte("started")) {
		t.Fatalf("expected message in output, got %q", out)
	}
}

func TestSetDebugTogglesStderrEcho(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, &debug)
	h.SetDebug(&debug)
	if h.debug {
		t.Fatalf("expected debug false initially")
	}
	on := true
	h.SetDebug(&on)
	if !h.debug {
		t.Fatalf("expected debug true after SetDebug(true)")
	}
}

package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLimiterOncePerKey(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lim := NewLimiter(zap.New(core))

	if !lim.Warn("pool", "pool exhausted") {
		t.Fatal("first Warn should be written")
	}
	for i := 0; i < 5; i++ {
		if lim.Warn("pool", "pool exhausted") {
			t.Fatal("repeated Warn should be suppressed")
		}
	}
	if got := lim.Suppressed("pool"); got != 5 {
		t.Errorf("Suppressed() = %d, want 5", got)
	}
	if !lim.Warn("other", "different key") {
		t.Error("a different key should not be suppressed")
	}

	lim.Reset("pool")
	if !lim.Warn("pool", "pool exhausted") {
		t.Fatal("Warn after Reset should be written")
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	last := entries[2].ContextMap()
	if got, ok := last["suppressed"]; !ok || got != int64(5) {
		t.Errorf("expected suppressed=5 on re-armed entry, got %v", last)
	}
}

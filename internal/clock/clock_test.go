package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := NewFixed(start)

	if got := clk.Now(); !got.Equal(start) {
		t.Fatalf("expected %v, got %v", start, got)
	}

	clk.Advance(90 * time.Second)
	if got := clk.Now(); !got.Equal(start.Add(90 * time.Second)) {
		t.Fatalf("expected %v, got %v", start.Add(90*time.Second), got)
	}
}

func TestSystemIsUTC(t *testing.T) {
	t.Parallel()

	if loc := NewSystem().Now().Location(); loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}

package clock

import "testing"

func TestMonotonicNeverDecreases(t *testing.T) {
	c := NewMonotonic()
	prev := c.Elapsed()
	for range 1000 {
		now := c.Elapsed()
		if now < prev {
			t.Fatalf("elapsed went backwards: %v after %v", now, prev)
		}
		prev = now
	}
}

func TestManualIgnoresRollback(t *testing.T) {
	c := NewManual(2)
	c.Advance(-1)
	c.Set(1)
	if got := c.Elapsed(); got != 2 {
		t.Fatalf("expected clock to stay at 2, got %v", got)
	}

	c.Advance(0.5)
	if got := c.Elapsed(); got != 2.5 {
		t.Fatalf("expected 2.5 after advance, got %v", got)
	}
	c.Set(4)
	if got := c.Elapsed(); got != 4 {
		t.Fatalf("expected 4 after set, got %v", got)
	}
}

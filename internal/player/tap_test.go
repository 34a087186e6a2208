package player

import "testing"

func TestTapLatestReturnsMostRecentSamples(t *testing.T) {
	tap := NewTap(2) // four samples
	tap.Write(pcm16(1, 2, 3, 4))
	tap.Write(pcm16(5, 6))

	dst := make([]int16, 4)
	if n := tap.Latest(dst); n != 4 {
		t.Fatalf("expected 4 samples, got %d", n)
	}
	want := []int16{3, 4, 5, 6}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestTapKeepsOddByteForNextWrite(t *testing.T) {
	tap := NewTap(4)
	raw := pcm16(100, -200)
	tap.Write(raw[:3])
	tap.Write(raw[3:])

	dst := make([]int16, 2)
	if n := tap.Latest(dst); n != 2 {
		t.Fatalf("expected 2 samples, got %d", n)
	}
	if dst[0] != 100 || dst[1] != -200 {
		t.Fatalf("unexpected samples %v", dst)
	}
}

func TestTapPartialFillAndClear(t *testing.T) {
	tap := NewTap(8)
	tap.Write(pcm16(7, 8))

	dst := make([]int16, 16)
	if n := tap.Latest(dst); n != 2 {
		t.Fatalf("expected 2 samples before fill, got %d", n)
	}
	tap.Clear()
	if n := tap.Latest(dst); n != 0 {
		t.Fatalf("expected empty tap after clear, got %d", n)
	}
}

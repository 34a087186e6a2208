package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Second:                          "0:00",
		0:                                     "0:00",
		59*time.Second + 900*time.Millisecond: "0:59",
		3*time.Minute + 7*time.Second:         "3:07",
		time.Hour + 2*time.Minute + 3*time.Second: "1:02:03",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

package clock

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := NewFakeClock(start)

	if !clk.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", clk.Now(), start)
	}

	clk.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if !clk.Now().Equal(want) {
		t.Errorf("after Advance, Now() = %v, want %v", clk.Now(), want)
	}
}

func TestRunStamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	clk := NewFakeClock(time.Date(2024, 3, 1, 14, 5, 9, 0, loc))

	if got, want := RunStamp(clk), "20240301-120509"; got != want {
		t.Errorf("RunStamp() = %q, want %q", got, want)
	}
}

func TestRunStamp_SortsChronologically(t *testing.T) {
	clk := NewFakeClock(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC))
	earlier := RunStamp(clk)
	clk.Advance(time.Second)
	later := RunStamp(clk)

	if earlier >= later {
		t.Errorf("expected %q < %q", earlier, later)
	}
}

package calendar

import (
	"testing"
	"time"

	apperrors "slotbook/pkg/errors"
)

func day(hour, minute int) time.Time {
	return time.Date(2025, time.March, 3, hour, minute, 0, 0, time.UTC)
}

func TestSlotStarts_GridWithinWorkingWindow(t *testing.T) {
	// Mon 09:00-18:00, 60 min service on a 30 min grid: first slot 09:00,
	// last slot 17:00 (ends exactly at 18:00).
	seq, err := SlotStarts(day(9, 0), day(18, 0), 60*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var starts []time.Time
	for s := range seq {
		starts = append(starts, s)
	}

	if len(starts) != 17 {
		t.Fatalf("expected 17 slots, got %d", len(starts))
	}
	if !starts[0].Equal(day(9, 0)) {
		t.Errorf("first slot: expected 09:00, got %s", starts[0])
	}
	if !starts[len(starts)-1].Equal(day(17, 0)) {
		t.Errorf("last slot: expected 17:00, got %s", starts[len(starts)-1])
	}
	for _, s := range starts {
		if s.Add(60 * time.Minute).After(day(18, 0)) {
			t.Errorf("slot %s runs past day end", s)
		}
	}
}

func TestSlotStarts_Restartable(t *testing.T) {
	seq, err := SlotStarts(day(9, 0), day(11, 0), 30*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first == 0 || first != second {
		t.Errorf("sequence not restartable: first pass %d, second pass %d", first, second)
	}
}

func TestSlotStarts_EarlyBreak(t *testing.T) {
	seq, err := SlotStarts(day(9, 0), day(18, 0), 30*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for range seq {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("expected to stop after 3 slots, got %d", count)
	}
}

func TestSlotStarts_InvalidInputs(t *testing.T) {
	tests := []struct {
		name     string
		dayStart time.Time
		dayEnd   time.Time
		duration time.Duration
		step     time.Duration
		wantCode string
	}{
		{"zero duration", day(9, 0), day(18, 0), 0, 30 * time.Minute, apperrors.CodeInvalidDuration},
		{"negative duration", day(9, 0), day(18, 0), -time.Minute, 30 * time.Minute, apperrors.CodeInvalidDuration},
		{"zero step", day(9, 0), day(18, 0), 30 * time.Minute, 0, apperrors.CodeInvalidDuration},
		{"end before start", day(18, 0), day(9, 0), 30 * time.Minute, 30 * time.Minute, apperrors.CodeInvalidInterval},
		{"end equals start", day(9, 0), day(9, 0), 30 * time.Minute, 30 * time.Minute, apperrors.CodeInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SlotStarts(tt.dayStart, tt.dayEnd, tt.duration, tt.step)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"disjoint before", day(9, 0), day(10, 0), day(10, 0), day(11, 0), false},
		{"disjoint after", day(11, 0), day(12, 0), day(10, 0), day(11, 0), false},
		{"partial overlap", day(9, 30), day(10, 30), day(10, 0), day(11, 0), true},
		{"contained", day(10, 15), day(10, 45), day(10, 0), day(11, 0), true},
		{"containing", day(9, 0), day(12, 0), day(10, 0), day(11, 0), true},
		{"identical", day(10, 0), day(11, 0), day(10, 0), day(11, 0), true},
		{"touching boundaries only", day(8, 0), day(9, 0), day(9, 0), day(10, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyBuffers(t *testing.T) {
	start, end := ApplyBuffers(day(10, 0), day(11, 0), 10*time.Minute, 15*time.Minute)
	if !start.Equal(day(9, 50)) {
		t.Errorf("buffered start: expected 09:50, got %s", start)
	}
	if !end.Equal(day(11, 15)) {
		t.Errorf("buffered end: expected 11:15, got %s", end)
	}

	start, end = ApplyBuffers(day(10, 0), day(11, 0), 0, 0)
	if !start.Equal(day(10, 0)) || !end.Equal(day(11, 0)) {
		t.Error("zero buffers must leave the interval unchanged")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in       string
		hour     int
		minute   int
		wantErr  bool
	}{
		{"09:00", 9, 0, false},
		{"18:30", 18, 30, false},
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"09:60", 0, 0, true},
		{"nine", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		h, m, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if h != tt.hour || m != tt.minute {
			t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.hour, tt.minute)
		}
	}
}

func TestAt(t *testing.T) {
	date := time.Date(2025, time.March, 3, 14, 45, 12, 0, time.UTC)
	got, err := At(date, "09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(day(9, 30)) {
		t.Errorf("At = %s, want %s", got, day(9, 30))
	}

	if _, err := At(date, "25:00"); err == nil {
		t.Error("expected error for out-of-range clock")
	}
}

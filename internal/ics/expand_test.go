package ics

import (
	"testing"
	"time"
)

func TestExpandSingleEventInsideWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:     "single-1",
		Summary: "training",
		AllDay:  true,
		Start:   start,
		End:     start.Add(4 * 24 * time.Hour),
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occs))
	}
	if occs[0].ID != "single-1" {
		t.Errorf("ID = %q, a non-recurring event keeps its UID", occs[0].ID)
	}
	if !occs[0].Start.Equal(start) {
		t.Errorf("Start = %v", occs[0].Start)
	}
}

func TestExpandSingleEventOutsideWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:   "old-1",
		Start: start,
		End:   start.Add(24 * time.Hour),
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 0 {
		t.Fatalf("got %d occurrences, want 0", len(occs))
	}
}

func TestExpandRecurringAppliesExdate(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	excluded := start.Add(24 * time.Hour)
	events := []ParsedEvent{{
		UID:      "rec-1",
		Summary:  "daily",
		Start:    start,
		End:      start.Add(3 * time.Hour),
		RawRRule: "FREQ=DAILY;COUNT=3",
		ExDates:  []time.Time{excluded},
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(occs))
	}
	if occs[0].ID != "rec-1_20260302T090000Z" {
		t.Errorf("occurrence id = %q", occs[0].ID)
	}
	for _, occ := range occs {
		if occ.Start.Equal(excluded) {
			t.Errorf("excluded occurrence %v was emitted", occ.Start)
		}
		if got := occ.End.Sub(occ.Start); got != 3*time.Hour {
			t.Errorf("occurrence duration = %v, want 3h", got)
		}
	}
}

func TestExpandAppliesOverride(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	overridden := start.Add(24 * time.Hour)
	movedTo := overridden.Add(2 * time.Hour)
	events := []ParsedEvent{
		{
			UID:      "rec-1",
			Summary:  "daily",
			Start:    start,
			End:      start.Add(3 * time.Hour),
			RawRRule: "FREQ=DAILY;COUNT=2",
		},
		{
			UID:        "rec-1",
			Summary:    "daily (moved)",
			Start:      movedTo,
			End:        movedTo.Add(3 * time.Hour),
			Recurrence: &overridden,
		},
	}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(occs))
	}
	second := occs[1]
	if second.Summary != "daily (moved)" {
		t.Errorf("override summary not applied: %q", second.Summary)
	}
	if !second.Start.Equal(movedTo) {
		t.Errorf("override start not applied: %v", second.Start)
	}
}

func TestExpandRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	_, err := Expand(nil, ExpandConfig{
		RangeStart: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("expected an error for an inverted range")
	}
}

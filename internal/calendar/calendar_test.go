package calendar

import (
	"errors"
	"testing"

	"invoicez/internal/model"
)

const testPattern = `^(?P<continuation>-> )?(?P<company>[^-]+) - (?P<training>[^-]+) - (?P<place>[^-]+?)(?: - (?P<extra>.+))?$`

func TestEventsFromRawSkipsAndSorts(t *testing.T) {
	t.Parallel()

	pattern, err := model.CompilePattern(testPattern)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}

	raws := []model.RawEvent{
		{
			ID:      "later",
			Summary: "ACME - Go Basics - Paris",
			Start:   model.RawEventTime{Date: "2026-03-09"},
			End:     model.RawEventTime{Date: "2026-03-10"},
		},
		{
			ID:      "noise",
			Summary: "Dentist appointment",
			Start:   model.RawEventTime{Date: "2026-03-04"},
			End:     model.RawEventTime{Date: "2026-03-05"},
		},
		{
			ID:      "earlier",
			Summary: "ACME - Go Basics - Paris",
			Start:   model.RawEventTime{Date: "2026-03-02"},
			End:     model.RawEventTime{Date: "2026-03-03"},
		},
	}

	events, err := EventsFromRaw(raws, pattern)
	if err != nil {
		t.Fatalf("EventsFromRaw: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != "earlier" || events[1].ID != "later" {
		t.Errorf("events not sorted by start: %s, %s", events[0].ID, events[1].ID)
	}
	if events[0].Company != "acme" {
		t.Errorf("Company = %q", events[0].Company)
	}
}

func TestEventsFromRawPropagatesDurationError(t *testing.T) {
	t.Parallel()

	pattern, err := model.CompilePattern(testPattern)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}

	raws := []model.RawEvent{{
		ID:      "odd",
		Summary: "ACME - Go Basics - Paris",
		Start:   model.RawEventTime{DateTime: "2026-03-02T09:00:00Z"},
		End:     model.RawEventTime{DateTime: "2026-03-02T14:00:00Z"},
	}}

	_, err = EventsFromRaw(raws, pattern)
	if err == nil {
		t.Fatal("expected an UnsupportedDurationError")
	}
	var durationErr *model.UnsupportedDurationError
	if !errors.As(err, &durationErr) {
		t.Fatalf("got %T, want *model.UnsupportedDurationError", err)
	}
	if durationErr.Raw.ID != "odd" {
		t.Errorf("error carries event %q, want %q", durationErr.Raw.ID, "odd")
	}
}

package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoicez/internal/config"
	"invoicez/internal/model"
)

func TestICSListEvents(t *testing.T) {
	t.Parallel()

	feed := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:training-1\r\n" +
		"SUMMARY:ACME - Go Basics - Paris\r\n" +
		"DESCRIPTION:ref: REF1\r\n" +
		"DTSTART;VALUE=DATE:20260302\r\n" +
		"DTEND;VALUE=DATE:20260306\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer server.Close()

	paths, err := config.NewPaths(t.TempDir())
	if err != nil {
		t.Fatalf("NewPaths: %v", err)
	}
	settings := &config.Settings{
		TitlePattern: testPattern,
		Calendar: config.CalendarSettings{
			Backend: config.BackendICS,
			ICSURL:  server.URL,
		},
	}
	settings.StartDate, _ = model.ParseDate("2026-01-01")

	backend, err := NewICS(paths, settings)
	if err != nil {
		t.Fatalf("NewICS: %v", err)
	}
	events, err := backend.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.ID != "training-1" {
		t.Errorf("ID = %q", ev.ID)
	}
	if ev.Duration != (model.Duration{N: 4, Unit: model.UnitDay}) {
		t.Errorf("Duration = %+v", ev.Duration)
	}
	if ev.Description != "ref: REF1" {
		t.Errorf("Description = %q", ev.Description)
	}

	if err := backend.EditEventDescription(context.Background(), "training-1", "x"); err == nil {
		t.Error("the ics backend should refuse description edits")
	}
}

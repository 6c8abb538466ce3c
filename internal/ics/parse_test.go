package ics

import (
	"strings"
	"testing"
	"time"
)

const allDayFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:single-1\r\n" +
	"SUMMARY:ACME - Go - Paris\r\n" +
	"DESCRIPTION:ref: REF1\\nsecond line\r\n" +
	"DTSTART;VALUE=DATE:20260302\r\n" +
	"DTEND;VALUE=DATE:20260306\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseAllDayEvent(t *testing.T) {
	t.Parallel()

	events, err := Parse([]byte(allDayFeed))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.UID != "single-1" {
		t.Errorf("UID = %q", ev.UID)
	}
	if !ev.AllDay {
		t.Error("event should be all-day")
	}
	if ev.Summary != "ACME - Go - Paris" {
		t.Errorf("Summary = %q", ev.Summary)
	}
	if ev.Description != "ref: REF1\nsecond line" {
		t.Errorf("Description = %q", ev.Description)
	}
	if got := ev.Start.Format("2006-01-02"); got != "2026-03-02" {
		t.Errorf("Start = %s", got)
	}
	if got := ev.End.Format("2006-01-02"); got != "2026-03-06" {
		t.Errorf("End = %s", got)
	}
}

func TestParseSkipsEventWithoutUID(t *testing.T) {
	t.Parallel()

	feed := strings.Replace(allDayFeed, "UID:single-1\r\n", "", 1)
	events, err := Parse([]byte(feed))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0", len(events))
	}
}

func TestParseEmptyBody(t *testing.T) {
	t.Parallel()

	if _, err := Parse(nil); err == nil {
		t.Fatal("expected an error for an empty body")
	}
}

func TestParseRecurringEvent(t *testing.T) {
	t.Parallel()

	feed := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:rec-1\r\n" +
		"SUMMARY:weekly\r\n" +
		"DTSTART:20260302T090000Z\r\n" +
		"DTEND:20260302T120000Z\r\n" +
		"RRULE:FREQ=DAILY;COUNT=3\r\n" +
		"EXDATE:20260303T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := Parse([]byte(feed))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.AllDay {
		t.Error("timed event flagged all-day")
	}
	if ev.RawRRule != "FREQ=DAILY;COUNT=3" {
		t.Errorf("RawRRule = %q", ev.RawRRule)
	}
	if len(ev.ExDates) != 1 {
		t.Fatalf("got %d exdates, want 1", len(ev.ExDates))
	}
	want := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	if !ev.ExDates[0].Equal(want) {
		t.Errorf("ExDates[0] = %v, want %v", ev.ExDates[0], want)
	}
}

package model

import (
	"regexp"
	"strings"
	"time"
)

// RawEventTime is one endpoint of a raw calendar event. Exactly one of
// Date ("2006-01-02", all-day) or DateTime (RFC3339) is set, and both
// endpoints of an event must use the same representation.
type RawEventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

// RawEvent is the wire shape every calendar backend produces. It mirrors
// the Google Calendar event resource closely enough that fixture files
// recorded from the real API replay unchanged.
type RawEvent struct {
	ID          string       `json:"id"`
	Summary     string       `json:"summary"`
	Description string       `json:"description,omitempty"`
	HTMLLink    string       `json:"htmlLink"`
	Start       RawEventTime `json:"start"`
	End         RawEventTime `json:"end"`
}

// Event is one normalized calendar occurrence. Constructed once per raw
// event by EventFromRaw, immutable afterwards, discarded after merging.
type Event struct {
	Continuation bool
	Company      string
	Training     string
	Place        string
	Extra        string
	Description  string
	Link         string
	ID           string
	Start        time.Time
	Duration     Duration
}

// EventFromRaw normalizes a raw calendar event. It returns (nil, nil)
// when the summary does not match the title pattern, and an
// UnsupportedDurationError when the start/end delta is neither an exact
// multiple of 24 hours nor of 3 hours. This is a strict gate: no
// rounding, no tolerance window.
func EventFromRaw(raw RawEvent, pattern *regexp.Regexp) (*Event, error) {
	title := ParseTitle(raw.Summary, pattern)
	if title == nil {
		return nil, nil
	}

	start, duration, err := processDates(raw)
	if err != nil {
		return nil, err
	}

	return &Event{
		Continuation: title.Continuation,
		Company:      title.Company,
		Training:     title.Training,
		Place:        title.Place,
		Extra:        title.Extra,
		Description:  strings.TrimSpace(raw.Description),
		Link:         raw.HTMLLink,
		ID:           raw.ID,
		Start:        start,
		Duration:     duration,
	}, nil
}

func processDates(raw RawEvent) (time.Time, Duration, error) {
	var start, end time.Time
	var err error

	switch {
	case raw.Start.DateTime != "" && raw.End.DateTime != "":
		start, err = time.Parse(time.RFC3339, raw.Start.DateTime)
		if err == nil {
			end, err = time.Parse(time.RFC3339, raw.End.DateTime)
		}
	case raw.Start.Date != "" && raw.End.Date != "":
		start, err = time.ParseInLocation("2006-01-02", raw.Start.Date, time.UTC)
		if err == nil {
			end, err = time.ParseInLocation("2006-01-02", raw.End.Date, time.UTC)
		}
	default:
		return time.Time{}, Duration{}, &UnsupportedDurationError{
			Raw:    raw,
			Reason: "start and end must both carry a date or both carry a dateTime",
		}
	}
	if err != nil {
		return time.Time{}, Duration{}, &UnsupportedDurationError{
			Raw:    raw,
			Reason: err.Error(),
		}
	}

	delta := end.Sub(start)
	if delta <= 0 {
		return time.Time{}, Duration{}, &UnsupportedDurationError{
			Raw:    raw,
			Reason: "end is not after start",
		}
	}

	switch {
	case delta%(24*time.Hour) == 0:
		return start, Duration{N: int(delta / (24 * time.Hour)), Unit: UnitDay}, nil
	case delta%(3*time.Hour) == 0:
		return start, Duration{N: int(delta / (3 * time.Hour)), Unit: UnitHalfDay}, nil
	default:
		return time.Time{}, Duration{}, &UnsupportedDurationError{
			Raw:    raw,
			Reason: "no support for durations that are not full days or 3 hours (half a day)",
		}
	}
}

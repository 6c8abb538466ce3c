// Package calendar abstracts the remote calendar the pipeline
// synchronizes from. Three implementations exist: the Google Calendar
// API, a read-only ICS subscription, and a fixture file used by tests
// and event replay.
package calendar

import (
	"context"
	"regexp"
	"sort"

	"invoicez/internal/config"
	"invoicez/internal/model"
	"invoicez/internal/prompt"
)

// Calendar is the capability surface the pipeline consumes. A session
// is constructed once by the composition root and passed down; there is
// no hidden shared state.
type Calendar interface {
	// ListEvents returns the normalized, start-ordered events whose
	// titles match the configured pattern.
	ListEvents(ctx context.Context) ([]model.Event, error)
	// ListRawEvents returns every event of the selected calendar, fully
	// paginated.
	ListRawEvents(ctx context.Context) ([]model.RawEvent, error)
	// EditEventDescription replaces an event's description upstream.
	EditEventDescription(ctx context.Context, eventID, newDescription string) error
	// SelectCalendar interactively picks which calendar to operate on,
	// for backends that host more than one.
	SelectCalendar(ctx context.Context) error
}

// New builds the backend selected by the settings.
func New(ctx context.Context, paths *config.Paths, settings *config.Settings, prompter prompt.Prompter) (Calendar, error) {
	switch settings.Calendar.Backend {
	case config.BackendICS:
		return NewICS(paths, settings)
	default:
		return NewGoogle(ctx, paths, settings, prompter)
	}
}

// EventsFromRaw normalizes raw events against the title pattern,
// silently skipping non-matching titles, and sorts the result by start
// time, the order the merger requires.
func EventsFromRaw(raws []model.RawEvent, pattern *regexp.Regexp) ([]model.Event, error) {
	events := make([]model.Event, 0, len(raws))
	for _, raw := range raws {
		event, err := model.EventFromRaw(raw, pattern)
		if err != nil {
			return nil, err
		}
		if event == nil {
			continue
		}
		events = append(events, *event)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

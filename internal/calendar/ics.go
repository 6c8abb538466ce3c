package calendar

import (
	"context"
	"errors"
	"regexp"
	"time"

	"invoicez/internal/config"
	"invoicez/internal/ics"
	"invoicez/internal/model"
)

// icsExpandHorizon is how far past now recurring events are expanded.
const icsExpandHorizon = 365 * 24 * time.Hour

// ICS is the read-only backend over an ICS subscription feed. Editing
// event descriptions is not possible through an ICS feed, so runs
// against this backend must get billing hints from the feed itself.
type ICS struct {
	url     string
	fetcher *ics.Fetcher
	pattern *regexp.Regexp
	// rangeStart anchors recurrence expansion; the configured billing
	// cutoff when set, one horizon back from now otherwise.
	rangeStart time.Time
}

// NewICS builds the ics backend from the settings.
func NewICS(paths *config.Paths, settings *config.Settings) (*ICS, error) {
	pattern, err := model.CompilePattern(settings.TitlePattern)
	if err != nil {
		return nil, err
	}
	var rangeStart time.Time
	if !settings.StartDate.IsZero() {
		rangeStart = settings.StartDate.Time
	}
	return &ICS{
		url:        settings.Calendar.ICSURL,
		fetcher:    ics.NewFetcher(paths.ICSCacheDir),
		pattern:    pattern,
		rangeStart: rangeStart,
	}, nil
}

func (c *ICS) ListEvents(ctx context.Context) ([]model.Event, error) {
	raws, err := c.ListRawEvents(ctx)
	if err != nil {
		return nil, err
	}
	return EventsFromRaw(raws, c.pattern)
}

func (c *ICS) ListRawEvents(ctx context.Context) ([]model.RawEvent, error) {
	body, _, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return nil, err
	}
	parsed, err := ics.Parse(body)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rangeStart := c.rangeStart
	if rangeStart.IsZero() {
		rangeStart = now.Add(-icsExpandHorizon)
	}
	occurrences, err := ics.Expand(parsed, ics.ExpandConfig{
		RangeStart: rangeStart,
		RangeEnd:   now.Add(icsExpandHorizon),
	})
	if err != nil {
		return nil, err
	}

	raws := make([]model.RawEvent, 0, len(occurrences))
	for _, occ := range occurrences {
		raws = append(raws, rawFromOccurrence(occ))
	}
	return raws, nil
}

// EditEventDescription always fails: an ICS subscription cannot be
// written to.
func (c *ICS) EditEventDescription(ctx context.Context, eventID, newDescription string) error {
	return errors.New("the ics backend is read-only: edit the event in its source calendar instead")
}

// SelectCalendar is a no-op: an ICS feed is a single calendar.
func (c *ICS) SelectCalendar(ctx context.Context) error {
	return nil
}

func rawFromOccurrence(occ ics.Occurrence) model.RawEvent {
	raw := model.RawEvent{
		ID:          occ.ID,
		Summary:     occ.Summary,
		Description: occ.Description,
	}
	if occ.AllDay {
		raw.Start = model.RawEventTime{Date: occ.Start.Format("2006-01-02")}
		raw.End = model.RawEventTime{Date: occ.End.Format("2006-01-02")}
	} else {
		raw.Start = model.RawEventTime{DateTime: occ.Start.Format(time.RFC3339)}
		raw.End = model.RawEventTime{DateTime: occ.End.Format(time.RFC3339)}
	}
	return raw
}

package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"invoicez/internal/model"
)

// Fixture replays a JSON file of raw events, as written by the
// dump-events command. It backs tests and offline reproduction of a
// sync run.
type Fixture struct {
	path    string
	pattern *regexp.Regexp
}

// NewFixture builds a fixture session over the given raw-events file.
func NewFixture(path, titlePattern string) (*Fixture, error) {
	pattern, err := model.CompilePattern(titlePattern)
	if err != nil {
		return nil, err
	}
	return &Fixture{path: path, pattern: pattern}, nil
}

func (f *Fixture) ListEvents(ctx context.Context) ([]model.Event, error) {
	raws, err := f.ListRawEvents(ctx)
	if err != nil {
		return nil, err
	}
	return EventsFromRaw(raws, f.pattern)
}

func (f *Fixture) ListRawEvents(ctx context.Context) ([]model.RawEvent, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var raws []model.RawEvent
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", f.path, err)
	}
	return raws, nil
}

// EditEventDescription rewrites the matching event inside the fixture
// file, mirroring what the live backends do upstream.
func (f *Fixture) EditEventDescription(ctx context.Context, eventID, newDescription string) error {
	raws, err := f.ListRawEvents(ctx)
	if err != nil {
		return err
	}
	found := false
	for i := range raws {
		if raws[i].ID == eventID {
			raws[i].Description = newDescription
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no event %q in %s", eventID, f.path)
	}
	data, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return err
	}
	return model.WriteFileAtomic(f.path, data)
}

// SelectCalendar is a no-op: a fixture file is a single calendar.
func (f *Fixture) SelectCalendar(ctx context.Context) error {
	return nil
}

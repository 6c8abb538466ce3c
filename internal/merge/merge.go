// Package merge folds a time-ordered sequence of calendar events into
// logical training sessions, attaching continuation events to the root
// event that opened their key.
package merge

import (
	"fmt"
	"sort"
	"time"

	"invoicez/internal/model"
)

// OrphanContinuationError reports a continuation event with no root
// event under its key. Fatal: it indicates the calendar lost or renamed
// a root after its continuations were created.
type OrphanContinuationError struct {
	Event model.Event
}

func (e *OrphanContinuationError) Error() string {
	return fmt.Sprintf("found follow-up event %s (%s · %s · %s @ %s) without root event",
		e.Event.ID, e.Event.Company, e.Event.Training, e.Event.Place,
		e.Event.Start.Format("2006-01-02"))
}

// key identifies a merge accumulator.
type key struct {
	company  string
	training string
	place    string
	extra    string
}

// Merge folds events into MergedEvents.
//
// Contract: events MUST be ordered by start time; the caller (the
// calendar layer) sorts them before merging. A root event closes any
// accumulator already open under its key and opens a fresh one; a
// continuation appends its start and duration to the open accumulator
// for its key, in input order.
//
// The output is sorted ascending by each record's earliest start
// (computed explicitly, since continuation appends need not be
// chronological), stable on input order for ties.
func Merge(events []model.Event) ([]model.MergedEvent, error) {
	open := make(map[key]*model.MergedEvent)
	var openOrder []key
	var closed []*model.MergedEvent

	for _, event := range events {
		k := key{event.Company, event.Training, event.Place, event.Extra}
		if event.Continuation {
			acc, ok := open[k]
			if !ok {
				return nil, &OrphanContinuationError{Event: event}
			}
			acc.Starts = append(acc.Starts, event.Start)
			acc.Durations = append(acc.Durations, event.Duration)
			continue
		}
		if acc, ok := open[k]; ok {
			closed = append(closed, acc)
		} else {
			openOrder = append(openOrder, k)
		}
		open[k] = &model.MergedEvent{
			Company:     event.Company,
			Training:    event.Training,
			Place:       event.Place,
			Extra:       event.Extra,
			Description: event.Description,
			Link:        event.Link,
			ID:          event.ID,
			Starts:      []time.Time{event.Start},
			Durations:   []model.Duration{event.Duration},
		}
	}

	// Flush still-open accumulators in key-insertion order so that the
	// final stable sort keeps a deterministic order for equal starts.
	for _, k := range openOrder {
		closed = append(closed, open[k])
	}

	out := make([]model.MergedEvent, 0, len(closed))
	for _, acc := range closed {
		out = append(out, *acc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EarliestStart().Before(out[j].EarliestStart())
	})
	return out, nil
}

package model

import (
	"fmt"
	"time"
)

// MergedEvent is one logical training session, possibly spanning several
// calendar dates after continuations have been folded into their root.
// Identity fields (Company, Training, Place, Description, Link, ID) come
// from the root event; Starts and Durations are index-aligned.
type MergedEvent struct {
	Company     string
	Training    string
	Place       string
	Extra       string
	Description string
	Link        string
	ID          string
	Starts      []time.Time
	Durations   []Duration
}

func (m MergedEvent) String() string {
	return fmt.Sprintf("<%s · %s · %s · %s>",
		m.Company, m.Training, m.Place, m.EarliestStart().Format("2006-01-02"))
}

// EarliestStart returns the minimum of Starts. Continuations are appended
// in input order, so index 0 is not trusted to be the earliest entry.
func (m MergedEvent) EarliestStart() time.Time {
	var earliest time.Time
	for i, start := range m.Starts {
		if i == 0 || start.Before(earliest) {
			earliest = start
		}
	}
	return earliest
}

// LatestEnd returns the maximum of start+duration across all entries,
// i.e. the moment the session is over and billable.
func (m MergedEvent) LatestEnd() time.Time {
	var latest time.Time
	for i, start := range m.Starts {
		end := start.Add(m.Durations[i].Timedelta())
		if i == 0 || end.After(latest) {
			latest = end
		}
	}
	return latest
}

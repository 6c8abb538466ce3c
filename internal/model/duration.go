package model

import "time"

// DurationUnit is the billing granularity of a session day.
type DurationUnit string

const (
	UnitDay     DurationUnit = "day"
	UnitHalfDay DurationUnit = "half-day"
)

// Duration is a count of whole days or half-days. A half-day is a 3-hour
// block; anything that is not an exact multiple of one of the two units
// is rejected at normalization time.
type Duration struct {
	N    int          `yaml:"n" json:"n"`
	Unit DurationUnit `yaml:"unit" json:"unit"`
}

// Timedelta returns the wall-clock span of the duration: 24h per day,
// 3h per half-day.
func (d Duration) Timedelta() time.Duration {
	hours := 24
	if d.Unit == UnitHalfDay {
		hours = 3
	}
	return time.Duration(d.N*hours) * time.Hour
}

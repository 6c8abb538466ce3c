package model

import (
	"fmt"
	"strings"
)

// ConfigError reports malformed or incomplete configuration, such as a
// title pattern without the required capture groups or a training that
// references a rate the settings do not define. It is fatal and never
// retried.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

// NewConfigError builds a ConfigError with fmt.Sprintf semantics.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedDurationError reports a calendar event whose start/end delta
// resolves to neither whole days nor 3-hour half-days. The offending raw
// event is carried for diagnostics. Fatal: the run aborts rather than
// skipping the event, so the operator fixes the calendar entry first.
type UnsupportedDurationError struct {
	Raw    RawEvent
	Reason string
}

func (e *UnsupportedDurationError) Error() string {
	var b strings.Builder
	b.WriteString("unsupported duration for event ")
	b.WriteString(e.Raw.ID)
	if e.Raw.Summary != "" {
		b.WriteString(" (")
		b.WriteString(e.Raw.Summary)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

package model

import (
	"regexp"
	"sort"
	"strings"
)

// titlePatternRequiredFields are the named capture groups a title pattern
// must declare. Note that "place" is extracted when present but is not
// required by the pattern contract.
var titlePatternRequiredFields = []string{"continuation", "company", "training", "extra"}

// Title is the ephemeral result of parsing one calendar event summary.
// All fields are normalized (trimmed, lowercased) on extraction; the
// pattern itself runs against the raw text.
type Title struct {
	Continuation bool
	Company      string
	Training     string
	Place        string
	Extra        string // empty when the group did not match
}

// CompilePattern compiles a title pattern and checks that it declares the
// continuation, company, training and extra named groups. A pattern
// missing any of them fails with a ConfigError.
//
// The compiled pattern is anchored at the start of the title, so a
// summary merely containing the pattern somewhere inside does not match.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, NewConfigError("could not compile title pattern: %v", err)
	}
	compiled = regexp.MustCompile(`\A(?:` + pattern + `)`)

	present := make(map[string]bool)
	for _, name := range compiled.SubexpNames() {
		if name != "" {
			present[name] = true
		}
	}

	var missing []string
	for _, field := range titlePatternRequiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, NewConfigError(
			"title pattern doesn't contain the necessary fields %s",
			strings.Join(missing, ", "),
		)
	}
	return compiled, nil
}

// ParseTitle matches title against a pattern compiled by CompilePattern.
// A non-matching title returns nil: unrelated calendar entries are
// silently skipped by callers, never reported as errors. CompilePattern
// anchors the pattern, so the match must start at the first character.
//
// The continuation group counts as set when it matched non-empty text
// (e.g. a "-> " prefix).
func ParseTitle(title string, pattern *regexp.Regexp) *Title {
	m := pattern.FindStringSubmatch(title)
	if m == nil {
		return nil
	}

	group := func(name string) string {
		idx := pattern.SubexpIndex(name)
		if idx < 0 || idx >= len(m) {
			return ""
		}
		return m[idx]
	}

	return &Title{
		Continuation: group("continuation") != "",
		Company:      normalize(group("company")),
		Training:     normalize(group("training")),
		Place:        normalize(group("place")),
		Extra:        normalize(group("extra")),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

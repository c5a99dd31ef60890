// Package cron parses the server's seven-field cron dialect
// (second minute hour dom month dow year) and computes next triggers in UTC.
package cron

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	cronv3 "github.com/robfig/cron/v3"
)

// parser handles the six leading fields; the trailing year field is applied
// separately because the upstream parser has no notion of years.
var parser = cronv3.NewParser(
	cronv3.Second | cronv3.Minute | cronv3.Hour | cronv3.Dom | cronv3.Month | cronv3.Dow,
)

// Year field bounds, following the Quartz convention.
const (
	minYear = 1970
	maxYear = 2099
)

// Normalize converts expr into the seven-field dialect. The default dialect
// is the classic five-field `m h dom mon dow`, which gains a leading seconds
// field pinned to zero and a trailing wildcard year. With sevenField set the
// expression is taken verbatim.
func Normalize(expr string, sevenField bool) string {
	expr = strings.TrimSpace(expr)
	if sevenField {
		return expr
	}
	return "0 " + expr + " *"
}

// Schedule is a parsed seven-field expression.
type Schedule struct {
	inner cronv3.Schedule
	years *yearSet // nil means every year
}

// Parse parses a seven-field expression. Five-field input must go through
// Normalize first.
func Parse(expr string) (*Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 7 {
		return nil, fmt.Errorf("expected 7 cron fields, got %d in %q", len(fields), expr)
	}
	inner, err := parser.Parse(strings.Join(fields[:6], " "))
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron expression %q: %w", expr, err)
	}
	years, err := parseYears(fields[6])
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron expression %q: %w", expr, err)
	}
	return &Schedule{inner: inner, years: years}, nil
}

// Next returns the first trigger strictly after t, in UTC. ok is false when
// the expression admits no further trigger.
func (s *Schedule) Next(after time.Time) (next time.Time, ok bool) {
	after = after.UTC()
	// Each pass either lands in an admissible year or jumps past an excluded
	// one, so the year bounds cap the number of passes.
	for i := 0; i < maxYear-minYear+1; i++ {
		next = s.inner.Next(after)
		if next.IsZero() || next.Year() > maxYear {
			return time.Time{}, false
		}
		if s.years == nil || s.years.contains(next.Year()) {
			return next, true
		}
		year, more := s.years.nextFrom(next.Year() + 1)
		if !more {
			return time.Time{}, false
		}
		// Resume just before 1 January of the next admissible year instead
		// of stepping trigger by trigger through excluded years.
		after = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Second)
	}
	return time.Time{}, false
}

// yearSet is the expanded year field.
type yearSet struct {
	members map[int]struct{}
}

func (y *yearSet) contains(year int) bool {
	_, ok := y.members[year]
	return ok
}

// nextFrom returns the smallest member >= year.
func (y *yearSet) nextFrom(year int) (int, bool) {
	best, found := 0, false
	for m := range y.members {
		if m >= year && (!found || m < best) {
			best, found = m, true
		}
	}
	return best, found
}

// parseYears expands the year field. Supported forms per comma-separated
// part: `*`, `N`, `N-M`, each optionally followed by `/step`.
func parseYears(field string) (*yearSet, error) {
	if field == "*" {
		return nil, nil
	}
	set := &yearSet{members: make(map[int]struct{})}
	for _, part := range strings.Split(field, ",") {
		lo, hi, step := minYear, maxYear, 1

		rangePart := part
		if slash := strings.IndexByte(part, '/'); slash >= 0 {
			rangePart = part[:slash]
			s, err := strconv.Atoi(part[slash+1:])
			if err != nil || s < 1 {
				return nil, fmt.Errorf("invalid year step %q", part)
			}
			step = s
		}

		switch {
		case rangePart == "*":
			// full range
		case strings.Contains(rangePart, "-"):
			bounds := strings.SplitN(rangePart, "-", 2)
			var err error
			if lo, err = strconv.Atoi(bounds[0]); err != nil {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
			if hi, err = strconv.Atoi(bounds[1]); err != nil {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
		default:
			n, err := strconv.Atoi(rangePart)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", part)
			}
			lo = n
			if strings.IndexByte(part, '/') < 0 {
				hi = n
			}
		}

		if lo < minYear || hi > maxYear || lo > hi {
			return nil, fmt.Errorf("year field %q out of range %d-%d", part, minYear, maxYear)
		}
		for y := lo; y <= hi; y += step {
			set.members[y] = struct{}{}
		}
	}
	return set, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// BrumationCalendar holds the month-day dates on which the organism is
// dormant at a given site.
type BrumationCalendar struct {
	site string
	days map[[2]int]struct{}
}

// LoadBrumationCalendar reads a JSON calendar of the form
// {"Site": ["11-1", "11-2", ...]} and returns the entry for the given site.
// An empty path yields an empty calendar (no brumation).
func LoadBrumationCalendar(path, site string) (*BrumationCalendar, error) {
	cal := &BrumationCalendar{site: site, days: make(map[[2]int]struct{})}
	if path == "" {
		return cal, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brumation calendar: %w", err)
	}

	var sites map[string][]string
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("parsing brumation calendar: %w", err)
	}

	dates, ok := sites[site]
	if !ok {
		return nil, fmt.Errorf("brumation calendar has no entry for site %q", site)
	}

	for _, d := range dates {
		month, day, err := parseMonthDay(d)
		if err != nil {
			return nil, fmt.Errorf("brumation calendar for %q: %w", site, err)
		}
		cal.days[[2]int{month, day}] = struct{}{}
	}
	return cal, nil
}

// parseMonthDay parses a "month-day" string like "11-3".
func parseMonthDay(s string) (month, day int, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid date %q, want month-day", s)
	}
	if _, err := fmt.Sscanf(s, "%d-%d", &month, &day); err != nil {
		return 0, 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("date %q out of range", s)
	}
	return month, day, nil
}

// Site returns the site the calendar was loaded for.
func (c *BrumationCalendar) Site() string {
	return c.site
}

// Len returns the number of brumation dates.
func (c *BrumationCalendar) Len() int {
	return len(c.days)
}

// IsBrumationDay reports whether the given month and day fall inside the
// brumation period.
func (c *BrumationCalendar) IsBrumationDay(month, day int) bool {
	_, ok := c.days[[2]int{month, day}]
	return ok
}

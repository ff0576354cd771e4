// Package landscape provides the thermal environment: an hourly time series
// of microhabitat temperatures with the simulation calendar derived from it.
package landscape

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
)

const timeLayout = "2006-01-02 15:04:05"

// DateTime wraps time.Time for CSV parsing.
type DateTime struct {
	time.Time
}

// UnmarshalCSV parses the thermal profile timestamp format.
func (d *DateTime) UnmarshalCSV(csv string) error {
	t, err := time.Parse(timeLayout, csv)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", csv, err)
	}
	d.Time = t
	return nil
}

// MarshalCSV writes the thermal profile timestamp format.
func (d DateTime) MarshalCSV() (string, error) {
	return d.Format(timeLayout), nil
}

// Row is one timestep of the thermal profile.
type Row struct {
	Datetime DateTime `csv:"datetime"`
	Open     float64  `csv:"open"`
	Burrow   float64  `csv:"burrow"`
}

// Snapshot is the read-only environmental state handed to organisms for one
// tick.
type Snapshot struct {
	Tick   int
	Hour   int
	Day    int
	Month  int
	Year   int
	Season string

	OpenTemp   float64
	BurrowTemp float64
}

// Landscape holds the full thermal profile for a run.
type Landscape struct {
	rows []Row
}

// New builds a landscape from rows already in memory.
func New(rows []Row) (*Landscape, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("landscape: thermal profile is empty")
	}
	return &Landscape{rows: rows}, nil
}

// Load reads a thermal profile CSV with datetime, open, and burrow columns.
func Load(path string) (*Landscape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening thermal profile: %w", err)
	}
	defer f.Close()

	var rows []Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing thermal profile: %w", err)
	}
	return New(rows)
}

// Len returns the number of timesteps in the profile.
func (l *Landscape) Len() int {
	return len(l.rows)
}

// At returns the environmental snapshot for a tick. Ticks outside the
// profile are a logic defect and panic.
func (l *Landscape) At(tick int) Snapshot {
	if tick < 0 || tick >= len(l.rows) {
		panic(fmt.Sprintf("landscape: tick %d outside profile of %d steps", tick, len(l.rows)))
	}
	row := l.rows[tick]
	ts := row.Datetime.Time
	return Snapshot{
		Tick:       tick,
		Hour:       ts.Hour(),
		Day:        ts.Day(),
		Month:      int(ts.Month()),
		Year:       ts.Year(),
		Season:     seasonOf(ts.Month()),
		OpenTemp:   row.Open,
		BurrowTemp: row.Burrow,
	}
}

// StepsPerYear counts the timesteps covered by the first 365 days of the
// profile.
func (l *Landscape) StepsPerYear() int {
	start := l.rows[0].Datetime.Time
	end := start.AddDate(1, 0, 0)
	n := 0
	for _, row := range l.rows {
		if !row.Datetime.Before(end) {
			break
		}
		n++
	}
	return n
}

// seasonOf maps a month to its meteorological season.
func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Fall"
	}
}

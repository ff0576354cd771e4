package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/michaelremington2/suffugium/config"
)

// OutputManager handles structured run output with CSV logging: one data
// log per organism plus a daily stats file.
type OutputManager struct {
	dir string

	organismFiles  map[uint32]*os.File
	organismHeader map[uint32]bool

	statsFile          *os.File
	statsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{
		dir:            dir,
		organismFiles:  make(map[uint32]*os.File),
		organismHeader: make(map[uint32]bool),
	}

	statsPath := filepath.Join(dir, "daily_stats.csv")
	f, err := os.Create(statsPath)
	if err != nil {
		return nil, fmt.Errorf("creating daily_stats.csv: %w", err)
	}
	om.statsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteTick appends a record to the organism's data log, creating the file
// on first write.
func (om *OutputManager) WriteTick(rec TickRecord) error {
	if om == nil {
		return nil
	}

	f, ok := om.organismFiles[rec.OrganismID]
	if !ok {
		path := filepath.Join(om.dir, fmt.Sprintf("%d_data_log.csv", rec.OrganismID))
		var err error
		f, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("creating data log for organism %d: %w", rec.OrganismID, err)
		}
		om.organismFiles[rec.OrganismID] = f
	}

	records := []TickRecord{rec}
	if !om.organismHeader[rec.OrganismID] {
		if err := gocsv.Marshal(records, f); err != nil {
			return fmt.Errorf("writing data log: %w", err)
		}
		om.organismHeader[rec.OrganismID] = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, f); err != nil {
			return fmt.Errorf("writing data log: %w", err)
		}
	}
	return nil
}

// WriteDayStats appends a daily aggregate record to daily_stats.csv.
func (om *OutputManager) WriteDayStats(stats DayStats) error {
	if om == nil {
		return nil
	}

	records := []DayStats{stats}
	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing daily stats: %w", err)
		}
		om.statsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing daily stats: %w", err)
		}
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	for _, f := range om.organismFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.statsFile != nil {
		if err := om.statsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

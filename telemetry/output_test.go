package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatal(err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}
	// All writes on the nil manager are no-ops.
	if err := om.WriteTick(TickRecord{OrganismID: 1}); err != nil {
		t.Errorf("nil WriteTick: %v", err)
	}
	if err := om.WriteDayStats(DayStats{}); err != nil {
		t.Errorf("nil WriteDayStats: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManagerPerOrganismLogs(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	recs := []TickRecord{
		{Step: 0, OrganismID: 1, Behavior: "Rest", Microhabitat: "Burrow", BodyTemperature: 25},
		{Step: 1, OrganismID: 1, Behavior: "Forage", Microhabitat: "Open", BodyTemperature: 26},
		{Step: 0, OrganismID: 2, Behavior: "Rest", Microhabitat: "Burrow", BodyTemperature: 24},
	}
	for _, rec := range recs {
		if err := om.WriteTick(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "1_data_log.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("organism 1 log has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.Contains(lines[0], "body_temperature") {
		t.Errorf("missing header, got %q", lines[0])
	}
	if strings.Contains(lines[2], "body_temperature") {
		t.Error("header repeated on subsequent writes")
	}
	if !strings.Contains(lines[2], "Forage") {
		t.Errorf("second row = %q", lines[2])
	}

	if _, err := os.Stat(filepath.Join(dir, "2_data_log.csv")); err != nil {
		t.Errorf("organism 2 log missing: %v", err)
	}
}

func TestOutputManagerDailyStats(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := om.WriteDayStats(DayStats{Year: 2020, Month: 6, Day: 1, Season: "Summer", Alive: 9}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteDayStats(DayStats{Year: 2020, Month: 6, Day: 2, Season: "Summer", Alive: 8}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "daily_stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("daily stats has %d lines, want header + 2 rows", len(lines))
	}
}

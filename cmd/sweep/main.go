// Package main runs batches of replicate simulations for an experiment:
// same configuration and thermal profile, consecutive seeds. Per-replicate
// summaries go to a CSV and optionally the shared summary database.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/michaelremington2/suffugium/config"
	"github.com/michaelremington2/suffugium/landscape"
	"github.com/michaelremington2/suffugium/sim"
	"github.com/michaelremington2/suffugium/telemetry"
)

// replicateRow is one line of the sweep output CSV.
type replicateRow struct {
	SimID             string  `csv:"sim_id"`
	Seed              int64   `csv:"seed"`
	Steps             int     `csv:"steps"`
	Survivors         int     `csv:"survivors"`
	DeathsCold        int     `csv:"deaths_cold"`
	DeathsHeat        int     `csv:"deaths_heat"`
	DeathsStarvation  int     `csv:"deaths_starvation"`
	MeanSurvivalTicks float64 `csv:"mean_survival_ticks"`
}

// runOutcome holds one replicate's results for post-sweep aggregation.
type runOutcome struct {
	sum         telemetry.ModelSummary
	individuals []telemetry.IndividualRow
	err         error
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	profilePath := flag.String("thermal-profile", "", "Thermal profile CSV (overrides config)")
	replicates := flag.Int("replicates", 10, "Number of replicate runs")
	baseSeed := flag.Int64("base-seed", 42, "Seed of the first replicate; replicate i uses base-seed + i")
	workers := flag.Int("workers", 4, "Concurrent simulations")
	maxTicks := flag.Int("max-ticks", 0, "Stop each run after N ticks (0 = full profile)")
	dbPath := flag.String("db-path", "", "SQLite summary database path (empty = no database)")
	outPath := flag.String("output", "", "CSV file for per-replicate summaries")
	simPrefix := flag.String("sim-prefix", "sweep", "Sim ID prefix for replicates")

	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	profile := cfg.Landscape.ThermalProfile
	if *profilePath != "" {
		profile = *profilePath
	}
	land, err := landscape.Load(profile)
	if err != nil {
		slog.Error("failed to load thermal profile", "error", err)
		os.Exit(1)
	}

	slog.Info("starting sweep",
		"replicates", *replicates,
		"workers", *workers,
		"base_seed", *baseSeed,
		"site", cfg.Model.Site,
		"experiment", cfg.Model.Experiment,
	)
	start := time.Now()

	// Run replicates in parallel. The config and landscape are shared
	// read-only; each run carries its own RNG and world.
	outcomes := make([]runOutcome, *replicates)
	sem := make(chan struct{}, *workers)
	var wg sync.WaitGroup

	for i := 0; i < *replicates; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			opts := sim.Options{
				Seed:     *baseSeed + int64(idx),
				SimID:    fmt.Sprintf("%s-%03d", *simPrefix, idx),
				MaxTicks: *maxTicks,
			}
			m, err := sim.New(cfg, land, opts)
			if err != nil {
				outcomes[idx].err = err
				return
			}
			defer m.Close()

			if err := m.Run(); err != nil {
				outcomes[idx].err = err
				return
			}
			outcomes[idx].sum, outcomes[idx].individuals = m.Summarize()
		}(i)
	}
	wg.Wait()

	var rows []replicateRow
	var survivalFractions, meanTicks []float64
	failed := 0
	population := float64(cfg.Model.Population)

	for i, o := range outcomes {
		if o.err != nil {
			slog.Error("replicate failed", "index", i, "error", o.err)
			failed++
			continue
		}
		rows = append(rows, replicateRow{
			SimID:             o.sum.SimID,
			Seed:              o.sum.Seed,
			Steps:             o.sum.Steps,
			Survivors:         o.sum.Survivors,
			DeathsCold:        o.sum.DeathsCold,
			DeathsHeat:        o.sum.DeathsHeat,
			DeathsStarvation:  o.sum.DeathsStarvation,
			MeanSurvivalTicks: o.sum.MeanSurvivalTicks,
		})
		survivalFractions = append(survivalFractions, float64(o.sum.Survivors)/population)
		meanTicks = append(meanTicks, o.sum.MeanSurvivalTicks)
	}

	if *dbPath != "" {
		if err := writeDatabase(*dbPath, outcomes); err != nil {
			slog.Error("failed to write summary database", "error", err)
			os.Exit(1)
		}
	}

	if *outPath != "" {
		if err := writeCSV(*outPath, rows); err != nil {
			slog.Error("failed to write sweep CSV", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("sweep complete",
		"replicates", *replicates,
		"failed", failed,
		"mean_survival_fraction", stat.Mean(survivalFractions, nil),
		"sd_survival_fraction", stat.StdDev(survivalFractions, nil),
		"mean_survival_ticks", stat.Mean(meanTicks, nil),
		"elapsed", time.Since(start).Round(time.Second).String(),
	)
}

// writeDatabase stores all successful replicates in one summary database.
// Runs write sequentially after the sweep so replicates never contend for
// the SQLite file.
func writeDatabase(path string, outcomes []runOutcome) error {
	db, err := telemetry.OpenSummaryDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		if err := db.WriteRun(o.sum, o.individuals); err != nil {
			return fmt.Errorf("replicate %s: %w", o.sum.SimID, err)
		}
	}
	return nil
}

func writeCSV(path string, rows []replicateRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(&rows, f)
}

package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/michaelremington2/suffugium/config"
	"github.com/michaelremington2/suffugium/landscape"
	"github.com/michaelremington2/suffugium/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	profilePath := flag.String("thermal-profile", "", "Thermal profile CSV (overrides config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	simID := flag.String("sim-id", "", "Run identifier for the summary database (empty = derived from seed)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db-path", "", "SQLite summary database path (empty = no summary)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = full profile)")
	logStats := flag.Bool("log-stats", false, "Output daily stats via slog")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON, mirrored to run.log when an output dir is given)
	var logOut io.Writer = os.Stdout
	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			slog.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		f, err := os.Create(filepath.Join(*outputDir, "run.log"))
		if err != nil {
			slog.Error("failed to create run.log", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = io.MultiWriter(os.Stdout, f)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	profile := cfg.Landscape.ThermalProfile
	if *profilePath != "" {
		profile = *profilePath
	}
	land, err := landscape.Load(profile)
	if err != nil {
		slog.Error("failed to load thermal profile", "error", err)
		os.Exit(1)
	}

	opts := sim.Options{
		Seed:      rngSeed,
		SimID:     *simID,
		OutputDir: *outputDir,
		DBPath:    *dbPath,
		MaxTicks:  *maxTicks,
		LogStats:  *logStats,
	}

	m, err := sim.New(cfg, land, opts)
	if err != nil {
		slog.Error("failed to initialize model", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"site", cfg.Model.Site,
		"experiment", cfg.Model.Experiment,
		"population", cfg.Model.Population,
		"steps", land.Len(),
		"max_ticks", *maxTicks,
	)

	if err := m.Run(); err != nil {
		slog.Error("simulation failed", "error", err, "tick", m.Tick())
		os.Exit(1)
	}

	slog.Info("simulation complete",
		"tick", m.Tick(),
		"survivors", m.AliveCount(),
	)
}

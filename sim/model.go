// Package sim wires the simulation together: the ECS population container,
// the per-tick step loop, and run-level output.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/michaelremington2/suffugium/components"
	"github.com/michaelremington2/suffugium/config"
	"github.com/michaelremington2/suffugium/landscape"
	"github.com/michaelremington2/suffugium/systems"
	"github.com/michaelremington2/suffugium/telemetry"
)

// Options holds run-level settings that are not part of the config file.
type Options struct {
	Seed      int64
	SimID     string
	OutputDir string
	DBPath    string
	MaxTicks  int
	LogStats  bool
}

// Model holds the complete simulation state.
type Model struct {
	cfg  *config.Config
	land *landscape.Landscape
	opts Options

	world *ecs.World
	rng   *rand.Rand

	mapper *ecs.Map4[
		components.Organism,
		components.Thermal,
		components.Energy,
		components.Foraging,
	]
	filter *ecs.Filter4[
		components.Organism,
		components.Thermal,
		components.Energy,
		components.Foraging,
	]

	// Individual component mappers for lookups
	orgMap *ecs.Map1[components.Organism]
	thMap  *ecs.Map1[components.Thermal]
	enMap  *ecs.Map1[components.Energy]
	fgMap  *ecs.Map1[components.Foraging]

	selector  *systems.Selector
	output    *telemetry.OutputManager
	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker

	tick       int
	nextID     uint32
	aliveCount int
}

// New creates a model, spawns the initial population, and prepares output.
func New(cfg *config.Config, land *landscape.Landscape, opts Options) (*Model, error) {
	cal, err := config.LoadBrumationCalendar(cfg.Snake.Brumation.DatesFile, cfg.Model.Site)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	if opts.SimID == "" {
		opts.SimID = fmt.Sprintf("run-%d", opts.Seed)
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)))

	m := &Model{
		cfg:   cfg,
		land:  land,
		opts:  opts,
		world: world,
		rng:   rng,
		mapper: ecs.NewMap4[
			components.Organism,
			components.Thermal,
			components.Energy,
			components.Foraging,
		](world),
		filter: ecs.NewFilter4[
			components.Organism,
			components.Thermal,
			components.Energy,
			components.Foraging,
		](world),
		orgMap:    ecs.NewMap1[components.Organism](world),
		thMap:     ecs.NewMap1[components.Thermal](world),
		enMap:     ecs.NewMap1[components.Energy](world),
		fgMap:     ecs.NewMap1[components.Foraging](world),
		selector:  systems.NewSelector(cfg, cal, rng),
		output:    output,
		collector: telemetry.NewCollector(),
		lifetimes: telemetry.NewLifetimeTracker(),
		nextID:    1,
	}

	m.spawnInitialPopulation()

	return m, nil
}

// Tick returns the current simulation tick.
func (m *Model) Tick() int {
	return m.tick
}

// AliveCount returns the number of living organisms.
func (m *Model) AliveCount() int {
	return m.aliveCount
}

// Lifetimes exposes the lifetime tracker for summarization.
func (m *Model) Lifetimes() *telemetry.LifetimeTracker {
	return m.lifetimes
}

// Run executes the simulation until the thermal profile is exhausted, the
// tick limit is reached, or the population goes extinct, then writes the
// run summary.
func (m *Model) Run() error {
	maxTicks := m.land.Len()
	if m.opts.MaxTicks > 0 && m.opts.MaxTicks < maxTicks {
		maxTicks = m.opts.MaxTicks
	}

	for m.tick < maxTicks && m.aliveCount > 0 {
		if err := m.Step(); err != nil {
			return err
		}
	}

	if m.aliveCount == 0 {
		slog.Info("population extinct", "tick", m.tick)
	}

	m.flushDay()

	if err := m.writeSummary(); err != nil {
		return err
	}
	return nil
}

// Step advances the simulation by one tick: every living organism acts once
// in randomized order, then the dead are removed.
func (m *Model) Step() error {
	snap := m.land.At(m.tick)

	if m.tick == 0 {
		m.collector.StartDay(snap)
	} else if m.collector.ShouldFlush(snap) {
		m.flushDay()
		m.collector.StartDay(snap)
	}

	entities := m.collectLiving()
	m.rng.Shuffle(len(entities), func(i, j int) {
		entities[i], entities[j] = entities[j], entities[i]
	})

	for _, e := range entities {
		if err := m.stepOrganism(e, snap); err != nil {
			return fmt.Errorf("tick %d: %w", m.tick, err)
		}
	}

	m.cleanupDead()
	m.tick++
	return nil
}

// collectLiving gathers all entities before iteration so the traversal
// order can be shuffled and mutation can use the component maps.
func (m *Model) collectLiving() []ecs.Entity {
	entities := make([]ecs.Entity, 0, m.aliveCount)
	query := m.filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	return entities
}

// stepOrganism runs one organism's full tick: behavior, thermal exchange,
// bioenergetics, mortality checks, and logging.
func (m *Model) stepOrganism(e ecs.Entity, snap landscape.Snapshot) error {
	org := m.orgMap.Get(e)
	th := m.thMap.Get(e)
	en := m.enMap.Get(e)
	fg := m.fgMap.Get(e)

	org.AgeTicks++

	if err := m.selector.Step(org, th, en, fg, snap); err != nil {
		return fmt.Errorf("organism %d: %w", org.ID, err)
	}

	// Thermal exchange. Brumation pins body temperature to the winter
	// burrow; everything else relaxes toward the occupied microhabitat.
	brumTemp := m.cfg.Snake.Brumation.Temperature
	th.EnvTemp = systems.EnvTemperature(org.Microhabitat, snap.OpenTemp, snap.BurrowTemp, brumTemp)
	if org.Behavior == components.BehaviorBrumation {
		th.BodyTemp = brumTemp
	} else {
		th.BodyTemp = systems.CoolingEq(m.cfg.Snake.ThermalPreference.K, th.BodyTemp, th.EnvTemp, m.cfg.Snake.DeltaT)
	}

	// Bioenergetics
	smrCfg := m.cfg.Snake.SMR
	smr := systems.SMR(en.BodyMass, th.BodyTemp, smrCfg.X1Mass, smrCfg.X2Temp, smrCfg.X3Const)
	coeff := systems.ActivityCoefficient(&m.cfg.Snake.ActivityCoefficients, org.Behavior)
	systems.SpendEnergy(en, systems.MetabolicCost(smr, coeff, m.cfg.Snake.DeltaT))

	// Mortality: starvation first, then thermal stress.
	if systems.Starved(en) {
		if err := org.Die(components.DeathStarvation); err != nil {
			return err
		}
	}
	if org.Alive {
		ct := m.cfg.Snake.VoluntaryCT
		if err := systems.UpdateThermalStress(org, th, ct.MinTemp, ct.MaxTemp, ct.MaxSteps); err != nil {
			return err
		}
	}

	// Telemetry
	m.collector.RecordTick(org.Behavior, org.Active(), fg.PreyConsumed)
	m.lifetimes.RecordTick(org.ID, th.BodyTemp, en.Metabolic, fg.PreyConsumed)
	if !org.Alive {
		m.collector.RecordDeath(org.Cause)
		m.lifetimes.RecordDeath(org.ID, m.tick, org.Cause)
	}

	return m.output.WriteTick(m.tickRecord(org, th, en, fg, snap))
}

// tickRecord assembles one data log row for an organism.
func (m *Model) tickRecord(
	org *components.Organism,
	th *components.Thermal,
	en *components.Energy,
	fg *components.Foraging,
	snap landscape.Snapshot,
) telemetry.TickRecord {
	tOpt := m.cfg.Snake.ThermalPreference.TOpt
	return telemetry.TickRecord{
		Step:       snap.Tick,
		OrganismID: org.ID,
		Site:       m.cfg.Model.Site,
		Experiment: m.cfg.Model.Experiment,

		Hour:   snap.Hour,
		Day:    snap.Day,
		Month:  snap.Month,
		Year:   snap.Year,
		Season: snap.Season,

		Alive:        org.Alive,
		Active:       org.Active(),
		Mass:         en.BodyMass,
		Behavior:     org.Behavior.String(),
		Microhabitat: org.Microhabitat.String(),

		BodyTemperature: th.BodyTemp,
		EnvTemperature:  th.EnvTemp,
		ThermalAccuracy: systems.ThermalAccuracy(tOpt, th.BodyTemp),
		ThermalQuality:  systems.ThermalQuality(tOpt, th.EnvTemp),

		MetabolicState:  en.Metabolic,
		PreyDensity:     fg.PreyDensity,
		AttackRate:      fg.AttackRate,
		PreyEncountered: fg.PreyEncountered,
		PreyConsumed:    fg.PreyConsumed,
		SearchCounter:   fg.SearchCounter,

		CauseOfDeath: org.Cause.String(),
	}
}

// flushDay emits the accumulated daily stats with end-of-day population
// samples.
func (m *Model) flushDay() {
	var bodyTemps, reserves []float64
	query := m.filter.Query()
	for query.Next() {
		org, th, en, _ := query.Get()
		if !org.Alive {
			continue
		}
		bodyTemps = append(bodyTemps, th.BodyTemp)
		reserves = append(reserves, en.Metabolic)
	}

	stats := m.collector.Flush(m.aliveCount, bodyTemps, reserves)
	if m.opts.LogStats {
		stats.LogStats()
	}
	if err := m.output.WriteDayStats(stats); err != nil {
		slog.Error("writing daily stats", "error", err)
	}
}

// writeSummary stores the run summary in the SQLite database, if configured.
func (m *Model) writeSummary() error {
	if m.opts.DBPath == "" {
		return nil
	}

	db, err := telemetry.OpenSummaryDB(m.opts.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	sum, individuals := m.Summarize()
	if err := db.WriteRun(sum, individuals); err != nil {
		return fmt.Errorf("writing run summary: %w", err)
	}

	slog.Info("run summary written",
		"sim_id", sum.SimID,
		"db_path", m.opts.DBPath,
		"survivors", sum.Survivors,
	)
	return nil
}

// Summarize builds the run-level and per-organism summary rows from the
// lifetime tracker.
func (m *Model) Summarize() (telemetry.ModelSummary, []telemetry.IndividualRow) {
	sum := telemetry.ModelSummary{
		SimID:        m.opts.SimID,
		Seed:         m.opts.Seed,
		Site:         m.cfg.Model.Site,
		Experiment:   m.cfg.Model.Experiment,
		Steps:        m.tick,
		StepsPerYear: m.land.StepsPerYear(),
		Population:   m.lifetimes.Count(),
		Survivors:    m.aliveCount,
	}

	var individuals []telemetry.IndividualRow
	var totalTicks int
	for _, id := range m.lifetimes.IDs() {
		s := m.lifetimes.Get(id)
		totalTicks += s.TicksAlive

		switch s.Cause {
		case components.DeathCold:
			sum.DeathsCold++
		case components.DeathHeat:
			sum.DeathsHeat++
		case components.DeathStarvation:
			sum.DeathsStarvation++
		}

		individuals = append(individuals, telemetry.IndividualRow{
			SimID:        m.opts.SimID,
			OrganismID:   id,
			BodyMass:     s.BodyMass,
			AttackRate:   s.AttackRate,
			PreyDensity:  s.PreyDensity,
			BirthStep:    s.BirthTick,
			DeathStep:    s.DeathTick,
			TicksAlive:   s.TicksAlive,
			MeanBodyTemp: s.MeanBodyTemp(),
			PeakReserve:  s.PeakReserve,
			PreyConsumed: s.PreyConsumed,
			CauseOfDeath: s.Cause.String(),
		})
	}
	if len(individuals) > 0 {
		sum.MeanSurvivalTicks = float64(totalTicks) / float64(len(individuals))
	}

	return sum, individuals
}

// Close flushes and closes run output.
func (m *Model) Close() error {
	return m.output.Close()
}

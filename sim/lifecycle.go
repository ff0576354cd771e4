package sim

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/michaelremington2/suffugium/components"
)

// spawnInitialPopulation creates the configured number of organisms.
func (m *Model) spawnInitialPopulation() {
	for i := 0; i < m.cfg.Model.Population; i++ {
		m.spawnOrganism()
	}
	slog.Info("population spawned", "count", m.aliveCount)
}

// spawnOrganism creates one organism with sampled traits. Foraging traits
// are fixed at birth: attack rate is kept to three decimals and prey
// density to whole prey per hectare.
func (m *Model) spawnOrganism() ecs.Entity {
	id := m.nextID
	m.nextID++

	mass := m.sampleBodyMass()
	attack := math.Round(m.cfg.Interaction.AttackRate.Sample(m.rng)*1000) / 1000
	density := math.Round(m.cfg.Interaction.PreyDensity.Sample(m.rng))

	org := components.Organism{
		ID:           id,
		Alive:        true,
		Behavior:     components.BehaviorRest,
		Microhabitat: components.HabitatBurrow,
	}
	th := components.Thermal{
		BodyTemp: m.cfg.Snake.InitialBodyTemp,
		EnvTemp:  m.cfg.Snake.InitialBodyTemp,
	}
	en := components.Energy{
		Metabolic: m.cfg.Snake.InitialCalories,
		Max:       m.cfg.Derived.MaxMetabolicState,
		BodyMass:  mass,
	}
	fg := components.Foraging{
		AttackRate:  attack,
		PreyDensity: density,
	}

	e := m.mapper.NewEntity(&org, &th, &en, &fg)
	m.aliveCount++
	m.lifetimes.Register(id, m.tick, mass, attack, density)
	return e
}

// sampleBodyMass draws from the configured normal distribution, resampling
// until the draw falls inside [min, max].
func (m *Model) sampleBodyMass() float64 {
	bs := m.cfg.Snake.BodySize
	if bs.Std <= 0 {
		return bs.Mean
	}

	norm := distuv.Normal{Mu: bs.Mean, Sigma: bs.Std, Src: m.rng}
	for i := 0; i < 1000; i++ {
		v := norm.Rand()
		if v >= bs.Min && v <= bs.Max {
			return v
		}
	}
	return bs.Mean
}

// cleanupDead removes entities whose organism died this tick. Collection
// and removal are separate passes: the query must be fully consumed before
// the world is mutated.
func (m *Model) cleanupDead() {
	var dead []ecs.Entity

	query := m.filter.Query()
	for query.Next() {
		org, _, _, _ := query.Get()
		if !org.Alive {
			dead = append(dead, query.Entity())
		}
	}

	for _, e := range dead {
		org := m.orgMap.Get(e)
		slog.Info("organism died",
			"id", org.ID,
			"cause", org.Cause.String(),
			"age_ticks", org.AgeTicks,
			"tick", m.tick,
		)
		m.mapper.Remove(e)
		m.aliveCount--
	}
}

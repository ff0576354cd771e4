package telemetry

import "github.com/michaelremington2/suffugium/components"

// LifetimeStats tracks per-organism statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int
	DeathTick int // -1 while alive
	Cause     components.CauseOfDeath

	BodyMass    float64
	AttackRate  float64
	PreyDensity float64

	TicksAlive   int
	PreyConsumed int
	PeakReserve  float64

	sumBodyTemp float64
	tempSamples int
}

// MeanBodyTemp returns the mean body temperature over the recorded ticks.
func (s *LifetimeStats) MeanBodyTemp() float64 {
	if s.tempSamples == 0 {
		return 0
	}
	return s.sumBodyTemp / float64(s.tempSamples)
}

// LifetimeTracker manages per-organism lifetime statistics. Entries are kept
// after death so the run summary covers the whole population.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
	order []uint32
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{stats: make(map[uint32]*LifetimeStats)}
}

// Register creates lifetime stats for a new organism.
func (lt *LifetimeTracker) Register(id uint32, birthTick int, bodyMass, attackRate, preyDensity float64) {
	lt.stats[id] = &LifetimeStats{
		BirthTick:   birthTick,
		DeathTick:   -1,
		BodyMass:    bodyMass,
		AttackRate:  attackRate,
		PreyDensity: preyDensity,
	}
	lt.order = append(lt.order, id)
}

// RecordTick accumulates one living tick.
func (lt *LifetimeTracker) RecordTick(id uint32, bodyTemp, reserve float64, preyConsumed int) {
	s := lt.stats[id]
	if s == nil {
		return
	}
	s.TicksAlive++
	s.sumBodyTemp += bodyTemp
	s.tempSamples++
	s.PreyConsumed += preyConsumed
	if reserve > s.PeakReserve {
		s.PeakReserve = reserve
	}
}

// RecordDeath closes out an organism's lifetime.
func (lt *LifetimeTracker) RecordDeath(id uint32, tick int, cause components.CauseOfDeath) {
	if s := lt.stats[id]; s != nil {
		s.DeathTick = tick
		s.Cause = cause
	}
}

// Get returns the lifetime stats for an organism, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// IDs returns all tracked organism IDs in registration order.
func (lt *LifetimeTracker) IDs() []uint32 {
	return lt.order
}

// Count returns the number of tracked organisms.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

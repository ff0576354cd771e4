package telemetry

import (
	"github.com/michaelremington2/suffugium/components"
	"github.com/michaelremington2/suffugium/landscape"
)

// Collector accumulates per-tick events within a simulation day and
// produces DayStats when the calendar rolls over.
type Collector struct {
	started bool
	year    int
	month   int
	day     int
	season  string

	deathsCold       int
	deathsHeat       int
	deathsStarvation int

	behaviorTicks [5]int
	activeTicks   int
	preyConsumed  int
}

// NewCollector creates a new daily stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// ShouldFlush reports whether the snapshot has moved to a new calendar day.
func (c *Collector) ShouldFlush(snap landscape.Snapshot) bool {
	if !c.started {
		return false
	}
	return snap.Year != c.year || snap.Month != c.month || snap.Day != c.day
}

// StartDay begins accumulation for the snapshot's calendar day.
func (c *Collector) StartDay(snap landscape.Snapshot) {
	c.started = true
	c.year = snap.Year
	c.month = snap.Month
	c.day = snap.Day
	c.season = snap.Season
}

// RecordTick accumulates one organism-tick.
func (c *Collector) RecordTick(behavior components.Behavior, active bool, preyConsumed int) {
	c.behaviorTicks[behavior]++
	if active {
		c.activeTicks++
	}
	c.preyConsumed += preyConsumed
}

// RecordDeath accumulates a death by cause.
func (c *Collector) RecordDeath(cause components.CauseOfDeath) {
	switch cause {
	case components.DeathCold:
		c.deathsCold++
	case components.DeathHeat:
		c.deathsHeat++
	case components.DeathStarvation:
		c.deathsStarvation++
	}
}

// Flush produces the DayStats for the accumulated day and resets counters.
// The caller provides end-of-day population samples.
func (c *Collector) Flush(alive int, bodyTemps, reserves []float64) DayStats {
	var bodyTempMean float64
	if len(bodyTemps) > 0 {
		var sum float64
		for _, v := range bodyTemps {
			sum += v
		}
		bodyTempMean = sum / float64(len(bodyTemps))
	}
	reserveMean, p10, p50, p90 := ComputeReserveStats(reserves)

	stats := DayStats{
		Year:   c.year,
		Month:  c.month,
		Day:    c.day,
		Season: c.season,

		Alive: alive,

		DeathsCold:       c.deathsCold,
		DeathsHeat:       c.deathsHeat,
		DeathsStarvation: c.deathsStarvation,

		RestTicks:           c.behaviorTicks[components.BehaviorRest],
		ThermoregulateTicks: c.behaviorTicks[components.BehaviorThermoregulate],
		ForageTicks:         c.behaviorTicks[components.BehaviorForage],
		SearchTicks:         c.behaviorTicks[components.BehaviorSearch],
		BrumationTicks:      c.behaviorTicks[components.BehaviorBrumation],
		ActiveTicks:         c.activeTicks,

		PreyConsumed: c.preyConsumed,

		BodyTempMean: bodyTempMean,
		ReserveMean:  reserveMean,
		ReserveP10:   p10,
		ReserveP50:   p50,
		ReserveP90:   p90,
	}

	c.deathsCold = 0
	c.deathsHeat = 0
	c.deathsStarvation = 0
	c.behaviorTicks = [5]int{}
	c.activeTicks = 0
	c.preyConsumed = 0

	return stats
}

package systems

import (
	"math"
	"math/rand/v2"

	"github.com/michaelremington2/suffugium/components"
	"github.com/michaelremington2/suffugium/config"
	"github.com/michaelremington2/suffugium/landscape"
)

// sampled holds the order of behaviors the sparsemax weights refer to.
var sampled = [3]components.Behavior{
	components.BehaviorRest,
	components.BehaviorThermoregulate,
	components.BehaviorForage,
}

// Selector chooses and executes one behavior per organism per tick.
type Selector struct {
	cfg *config.Config
	cal *config.BrumationCalendar
	rng *rand.Rand
}

// NewSelector creates a behavior selector backed by the run's RNG.
func NewSelector(cfg *config.Config, cal *config.BrumationCalendar, rng *rand.Rand) *Selector {
	return &Selector{cfg: cfg, cal: cal, rng: rng}
}

// Step runs one behavioral decision for a living organism. Overriding
// states are checked in priority order before any stochastic choice:
// dormancy dates, the activity schedule, unresolved thermal stress, and an
// in-progress prey search. Only when none applies is a behavior sampled
// from the sparsemax weights.
func (s *Selector) Step(
	org *components.Organism,
	th *components.Thermal,
	en *components.Energy,
	fg *components.Foraging,
	snap landscape.Snapshot,
) error {
	fg.PreyEncountered = 0
	fg.PreyConsumed = 0

	switch {
	case s.cal.IsBrumationDay(snap.Month, snap.Day):
		s.bruminate(org)
	case !s.cfg.Derived.ActiveHourSet[snap.Hour]:
		s.rest(org)
	case th.StressCount > 0:
		s.thermoregulate(org, th, snap)
	case fg.SearchCounter > 0:
		s.search(org, fg)
	default:
		switch s.chooseBehavior(th, en) {
		case components.BehaviorRest:
			s.rest(org)
		case components.BehaviorThermoregulate:
			s.thermoregulate(org, th, snap)
		case components.BehaviorForage:
			return s.forage(org, en, fg, snap)
		}
	}
	return nil
}

// Utilities computes the raw behavior utilities in sampling order
// [rest, thermoregulate, forage]. Rest tracks the filled fraction of the
// metabolic reserve, forage its complement, and thermoregulation the
// deviation from the thermal optimum scaled by the preference band on the
// relevant side.
func (s *Selector) Utilities(th *components.Thermal, en *components.Energy) [3]float64 {
	tp := s.cfg.Snake.ThermalPreference

	rest := math.Min(en.Metabolic/en.Max, 1)
	forage := 1 - rest

	var margin float64
	if th.BodyTemp < tp.TOpt {
		margin = tp.TOpt - tp.TPrefMin
	} else {
		margin = tp.TPrefMax - tp.TOpt
	}
	thermo := math.Min(math.Abs(tp.TOpt-th.BodyTemp)/margin, 1)

	return [3]float64{rest, thermo, forage}
}

// Weights converts utilities to sampling probabilities. All-zero utilities
// carry no signal and fall back to a uniform draw.
func (s *Selector) Weights(u [3]float64) []float64 {
	allZero := true
	for _, v := range u {
		if math.Abs(v) > 1e-12 {
			allZero = false
			break
		}
	}
	if allZero {
		return uniform(len(u))
	}
	return Sparsemax(u[:])
}

// chooseBehavior samples one behavior from the current weights.
func (s *Selector) chooseBehavior(th *components.Thermal, en *components.Energy) components.Behavior {
	w := s.Weights(s.Utilities(th, en))

	r := s.rng.Float64()
	var cum float64
	for i, b := range sampled {
		cum += w[i]
		if r < cum {
			return b
		}
	}
	return sampled[len(sampled)-1]
}

// rest shelters the organism in its burrow.
func (s *Selector) rest(org *components.Organism) {
	org.Behavior = components.BehaviorRest
	org.Microhabitat = components.HabitatBurrow
}

// bruminate moves the organism into its winter burrow for the day.
func (s *Selector) bruminate(org *components.Organism) {
	org.Behavior = components.BehaviorBrumation
	org.Microhabitat = components.HabitatWinterBurrow
}

// search continues handling a previous capture in the open.
func (s *Selector) search(org *components.Organism, fg *components.Foraging) {
	org.Behavior = components.BehaviorSearch
	org.Microhabitat = components.HabitatOpen
	fg.SearchCounter--
}

// thermoregulate moves toward whichever microhabitat pulls body temperature
// back to the optimum.
func (s *Selector) thermoregulate(org *components.Organism, th *components.Thermal, snap landscape.Snapshot) {
	org.Behavior = components.BehaviorThermoregulate
	org.Microhabitat = ThermoregMicrohabitat(
		s.cfg.Snake.ThermalPreference.TOpt,
		snap.BurrowTemp,
		snap.OpenTemp,
	)
}

// ThermoregMicrohabitat picks whichever microhabitat is currently closer to
// the thermal optimum. Ties go to the open.
func ThermoregMicrohabitat(tOpt, burrow, open float64) components.Microhabitat {
	if math.Abs(burrow-tOpt) < math.Abs(open-tOpt) {
		return components.HabitatBurrow
	}
	return components.HabitatOpen
}

// forage hunts in the open: the expected capture rate comes from the
// functional response and the realized count from a Poisson draw. Prey are
// only available during their own activity hours.
func (s *Selector) forage(
	org *components.Organism,
	en *components.Energy,
	fg *components.Foraging,
	snap landscape.Snapshot,
) error {
	org.Behavior = components.BehaviorForage
	org.Microhabitat = components.HabitatOpen

	density := fg.PreyDensity
	if !s.cfg.Derived.PreyActiveHourSet[snap.Hour] {
		density = 0
	}

	in := s.cfg.Interaction
	expected, err := HollingTypeII(density, fg.AttackRate, in.HandlingTime, s.cfg.Snake.StrikePerformance)
	if err != nil {
		return err
	}

	captures := SampleCaptures(expected, s.rng)
	fg.PreyEncountered = captures
	for i := 0; i < captures; i++ {
		CreditMeal(en, s.cfg.Derived.MealCalories)
		fg.PreyConsumed++
	}

	if captures > 0 && in.SearchingBehavior {
		fg.SearchCounter = int(in.HandlingTime) - 1
	}
	return nil
}

// ActivityCoefficient returns the metabolic scaling for a behavior.
func ActivityCoefficient(ac *config.ActivityCoefficients, b components.Behavior) float64 {
	switch b {
	case components.BehaviorRest:
		return ac.Rest
	case components.BehaviorThermoregulate:
		return ac.Thermoregulate
	case components.BehaviorForage:
		return ac.Forage
	case components.BehaviorSearch:
		return ac.Search
	case components.BehaviorBrumation:
		return ac.Brumation
	default:
		panic("systems: no activity coefficient for behavior " + b.String())
	}
}

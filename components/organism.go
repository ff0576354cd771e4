// Package components defines the per-organism state carried by the ECS world.
package components

import "fmt"

// Behavior is the closed set of organism behaviors.
type Behavior uint8

const (
	BehaviorRest Behavior = iota
	BehaviorThermoregulate
	BehaviorForage
	BehaviorSearch
	BehaviorBrumation
)

// String returns the behavior name as it appears in data logs.
func (b Behavior) String() string {
	switch b {
	case BehaviorRest:
		return "Rest"
	case BehaviorThermoregulate:
		return "Thermoregulate"
	case BehaviorForage:
		return "Forage"
	case BehaviorSearch:
		return "Search"
	case BehaviorBrumation:
		return "Brumation"
	default:
		panic(fmt.Sprintf("components: unknown behavior %d", uint8(b)))
	}
}

// Microhabitat is the closed set of microhabitats an organism can occupy.
type Microhabitat uint8

const (
	HabitatBurrow Microhabitat = iota
	HabitatOpen
	HabitatWinterBurrow
)

// String returns the microhabitat name as it appears in data logs.
func (m Microhabitat) String() string {
	switch m {
	case HabitatBurrow:
		return "Burrow"
	case HabitatOpen:
		return "Open"
	case HabitatWinterBurrow:
		return "Winter_Burrow"
	default:
		panic(fmt.Sprintf("components: unknown microhabitat %d", uint8(m)))
	}
}

// CauseOfDeath records why an organism died. DeathNone means no cause has
// been recorded.
type CauseOfDeath uint8

const (
	DeathNone CauseOfDeath = iota
	DeathCold
	DeathHeat
	DeathStarvation
)

// String returns the cause label as it appears in data logs. DeathNone is
// an empty string.
func (c CauseOfDeath) String() string {
	switch c {
	case DeathNone:
		return ""
	case DeathCold:
		return "Cold"
	case DeathHeat:
		return "Heat"
	case DeathStarvation:
		return "Starvation"
	default:
		panic(fmt.Sprintf("components: unknown cause of death %d", uint8(c)))
	}
}

// Organism holds identity and behavioral state.
type Organism struct {
	ID           uint32
	Alive        bool
	Cause        CauseOfDeath
	Behavior     Behavior
	Microhabitat Microhabitat
	AgeTicks     int32
}

// Active reports whether the organism counts as active this tick.
// Dead, sheltering, and resting organisms are inactive regardless of the
// selected behavior.
func (o *Organism) Active() bool {
	if !o.Alive {
		return false
	}
	if o.Microhabitat != HabitatOpen {
		return false
	}
	switch o.Behavior {
	case BehaviorThermoregulate, BehaviorForage, BehaviorSearch:
		return true
	}
	return false
}

// Die marks the organism dead with the given cause. The cause is set once;
// a second call is an error so a recorded death can never be rewritten.
func (o *Organism) Die(cause CauseOfDeath) error {
	if o.Cause != DeathNone {
		return fmt.Errorf("organism %d: cause of death already set to %s", o.ID, o.Cause)
	}
	if cause == DeathNone {
		return fmt.Errorf("organism %d: cannot die without a cause", o.ID)
	}
	o.Alive = false
	o.Cause = cause
	return nil
}

// Thermal holds body and ambient temperature state.
type Thermal struct {
	BodyTemp    float64
	EnvTemp     float64
	StressCount int // consecutive ticks outside the voluntary thermal bounds
}

// Energy holds the metabolic reserve.
type Energy struct {
	Metabolic float64 // current caloric reserve; may go negative before the starvation check
	Max       float64 // reserve ceiling applied when crediting meals
	BodyMass  float64 // grams, fixed at initialization
}

// Foraging holds per-organism predation traits and per-tick encounter state.
type Foraging struct {
	AttackRate      float64 // sampled once at initialization
	PreyDensity     float64 // sampled once at initialization
	SearchCounter   int     // remaining handling ticks after a capture
	PreyEncountered int     // captures drawn this tick
	PreyConsumed    int     // captures actually eaten this tick
}

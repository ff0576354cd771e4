package systems

import (
	"fmt"
	"math"

	"github.com/michaelremington2/suffugium/components"
)

// CoolingEq returns the body temperature after one timestep of Newtonian
// heat exchange with the environment. k is the cooling constant per minute
// and deltaT the timestep length in minutes.
func CoolingEq(k, tBody, tEnv, deltaT float64) float64 {
	return tEnv + (tBody-tEnv)*math.Exp(-k*deltaT)
}

// EnvTemperature resolves the ambient temperature for a microhabitat.
// Winter burrows hold the configured brumation temperature year round.
// An unknown microhabitat is a logic defect and panics.
func EnvTemperature(mh components.Microhabitat, open, burrow, brumation float64) float64 {
	switch mh {
	case components.HabitatOpen:
		return open
	case components.HabitatBurrow:
		return burrow
	case components.HabitatWinterBurrow:
		return brumation
	default:
		panic(fmt.Sprintf("systems: no ambient temperature for microhabitat %d", uint8(mh)))
	}
}

// UpdateThermalStress advances the voluntary critical-thermal counter.
// The counter increments whenever body temperature sits strictly outside
// [ctMin, ctMax] (the bounds themselves are tolerable), resets to zero when
// the body returns inside, and kills the organism once it reaches maxSteps.
// The recorded cause matches the side that was exceeded.
func UpdateThermalStress(org *components.Organism, th *components.Thermal, ctMin, ctMax float64, maxSteps int) error {
	if !org.Alive {
		return nil
	}

	switch {
	case th.BodyTemp < ctMin:
		th.StressCount++
		if th.StressCount >= maxSteps {
			return org.Die(components.DeathCold)
		}
	case th.BodyTemp > ctMax:
		th.StressCount++
		if th.StressCount >= maxSteps {
			return org.Die(components.DeathHeat)
		}
	default:
		th.StressCount = 0
	}
	return nil
}

// ThermalAccuracy is the absolute deviation of body temperature from the
// thermal optimum (db in the thermal ecology literature).
func ThermalAccuracy(tOpt, tBody float64) float64 {
	return math.Abs(tOpt - tBody)
}

// ThermalQuality is the absolute deviation of the ambient temperature from
// the thermal optimum (de): how good the occupied microhabitat is right now.
func ThermalQuality(tOpt, tEnv float64) float64 {
	return math.Abs(tOpt - tEnv)
}

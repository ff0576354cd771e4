package systems

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrStrikeSuccess reports a strike performance outside [0, 1].
var ErrStrikeSuccess = errors.New("strike success probability exceeds 1")

// HollingTypeII returns the expected number of successful captures per
// timestep under a Holling Type II functional response with the strike
// success probability folded into the attack rate.
func HollingTypeII(preyDensity, attackRate, handlingTime, strikeSuccess float64) (float64, error) {
	if strikeSuccess > 1 {
		return 0, fmt.Errorf("holling type II: %w (got %v)", ErrStrikeSuccess, strikeSuccess)
	}
	effective := strikeSuccess * attackRate
	return (effective * preyDensity) / (1 + effective*handlingTime*preyDensity), nil
}

// SampleCaptures draws the realized capture count for one timestep from a
// Poisson distribution around the expected rate. Non-positive rates yield
// zero captures.
func SampleCaptures(expected float64, rng *rand.Rand) int {
	if expected <= 0 {
		return 0
	}
	pois := distuv.Poisson{Lambda: expected, Src: rng}
	return int(pois.Rand())
}

// MealCalories converts one captured prey item into assimilated calories.
func MealCalories(preyMass, calPerGram, digestionEfficiency float64) float64 {
	return preyMass * calPerGram * digestionEfficiency
}

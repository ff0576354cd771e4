package systems

import (
	"math"

	"github.com/michaelremington2/suffugium/components"
)

// Energetic conversion constants. Oxygen consumption from the SMR
// regression is in mL O2 per hour; one mL of O2 corresponds to 19.874 J of
// metabolizable energy, and one calorie is 4.184 J.
const (
	joulesPerMLO2  = 19.874
	joulesPerCal   = 4.184
	calsPerMLO2    = joulesPerMLO2 / joulesPerCal
	minutesPerHour = 60.0
)

// SMR returns the standard metabolic rate in mL O2 per hour from the
// log10-linear ectotherm regression: 10^(x1*log10(mass) + x2*tBody + x3).
func SMR(mass, tBody, x1, x2, x3 float64) float64 {
	return math.Pow(10, x1*math.Log10(mass)+x2*tBody+x3)
}

// MetabolicCost returns the caloric cost of one timestep at the given SMR,
// scaled by the activity coefficient of the current behavior. deltaT is the
// timestep length in minutes.
func MetabolicCost(smr, activityCoeff, deltaT float64) float64 {
	return activityCoeff * smr * calsPerMLO2 * deltaT / minutesPerHour
}

// SpendEnergy subtracts a metabolic cost from the reserve. The reserve is
// allowed to go negative; starvation is the caller's check so that the death
// accounting happens in one place.
func SpendEnergy(en *components.Energy, cost float64) {
	en.Metabolic -= cost
}

// CreditMeal adds assimilated calories to the reserve, clamped at the
// reserve ceiling. Returns the calories actually stored.
func CreditMeal(en *components.Energy, cals float64) float64 {
	before := en.Metabolic
	en.Metabolic += cals
	if en.Metabolic > en.Max {
		en.Metabolic = en.Max
	}
	return en.Metabolic - before
}

// Starved reports whether the reserve is exhausted.
func Starved(en *components.Energy) bool {
	return en.Metabolic <= 0
}

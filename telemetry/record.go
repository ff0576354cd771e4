// Package telemetry handles run output: per-organism tick logs, daily
// aggregate statistics, lifetime accounting, and the post-run summary
// database.
package telemetry

// TickRecord is one row of an organism's data log.
type TickRecord struct {
	Step       int    `csv:"step"`
	OrganismID uint32 `csv:"organism_id"`
	Site       string `csv:"site"`
	Experiment string `csv:"experiment"`

	Hour   int    `csv:"hour"`
	Day    int    `csv:"day"`
	Month  int    `csv:"month"`
	Year   int    `csv:"year"`
	Season string `csv:"season"`

	Alive        bool    `csv:"alive"`
	Active       bool    `csv:"active"`
	Mass         float64 `csv:"mass"`
	Behavior     string  `csv:"behavior"`
	Microhabitat string  `csv:"microhabitat"`

	BodyTemperature float64 `csv:"body_temperature"`
	EnvTemperature  float64 `csv:"t_env"`
	ThermalAccuracy float64 `csv:"thermal_accuracy"`
	ThermalQuality  float64 `csv:"thermal_quality"`

	MetabolicState  float64 `csv:"metabolic_state"`
	PreyDensity     float64 `csv:"prey_density"`
	AttackRate      float64 `csv:"attack_rate"`
	PreyEncountered int     `csv:"prey_encountered"`
	PreyConsumed    int     `csv:"prey_consumed"`
	SearchCounter   int     `csv:"search_counter"`

	CauseOfDeath string `csv:"cause_of_death"`
}

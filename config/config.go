// Package config provides configuration loading, validation, and access for
// the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Model       ModelConfig       `yaml:"model"`
	Landscape   LandscapeConfig   `yaml:"landscape"`
	Snake       SnakeConfig       `yaml:"snake"`
	Interaction InteractionConfig `yaml:"interaction"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ModelConfig identifies the run and sizes the population.
type ModelConfig struct {
	Site       string `yaml:"site"`
	Experiment string `yaml:"experiment"`
	Population int    `yaml:"population"`
}

// LandscapeConfig points at the thermal environment inputs.
type LandscapeConfig struct {
	ThermalProfile string `yaml:"thermal_profile"` // CSV with datetime, open, burrow columns
}

// BodySizeConfig parameterizes the truncated normal body mass distribution.
type BodySizeConfig struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// ThermalPreferenceConfig holds the thermal niche of the organism.
type ThermalPreferenceConfig struct {
	K        float64 `yaml:"k"` // Newtonian cooling constant per minute
	TPrefMin float64 `yaml:"t_pref_min"`
	TPrefMax float64 `yaml:"t_pref_max"`
	TOpt     float64 `yaml:"t_opt"`
}

// VoluntaryCTConfig holds the survivable thermal envelope. Body temperatures
// outside [min_temp, max_temp] accumulate stress; max_steps consecutive
// ticks outside is lethal.
type VoluntaryCTConfig struct {
	MinTemp  float64 `yaml:"min_temp"`
	MaxTemp  float64 `yaml:"max_temp"`
	MaxSteps int     `yaml:"max_steps"`
}

// SMRConfig holds the standard metabolic rate regression coefficients.
type SMRConfig struct {
	X1Mass  float64 `yaml:"x1_mass"`  // body mass exponent
	X2Temp  float64 `yaml:"x2_temp"`  // temperature sensitivity
	X3Const float64 `yaml:"x3_const"` // intercept
}

// BrumationConfig holds the winter dormancy parameters.
type BrumationConfig struct {
	DatesFile   string  `yaml:"dates_file"` // JSON calendar, empty = no brumation
	Temperature float64 `yaml:"temperature"`
}

// ActivityCoefficients scale the metabolic cost of each behavior.
type ActivityCoefficients struct {
	Rest           float64 `yaml:"rest"`
	Thermoregulate float64 `yaml:"thermoregulate"`
	Forage         float64 `yaml:"forage"`
	Search         float64 `yaml:"search"`
	Brumation      float64 `yaml:"brumation"`
}

// SnakeConfig holds the focal organism's physiology and schedule.
type SnakeConfig struct {
	BodySize             BodySizeConfig          `yaml:"body_size"`
	InitialBodyTemp      float64                 `yaml:"initial_body_temperature"`
	InitialCalories      float64                 `yaml:"initial_calories"`
	MaxMeals             int                     `yaml:"max_meals"`
	ActiveHours          []int                   `yaml:"active_hours"`
	ThermalPreference    ThermalPreferenceConfig `yaml:"thermal_preference"`
	VoluntaryCT          VoluntaryCTConfig       `yaml:"voluntary_ct"`
	SMR                  SMRConfig               `yaml:"smr"`
	StrikePerformance    float64                 `yaml:"strike_performance"`
	DeltaT               float64                 `yaml:"delta_t"` // minutes per tick
	Brumation            BrumationConfig         `yaml:"brumation"`
	ActivityCoefficients ActivityCoefficients    `yaml:"activity_coefficients"`
}

// InteractionConfig holds the predator-prey interaction parameters.
type InteractionConfig struct {
	CaloriesPerGram     float64      `yaml:"calories_per_gram"`
	DigestionEfficiency float64      `yaml:"digestion_efficiency"`
	PreyBodySize        float64      `yaml:"prey_body_size"` // grams
	HandlingTime        float64      `yaml:"handling_time"`  // ticks per prey item
	AttackRate          RangeOrValue `yaml:"attack_rate"`
	PreyDensity         RangeOrValue `yaml:"prey_density"`
	SearchingBehavior   bool         `yaml:"searching_behavior"`
	PreyActiveHours     []int        `yaml:"prey_active_hours"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ActiveHourSet     [24]bool // hours the organism may be active
	PreyActiveHourSet [24]bool // hours prey are available
	MaxMetabolicState float64  // reserve ceiling in calories
	MealCalories      float64  // assimilated calories per prey item
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks range and consistency constraints so the simulation core
// can trust its inputs.
func (c *Config) Validate() error {
	if c.Model.Population <= 0 {
		return fmt.Errorf("model.population must be positive, got %d", c.Model.Population)
	}

	bs := c.Snake.BodySize
	if bs.Std < 0 {
		return fmt.Errorf("snake.body_size.std must be non-negative, got %v", bs.Std)
	}
	if bs.Min >= bs.Max {
		return fmt.Errorf("snake.body_size: min %v must be below max %v", bs.Min, bs.Max)
	}
	if bs.Mean < bs.Min || bs.Mean > bs.Max {
		return fmt.Errorf("snake.body_size: mean %v outside [%v, %v]", bs.Mean, bs.Min, bs.Max)
	}

	tp := c.Snake.ThermalPreference
	if tp.K <= 0 {
		return fmt.Errorf("snake.thermal_preference.k must be positive, got %v", tp.K)
	}
	if tp.TPrefMin >= tp.TPrefMax {
		return fmt.Errorf("snake.thermal_preference: t_pref_min %v must be below t_pref_max %v", tp.TPrefMin, tp.TPrefMax)
	}
	if tp.TOpt <= tp.TPrefMin || tp.TOpt >= tp.TPrefMax {
		return fmt.Errorf("snake.thermal_preference: t_opt %v outside (%v, %v)", tp.TOpt, tp.TPrefMin, tp.TPrefMax)
	}

	ct := c.Snake.VoluntaryCT
	if ct.MinTemp >= ct.MaxTemp {
		return fmt.Errorf("snake.voluntary_ct: min_temp %v must be below max_temp %v", ct.MinTemp, ct.MaxTemp)
	}
	if ct.MaxSteps <= 0 {
		return fmt.Errorf("snake.voluntary_ct.max_steps must be positive, got %d", ct.MaxSteps)
	}

	if c.Snake.StrikePerformance < 0 || c.Snake.StrikePerformance > 1 {
		return fmt.Errorf("snake.strike_performance must be in [0, 1], got %v", c.Snake.StrikePerformance)
	}
	if c.Snake.DeltaT <= 0 {
		return fmt.Errorf("snake.delta_t must be positive, got %v", c.Snake.DeltaT)
	}
	if c.Snake.MaxMeals <= 0 {
		return fmt.Errorf("snake.max_meals must be positive, got %d", c.Snake.MaxMeals)
	}
	if len(c.Snake.ActiveHours) == 0 {
		return fmt.Errorf("snake.active_hours must not be empty")
	}
	if err := validateHours("snake.active_hours", c.Snake.ActiveHours); err != nil {
		return err
	}

	in := c.Interaction
	if in.CaloriesPerGram <= 0 {
		return fmt.Errorf("interaction.calories_per_gram must be positive, got %v", in.CaloriesPerGram)
	}
	if in.DigestionEfficiency < 0 || in.DigestionEfficiency > 1 {
		return fmt.Errorf("interaction.digestion_efficiency must be in [0, 1], got %v", in.DigestionEfficiency)
	}
	if in.PreyBodySize <= 0 {
		return fmt.Errorf("interaction.prey_body_size must be positive, got %v", in.PreyBodySize)
	}
	if in.HandlingTime < 1 {
		return fmt.Errorf("interaction.handling_time must be at least 1, got %v", in.HandlingTime)
	}
	if err := in.AttackRate.validate("interaction.attack_rate"); err != nil {
		return err
	}
	if err := in.PreyDensity.validate("interaction.prey_density"); err != nil {
		return err
	}
	if err := validateHours("interaction.prey_active_hours", in.PreyActiveHours); err != nil {
		return err
	}

	return nil
}

// validateHours checks a list of clock hours. 24 is accepted as an alias for
// midnight and normalized later.
func validateHours(field string, hours []int) error {
	for _, h := range hours {
		if h < 0 || h > 24 {
			return fmt.Errorf("%s: hour %d outside [0, 24]", field, h)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ActiveHourSet = hourSet(c.Snake.ActiveHours)
	c.Derived.PreyActiveHourSet = hourSet(c.Interaction.PreyActiveHours)

	c.Derived.MealCalories = c.Interaction.PreyBodySize *
		c.Interaction.CaloriesPerGram *
		c.Interaction.DigestionEfficiency
	c.Derived.MaxMetabolicState = float64(c.Snake.MaxMeals) * c.Derived.MealCalories
}

// hourSet converts a list of clock hours to a membership array, folding the
// alias 24 onto 0.
func hourSet(hours []int) [24]bool {
	var set [24]bool
	for _, h := range hours {
		if h == 24 {
			h = 0
		}
		set[h] = true
	}
	return set
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

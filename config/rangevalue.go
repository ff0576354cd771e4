package config

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"
)

// RangeOrValue is a parameter that is either a fixed scalar or a uniform
// range sampled per organism at initialization. In YAML it is written either
// as a bare number or as a {min, max} mapping.
type RangeOrValue struct {
	Min   float64
	Max   float64
	Fixed bool
}

// rangeYAML is the mapping form of RangeOrValue.
type rangeYAML struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// UnmarshalYAML accepts a scalar or a {min, max} mapping.
func (r *RangeOrValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("range value: %w", err)
		}
		*r = RangeOrValue{Min: v, Max: v, Fixed: true}
		return nil
	case yaml.MappingNode:
		var m rangeYAML
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("range value: %w", err)
		}
		*r = RangeOrValue{Min: m.Min, Max: m.Max}
		return nil
	default:
		return fmt.Errorf("range value: expected scalar or {min, max} mapping, got %v", node.Kind)
	}
}

// MarshalYAML writes the scalar form for fixed values and the mapping form
// for ranges.
func (r RangeOrValue) MarshalYAML() (interface{}, error) {
	if r.Fixed {
		return r.Min, nil
	}
	return rangeYAML{Min: r.Min, Max: r.Max}, nil
}

// Sample draws a value: the scalar itself when fixed, otherwise uniform over
// [Min, Max).
func (r RangeOrValue) Sample(rng *rand.Rand) float64 {
	if r.Fixed || r.Min == r.Max {
		return r.Min
	}
	u := distuv.Uniform{Min: r.Min, Max: r.Max, Src: rng}
	return u.Rand()
}

func (r RangeOrValue) validate(field string) error {
	if r.Min < 0 {
		return fmt.Errorf("%s: must be non-negative, got %v", field, r.Min)
	}
	if !r.Fixed && r.Min > r.Max {
		return fmt.Errorf("%s: min %v exceeds max %v", field, r.Min, r.Max)
	}
	return nil
}

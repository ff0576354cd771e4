package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DayStats holds aggregated statistics for one simulation day.
type DayStats struct {
	Year   int    `csv:"year"`
	Month  int    `csv:"month"`
	Day    int    `csv:"day"`
	Season string `csv:"season"`

	Alive int `csv:"alive"`

	DeathsCold       int `csv:"deaths_cold"`
	DeathsHeat       int `csv:"deaths_heat"`
	DeathsStarvation int `csv:"deaths_starvation"`

	// Behavior-ticks during the day
	RestTicks           int `csv:"rest_ticks"`
	ThermoregulateTicks int `csv:"thermoregulate_ticks"`
	ForageTicks         int `csv:"forage_ticks"`
	SearchTicks         int `csv:"search_ticks"`
	BrumationTicks      int `csv:"brumation_ticks"`
	ActiveTicks         int `csv:"active_ticks"`

	PreyConsumed int `csv:"prey_consumed"`

	// Distributions sampled at end of day over living organisms
	BodyTempMean float64 `csv:"body_temp_mean"`
	ReserveMean  float64 `csv:"reserve_mean"`
	ReserveP10   float64 `csv:"reserve_p10"`
	ReserveP50   float64 `csv:"reserve_p50"`
	ReserveP90   float64 `csv:"reserve_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeReserveStats calculates mean and percentiles from reserve values.
func ComputeReserveStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s DayStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("month", s.Month),
		slog.Int("day", s.Day),
		slog.String("season", s.Season),
		slog.Int("alive", s.Alive),
		slog.Int("deaths_cold", s.DeathsCold),
		slog.Int("deaths_heat", s.DeathsHeat),
		slog.Int("deaths_starvation", s.DeathsStarvation),
		slog.Int("rest_ticks", s.RestTicks),
		slog.Int("thermoregulate_ticks", s.ThermoregulateTicks),
		slog.Int("forage_ticks", s.ForageTicks),
		slog.Int("search_ticks", s.SearchTicks),
		slog.Int("brumation_ticks", s.BrumationTicks),
		slog.Int("active_ticks", s.ActiveTicks),
		slog.Int("prey_consumed", s.PreyConsumed),
		slog.Float64("body_temp_mean", s.BodyTempMean),
		slog.Float64("reserve_mean", s.ReserveMean),
		slog.Float64("reserve_p10", s.ReserveP10),
		slog.Float64("reserve_p50", s.ReserveP50),
		slog.Float64("reserve_p90", s.ReserveP90),
	)
}

// LogStats logs the day stats using slog.
func (s DayStats) LogStats() {
	slog.Info("daily_stats", "stats", s)
}

package systems

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/michaelremington2/suffugium/components"
	"github.com/michaelremington2/suffugium/config"
	"github.com/michaelremington2/suffugium/landscape"
)

func testSelector(t *testing.T, seed uint64) (*Selector, *config.Config) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cal, err := config.LoadBrumationCalendar("", cfg.Model.Site)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	return NewSelector(cfg, cal, rng), cfg
}

func livingOrganism(metabolic, max, bodyTemp float64) (components.Organism, components.Thermal, components.Energy, components.Foraging) {
	org := components.Organism{ID: 1, Alive: true}
	th := components.Thermal{BodyTemp: bodyTemp}
	en := components.Energy{Metabolic: metabolic, Max: max, BodyMass: 250}
	fg := components.Foraging{AttackRate: 1, PreyDensity: 1000}
	return org, th, en, fg
}

// ---------- Utilities ----------

func TestUtilitiesFullReserve(t *testing.T) {
	s, cfg := testSelector(t, 1)
	_, th, en, _ := livingOrganism(100, 100, cfg.Snake.ThermalPreference.TOpt)

	u := s.Utilities(&th, &en)
	if u[0] != 1 {
		t.Errorf("rest utility = %v, want 1", u[0])
	}
	if u[2] != 0 {
		t.Errorf("forage utility = %v, want 0", u[2])
	}
	if u[1] != 0 {
		t.Errorf("thermoregulate utility at optimum = %v, want 0", u[1])
	}
}

func TestUtilitiesThermoregulateMargin(t *testing.T) {
	s, cfg := testSelector(t, 1)
	cfg.Snake.ThermalPreference = config.ThermalPreferenceConfig{
		K: 0.01, TPrefMin: 27, TPrefMax: 31, TOpt: 29,
	}

	// One degree above a 29 degree optimum with a 2 degree band above.
	_, th, en, _ := livingOrganism(50, 100, 30)
	u := s.Utilities(&th, &en)
	if math.Abs(u[1]-0.5) > 1e-9 {
		t.Errorf("thermoregulate utility = %v, want 0.5", u[1])
	}

	// Far outside the band the utility caps at 1.
	th.BodyTemp = 45
	u = s.Utilities(&th, &en)
	if u[1] != 1 {
		t.Errorf("capped utility = %v, want 1", u[1])
	}

	// Below the optimum the lower band applies.
	th.BodyTemp = 28
	u = s.Utilities(&th, &en)
	if math.Abs(u[1]-0.5) > 1e-9 {
		t.Errorf("below-optimum utility = %v, want 0.5", u[1])
	}
}

func TestUtilitiesRestForageComplement(t *testing.T) {
	s, cfg := testSelector(t, 1)
	_, th, en, _ := livingOrganism(25, 100, cfg.Snake.ThermalPreference.TOpt)

	u := s.Utilities(&th, &en)
	if math.Abs(u[0]-0.25) > 1e-9 || math.Abs(u[2]-0.75) > 1e-9 {
		t.Errorf("rest/forage = %v/%v, want 0.25/0.75", u[0], u[2])
	}
}

func TestWeightsAllZeroUniform(t *testing.T) {
	s, _ := testSelector(t, 1)
	w := s.Weights([3]float64{0, 0, 0})
	for _, v := range w {
		if math.Abs(v-1.0/3) > 1e-9 {
			t.Fatalf("all-zero utilities should sample uniformly, got %v", w)
		}
	}
}

// ---------- Deterministic choices ----------

func TestChooseBehaviorStarvingForages(t *testing.T) {
	s, cfg := testSelector(t, 3)
	// Empty reserve at the thermal optimum: forage utility 1, others 0,
	// so sparsemax concentrates all mass on foraging.
	_, th, en, _ := livingOrganism(0, 100, cfg.Snake.ThermalPreference.TOpt)

	for i := 0; i < 20; i++ {
		if got := s.chooseBehavior(&th, &en); got != components.BehaviorForage {
			t.Fatalf("choice %d = %s, want Forage", i, got)
		}
	}
}

func TestChooseBehaviorFullReserveRests(t *testing.T) {
	s, cfg := testSelector(t, 4)
	_, th, en, _ := livingOrganism(100, 100, cfg.Snake.ThermalPreference.TOpt)

	for i := 0; i < 20; i++ {
		if got := s.chooseBehavior(&th, &en); got != components.BehaviorRest {
			t.Fatalf("choice %d = %s, want Rest", i, got)
		}
	}
}

// ---------- Priority chain ----------

func TestStepBrumationOverridesEverything(t *testing.T) {
	s, cfg := testSelector(t, 5)

	path := filepath.Join(t.TempDir(), "brumation.json")
	if err := os.WriteFile(path, []byte(`{"canyon": ["11-1"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	cal, err := config.LoadBrumationCalendar(path, "canyon")
	if err != nil {
		t.Fatal(err)
	}
	s.cal = cal

	org, th, en, fg := livingOrganism(0, 100, cfg.Snake.ThermalPreference.TOpt)
	th.StressCount = 3
	fg.SearchCounter = 2

	snap := landscape.Snapshot{Hour: 20, Day: 1, Month: 11}
	if err := s.Step(&org, &th, &en, &fg, snap); err != nil {
		t.Fatal(err)
	}
	if org.Behavior != components.BehaviorBrumation {
		t.Errorf("behavior = %s, want Brumation", org.Behavior)
	}
	if org.Microhabitat != components.HabitatWinterBurrow {
		t.Errorf("microhabitat = %s, want Winter_Burrow", org.Microhabitat)
	}
}

func TestStepInactiveHourRests(t *testing.T) {
	s, cfg := testSelector(t, 6)
	org, th, en, fg := livingOrganism(0, 100, cfg.Snake.ThermalPreference.TOpt)
	fg.PreyEncountered = 9
	fg.PreyConsumed = 9

	// Noon is outside the default activity schedule.
	snap := landscape.Snapshot{Hour: 12, Day: 15, Month: 6}
	if err := s.Step(&org, &th, &en, &fg, snap); err != nil {
		t.Fatal(err)
	}
	if org.Behavior != components.BehaviorRest {
		t.Errorf("behavior = %s, want Rest", org.Behavior)
	}
	if org.Microhabitat != components.HabitatBurrow {
		t.Errorf("microhabitat = %s, want Burrow", org.Microhabitat)
	}
	if fg.PreyEncountered != 0 || fg.PreyConsumed != 0 {
		t.Error("per-tick prey counters should reset at the start of the step")
	}
}

func TestStepThermalStressForcesThermoregulation(t *testing.T) {
	s, cfg := testSelector(t, 7)
	org, th, en, fg := livingOrganism(0, 100, cfg.Snake.ThermalPreference.TOpt)
	th.StressCount = 1
	fg.SearchCounter = 2

	snap := landscape.Snapshot{Hour: 20, Day: 15, Month: 6, OpenTemp: 35, BurrowTemp: 22}
	if err := s.Step(&org, &th, &en, &fg, snap); err != nil {
		t.Fatal(err)
	}
	if org.Behavior != components.BehaviorThermoregulate {
		t.Errorf("behavior = %s, want Thermoregulate", org.Behavior)
	}
	if fg.SearchCounter != 2 {
		t.Error("search counter should not advance while thermally stressed")
	}
}

func TestStepSearchCountsDown(t *testing.T) {
	s, cfg := testSelector(t, 8)
	org, th, en, fg := livingOrganism(0, 100, cfg.Snake.ThermalPreference.TOpt)
	fg.SearchCounter = 2

	snap := landscape.Snapshot{Hour: 20, Day: 15, Month: 6}
	if err := s.Step(&org, &th, &en, &fg, snap); err != nil {
		t.Fatal(err)
	}
	if org.Behavior != components.BehaviorSearch {
		t.Errorf("behavior = %s, want Search", org.Behavior)
	}
	if org.Microhabitat != components.HabitatOpen {
		t.Errorf("microhabitat = %s, want Open", org.Microhabitat)
	}
	if fg.SearchCounter != 1 {
		t.Errorf("search counter = %d, want 1", fg.SearchCounter)
	}
}

// ---------- Foraging ----------

func TestStepForageOffPreyHours(t *testing.T) {
	s, cfg := testSelector(t, 9)
	// Hour 10: organism active, prey unavailable.
	cfg.Derived.ActiveHourSet[10] = true
	cfg.Derived.PreyActiveHourSet[10] = false

	org, th, en, fg := livingOrganism(0, 100, cfg.Snake.ThermalPreference.TOpt)
	snap := landscape.Snapshot{Hour: 10, Day: 15, Month: 6}

	for i := 0; i < 50; i++ {
		if err := s.Step(&org, &th, &en, &fg, snap); err != nil {
			t.Fatal(err)
		}
		if org.Behavior != components.BehaviorForage {
			t.Fatalf("behavior = %s, want Forage", org.Behavior)
		}
		if fg.PreyEncountered != 0 {
			t.Fatal("prey captured outside prey activity hours")
		}
		en.Metabolic = 0
	}
}

func TestStepForageCapturesAndSearch(t *testing.T) {
	s, cfg := testSelector(t, 10)
	org, th, en, fg := livingOrganism(0, 1e9, cfg.Snake.ThermalPreference.TOpt)
	en.Max = 1e9

	snap := landscape.Snapshot{Hour: 20, Day: 15, Month: 6}

	totalConsumed := 0
	sawSearchSeed := false
	for i := 0; i < 300; i++ {
		fg.SearchCounter = 0
		en.Metabolic = 0 // keep forage utility at 1
		before := en.Metabolic
		if err := s.Step(&org, &th, &en, &fg, snap); err != nil {
			t.Fatal(err)
		}
		if fg.PreyConsumed != fg.PreyEncountered {
			t.Fatalf("consumed %d of %d encountered", fg.PreyConsumed, fg.PreyEncountered)
		}
		if fg.PreyConsumed > 0 {
			gained := en.Metabolic - before
			want := float64(fg.PreyConsumed) * cfg.Derived.MealCalories
			if math.Abs(gained-want) > 1e-9 {
				t.Fatalf("gained %v calories from %d captures, want %v", gained, fg.PreyConsumed, want)
			}
			if fg.SearchCounter != int(cfg.Interaction.HandlingTime)-1 {
				t.Fatalf("search counter = %d, want handling-1", fg.SearchCounter)
			}
			sawSearchSeed = true
			totalConsumed += fg.PreyConsumed
		}
	}
	if totalConsumed == 0 {
		t.Error("no captures in 300 foraging ticks with dense prey")
	}
	if !sawSearchSeed {
		t.Error("capture never seeded the search counter")
	}
}

func TestStepForageRejectsBadStrike(t *testing.T) {
	s, cfg := testSelector(t, 11)
	cfg.Snake.StrikePerformance = 1.5

	org, th, en, fg := livingOrganism(0, 100, cfg.Snake.ThermalPreference.TOpt)
	snap := landscape.Snapshot{Hour: 20, Day: 15, Month: 6}
	if err := s.Step(&org, &th, &en, &fg, snap); err == nil {
		t.Error("strike performance above 1 should surface as an error")
	}
}

// ---------- Thermoregulation target ----------

func TestThermoregMicrohabitat(t *testing.T) {
	cases := []struct {
		name         string
		burrow, open float64
		want         components.Microhabitat
	}{
		{"burrow closer to optimum", 25, 40, components.HabitatBurrow},
		{"open closer to optimum", 22, 35, components.HabitatOpen},
		{"burrow nearly optimal", 28, 45, components.HabitatBurrow},
		{"tie goes to open", 27, 31, components.HabitatOpen},
		{"equal temperatures", 20, 20, components.HabitatOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ThermoregMicrohabitat(29, tc.burrow, tc.open)
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

// ---------- Activity coefficients ----------

func TestActivityCoefficient(t *testing.T) {
	ac := config.ActivityCoefficients{Rest: 1, Thermoregulate: 1.5, Forage: 1.5, Search: 2, Brumation: 0.5}
	if got := ActivityCoefficient(&ac, components.BehaviorSearch); got != 2 {
		t.Errorf("search coefficient = %v", got)
	}
	if got := ActivityCoefficient(&ac, components.BehaviorBrumation); got != 0.5 {
		t.Errorf("brumation coefficient = %v", got)
	}
}

package systems

import (
	"math"
	"testing"

	"github.com/michaelremington2/suffugium/components"
)

// ---------- Newtonian cooling ----------

func TestCoolingEq(t *testing.T) {
	// One hour of cooling from 25 toward a 10 degree environment with
	// k = 0.01/min: 10 + 15*exp(-0.6).
	got := CoolingEq(0.01, 25, 10, 60)
	if math.Abs(got-18.23) > 0.01 {
		t.Errorf("CoolingEq = %v, want 18.23", got)
	}
}

func TestCoolingEqEquilibrium(t *testing.T) {
	if got := CoolingEq(0.01, 22, 22, 60); got != 22 {
		t.Errorf("body at ambient should stay put, got %v", got)
	}
}

func TestCoolingEqWarming(t *testing.T) {
	got := CoolingEq(0.01, 15, 30, 60)
	if got <= 15 || got >= 30 {
		t.Errorf("warming body should move toward ambient without overshoot, got %v", got)
	}
}

// ---------- Ambient resolution ----------

func TestEnvTemperature(t *testing.T) {
	if got := EnvTemperature(components.HabitatOpen, 31, 24, 10); got != 31 {
		t.Errorf("open = %v", got)
	}
	if got := EnvTemperature(components.HabitatBurrow, 31, 24, 10); got != 24 {
		t.Errorf("burrow = %v", got)
	}
	if got := EnvTemperature(components.HabitatWinterBurrow, 31, 24, 10); got != 10 {
		t.Errorf("winter burrow = %v", got)
	}
}

func TestEnvTemperaturePanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("unknown microhabitat should panic")
		}
	}()
	EnvTemperature(components.Microhabitat(99), 31, 24, 10)
}

// ---------- Thermal stress ----------

func TestThermalStressColdDeath(t *testing.T) {
	org := components.Organism{ID: 1, Alive: true}
	th := components.Thermal{BodyTemp: 2}

	if err := UpdateThermalStress(&org, &th, 5, 42, 2); err != nil {
		t.Fatal(err)
	}
	if !org.Alive || th.StressCount != 1 {
		t.Fatalf("after first cold tick: alive=%v count=%d", org.Alive, th.StressCount)
	}

	if err := UpdateThermalStress(&org, &th, 5, 42, 2); err != nil {
		t.Fatal(err)
	}
	if org.Alive {
		t.Error("organism should die on reaching max cold steps")
	}
	if org.Cause != components.DeathCold {
		t.Errorf("cause = %s, want Cold", org.Cause)
	}
}

func TestThermalStressHeatDeath(t *testing.T) {
	org := components.Organism{ID: 2, Alive: true}
	th := components.Thermal{BodyTemp: 45}

	for i := 0; i < 2; i++ {
		if err := UpdateThermalStress(&org, &th, 5, 42, 2); err != nil {
			t.Fatal(err)
		}
	}
	if org.Alive {
		t.Error("organism should die on reaching max heat steps")
	}
	if org.Cause != components.DeathHeat {
		t.Errorf("cause = %s, want Heat", org.Cause)
	}
}

func TestThermalStressBoundsInclusive(t *testing.T) {
	org := components.Organism{ID: 3, Alive: true}
	th := components.Thermal{BodyTemp: 5, StressCount: 3}

	// Sitting exactly on the bound is tolerable and resets the counter.
	if err := UpdateThermalStress(&org, &th, 5, 42, 10); err != nil {
		t.Fatal(err)
	}
	if th.StressCount != 0 {
		t.Errorf("count at lower bound = %d, want 0", th.StressCount)
	}

	th.BodyTemp = 42
	th.StressCount = 3
	if err := UpdateThermalStress(&org, &th, 5, 42, 10); err != nil {
		t.Fatal(err)
	}
	if th.StressCount != 0 {
		t.Errorf("count at upper bound = %d, want 0", th.StressCount)
	}
	if !org.Alive {
		t.Error("organism inside bounds should stay alive")
	}
}

func TestThermalStressRecovery(t *testing.T) {
	org := components.Organism{ID: 4, Alive: true}
	th := components.Thermal{BodyTemp: 2}

	if err := UpdateThermalStress(&org, &th, 5, 42, 5); err != nil {
		t.Fatal(err)
	}
	th.BodyTemp = 20
	if err := UpdateThermalStress(&org, &th, 5, 42, 5); err != nil {
		t.Fatal(err)
	}
	if th.StressCount != 0 {
		t.Errorf("recovered organism keeps stress count %d", th.StressCount)
	}
}

func TestThermalStressSkipsDead(t *testing.T) {
	org := components.Organism{ID: 5, Alive: false}
	th := components.Thermal{BodyTemp: 2, StressCount: 7}
	if err := UpdateThermalStress(&org, &th, 5, 42, 2); err != nil {
		t.Fatal(err)
	}
	if th.StressCount != 7 {
		t.Error("dead organisms should not accumulate stress")
	}
}

// ---------- Derived metrics ----------

func TestThermalMetrics(t *testing.T) {
	if got := ThermalAccuracy(29, 26); got != 3 {
		t.Errorf("ThermalAccuracy = %v, want 3", got)
	}
	if got := ThermalQuality(29, 33.5); got != 4.5 {
		t.Errorf("ThermalQuality = %v, want 4.5", got)
	}
}

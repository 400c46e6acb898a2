package scenario

import (
	"errors"
	"testing"

	"wsnsim/internal/config"
)

func TestLoadScenario(t *testing.T) {
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Name != "example" {
		t.Fatalf("unexpected name %s", sc.Name)
	}
	if sc.Description != "basic test scenario" {
		t.Fatalf("unexpected description %s", sc.Description)
	}
	if len(sc.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(sc.Runs))
	}

	runs, err := sc.Configs(config.Default())
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	quiet, hostile := runs[0].Config, runs[1].Config
	if runs[0].Name != "quiet" || quiet.AttackFraction != 0 || quiet.Rounds != 30 || quiet.Seed != 11 {
		t.Fatalf("unexpected quiet run %+v", runs[0])
	}
	if hostile.AttackFraction != 0.25 || hostile.UtilityModel != config.UtilityLinear || hostile.Rounds != 30 {
		t.Fatalf("unexpected hostile run %+v", runs[1])
	}
	if hostile.Nodes != config.Default().Nodes {
		t.Fatalf("unset fields must keep the base value")
	}
}

func TestConfigsRejectsInvalidRun(t *testing.T) {
	sc, err := Load("testdata/invalid.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if _, err := sc.Configs(config.Default()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse([]byte("name: x\nruns:\n  - name: a\n    overrides:\n      range: 3\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := Parse([]byte("name: empty\n")); err == nil {
		t.Fatalf("expected error for scenario without runs")
	}
}

func TestBuiltInSweeps(t *testing.T) {
	sweeps := BuiltIn()
	for _, n := range []string{"attack-sweep", "density-sweep", "scale-sweep"} {
		sw, ok := sweeps[n]
		if !ok {
			t.Fatalf("sweep %s not found", n)
		}
		if sw.Description == "" {
			t.Fatalf("sweep %s missing description", n)
		}
		runs, err := sw.Configs(config.Default())
		if err != nil {
			t.Fatalf("sweep %s: %v", n, err)
		}
		seen := map[string]bool{}
		for _, r := range runs {
			if seen[r.Name] {
				t.Fatalf("sweep %s has duplicate run %s", n, r.Name)
			}
			seen[r.Name] = true
		}
	}
	attack, _ := sweeps["attack-sweep"].Configs(config.Default())
	if attack[0].Name != "attack-0.00" || attack[0].Config.AttackFraction != 0 {
		t.Fatalf("unexpected first attack run %+v", attack[0])
	}
	scale, _ := sweeps["scale-sweep"].Configs(config.Default())
	for _, r := range scale {
		if r.Config.Rounds != 100 {
			t.Fatalf("scale sweep base override not applied to %s", r.Name)
		}
	}
}

func TestResolve(t *testing.T) {
	s, err := Resolve("density-sweep")
	if err != nil || s.Name != "density-sweep" {
		t.Fatalf("expected built-in, got %v %v", s, err)
	}
	if _, err := Resolve("testdata/simple.yaml"); err != nil {
		t.Fatalf("expected file scenario: %v", err)
	}
	if _, err := Resolve("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing scenario")
	}
}

func TestConfigsOnMapValue(t *testing.T) {
	runs, err := BuiltIn()["density-sweep"].Configs(config.Default())
	if err != nil {
		t.Fatalf("Configs: %v", err)
	}
	if len(runs) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(runs))
	}
	if runs[0].Name != "range-80" || runs[0].Config.CommRange != 80 {
		t.Fatalf("unexpected first density run %+v", runs[0])
	}
	if runs[3].Config.CommRange != 160 {
		t.Fatalf("unexpected last density run %+v", runs[3])
	}
}

package scenario

import "fmt"

func ptr[T any](v T) *T { return &v }

// BuiltIn returns predefined sweeps over the reference configuration.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"attack-sweep": {
			Name:        "attack-sweep",
			Description: "Raise the malicious fraction from none to a third of the field.",
			Runs:        fractionRuns(0, 0.05, 0.1, 0.2, 0.33),
		},
		"density-sweep": {
			Name:        "density-sweep",
			Description: "Shrink and grow the radio range around the reference density.",
			Runs: []Run{
				{Name: "range-80", Overrides: Overrides{CommRange: ptr(80.0)}},
				{Name: "range-100", Overrides: Overrides{CommRange: ptr(100.0)}},
				{Name: "range-120", Overrides: Overrides{CommRange: ptr(120.0)}},
				{Name: "range-160", Overrides: Overrides{CommRange: ptr(160.0)}},
			},
		},
		"scale-sweep": {
			Name:        "scale-sweep",
			Description: "Grow the field and node count together at constant density.",
			Base:        Overrides{Rounds: ptr(100)},
			Runs: []Run{
				{Name: "n40", Overrides: Overrides{Nodes: ptr(40), Width: ptr(354.0), Height: ptr(354.0)}},
				{Name: "n80", Overrides: Overrides{Nodes: ptr(80), Width: ptr(500.0), Height: ptr(500.0)}},
				{Name: "n160", Overrides: Overrides{Nodes: ptr(160), Width: ptr(707.0), Height: ptr(707.0)}},
			},
		},
	}
}

func fractionRuns(fractions ...float64) []Run {
	runs := make([]Run, len(fractions))
	for i, f := range fractions {
		runs[i] = Run{Name: fmt.Sprintf("attack-%.2f", f), Overrides: Overrides{AttackFraction: ptr(f)}}
	}
	return runs
}

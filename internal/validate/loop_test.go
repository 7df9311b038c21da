package validate

import (
	"strings"
	"testing"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

func overBudgetSpec(total int) *vbs.Spec {
	return &vbs.Spec{
		BeatID: "s02b01",
		Shot:   vbs.ShotSpec{ShotType: "wide"},
		Environment: vbs.Environment{
			LocationVisual: "ridge",
		},
		Vehicle: &vbs.Vehicle{
			Description: "skimmer",
			SpatialNote: strings.Repeat("x", 80),
		},
		Constraints: vbs.Constraints{
			TokenBudget:         vbs.TokenBudget{Total: total},
			CompactionDropOrder: append([]string(nil), vbs.DefaultCompactionDropOrder...),
		},
	}
}

func TestRunCompactionDropsSpatialNoteFirst(t *testing.T) {
	spec := overBudgetSpec(10)

	report := Run(spec)

	if !report.Valid {
		t.Fatalf("one compaction step should bring the prompt under budget: %v", report.Issues)
	}
	if report.IterationCount != 1 {
		t.Fatalf("expected one iteration, got %d", report.IterationCount)
	}
	if spec.Vehicle.SpatialNote != "" {
		t.Fatalf("spatial note must be the first compaction target")
	}
	if len(report.RepairsApplied) != 1 || report.RepairsApplied[0] != "compacted vehicle.spatialNote" {
		t.Fatalf("unexpected repairs: %v", report.RepairsApplied)
	}
}

func TestRunCompactionOneStepPerIteration(t *testing.T) {
	spec := overBudgetSpec(10)
	spec.Environment.Props = []string{strings.Repeat("y", 80)}

	report := Run(spec)

	if !report.Valid {
		t.Fatalf("two compaction steps should suffice: %v", report.Issues)
	}
	if report.IterationCount != 2 {
		t.Fatalf("each iteration compacts once, expected 2 iterations, got %d", report.IterationCount)
	}
	want := []string{"compacted vehicle.spatialNote", "compacted environment.props"}
	if len(report.RepairsApplied) != len(want) {
		t.Fatalf("unexpected repairs: %v", report.RepairsApplied)
	}
	for i, w := range want {
		if report.RepairsApplied[i] != w {
			t.Fatalf("compaction order violated at %d: %v", i, report.RepairsApplied)
		}
	}
	if spec.Environment.Props != nil {
		t.Fatalf("props should be dropped on the second pass")
	}
}

func TestRunIterationCapReturnsBestEffort(t *testing.T) {
	spec := overBudgetSpec(1)
	spec.Environment.Props = []string{strings.Repeat("y", 80)}
	spec.Environment.FX = strings.Repeat("z", 80)

	report := Run(spec)

	if report.Valid {
		t.Fatalf("an irreducible overrun must not report valid")
	}
	if report.IterationCount != MaxRepairIterations {
		t.Fatalf("expected the cap of %d iterations, got %d", MaxRepairIterations, report.IterationCount)
	}
	if !report.MaxIterationsReached {
		t.Fatalf("cap flag must be set")
	}
	if report.FinalPrompt == "" {
		t.Fatalf("the best-effort prompt must still be returned")
	}
	found := false
	for _, i := range report.Issues {
		if i.Code == IssueTokenBudgetExceeded {
			found = true
		}
	}
	if !found {
		t.Fatalf("residual budget issue must remain in the report: %v", report.Issues)
	}
}

func TestRunStopsWhenNoStrategyCanAct(t *testing.T) {
	spec := &vbs.Spec{
		BeatID:      "s02b02",
		Shot:        vbs.ShotSpec{ShotType: "wide"},
		Environment: vbs.Environment{LocationVisual: strings.Repeat("r", 60)},
		Constraints: vbs.Constraints{
			TokenBudget:         vbs.TokenBudget{Total: 1},
			CompactionDropOrder: append([]string(nil), vbs.DefaultCompactionDropOrder...),
		},
	}

	report := Run(spec)

	if report.Valid {
		t.Fatalf("nothing compactable, report must stay invalid")
	}
	if report.IterationCount != 1 {
		t.Fatalf("loop should stop after the first no-op iteration, got %d", report.IterationCount)
	}
	if len(report.RepairsApplied) != 0 {
		t.Fatalf("no repairs should apply: %v", report.RepairsApplied)
	}
}

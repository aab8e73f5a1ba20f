package alignment

import (
	"math"
	"testing"
)

func TestPlanSpeedsUpOverrunningClip(t *testing.T) {
	planner := NewPlanner(0.5, 2.5)
	plan := planner.Plan(10, 5, 0)
	if plan.SpeedFactor != 2.0 {
		t.Fatalf("speed factor = %v, want 2.0", plan.SpeedFactor)
	}
}

func TestPlanNeverSlowsDown(t *testing.T) {
	planner := NewPlanner(0.5, 2.5)
	plan := planner.Plan(2, 10, 0)
	if plan.SpeedFactor != 1.0 {
		t.Fatalf("short clips keep natural pace, got %v", plan.SpeedFactor)
	}
	if len(plan.TempoChain) != 1 || plan.TempoChain[0] != 1.0 {
		t.Fatalf("unexpected chain %v", plan.TempoChain)
	}
}

func TestPlanClampsToCeiling(t *testing.T) {
	planner := NewPlanner(0.5, 2.5)
	plan := planner.Plan(20, 2, 0)
	if plan.SpeedFactor != 2.5 {
		t.Fatalf("speed factor = %v, want ceiling 2.5", plan.SpeedFactor)
	}
}

func TestPlanFloorsSlotDuration(t *testing.T) {
	planner := NewPlanner(0.5, 2.5)
	// A degenerate slot is floored before the division.
	plan := planner.Plan(1, 0.01, 0)
	if plan.SpeedFactor != 2.0 {
		t.Fatalf("speed factor = %v, want 1/0.5 = 2.0", plan.SpeedFactor)
	}
}

func TestPlanPlacementOffset(t *testing.T) {
	planner := NewPlanner(0.5, 2.5)
	if got := planner.Plan(1, 1, 12.3456).PlacementOffsetMs; got != 12345 {
		t.Fatalf("offset = %d, want 12345", got)
	}
	if got := planner.Plan(1, 1, 0).PlacementOffsetMs; got != 0 {
		t.Fatalf("offset at t=0 should be 0, got %d", got)
	}
}

func TestTempoChainStaysPrimitive(t *testing.T) {
	planner := NewPlanner(0.5, 4.0)
	plan := planner.Plan(32, 10, 0) // 3.2x
	product := 1.0
	for _, stage := range plan.TempoChain {
		if stage < primitiveTempoMin || stage > primitiveTempoMax {
			t.Fatalf("stage %v outside primitive range in %v", stage, plan.TempoChain)
		}
		product *= stage
	}
	if math.Abs(product-3.2) > 1e-9 {
		t.Fatalf("chain product = %v, want 3.2", product)
	}
	if len(plan.TempoChain) != 2 || plan.TempoChain[0] != 2.0 {
		t.Fatalf("3.2x should split as [2.0 1.6], got %v", plan.TempoChain)
	}
}

func TestEndToEndScenarioFactors(t *testing.T) {
	// One segment 0s-2s, synthesis came back 3s long.
	planner := NewPlanner(0.5, 2.5)
	plan := planner.Plan(3, 2, 0)
	if plan.SpeedFactor != 1.5 {
		t.Fatalf("speed factor = %v, want 1.5", plan.SpeedFactor)
	}
	if plan.PlacementOffsetMs != 0 {
		t.Fatalf("offset = %d, want 0", plan.PlacementOffsetMs)
	}
}

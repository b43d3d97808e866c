package agents

import (
	"context"
	"testing"

	"github.com/vampirenirmal/codeagents/internal/gateway"
)

func TestPlanFromGarbageResponse(t *testing.T) {
	client := gateway.NewMockClient("complete nonsense with no json anywhere")
	planner := NewPlanner(gateway.New(client, nil), nil)

	plan := planner.Plan(context.Background(), "sum a list", "python")

	if !plan.IsEmpty() {
		t.Errorf("expected empty plan, got %+v", plan)
	}
	if plan.ProblemAnalysis != "" {
		t.Errorf("problem_analysis = %q", plan.ProblemAnalysis)
	}
}

func TestPlanHappyPath(t *testing.T) {
	client := gateway.NewMockClient(`{
		"problem_analysis": "sum reduction over a list",
		"approach": ["read input", "accumulate", "print"],
		"recommended_libraries": [],
		"algorithms": ["linear scan"],
		"data_structures": ["list"],
		"design_patterns": [],
		"edge_cases": ["empty list"],
		"performance_considerations": ["O(n) single pass"]
	}`)
	planner := NewPlanner(gateway.New(client, nil), nil)

	plan := planner.Plan(context.Background(), "sum a list", "python")

	if plan.ProblemAnalysis != "sum reduction over a list" {
		t.Errorf("analysis = %q", plan.ProblemAnalysis)
	}
	if len(plan.Approach) != 3 {
		t.Errorf("approach = %v", plan.Approach)
	}
	if len(plan.EdgeCases) != 1 || plan.EdgeCases[0] != "empty list" {
		t.Errorf("edge_cases = %v", plan.EdgeCases)
	}
}

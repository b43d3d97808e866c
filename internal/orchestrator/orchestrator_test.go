package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/vampirenirmal/codeagents/internal/agents"
	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/gateway"
	"github.com/vampirenirmal/codeagents/internal/sandbox"
)

func init() {
	sandbox.RegisterRuntime("shelltest", sandbox.Runtime{
		Extension: "sh",
		Run:       func(src, out string) []string { return []string{"/bin/sh", src} },
	})
}

// newPipeline wires an orchestrator whose single scripted model response
// serves every gateway call. A shell-script response makes structured calls
// degrade while the generated "code" runs for real in the sandbox.
func newPipeline(response string, opts ...Option) (*Orchestrator, *gateway.MockClient) {
	client := gateway.NewMockClient(response)
	gw := gateway.New(client, nil)
	researcher := agents.NewResearcher(gw, nil, nil)
	runner := sandbox.NewRunner()
	return New(gw, researcher, runner, opts...), client
}

type phaseRecord struct {
	phase    domain.Phase
	progress int
}

func recordPhases(records *[]phaseRecord) domain.PhaseCallback {
	return func(phase domain.Phase, progress int) {
		*records = append(*records, phaseRecord{phase, progress})
	}
}

func TestSolvePassingRunSkipsRefinement(t *testing.T) {
	o, _ := newPipeline(`echo "TEST RESULT: PASS - ok - Input: 1 Expected: 1 Got: 1"`)

	var phases []phaseRecord
	result := o.Solve(context.Background(), domain.Request{
		Requirements: "print a passing marker",
		Language:     "shelltest",
	}, recordPhases(&phases))

	if result.Status != domain.StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	if result.Solution.TestResults == nil || !result.Solution.TestResults.Passed {
		t.Errorf("test results = %+v", result.Solution.TestResults)
	}
	for _, rec := range phases {
		if strings.HasPrefix(string(rec.phase), "refinement") {
			t.Errorf("refinement phase emitted on a passing run: %v", phases)
		}
	}
	last := phases[len(phases)-1]
	if last.phase != domain.PhaseCompleted || last.progress != 100 {
		t.Errorf("final phase = %+v", last)
	}
}

func TestSolveRefinementBound(t *testing.T) {
	o, _ := newPipeline(`echo "TEST RESULT: FAIL - wrong - Input: 1 Expected: 1 Got: 2"`)

	var phases []phaseRecord
	result := o.Solve(context.Background(), domain.Request{
		Requirements: "always fails",
		Language:     "shelltest",
	}, recordPhases(&phases))

	// Exhausting the bound is best-effort completion, not failure.
	if result.Status != domain.StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	refinements := 0
	for _, rec := range phases {
		if strings.HasPrefix(string(rec.phase), "refinement") {
			refinements++
		}
	}
	if refinements != DefaultMaxRefinements {
		t.Errorf("refinement phases = %d, want %d (phases: %v)", refinements, DefaultMaxRefinements, phases)
	}
	if phases[len(phases)-1].phase != domain.PhaseCompleted {
		t.Errorf("final phase = %+v", phases[len(phases)-1])
	}
}

func TestSolveProgressMonotonic(t *testing.T) {
	o, _ := newPipeline(`echo "TEST RESULT: FAIL - wrong - Input: 1 Expected: 1 Got: 2"`)

	var phases []phaseRecord
	o.Solve(context.Background(), domain.Request{
		Requirements: "always fails",
		Language:     "shelltest",
	}, recordPhases(&phases))

	prev := -1
	for _, rec := range phases {
		if rec.progress < prev {
			t.Fatalf("progress went backwards: %v", phases)
		}
		prev = rec.progress
	}
}

func TestSolveCancelledContext(t *testing.T) {
	o, _ := newPipeline("irrelevant")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var phases []phaseRecord
	result := o.Solve(ctx, domain.Request{
		Requirements: "anything",
		Language:     "shelltest",
	}, recordPhases(&phases))

	if result.Status != domain.StatusFailed || result.Error == "" {
		t.Fatalf("result = %+v", result)
	}
	last := phases[len(phases)-1]
	if last.phase != domain.PhaseFailed || last.progress != 0 {
		t.Errorf("final phase = %+v", last)
	}
}

func TestSolveRecoversFromPanic(t *testing.T) {
	client := gateway.NewMockClient("x")
	gw := gateway.New(client, nil)
	// nil researcher forces a panic in the research phase.
	o := New(gw, nil, sandbox.NewRunner())

	result := o.Solve(context.Background(), domain.Request{
		Requirements: "anything",
		Language:     "shelltest",
	}, nil)

	if result.Status != domain.StatusFailed {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(result.Error, "internal pipeline error") {
		t.Errorf("error = %q", result.Error)
	}
}

func TestSolveWithZeroRefinements(t *testing.T) {
	o, _ := newPipeline(
		`echo "TEST RESULT: FAIL - wrong - Input: 1 Expected: 1 Got: 2"`,
		WithMaxRefinements(0),
	)

	var phases []phaseRecord
	o.Solve(context.Background(), domain.Request{
		Requirements: "always fails",
		Language:     "shelltest",
	}, recordPhases(&phases))

	for _, rec := range phases {
		if strings.HasPrefix(string(rec.phase), "refinement") {
			t.Errorf("refinement emitted with a zero bound: %v", phases)
		}
	}
}

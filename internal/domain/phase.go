package domain

import "fmt"

// Phase identifies where a run currently is in the pipeline. Transitions are
// monotonic forward, except the numbered refinement phases which repeat up to
// the configured attempt bound.
type Phase string

const (
	PhasePlanning       Phase = "planning"
	PhaseResearch       Phase = "research"
	PhaseCodeGeneration Phase = "code_generation"
	PhaseTestExecution  Phase = "test_execution"
	PhaseRefinement     Phase = "refinement"
	PhaseCompleted      Phase = "completed"
	PhaseFailed         Phase = "failed"
)

// RefinementPhase names the Nth pass through the refinement loop.
func RefinementPhase(attempt int) Phase {
	return Phase(fmt.Sprintf("refinement_%d", attempt))
}

// PhaseCallback receives every forward phase transition together with a
// monotonically increasing progress percentage. It is the sole observability
// hook the pipeline exposes to its caller.
type PhaseCallback func(phase Phase, progress int)

// AgentRole tags every piece of inter-agent feedback with its producer, so
// the developer can categorize insights without matching on agent-name
// substrings.
type AgentRole int

const (
	RoleSystem AgentRole = iota
	RolePlanner
	RoleResearcher
	RoleDeveloper
	RoleTester
)

// String returns the role's wire name.
func (r AgentRole) String() string {
	switch r {
	case RolePlanner:
		return "planner"
	case RoleResearcher:
		return "researcher"
	case RoleDeveloper:
		return "developer"
	case RoleTester:
		return "tester"
	default:
		return "system"
	}
}

// Feedback is one tagged message exchanged during the refinement loop.
// Exactly one payload field is set, matching the role.
type Feedback struct {
	Role     AgentRole
	Plan     *Plan
	Research *ResearchFindings
	Artifact *CodeArtifact
	Outcome  *TestOutcome
	Language string
}

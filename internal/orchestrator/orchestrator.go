// Package orchestrator drives the pipeline state machine: planning →
// research → code generation → test execution → bounded refinement.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/vampirenirmal/codeagents/internal/agents"
	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/gateway"
	"github.com/vampirenirmal/codeagents/internal/lang"
	"github.com/vampirenirmal/codeagents/internal/sandbox"
	"github.com/vampirenirmal/codeagents/internal/store"
)

// DefaultMaxRefinements bounds the refinement loop.
const DefaultMaxRefinements = 3

// Progress weights per phase.
const (
	progressPlanning       = 10
	progressResearch       = 30
	progressCodeGeneration = 50
	progressTestExecution  = 70
	progressRefinement     = 85
	progressCompleted      = 100
)

// Orchestrator coordinates the agents, the sandbox, and the optional
// artifact store for one or more pipeline runs. It is safe for concurrent
// runs; no per-run state lives on the struct.
type Orchestrator struct {
	planner        *agents.Planner
	researcher     *agents.Researcher
	developer      *agents.Developer
	tester         *agents.Tester
	documenter     *agents.Documenter
	runner         *sandbox.Runner
	gw             *gateway.Gateway
	artifacts      store.Store
	maxRefinements int
	logger         *slog.Logger
}

type Option func(*Orchestrator)

// WithMaxRefinements overrides the refinement attempt bound.
func WithMaxRefinements(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxRefinements = n
		}
	}
}

// WithArtifactStore enables per-run persistence of intermediate artifacts.
func WithArtifactStore(s store.Store) Option {
	return func(o *Orchestrator) {
		o.artifacts = s
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New wires an orchestrator from a gateway, an optional search client
// embedded in the researcher, and a sandbox runner.
func New(gw *gateway.Gateway, researcher *agents.Researcher, runner *sandbox.Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner:        agents.NewPlanner(gw, nil),
		researcher:     researcher,
		developer:      agents.NewDeveloper(gw, nil),
		tester:         agents.NewTester(gw, nil),
		documenter:     agents.NewDocumenter(gw, nil),
		runner:         runner,
		gw:             gw,
		maxRefinements: DefaultMaxRefinements,
		logger:         slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Solve runs the full pipeline for one request. It always returns a Result
// carrying either a populated Solution or a non-empty Error; panics and
// cancellation are converted, never propagated. Callback invocations are
// strictly ordered with monotonically non-decreasing progress.
func (o *Orchestrator) Solve(ctx context.Context, req domain.Request, callback domain.PhaseCallback) (result domain.Result) {
	runID := uuid.New().String()
	logger := o.logger.With("run_id", runID)

	notify := func(phase domain.Phase, progress int) {
		logger.Info("phase transition", "phase", phase, "progress", progress)
		if callback != nil {
			callback(phase, progress)
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("pipeline panicked", "panic", rec)
			notify(domain.PhaseFailed, 0)
			result = domain.Result{
				Status: domain.StatusFailed,
				Error:  fmt.Sprintf("internal pipeline error: %v", rec),
			}
		}
	}()

	fail := func(phase domain.Phase, err error) domain.Result {
		logger.Error("pipeline failed", "phase", phase, "error", err)
		notify(domain.PhaseFailed, 0)
		return domain.Result{Status: domain.StatusFailed, Error: err.Error()}
	}

	requirements := req.Requirements
	if req.AdditionalContext != "" {
		requirements = requirements + "\n\nAdditional context:\n" + req.AdditionalContext
	}

	// Cancellation is cooperative: checked between phases, never mid-call.
	if err := ctx.Err(); err != nil {
		return fail(domain.PhasePlanning, err)
	}
	notify(domain.PhasePlanning, progressPlanning)
	plan := o.planner.Plan(ctx, requirements, req.Language)
	o.persist(ctx, runID, "plan.json", plan, logger)

	if err := ctx.Err(); err != nil {
		return fail(domain.PhaseResearch, err)
	}
	notify(domain.PhaseResearch, progressResearch)
	research := o.researcher.Research(ctx, requirements, req.Language, plan)
	o.persist(ctx, runID, "research.json", research, logger)

	if err := ctx.Err(); err != nil {
		return fail(domain.PhaseCodeGeneration, err)
	}
	notify(domain.PhaseCodeGeneration, progressCodeGeneration)
	artifact := o.developer.Generate(ctx, requirements, req.Language, plan, research)

	cases := ExtractTestCases(requirements)
	cases = synthesizeTestCases(ctx, o.gw, requirements, req.Language, cases)

	if err := ctx.Err(); err != nil {
		return fail(domain.PhaseTestExecution, err)
	}
	notify(domain.PhaseTestExecution, progressTestExecution)
	script := o.tester.GenerateTestScript(ctx, artifact.Code, req.Language, cases)
	outcome := o.runner.Execute(ctx, script, req.Language)

	artifact, outcome = o.refine(ctx, req, plan, research, artifact, outcome, cases, notify, logger)

	notify(domain.PhaseCompleted, progressCompleted)

	solution := domain.Solution{
		ProblemAnalysis:           plan.ProblemAnalysis,
		Approach:                  plan.Approach,
		Code:                      artifact.Code,
		FileStructure:             artifact.FileStructure,
		Language:                  req.Language,
		Libraries:                 artifact.Libraries,
		BestPractices:             artifact.BestPractices,
		PerformanceConsiderations: plan.PerformanceConsiderations,
		TestResults:               &outcome,
	}
	o.persist(ctx, runID, "solution.json", solution, logger)

	logger.Info("run finished", "passed", outcome.Passed, "code_length", len(artifact.Code))
	return domain.Result{Status: domain.StatusSuccess, Solution: solution}
}

// refine loops collaborate → regenerate tests → re-execute up to the attempt
// bound. It stops early on a pass or when the developer has nothing to
// refine; exhausting the bound is still best-effort completion, not failure.
func (o *Orchestrator) refine(
	ctx context.Context,
	req domain.Request,
	plan domain.Plan,
	research domain.ResearchFindings,
	artifact domain.CodeArtifact,
	outcome domain.TestOutcome,
	cases []domain.TestCase,
	notify func(domain.Phase, int),
	logger *slog.Logger,
) (domain.CodeArtifact, domain.TestOutcome) {
	if outcome.Passed {
		return artifact, outcome
	}

	for attempt := 1; attempt <= o.maxRefinements; attempt++ {
		if ctx.Err() != nil {
			return artifact, outcome
		}
		notify(domain.RefinementPhase(attempt), progressRefinement)

		analyzed := outcome
		analyzed.Summary = o.tester.AnalyzeFailures(ctx, artifact.Code, outcome)

		refined, ok := o.developer.Collaborate(ctx, []domain.Feedback{
			{Role: domain.RoleDeveloper, Artifact: &artifact, Language: req.Language},
			{Role: domain.RolePlanner, Plan: &plan},
			{Role: domain.RoleResearcher, Research: &research},
			{Role: domain.RoleTester, Outcome: &analyzed},
		})
		if !ok {
			logger.Info("nothing left to refine", "attempt", attempt)
			return artifact, outcome
		}

		artifact = refined
		script := o.tester.GenerateTestScript(ctx, artifact.Code, req.Language, cases)
		outcome = o.runner.Execute(ctx, script, req.Language)
		if outcome.Passed {
			logger.Info("refinement succeeded", "attempt", attempt)
			// Refined code superseded the original wholesale; its layout
			// recommendation is stale.
			artifact.FileStructure = o.developer.ExtractFileStructure(
				ctx, artifact.Code, req.Language, lang.Extension(req.Language))
			return artifact, outcome
		}
	}
	logger.Warn("refinement bound exhausted", "max_refinements", o.maxRefinements)
	return artifact, outcome
}

// Document produces markdown documentation from finished artifacts. It is a
// terminal consumer of the pipeline, independent of the core loop.
func (o *Orchestrator) Document(ctx context.Context, req agents.DocRequest) (string, error) {
	return o.documenter.Document(ctx, req)
}

// persist writes one artifact to the optional store; persistence failures
// are logged and never affect the run.
func (o *Orchestrator) persist(ctx context.Context, runID, name string, artifact interface{}, logger *slog.Logger) {
	if o.artifacts == nil {
		return
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		logger.Warn("artifact marshal failed", "artifact", name, "error", err)
		return
	}
	if err := o.artifacts.Save(ctx, path.Join(runID, name), data); err != nil {
		logger.Warn("artifact save failed", "artifact", name, "error", err)
	}
}

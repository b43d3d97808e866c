// Package agents implements the pipeline's four LLM-backed roles plus the
// documentation generator. Every agent follows the same degradation policy:
// no method returns an error; a failed model interaction yields a usable
// zero-shaped value.
package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/gateway"
)

// Planner turns raw requirements into a structured Plan.
type Planner struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewPlanner(gw *gateway.Gateway, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{gw: gw, logger: logger.With("agent", "planner")}
}

func planSchema() *gateway.Schema {
	return gateway.Object(map[string]*gateway.Schema{
		"problem_analysis":           gateway.Str("analysis of the problem and its constraints"),
		"approach":                   gateway.Array(gateway.Str("one ordered implementation step")),
		"recommended_libraries":      gateway.Array(gateway.Str("library worth using")),
		"algorithms":                 gateway.Array(gateway.Str("algorithm relevant to the problem")),
		"data_structures":            gateway.Array(gateway.Str("data structure relevant to the problem")),
		"design_patterns":            gateway.Array(gateway.Str("applicable design pattern")),
		"edge_cases":                 gateway.Array(gateway.Str("edge case the solution must handle")),
		"performance_considerations": gateway.Array(gateway.Str("performance concern or optimization")),
	})
}

// Plan performs a single structured-output call. Gateway degradation yields a
// Plan with every field present and empty; downstream stages still run.
func (p *Planner) Plan(ctx context.Context, requirements, language string) domain.Plan {
	prompt := fmt.Sprintf(`You are an expert software architect. Analyze the following coding problem and produce a structured implementation plan.

Target language: %s

Problem:
%s

Break the problem down: analyze it, list ordered implementation steps, and recommend libraries, algorithms, data structures, design patterns, edge cases, and performance considerations relevant to the %s ecosystem.`,
		language, requirements, language)

	data := p.gw.GenerateStructured(ctx, prompt, planSchema())

	plan := domain.Plan{
		ProblemAnalysis:           strField(data, "problem_analysis"),
		Approach:                  strSliceField(data, "approach"),
		RecommendedLibraries:      strSliceField(data, "recommended_libraries"),
		Algorithms:                strSliceField(data, "algorithms"),
		DataStructures:            strSliceField(data, "data_structures"),
		DesignPatterns:            strSliceField(data, "design_patterns"),
		EdgeCases:                 strSliceField(data, "edge_cases"),
		PerformanceConsiderations: strSliceField(data, "performance_considerations"),
	}

	if plan.IsEmpty() {
		p.logger.Warn("planning degraded to an empty plan", "language", language)
	} else {
		p.logger.Info("plan produced",
			"steps", len(plan.Approach),
			"libraries", len(plan.RecommendedLibraries),
			"edge_cases", len(plan.EdgeCases))
	}
	return plan
}

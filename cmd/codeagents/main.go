package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vampirenirmal/codeagents/internal/agents"
	"github.com/vampirenirmal/codeagents/internal/config"
	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/gateway"
	"github.com/vampirenirmal/codeagents/internal/lang"
	"github.com/vampirenirmal/codeagents/internal/orchestrator"
	"github.com/vampirenirmal/codeagents/internal/sandbox"
	"github.com/vampirenirmal/codeagents/internal/search"
	"github.com/vampirenirmal/codeagents/internal/store"
)

func main() {
	var (
		language  = flag.String("lang", "python", "target programming language")
		reqFile   = flag.String("file", "", "read requirements from a file instead of arguments")
		extra     = flag.String("context", "", "additional context for the problem")
		withDocs  = flag.Bool("docs", false, "also generate markdown documentation")
		outputDir = flag.String("out", "", "output directory (defaults to configured path)")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	requirements, err := readRequirements(*reqFile, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}

	client := gateway.NewClient(cfg.AI.APIKey,
		gateway.WithAPIConfig(cfg.AI.BaseURL, cfg.AI.Model),
		gateway.WithTimeout(time.Duration(cfg.AI.Timeout)*time.Second),
		gateway.WithRetry(cfg.Limits.MaxRetries),
		gateway.WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize),
		gateway.WithLogger(logger),
	)
	gw := gateway.New(client, logger)

	var searcher search.Client
	if cfg.Search.APIKey != "" {
		var searchOpts []search.Option
		if cfg.Search.Endpoint != "" {
			searchOpts = append(searchOpts, search.WithEndpoint(cfg.Search.Endpoint))
		}
		searcher = search.NewHTTPClient(cfg.Search.APIKey, searchOpts...)
	}

	researcher := agents.NewResearcher(gw, searcher, logger)
	runner := sandbox.NewRunner(
		sandbox.WithExecutionTimeout(cfg.Limits.ExecutionTimeout),
		sandbox.WithRunnerLogger(logger),
	)
	artifacts := store.NewFileSystem(cfg.Paths.OutputDir)

	orc := orchestrator.New(gw, researcher, runner,
		orchestrator.WithMaxRefinements(cfg.Limits.MaxRefinements),
		orchestrator.WithArtifactStore(artifacts),
		orchestrator.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Limits.TotalTimeout)
	defer cancel()

	result := orc.Solve(ctx, domain.Request{
		Requirements:      requirements,
		Language:          *language,
		AdditionalContext: *extra,
	}, func(phase domain.Phase, progress int) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", progress, phase)
	})

	if result.Status != domain.StatusSuccess {
		fmt.Fprintf(os.Stderr, "run failed: %s\n", result.Error)
		os.Exit(1)
	}

	solutionPath := "solution." + lang.Extension(*language)
	if err := artifacts.Save(ctx, solutionPath, []byte(result.Solution.Code)); err != nil {
		fmt.Fprintf(os.Stderr, "writing solution: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("solution written to %s\n", filepath.Join(cfg.Paths.OutputDir, solutionPath))

	if result.Solution.TestResults != nil {
		fmt.Printf("tests: %s\n", result.Solution.TestResults.Summary)
	}

	if *withDocs {
		doc, err := orc.Document(ctx, agents.DocRequest{
			Requirements:   requirements,
			Plan:           result.Solution.ProblemAnalysis,
			Implementation: result.Solution.Code,
			Testing:        testSummary(result.Solution.TestResults),
			Language:       *language,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "documentation: %v\n", err)
		} else if err := artifacts.Save(ctx, "README.md", []byte(doc)); err != nil {
			fmt.Fprintf(os.Stderr, "writing documentation: %v\n", err)
		} else {
			fmt.Printf("documentation written to %s\n", filepath.Join(cfg.Paths.OutputDir, "README.md"))
		}
	}
}

func readRequirements(file string, args []string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading requirements file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("usage: codeagents [flags] <requirements text> (or -file requirements.txt)")
	}
	return strings.Join(args, " "), nil
}

func testSummary(outcome *domain.TestOutcome) string {
	if outcome == nil {
		return ""
	}
	return outcome.Summary
}

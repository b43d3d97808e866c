package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/lang"
)

// DefaultTimeout bounds one combined solution+test script execution.
const DefaultTimeout = 10 * time.Second

// Runner executes generated code and classifies the result. It never lets an
// error escape: every code path returns a TestOutcome the refinement loop can
// act on.
type Runner struct {
	timeout time.Duration
	logger  *slog.Logger
}

type RunnerOption func(*Runner)

func WithExecutionTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		timeout: DefaultTimeout,
		logger:  slog.Default().With("component", "sandbox"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute materializes code in a fresh temp directory, compiles if the
// language requires it, runs with a hard wall-clock timeout, and parses the
// output into per-case results. The directory is removed on every exit path.
func (r *Runner) Execute(ctx context.Context, code, language string) domain.TestOutcome {
	start := time.Now()
	canonical := lang.Clean(language)

	rt, ok := LookupRuntime(canonical)
	if !ok {
		return domain.TestOutcome{
			Passed:  false,
			Results: []domain.CaseResult{},
			Summary: "execution skipped",
			Error:   fmt.Sprintf("unsupported language: %s", language),
		}
	}

	dir, err := os.MkdirTemp("", "codeagents-run-")
	if err != nil {
		return domain.TestOutcome{
			Passed:  false,
			Results: []domain.CaseResult{},
			Summary: "execution skipped",
			Error:   fmt.Sprintf("creating work directory: %v", err),
		}
	}
	defer os.RemoveAll(dir)

	sourceName := rt.SourceName
	if sourceName == "" {
		sourceName = "main." + rt.Extension
	}
	src := filepath.Join(dir, sourceName)
	if err := os.WriteFile(src, []byte(code), 0o644); err != nil {
		return domain.TestOutcome{
			Passed:  false,
			Results: []domain.CaseResult{},
			Summary: "execution skipped",
			Error:   fmt.Sprintf("writing source file: %v", err),
		}
	}
	bin := filepath.Join(dir, "program")

	if rt.Compile != nil {
		if outcome, failed := r.compile(ctx, rt, dir, src, bin, start); failed {
			return outcome
		}
	}

	outcome := r.run(ctx, rt, dir, src, bin)

	// One remediation attempt for a missing runtime dependency, then a
	// single re-run. Remediation failure reports the original outcome.
	if !outcome.Passed && rt.MissingDependency != nil && rt.Install != nil {
		if pkg := rt.MissingDependency(outcome.RawOutput + outcome.Error); pkg != "" {
			r.logger.Info("missing dependency detected, attempting install",
				"language", canonical, "package", pkg)
			if r.install(ctx, rt, dir, pkg) {
				retry := r.run(ctx, rt, dir, src, bin)
				if retry.Passed || rt.MissingDependency(retry.RawOutput+retry.Error) == "" {
					outcome = retry
				}
			}
		}
	}

	outcome.ExecutionTimeMS = time.Since(start).Milliseconds()
	r.logger.Info("execution finished",
		"language", canonical,
		"passed", outcome.Passed,
		"cases", len(outcome.Results),
		"duration_ms", outcome.ExecutionTimeMS)
	return outcome
}

func (r *Runner) compile(ctx context.Context, rt Runtime, dir, src, bin string, start time.Time) (domain.TestOutcome, bool) {
	argv := rt.Compile(src, bin)
	_, stderr, err := r.runCommand(ctx, dir, argv)
	if err == nil {
		return domain.TestOutcome{}, false
	}
	if stderr == "" {
		stderr = err.Error()
	}
	r.logger.Warn("compilation failed", "command", argv[0], "error", err)
	return domain.TestOutcome{
		Passed:          false,
		Results:         []domain.CaseResult{},
		Summary:         "compilation failed",
		Error:           stderr,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}, true
}

func (r *Runner) run(ctx context.Context, rt Runtime, dir, src, bin string) domain.TestOutcome {
	argv := rt.Run(src, bin)
	stdout, stderr, err := r.runCommand(ctx, dir, argv)

	// Most test frameworks report to stderr; parse both streams together.
	combined := stdout + stderr

	outcome := domain.TestOutcome{RawOutput: combined}

	if errors.Is(err, context.DeadlineExceeded) {
		outcome.Passed = false
		outcome.Results = []domain.CaseResult{}
		outcome.Summary = "execution timed out"
		outcome.Error = fmt.Sprintf("execution timed out after %s", r.timeout)
		return outcome
	}
	if err != nil {
		outcome.Error = err.Error()
		if stderr != "" {
			outcome.Error = stderr
		}
	}

	results, structured := ParseResults(combined)
	passed := len(results) > 0
	for _, res := range results {
		if !res.Passed {
			passed = false
		}
	}

	// Without a structured signal a non-zero exit overrides the output
	// heuristic.
	if !structured && err != nil {
		passed = false
		for i := range results {
			results[i].Passed = false
			results[i].Error = outcome.Error
		}
	}

	outcome.Passed = passed
	outcome.Results = results
	outcome.Summary = summarize(results)
	return outcome
}

func (r *Runner) install(ctx context.Context, rt Runtime, dir, pkg string) bool {
	argv := rt.Install(pkg)
	_, stderr, err := r.runCommand(ctx, dir, argv)
	if err != nil {
		r.logger.Warn("dependency install failed", "package", pkg, "error", err, "stderr", stderr)
		return false
	}
	return true
}

// runCommand executes argv in dir under the runner timeout, returning stdout
// and stderr separately. A context.DeadlineExceeded error marks a timeout.
func (r *Runner) runCommand(ctx context.Context, dir string, argv []string) (string, string, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	// Descendants of the killed process can hold the output pipes open;
	// stop waiting on them shortly after the context is canceled so the
	// timeout stays a hard wall-clock bound.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		err = context.DeadlineExceeded
	}
	return stdout.String(), stderr.String(), err
}

func summarize(results []domain.CaseResult) string {
	passed := 0
	for _, res := range results {
		if res.Passed {
			passed++
		}
	}
	return fmt.Sprintf("%d of %d test cases passed", passed, len(results))
}

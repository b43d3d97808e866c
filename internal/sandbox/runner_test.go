package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"
)

// shell runtimes let the runner be exercised without any language toolchain
// installed.
func registerShellRuntime(t *testing.T, name string, rt Runtime) {
	t.Helper()
	RegisterRuntime(name, rt)
}

func shRuntime() Runtime {
	return Runtime{
		Extension: "sh",
		Run:       func(src, out string) []string { return []string{"/bin/sh", src} },
	}
}

func TestExecuteParsesResultLines(t *testing.T) {
	registerShellRuntime(t, "shelltest", shRuntime())
	runner := NewRunner()

	script := `echo "TEST RESULT: PASS - doubles - Input: 2 Expected: 4 Got: 4"
echo "TEST RESULT: PASS - zero - Input: 0 Expected: 0 Got: 0"
`
	outcome := runner.Execute(context.Background(), script, "shelltest")

	if !outcome.Passed {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(outcome.Results) != 2 {
		t.Errorf("results = %+v", outcome.Results)
	}
	if outcome.Summary != "2 of 2 test cases passed" {
		t.Errorf("summary = %q", outcome.Summary)
	}
}

func TestExecuteFailingCase(t *testing.T) {
	registerShellRuntime(t, "shelltest", shRuntime())
	runner := NewRunner()

	script := `echo "TEST RESULT: FAIL - doubles - Input: 2 Expected: 4 Got: 5"`
	outcome := runner.Execute(context.Background(), script, "shelltest")

	if outcome.Passed {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(outcome.Results) != 1 || outcome.Results[0].ActualOutput != "5" {
		t.Errorf("results = %+v", outcome.Results)
	}
}

func TestExecuteTimeout(t *testing.T) {
	registerShellRuntime(t, "shelltest", shRuntime())
	runner := NewRunner(WithExecutionTimeout(200 * time.Millisecond))

	start := time.Now()
	outcome := runner.Execute(context.Background(), "sleep 5\n", "shelltest")
	elapsed := time.Since(start)

	if outcome.Passed {
		t.Fatal("timed-out execution must not pass")
	}
	if !strings.Contains(outcome.Error, "timed out") {
		t.Errorf("error = %q", outcome.Error)
	}
	if elapsed > 3*time.Second {
		t.Errorf("runner returned after %s, timeout was 200ms", elapsed)
	}
}

func TestExecuteCompileFailure(t *testing.T) {
	registerShellRuntime(t, "compiled-shell", Runtime{
		Extension: "sh",
		Compile: func(src, out string) []string {
			return []string{"/bin/sh", "-c", "echo 'syntax error near line 3' >&2; exit 1"}
		},
		Run: func(src, out string) []string { return []string{"/bin/sh", src} },
	})
	runner := NewRunner()

	outcome := runner.Execute(context.Background(), "echo hi\n", "compiled-shell")

	if outcome.Passed {
		t.Fatal("compile failure must not pass")
	}
	if len(outcome.Results) != 0 {
		t.Errorf("results must be empty, got %+v", outcome.Results)
	}
	if !strings.Contains(outcome.Error, "syntax error near line 3") {
		t.Errorf("compiler stderr not carried verbatim: %q", outcome.Error)
	}
}

func TestExecuteIdempotent(t *testing.T) {
	registerShellRuntime(t, "shelltest", shRuntime())
	runner := NewRunner()

	script := `echo "TEST RESULT: PASS - stable - Input: 1 Expected: 1 Got: 1"`
	first := runner.Execute(context.Background(), script, "shelltest")
	second := runner.Execute(context.Background(), script, "shelltest")

	if first.Passed != second.Passed {
		t.Errorf("verdicts differ: %v vs %v", first.Passed, second.Passed)
	}
}

func TestExecuteUnsupportedLanguage(t *testing.T) {
	runner := NewRunner()
	outcome := runner.Execute(context.Background(), "code", "cobol-2026")

	if outcome.Passed || !strings.Contains(outcome.Error, "unsupported language") {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestExecuteInstallsMissingDependencyOnce(t *testing.T) {
	registerShellRuntime(t, "needs-dep", Runtime{
		Extension: "sh",
		Run:       func(src, out string) []string { return []string{"/bin/sh", src} },
		MissingDependency: func(output string) string {
			if strings.Contains(output, "Cannot find module 'left-pad'") {
				return "left-pad"
			}
			return ""
		},
		Install: func(pkg string) []string { return []string{"touch", "installed-" + pkg} },
	})
	runner := NewRunner()

	// Fails until the install command drops its marker file in the work dir,
	// then the single re-run passes.
	script := `if [ -f installed-left-pad ]; then
  echo "TEST RESULT: PASS - runs with dep - Input: x Expected: y Got: y"
else
  echo "Cannot find module 'left-pad'" >&2
  exit 1
fi
`
	outcome := runner.Execute(context.Background(), script, "needs-dep")

	if !outcome.Passed {
		t.Fatalf("re-run after install should pass: %+v", outcome)
	}
}

func TestExecuteInstallFailureReportsOriginalError(t *testing.T) {
	registerShellRuntime(t, "dep-install-broken", Runtime{
		Extension: "sh",
		Run:       func(src, out string) []string { return []string{"/bin/sh", src} },
		MissingDependency: func(output string) string {
			if strings.Contains(output, "Cannot find module") {
				return "left-pad"
			}
			return ""
		},
		Install: func(pkg string) []string { return []string{"/bin/sh", "-c", "exit 1"} },
	})
	runner := NewRunner()

	script := `echo "Cannot find module 'left-pad'" >&2
exit 1
`
	outcome := runner.Execute(context.Background(), script, "dep-install-broken")

	if outcome.Passed {
		t.Fatal("must fail when install fails")
	}
	if !strings.Contains(outcome.RawOutput+outcome.Error, "Cannot find module") {
		t.Errorf("original error lost: %+v", outcome)
	}
}

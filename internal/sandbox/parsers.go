package sandbox

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vampirenirmal/codeagents/internal/domain"
)

// resultParser attempts to read per-case results out of raw execution output.
// ok=false means the output does not speak this parser's format.
type resultParser func(output string) (results []domain.CaseResult, ok bool)

// parserChain is ordered most-specific first. The generic heuristic at the
// end always succeeds, so ParseResults always yields at least one result.
var parserChain = []resultParser{
	parseUnittestSummary,
	parseTestResultLines,
	parseTokenCounts,
}

// ParseResults classifies execution output through the layered parser chain.
// structured=false means only the generic heuristic applied.
func ParseResults(output string) (results []domain.CaseResult, structured bool) {
	for _, parse := range parserChain {
		if results, ok := parse(output); ok {
			return results, true
		}
	}
	return heuristicResult(output), false
}

var (
	ranTestsRe       = regexp.MustCompile(`Ran (\d+) tests? in`)
	unittestFailedRe = regexp.MustCompile(`FAILED \((?:failures=(\d+))?(?:, )?(?:errors=(\d+))?\)`)
	failedCaseRe     = regexp.MustCompile(`(?m)^(?:FAIL|ERROR): (\S+)`)
	assertionRe      = regexp.MustCompile(`AssertionError: (.+?) != (.+)`)
)

// parseUnittestSummary reads Python unittest text output: the "Ran N tests"
// trailer, the OK/FAILED verdict, named failing tests, and expected/actual
// values mined from assertion tracebacks. Counts not attributable to a named
// case become aggregate synthetic results.
func parseUnittestSummary(output string) ([]domain.CaseResult, bool) {
	m := ranTestsRe.FindStringSubmatch(output)
	if m == nil {
		return nil, false
	}
	total, _ := strconv.Atoi(m[1])

	failures := 0
	if fm := unittestFailedRe.FindStringSubmatch(output); fm != nil {
		if fm[1] != "" {
			n, _ := strconv.Atoi(fm[1])
			failures += n
		}
		if fm[2] != "" {
			n, _ := strconv.Atoi(fm[2])
			failures += n
		}
	} else if !strings.Contains(output, "\nOK") && !strings.HasPrefix(output, "OK") {
		// FAILED trailer without counts still means at least one failure.
		if strings.Contains(output, "FAILED") {
			failures = 1
		}
	}

	if failures == 0 {
		return []domain.CaseResult{{
			Description: fmt.Sprintf("%d tests passed", total),
			Passed:      true,
		}}, true
	}

	var results []domain.CaseResult
	names := failedCaseRe.FindAllStringSubmatch(output, -1)
	assertions := assertionRe.FindAllStringSubmatch(output, -1)
	for i, name := range names {
		res := domain.CaseResult{Description: name[1], Passed: false}
		if i < len(assertions) {
			res.ActualOutput = strings.TrimSpace(assertions[i][1])
			res.ExpectedOutput = strings.TrimSpace(assertions[i][2])
		}
		results = append(results, res)
	}

	if unattributed := failures - len(names); unattributed > 0 {
		results = append(results, domain.CaseResult{
			Description: fmt.Sprintf("%d tests failed", unattributed),
			Passed:      false,
		})
	}
	if passed := total - failures; passed > 0 {
		results = append(results, domain.CaseResult{
			Description: fmt.Sprintf("%d tests passed", passed),
			Passed:      true,
		})
	}
	return results, true
}

var testResultLineRe = regexp.MustCompile(`(?m)^TEST RESULT: (PASS|FAIL) - (.*?) - Input: (.*?) Expected: (.*?) Got: (.*)$`)

// parseTestResultLines reads the explicit per-case line format the tester
// instructs non-unittest scripts to print.
func parseTestResultLines(output string) ([]domain.CaseResult, bool) {
	matches := testResultLineRe.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return nil, false
	}
	results := make([]domain.CaseResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.CaseResult{
			Description:    strings.TrimSpace(m[2]),
			Passed:         m[1] == "PASS",
			Input:          strings.TrimSpace(m[3]),
			ExpectedOutput: strings.TrimSpace(m[4]),
			ActualOutput:   strings.TrimSpace(m[5]),
		})
	}
	return results, true
}

var passFailTokenRe = regexp.MustCompile(`\b(PASS|FAIL)\b`)

// parseTokenCounts counts bare PASS/FAIL tokens when no richer format
// matched.
func parseTokenCounts(output string) ([]domain.CaseResult, bool) {
	tokens := passFailTokenRe.FindAllString(output, -1)
	if len(tokens) == 0 {
		return nil, false
	}
	passes, fails := 0, 0
	for _, tok := range tokens {
		if tok == "PASS" {
			passes++
		} else {
			fails++
		}
	}
	var results []domain.CaseResult
	if passes > 0 {
		results = append(results, domain.CaseResult{
			Description: fmt.Sprintf("%d checks passed", passes),
			Passed:      true,
		})
	}
	if fails > 0 {
		results = append(results, domain.CaseResult{
			Description: fmt.Sprintf("%d checks failed", fails),
			Passed:      false,
		})
	}
	return results, true
}

// heuristicResult is the last resort: one synthetic result that passes iff
// the output mentions neither "failed" nor "error", case-insensitive.
func heuristicResult(output string) []domain.CaseResult {
	lower := strings.ToLower(output)
	passed := !strings.Contains(lower, "failed") && !strings.Contains(lower, "error")
	return []domain.CaseResult{{
		Description:  "program output heuristic",
		Passed:       passed,
		ActualOutput: strings.TrimSpace(output),
	}}
}

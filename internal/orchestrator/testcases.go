package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/gateway"
)

// minTestCases is the floor the extracted set is padded to with synthesized
// cases.
const minTestCases = 5

var (
	exampleRe  = regexp.MustCompile(`(?i)Example[^:]*:\s*Input:\s*(.+?)\s*Output:\s*(\S+)`)
	testCaseRe = regexp.MustCompile(`(?i)Test Case[^:]*:\s*(.+?)\s*=>\s*(\S+)`)
)

// ExtractTestCases mines input/expected-output pairs from requirement text.
// Two notations are recognized: "Example: Input: ... Output: ..." and
// "Test Case: ... => ...".
func ExtractTestCases(requirements string) []domain.TestCase {
	var cases []domain.TestCase
	for i, m := range exampleRe.FindAllStringSubmatch(requirements, -1) {
		cases = append(cases, domain.TestCase{
			Description:    fmt.Sprintf("example %d", i+1),
			Input:          strings.TrimSpace(m[1]),
			ExpectedOutput: strings.TrimSpace(m[2]),
		})
	}
	for i, m := range testCaseRe.FindAllStringSubmatch(requirements, -1) {
		cases = append(cases, domain.TestCase{
			Description:    fmt.Sprintf("test case %d", i+1),
			Input:          strings.TrimSpace(m[1]),
			ExpectedOutput: strings.TrimSpace(m[2]),
		})
	}
	return cases
}

func testCasesSchema() *gateway.Schema {
	return gateway.Object(map[string]*gateway.Schema{
		"test_cases": gateway.Array(gateway.Object(map[string]*gateway.Schema{
			"description":     gateway.Str("what the case checks"),
			"input":           gateway.Str("input value"),
			"expected_output": gateway.Str("expected output value"),
		})),
	})
}

// synthesizeTestCases pads extracted cases with gateway-generated ones up to
// the floor. Gateway degradation leaves the extracted set unchanged.
func synthesizeTestCases(ctx context.Context, gw *gateway.Gateway, requirements, language string, existing []domain.TestCase) []domain.TestCase {
	missing := minTestCases - len(existing)
	if missing <= 0 {
		return existing
	}

	var known strings.Builder
	for _, tc := range existing {
		fmt.Fprintf(&known, "- input %s expects %s\n", tc.Input, tc.ExpectedOutput)
	}

	prompt := fmt.Sprintf(`Generate %d additional test cases for this %s problem, covering edge cases not yet listed.

Problem:
%s

Already covered:
%s`, missing, language, requirements, known.String())

	data := gw.GenerateStructured(ctx, prompt, testCasesSchema())
	raw, ok := data["test_cases"].([]interface{})
	if !ok {
		return existing
	}
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		tc := domain.TestCase{
			Description:    stringOr(m["description"], "synthesized case"),
			Input:          stringOr(m["input"], ""),
			ExpectedOutput: stringOr(m["expected_output"], ""),
		}
		if tc.Input != "" || tc.ExpectedOutput != "" {
			existing = append(existing, tc)
		}
		if len(existing) >= minTestCases {
			break
		}
	}
	return existing
}

func stringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

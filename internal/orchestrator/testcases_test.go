package orchestrator

import (
	"context"
	"testing"

	"github.com/vampirenirmal/codeagents/internal/gateway"
)

func TestExtractTestCases(t *testing.T) {
	t.Run("example notation", func(t *testing.T) {
		cases := ExtractTestCases("Sum the list. Example: Input: [1,2,3] Output: 6")
		if len(cases) != 1 {
			t.Fatalf("cases = %+v", cases)
		}
		if cases[0].Input != "[1,2,3]" || cases[0].ExpectedOutput != "6" {
			t.Errorf("case = %+v", cases[0])
		}
	})

	t.Run("test case notation", func(t *testing.T) {
		cases := ExtractTestCases("Test Case: reverse('ab') => 'ba'")
		if len(cases) != 1 {
			t.Fatalf("cases = %+v", cases)
		}
		if cases[0].Input != "reverse('ab')" || cases[0].ExpectedOutput != "'ba'" {
			t.Errorf("case = %+v", cases[0])
		}
	})

	t.Run("both notations accumulate", func(t *testing.T) {
		req := `Example: Input: 1 Output: 2
Example: Input: 3 Output: 4
Test Case: f(5) => 6`
		if cases := ExtractTestCases(req); len(cases) != 3 {
			t.Errorf("cases = %+v", cases)
		}
	})

	t.Run("no patterns", func(t *testing.T) {
		if cases := ExtractTestCases("just write a parser"); len(cases) != 0 {
			t.Errorf("cases = %+v", cases)
		}
	})
}

func TestSynthesizeTestCasesPadsToFloor(t *testing.T) {
	client := gateway.NewMockClient(`{"test_cases":[
		{"description":"empty list","input":"[]","expected_output":"0"},
		{"description":"single","input":"[7]","expected_output":"7"},
		{"description":"negatives","input":"[-1,-2]","expected_output":"-3"},
		{"description":"large","input":"[1000]*3","expected_output":"3000"},
		{"description":"mixed","input":"[1,-1]","expected_output":"0"}
	]}`)
	gw := gateway.New(client, nil)

	extracted := ExtractTestCases("Example: Input: [1,2,3] Output: 6")
	cases := synthesizeTestCases(context.Background(), gw, "sum a list", "python", extracted)

	if len(cases) != minTestCases {
		t.Fatalf("cases = %d, want %d", len(cases), minTestCases)
	}
	if cases[0].Input != "[1,2,3]" {
		t.Error("extracted case must stay first")
	}
}

func TestSynthesizeTestCasesDegrades(t *testing.T) {
	client := gateway.NewMockClient("no json")
	gw := gateway.New(client, nil)

	extracted := ExtractTestCases("Example: Input: 1 Output: 1")
	cases := synthesizeTestCases(context.Background(), gw, "identity", "python", extracted)

	if len(cases) != 1 {
		t.Errorf("degraded synthesis must keep the extracted set: %+v", cases)
	}
}

func TestSynthesizeSkipsWhenEnough(t *testing.T) {
	client := gateway.NewMockClient("should never be called")
	gw := gateway.New(client, nil)

	req := `Example: Input: 1 Output: 1
Example: Input: 2 Output: 2
Example: Input: 3 Output: 3
Test Case: f(4) => 4
Test Case: f(5) => 5`
	extracted := ExtractTestCases(req)
	synthesizeTestCases(context.Background(), gw, "identity", "python", extracted)

	if client.Calls() != 0 {
		t.Errorf("gateway called %d times for an already-full case set", client.Calls())
	}
}

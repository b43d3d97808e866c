package domain

// Request is the immutable input to one pipeline run.
type Request struct {
	Requirements      string `json:"requirements"`
	Language          string `json:"language"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// Plan is the planner's structured breakdown of a problem. It is produced
// once and consumed read-only by every downstream agent.
type Plan struct {
	ProblemAnalysis           string   `json:"problem_analysis"`
	Approach                  []string `json:"approach"`
	RecommendedLibraries      []string `json:"recommended_libraries"`
	Algorithms                []string `json:"algorithms"`
	DataStructures            []string `json:"data_structures"`
	DesignPatterns            []string `json:"design_patterns"`
	EdgeCases                 []string `json:"edge_cases"`
	PerformanceConsiderations []string `json:"performance_considerations"`
}

// IsEmpty reports whether planning degraded to a blank plan.
func (p Plan) IsEmpty() bool {
	return p.ProblemAnalysis == "" &&
		len(p.Approach) == 0 &&
		len(p.RecommendedLibraries) == 0 &&
		len(p.Algorithms) == 0 &&
		len(p.DataStructures) == 0 &&
		len(p.DesignPatterns) == 0 &&
		len(p.EdgeCases) == 0 &&
		len(p.PerformanceConsiderations) == 0
}

// LibraryInfo describes one library the researcher found relevant.
type LibraryInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	UsageExample string `json:"usage_example"`
}

// CodeExample is a snippet the researcher collected for an algorithm or
// data structure.
type CodeExample struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

// ResearchFindings aggregates per-topic research results. It is built
// incrementally by concurrent sub-tasks and merged by the researcher.
type ResearchFindings struct {
	Libraries     []LibraryInfo     `json:"libraries"`
	BestPractices []string          `json:"best_practices"`
	CodeExamples  []CodeExample     `json:"code_examples"`
	Summary       map[string]string `json:"summary"`
}

// IsEmpty reports whether no research sub-task produced anything.
func (r ResearchFindings) IsEmpty() bool {
	return len(r.Libraries) == 0 && len(r.BestPractices) == 0 && len(r.CodeExamples) == 0
}

// DirectorySpec is one directory in a recommended file layout.
type DirectorySpec struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// FileSpec is one file in a recommended file layout.
type FileSpec struct {
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Components  []string `json:"components"`
}

// FileStructure is the developer's recommended project layout.
type FileStructure struct {
	Directories []DirectorySpec `json:"directories"`
	Files       []FileSpec      `json:"files"`
}

// CodeArtifact is one generated code solution plus metadata. A refinement
// iteration replaces the previous artifact wholesale; prior code is
// superseded, never merged.
type CodeArtifact struct {
	Code          string        `json:"code"`
	Explanation   string        `json:"explanation"`
	Libraries     []string      `json:"libraries"`
	BestPractices []string      `json:"best_practices"`
	FileStructure FileStructure `json:"file_structure"`
}

// TestCase is one input/expected-output pair, either extracted from the
// requirements or synthesized by the gateway.
type TestCase struct {
	Description    string `json:"description"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// CaseResult is the outcome of one test case within an execution.
type CaseResult struct {
	Description    string `json:"description"`
	Passed         bool   `json:"passed"`
	Input          string `json:"input,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`
	ActualOutput   string `json:"actual_output,omitempty"`
	Error          string `json:"error,omitempty"`
}

// TestOutcome is the result of executing one code revision. It is never
// mutated after creation.
type TestOutcome struct {
	Passed          bool         `json:"passed"`
	Results         []CaseResult `json:"results"`
	Summary         string       `json:"summary"`
	RawOutput       string       `json:"raw_output"`
	Error           string       `json:"error,omitempty"`
	ExecutionTimeMS int64        `json:"execution_time_ms"`
}

// Solution is the final product of a successful run.
type Solution struct {
	ProblemAnalysis           string        `json:"problem_analysis"`
	Approach                  []string      `json:"approach"`
	Code                      string        `json:"code"`
	FileStructure             FileStructure `json:"file_structure"`
	Language                  string        `json:"language"`
	Libraries                 []string      `json:"libraries"`
	BestPractices             []string      `json:"best_practices"`
	PerformanceConsiderations []string      `json:"performance_considerations"`
	TestResults               *TestOutcome  `json:"test_results,omitempty"`
}

// Result is what a run always returns: a populated Solution or a non-empty
// Error, never an ambiguous mix.
type Result struct {
	Status   Status   `json:"status"`
	Solution Solution `json:"solution"`
	Error    string   `json:"error,omitempty"`
}

// Status is the terminal disposition of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

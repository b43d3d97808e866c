package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/gateway"
)

// Developer turns a plan and research findings into code, and refines code
// from tagged feedback during the refinement loop.
type Developer struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewDeveloper(gw *gateway.Gateway, logger *slog.Logger) *Developer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Developer{gw: gw, logger: logger.With("agent", "developer")}
}

func artifactSchema() *gateway.Schema {
	return gateway.Object(map[string]*gateway.Schema{
		"code":           gateway.Str("complete source code for the solution"),
		"explanation":    gateway.Str("how the solution works"),
		"libraries":      gateway.Array(gateway.Str("library the code depends on")),
		"best_practices": gateway.Array(gateway.Str("practice the code follows")),
		"file_structure": fileStructureSchema(),
	})
}

func fileStructureSchema() *gateway.Schema {
	return gateway.Object(map[string]*gateway.Schema{
		"directories": gateway.Array(gateway.Object(map[string]*gateway.Schema{
			"path":        gateway.Str("directory path"),
			"description": gateway.Str("what lives there"),
		})),
		"files": gateway.Array(gateway.Object(map[string]*gateway.Schema{
			"path":        gateway.Str("file path"),
			"description": gateway.Str("what the file contains"),
			"components":  gateway.Array(gateway.Str("function, class, or type defined here")),
		})),
	})
}

// Generate produces the initial CodeArtifact. The returned artifact always
// has non-empty Code: a degraded structured call falls back to free-text
// generation, and a missing code field falls back to the explanation text.
func (d *Developer) Generate(ctx context.Context, requirements, language string, plan domain.Plan, research domain.ResearchFindings) domain.CodeArtifact {
	prompt := d.buildGeneratePrompt(requirements, language, plan, research)

	data := d.gw.GenerateStructured(ctx, prompt, artifactSchema())
	artifact := domain.CodeArtifact{
		Code:          stripFences(strField(data, "code")),
		Explanation:   strField(data, "explanation"),
		Libraries:     strSliceField(data, "libraries"),
		BestPractices: strSliceField(data, "best_practices"),
	}
	if fs, ok := data["file_structure"].(map[string]interface{}); ok {
		artifact.FileStructure = parseFileStructure(fs)
	}

	if artifact.Code == "" && artifact.Explanation != "" {
		artifact.Code = stripFences(artifact.Explanation)
	}
	if artifact.Code == "" {
		d.logger.Warn("structured generation empty, retrying as free text")
		text := d.gw.GenerateText(ctx, prompt+"\n\nRespond with only the complete source code.")
		artifact.Code = stripFences(text)
	}

	d.logger.Info("code generated",
		"language", language,
		"code_length", len(artifact.Code),
		"libraries", len(artifact.Libraries))
	return artifact
}

func (d *Developer) buildGeneratePrompt(requirements, language string, plan domain.Plan, research domain.ResearchFindings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s developer. Write a complete, working solution for this problem:\n\n%s\n", language, requirements)

	if !plan.IsEmpty() {
		fmt.Fprintf(&b, "\nProblem analysis:\n%s\n", plan.ProblemAnalysis)
		fmt.Fprintf(&b, "\nApproach:\n%s\n", bulleted(plan.Approach))
		fmt.Fprintf(&b, "\nAlgorithms:\n%s\n", bulleted(plan.Algorithms))
		fmt.Fprintf(&b, "\nData structures:\n%s\n", bulleted(plan.DataStructures))
		fmt.Fprintf(&b, "\nEdge cases to handle:\n%s\n", bulleted(plan.EdgeCases))
		fmt.Fprintf(&b, "\nPerformance considerations:\n%s\n", bulleted(plan.PerformanceConsiderations))
	}

	if !research.IsEmpty() {
		if len(research.Libraries) > 0 {
			b.WriteString("\nRelevant libraries:\n")
			for _, lib := range research.Libraries {
				fmt.Fprintf(&b, "- %s: %s\n", lib.Name, lib.Description)
			}
		}
		if len(research.BestPractices) > 0 {
			fmt.Fprintf(&b, "\nBest practices:\n%s\n", bulleted(research.BestPractices))
		}
		if len(research.CodeExamples) > 0 {
			b.WriteString("\nReference examples:\n")
			for _, ex := range research.CodeExamples {
				fmt.Fprintf(&b, "%s:\n%s\n\n", ex.Description, ex.Code)
			}
		}
	}

	fmt.Fprintf(&b, "\nProduce idiomatic %s. The code field must contain the complete solution, runnable as a single file.", language)
	return b.String()
}

// Collaborate composes a refinement prompt from tagged feedback and asks for
// regenerated code as free text. It returns ok=false when no prior code or no
// usable insight exists, signalling the orchestrator that there is nothing to
// refine.
func (d *Developer) Collaborate(ctx context.Context, feedback []domain.Feedback) (domain.CodeArtifact, bool) {
	var (
		current  *domain.CodeArtifact
		plan     *domain.Plan
		research *domain.ResearchFindings
		outcome  *domain.TestOutcome
		language string
	)
	for i := range feedback {
		fb := feedback[i]
		if fb.Language != "" {
			language = fb.Language
		}
		switch fb.Role {
		case domain.RoleDeveloper:
			if fb.Artifact != nil {
				current = fb.Artifact
			}
		case domain.RolePlanner:
			plan = fb.Plan
		case domain.RoleResearcher:
			research = fb.Research
		case domain.RoleTester:
			outcome = fb.Outcome
		}
	}

	if current == nil || current.Code == "" {
		d.logger.Warn("collaborate called without prior code")
		return domain.CodeArtifact{}, false
	}
	if plan == nil && research == nil && outcome == nil {
		d.logger.Warn("collaborate called without any insight to act on")
		return domain.CodeArtifact{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s developer refining a solution that did not pass its tests.\n", language)
	fmt.Fprintf(&b, "\nCurrent code:\n%s\n", current.Code)

	if outcome != nil {
		fmt.Fprintf(&b, "\nTest results (failed):\nSummary: %s\n", outcome.Summary)
		if outcome.Error != "" {
			fmt.Fprintf(&b, "Error: %s\n", outcome.Error)
		}
		if outcome.RawOutput != "" {
			fmt.Fprintf(&b, "Raw output:\n%s\n", outcome.RawOutput)
		}
	}
	if plan != nil {
		fmt.Fprintf(&b, "\nPlanner insights:\n%s\nEdge cases:\n%s\n",
			plan.ProblemAnalysis, bulleted(plan.EdgeCases))
	}
	if research != nil && len(research.BestPractices) > 0 {
		fmt.Fprintf(&b, "\nResearcher insights:\n%s\n", bulleted(research.BestPractices))
	}

	b.WriteString("\nRewrite the complete solution fixing the failures above. Respond with only the corrected source code.")

	code := stripFences(d.gw.GenerateText(ctx, b.String()))
	if code == "" {
		return domain.CodeArtifact{}, false
	}

	refined := domain.CodeArtifact{
		Code:          code,
		Explanation:   current.Explanation,
		Libraries:     current.Libraries,
		BestPractices: current.BestPractices,
		FileStructure: current.FileStructure,
	}
	d.logger.Info("code refined", "code_length", len(code))
	return refined, true
}

// ExtractFileStructure asks for a recommended layout for already-written
// code. A degraded response yields a single-file default.
func (d *Developer) ExtractFileStructure(ctx context.Context, code, language, extension string) domain.FileStructure {
	prompt := fmt.Sprintf(`Propose a project file layout for this %s code:

%s

List directories and files with short descriptions and the components each file holds.`, language, code)

	data := d.gw.GenerateStructured(ctx, prompt, fileStructureSchema())
	structure := parseFileStructure(data)
	if len(structure.Files) == 0 {
		structure.Files = []domain.FileSpec{{
			Path:        "main." + extension,
			Description: "complete solution",
		}}
	}
	return structure
}

func parseFileStructure(data map[string]interface{}) domain.FileStructure {
	var structure domain.FileStructure
	for _, dir := range mapSliceField(data, "directories") {
		structure.Directories = append(structure.Directories, domain.DirectorySpec{
			Path:        strField(dir, "path"),
			Description: strField(dir, "description"),
		})
	}
	for _, file := range mapSliceField(data, "files") {
		structure.Files = append(structure.Files, domain.FileSpec{
			Path:        strField(file, "path"),
			Description: strField(file, "description"),
			Components:  strSliceField(file, "components"),
		})
	}
	return structure
}

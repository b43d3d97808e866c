package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vampirenirmal/codeagents/internal/domain"
	"github.com/vampirenirmal/codeagents/internal/gateway"
	"github.com/vampirenirmal/codeagents/internal/search"
)

// topicCategory decides which findings bucket a researched topic lands in.
type topicCategory string

const (
	categoryLibrary       topicCategory = "library"
	categoryAlgorithm     topicCategory = "algorithm"
	categoryDataStructure topicCategory = "data_structure"
	categoryDesignPattern topicCategory = "design_pattern"
	categoryPerformance   topicCategory = "performance"
	categoryBestPractice  topicCategory = "best_practice"
)

type researchTopic struct {
	name     string
	category topicCategory
}

// Researcher expands plan topics into ResearchFindings, fanning out one task
// per topic. A web search client is optional; without one, every topic is
// answered from model knowledge.
type Researcher struct {
	gw       *gateway.Gateway
	searcher search.Client
	logger   *slog.Logger
}

func NewResearcher(gw *gateway.Gateway, searcher search.Client, logger *slog.Logger) *Researcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Researcher{gw: gw, searcher: searcher, logger: logger.With("agent", "researcher")}
}

// Research runs every topic concurrently with per-topic failure isolation:
// a failed topic contributes nothing and never cancels its siblings. If all
// topics come back empty, one large model-knowledge call fills the findings.
func (r *Researcher) Research(ctx context.Context, requirements, language string, plan domain.Plan) domain.ResearchFindings {
	topics := collectTopics(language, plan)
	if len(topics) == 0 {
		r.logger.Info("plan lists no research topics, using model knowledge")
		return r.fromModelKnowledge(ctx, requirements, language)
	}

	partials := make([]domain.ResearchFindings, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	for i, topic := range topics {
		i, topic := i, topic
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("research topic panicked", "topic", topic.name, "panic", rec)
				}
			}()
			partials[i] = r.researchTopic(gctx, topic, language)
			return nil
		})
	}
	g.Wait()

	findings := domain.ResearchFindings{Summary: make(map[string]string)}
	for _, partial := range partials {
		findings = mergeFindings(findings, partial)
	}

	if findings.IsEmpty() {
		r.logger.Warn("all research topics came back empty, falling back to model knowledge")
		return r.fromModelKnowledge(ctx, requirements, language)
	}

	r.logger.Info("research complete",
		"topics", len(topics),
		"libraries", len(findings.Libraries),
		"code_examples", len(findings.CodeExamples),
		"best_practices", len(findings.BestPractices))
	return findings
}

func collectTopics(language string, plan domain.Plan) []researchTopic {
	var topics []researchTopic
	add := func(names []string, category topicCategory) {
		for _, name := range names {
			if strings.TrimSpace(name) != "" {
				topics = append(topics, researchTopic{name: name, category: category})
			}
		}
	}
	add(plan.RecommendedLibraries, categoryLibrary)
	add(plan.Algorithms, categoryAlgorithm)
	add(plan.DataStructures, categoryDataStructure)
	add(plan.DesignPatterns, categoryDesignPattern)
	add(plan.PerformanceConsiderations, categoryPerformance)
	if len(topics) > 0 {
		topics = append(topics, researchTopic{
			name:     fmt.Sprintf("%s best practices", language),
			category: categoryBestPractice,
		})
	}
	return topics
}

// researchTopic handles one topic end to end: optional web search, then
// gateway summarization into the category's mini-schema, then classification
// into the matching bucket. Every failure degrades to empty findings.
func (r *Researcher) researchTopic(ctx context.Context, topic researchTopic, language string) domain.ResearchFindings {
	var webContext string
	if r.searcher != nil {
		results, err := r.searcher.Search(ctx, fmt.Sprintf("%s %s", topic.name, language))
		if err != nil {
			r.logger.Warn("search failed for topic, continuing without web context",
				"topic", topic.name, "error", err)
		} else {
			webContext = search.FormatResults(results)
		}
	}

	data := r.gw.GenerateStructured(ctx, topicPrompt(topic, language, webContext), topicSchema(topic.category))
	if len(data) == 0 {
		return domain.ResearchFindings{}
	}

	findings := domain.ResearchFindings{Summary: make(map[string]string)}
	if summary := strField(data, "summary"); summary != "" {
		findings.Summary[topic.name] = summary
	}

	switch topic.category {
	case categoryLibrary:
		lib := domain.LibraryInfo{
			Name:         strField(data, "name"),
			Description:  strField(data, "description"),
			UsageExample: strField(data, "usage_example"),
		}
		if lib.Name == "" {
			lib.Name = topic.name
		}
		if lib.Description != "" || lib.UsageExample != "" {
			findings.Libraries = append(findings.Libraries, lib)
		}
	case categoryAlgorithm, categoryDataStructure:
		example := domain.CodeExample{
			Description: strField(data, "description"),
			Code:        stripFences(strField(data, "code")),
		}
		if example.Code != "" {
			if example.Description == "" {
				example.Description = topic.name
			}
			findings.CodeExamples = append(findings.CodeExamples, example)
		}
	default:
		for _, practice := range strSliceField(data, "practices") {
			findings.BestPractices = append(findings.BestPractices, practice)
		}
	}
	return findings
}

func topicSchema(category topicCategory) *gateway.Schema {
	switch category {
	case categoryLibrary:
		return gateway.Object(map[string]*gateway.Schema{
			"name":          gateway.Str("library name"),
			"description":   gateway.Str("what the library does and why it fits"),
			"usage_example": gateway.Str("short usage snippet"),
			"summary":       gateway.Str("one-paragraph summary"),
		})
	case categoryAlgorithm, categoryDataStructure:
		return gateway.Object(map[string]*gateway.Schema{
			"description": gateway.Str("what the example demonstrates"),
			"code":        gateway.Str("implementation snippet"),
			"summary":     gateway.Str("one-paragraph summary"),
		})
	default:
		return gateway.Object(map[string]*gateway.Schema{
			"practices": gateway.Array(gateway.Str("one concrete recommendation")),
			"summary":   gateway.Str("one-paragraph summary"),
		})
	}
}

func topicPrompt(topic researchTopic, language, webContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research %q (%s) for a %s implementation.\n", topic.name, topic.category, language)
	if webContext != "" {
		fmt.Fprintf(&b, "\nWeb search results:\n%s\n", webContext)
	}
	switch topic.category {
	case categoryLibrary:
		b.WriteString("\nDescribe the library and show a short, idiomatic usage example.")
	case categoryAlgorithm, categoryDataStructure:
		fmt.Fprintf(&b, "\nProvide a concise %s implementation snippet with a one-line description.", language)
	default:
		b.WriteString("\nList concrete, actionable recommendations.")
	}
	return b.String()
}

// fromModelKnowledge asks for the full findings shape in one call, used when
// no topic-level research produced anything.
func (r *Researcher) fromModelKnowledge(ctx context.Context, requirements, language string) domain.ResearchFindings {
	schema := gateway.Object(map[string]*gateway.Schema{
		"libraries": gateway.Array(gateway.Object(map[string]*gateway.Schema{
			"name":          gateway.Str("library name"),
			"description":   gateway.Str("what it does"),
			"usage_example": gateway.Str("short usage snippet"),
		})),
		"best_practices": gateway.Array(gateway.Str("one recommendation")),
		"code_examples": gateway.Array(gateway.Object(map[string]*gateway.Schema{
			"description": gateway.Str("what the example demonstrates"),
			"code":        gateway.Str("implementation snippet"),
		})),
	})

	prompt := fmt.Sprintf(`Using only your built-in knowledge, gather supporting research for solving this problem in %s:

%s

Return relevant libraries with usage examples, best practices, and code examples.`, language, requirements)

	data := r.gw.GenerateStructured(ctx, prompt, schema)

	findings := domain.ResearchFindings{Summary: make(map[string]string)}
	for _, lib := range mapSliceField(data, "libraries") {
		info := domain.LibraryInfo{
			Name:         strField(lib, "name"),
			Description:  strField(lib, "description"),
			UsageExample: strField(lib, "usage_example"),
		}
		if info.Name != "" {
			findings.Libraries = append(findings.Libraries, info)
		}
	}
	findings.BestPractices = strSliceField(data, "best_practices")
	for _, ex := range mapSliceField(data, "code_examples") {
		example := domain.CodeExample{
			Description: strField(ex, "description"),
			Code:        stripFences(strField(ex, "code")),
		}
		if example.Code != "" {
			findings.CodeExamples = append(findings.CodeExamples, example)
		}
	}
	return findings
}

// mergeFindings folds src into dst with first-occurrence-wins deduplication:
// libraries by name, strings by equality, code examples by description.
func mergeFindings(dst, src domain.ResearchFindings) domain.ResearchFindings {
	seenLibs := make(map[string]bool, len(dst.Libraries))
	for _, lib := range dst.Libraries {
		seenLibs[lib.Name] = true
	}
	for _, lib := range src.Libraries {
		if !seenLibs[lib.Name] {
			seenLibs[lib.Name] = true
			dst.Libraries = append(dst.Libraries, lib)
		}
	}

	seenPractices := make(map[string]bool, len(dst.BestPractices))
	for _, p := range dst.BestPractices {
		seenPractices[p] = true
	}
	for _, p := range src.BestPractices {
		if !seenPractices[p] {
			seenPractices[p] = true
			dst.BestPractices = append(dst.BestPractices, p)
		}
	}

	seenExamples := make(map[string]bool, len(dst.CodeExamples))
	for _, ex := range dst.CodeExamples {
		seenExamples[ex.Description] = true
	}
	for _, ex := range src.CodeExamples {
		if !seenExamples[ex.Description] {
			seenExamples[ex.Description] = true
			dst.CodeExamples = append(dst.CodeExamples, ex)
		}
	}

	if dst.Summary == nil {
		dst.Summary = make(map[string]string)
	}
	for topic, summary := range src.Summary {
		if _, ok := dst.Summary[topic]; !ok {
			dst.Summary[topic] = summary
		}
	}
	return dst
}

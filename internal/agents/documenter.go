package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vampirenirmal/codeagents/internal/gateway"
)

// DocRequest carries the pipeline artifacts the documenter renders.
type DocRequest struct {
	Requirements   string
	Plan           string
	Research       string
	Implementation string
	Testing        string
	Language       string
}

// Documenter produces markdown documentation from finished pipeline
// artifacts. It is a terminal consumer, not part of the refinement loop, so
// unlike the other agents it reports errors to its caller.
type Documenter struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewDocumenter(gw *gateway.Gateway, logger *slog.Logger) *Documenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Documenter{gw: gw, logger: logger.With("agent", "documenter")}
}

// Document renders the request into markdown, stripping any outer
// ```markdown fence the model adds.
func (d *Documenter) Document(ctx context.Context, req DocRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Write developer documentation in markdown for a %s solution.\n", req.Language)
	fmt.Fprintf(&b, "\nRequirements:\n%s\n", req.Requirements)
	if req.Plan != "" {
		fmt.Fprintf(&b, "\nPlan:\n%s\n", req.Plan)
	}
	if req.Research != "" {
		fmt.Fprintf(&b, "\nResearch:\n%s\n", req.Research)
	}
	if req.Implementation != "" {
		fmt.Fprintf(&b, "\nImplementation:\n%s\n", req.Implementation)
	}
	if req.Testing != "" {
		fmt.Fprintf(&b, "\nTesting:\n%s\n", req.Testing)
	}
	b.WriteString("\nInclude sections for overview, usage, design decisions, and testing. Respond with only the markdown document.")

	text := d.gw.GenerateText(ctx, b.String())
	if strings.HasPrefix(text, "Error generating text") {
		return "", fmt.Errorf("documentation generation failed: %s", text)
	}

	doc := stripOuterFence(text)
	d.logger.Info("documentation generated", "length", len(doc))
	return doc, nil
}

// stripOuterFence removes a fence wrapping the entire document, leaving
// fenced code blocks inside the markdown intact.
func stripOuterFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimSuffix(trimmed, "```")
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		return strings.TrimSpace(body[idx+1:])
	}
	return trimmed
}

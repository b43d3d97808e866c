// Package gateway mediates every model interaction in the pipeline. It owns
// transport (dual Anthropic/OpenAI HTTP client), structured-output recovery,
// and the degradation policy: callers get usable values, never errors.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// structuredRetries is how many additional attempts GenerateStructured makes
// after the first, each with a progressively simplified request.
const structuredRetries = 2

// Gateway is the single entry point agents use to talk to the model.
type Gateway struct {
	client TextCompleter
	logger *slog.Logger
}

// New wraps a completer. Pass nil logger to use slog.Default.
func New(client TextCompleter, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client: client,
		logger: logger.With("component", "gateway"),
	}
}

// GenerateText requests free-form text. It never fails: provider errors come
// back as an explanatory string so downstream agents can degrade instead of
// aborting the run.
func (g *Gateway) GenerateText(ctx context.Context, prompt string) string {
	text, err := g.client.Complete(ctx, prompt)
	if err != nil {
		g.logger.Error("text generation failed", "error", err, "prompt_length", len(prompt))
		return fmt.Sprintf("Error generating text: %v", err)
	}
	return text
}

// GenerateStructured requests output conforming to schema and defends against
// every failure mode in order: schema rejection (retry with the relaxed
// schema), JSON wrapped in prose (extract and repair), and missing required
// fields (synthesize defaults). An empty map comes back only after every
// avenue is exhausted.
func (g *Gateway) GenerateStructured(ctx context.Context, prompt string, schema *Schema) map[string]interface{} {
	active := schema

	for attempt := 0; attempt <= structuredRetries; attempt++ {
		if attempt == 1 {
			active = schema.Relaxed()
		}

		raw, err := g.client.CompleteJSON(ctx, buildStructuredPrompt(prompt, active))
		if err != nil {
			g.logger.Warn("structured generation request failed",
				"attempt", attempt,
				"error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		data, ok := g.decode(raw)
		if !ok {
			g.logger.Warn("structured response unparseable",
				"attempt", attempt,
				"response_length", len(raw))
			continue
		}

		return schema.FillDefaults(data)
	}

	g.logger.Error("structured generation exhausted all attempts",
		"retries", structuredRetries)
	return map[string]interface{}{}
}

// decode parses raw model output, falling back to extraction and then regex
// repair when the text is not directly valid JSON.
func (g *Gateway) decode(raw string) (map[string]interface{}, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err == nil {
		return data, true
	}

	extracted := ExtractJSON(raw)
	if extracted == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(extracted), &data); err == nil {
		return data, true
	}

	repaired, ok := RepairJSON(extracted)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(repaired), &data); err != nil {
		return nil, false
	}
	return data, true
}

func buildStructuredPrompt(prompt string, schema *Schema) string {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return prompt
	}
	return fmt.Sprintf(`%s

Respond with a single JSON object matching this schema exactly:

%s

Output only the JSON object, with no surrounding text.`, prompt, string(schemaJSON))
}

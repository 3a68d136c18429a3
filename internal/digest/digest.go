// Package digest produces an optional AI-written summary paragraph for a
// scan report using Claude Haiku.
package digest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zeyi2/zealot/internal/telemetry"
)

// DefaultModel is used when ZEALOT_AI_MODEL is not set.
const DefaultModel = "claude-3-5-haiku-latest"

const promptPreamble = `Summarize the following GitHub issue scan report in a single short paragraph.
Mention how many issues were found, which repositories are most active, and any
themes across issue titles. Plain text only, no markdown, no preamble.

Report:
`

// Enabled reports whether the AI digest should run: it requires an explicit
// opt-in via ZEALOT_AI_DIGEST=1 plus an ANTHROPIC_API_KEY.
func Enabled() bool {
	if os.Getenv("ZEALOT_AI_DIGEST") != "1" {
		return false
	}
	return os.Getenv("ANTHROPIC_API_KEY") != ""
}

// Model returns the model to use, honoring the ZEALOT_AI_MODEL override.
func Model() anthropic.Model {
	if m := os.Getenv("ZEALOT_AI_MODEL"); m != "" {
		return anthropic.Model(m)
	}
	return anthropic.Model(DefaultModel)
}

// Summarize asks the model for a one-paragraph summary of the text report.
// Single attempt: the digest is best-effort decoration, callers drop it on
// any error.
func Summarize(ctx context.Context, textReport string) (string, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	model := Model()

	tracer := telemetry.Tracer("github.com/zeyi2/zealot/ai")
	ctx, span := tracer.Start(ctx, "anthropic.messages.new")
	defer span.End()
	span.SetAttributes(
		attribute.String("zealot.ai.model", string(model)),
		attribute.String("zealot.ai.operation", "digest"),
	)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(promptPreamble + textReport)),
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("digest request failed: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("zealot.ai.input_tokens", message.Usage.InputTokens),
		attribute.Int64("zealot.ai.output_tokens", message.Usage.OutputTokens),
	)

	if len(message.Content) == 0 {
		return "", fmt.Errorf("unexpected response format: no content blocks")
	}
	content := message.Content[0]
	if content.Type != "text" {
		return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
	}
	return strings.TrimSpace(content.Text), nil
}

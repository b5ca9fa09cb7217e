// Package openai implements the remote analyzer against any OpenAI-compatible
// chat endpoint. The analyzer only ever sees text: diagnosis verdicts and the
// visible-text triage, never screenshots.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

var _ output.AnalyzerPort = (*Adapter)(nil)

const systemPrompt = `You analyze failed UI automation replays. You receive
per-step diagnoses produced by a deterministic engine (verdict, summary,
suggested patches, visible screen text). Reply with short, concrete advice on
how to repair the scenario. Do not restate the diagnoses.`

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  output.LoggerPort
}

type Adapter struct {
	client *openai.Client
	model  string
	logger output.LoggerPort
}

func NewAdapter(cfg Config) *Adapter {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Adapter{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: cfg.Logger,
	}
}

func (a *Adapter) Analyze(ctx context.Context, scenario string, diagnoses []entity.Diagnosis) (string, error) {
	payload, err := json.MarshalIndent(diagnoses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode diagnoses: %w", err)
	}

	if a.logger != nil {
		a.logger.Debug("requesting remote analysis",
			"scenario", scenario, "diagnoses", len(diagnoses), "model", a.model)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"Scenario %q failed during compiled replay.\n\nDiagnoses:\n%s", scenario, payload)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

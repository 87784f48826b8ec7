package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/groq-go"

	"reelforge/pkg/prompts"
)

// GroqGenerator generates scripts through the Groq chat completion API. It is
// the fallback behind Gemini.
type GroqGenerator struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewGroqGenerator(apiKey, model string, p *prompts.Prompts) (*GroqGenerator, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqGenerator{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (g *GroqGenerator) Name() string { return "groq" }

func (g *GroqGenerator) Generate(ctx context.Context, req Request) (string, error) {
	system, prompt, err := renderPrompt(g.prompts, req)
	if err != nil {
		return "", err
	}

	resp, err := g.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: g.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: system},
			{Role: groq.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

package script

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"reelforge/pkg/prompts"
)

const minDialogueSpeakers = 3

// GeminiGenerator generates scripts through the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	prompts *prompts.Prompts
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, p *prompts.Prompts) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		prompts: p,
	}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	system, prompt, err := renderPrompt(g.prompts, req)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response")
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

func renderPrompt(p *prompts.Prompts, req Request) (system, prompt string, err error) {
	wordCount := TargetWordCount(req.Duration)

	if req.Dialogue {
		prompt, err = p.RenderDialogue(prompts.DialogueParams{
			Topic:       req.Topic,
			WordCount:   wordCount,
			Language:    req.Language,
			SpeakerList: strings.Join(req.Speakers, ", "),
			MinSpeakers: minDialogueSpeakers,
		})
		if err != nil {
			return "", "", fmt.Errorf("render dialogue prompt: %w", err)
		}
		return p.System.Dialogue, prompt, nil
	}

	prompt, err = p.RenderScript(prompts.ScriptParams{
		Topic:     req.Topic,
		WordCount: wordCount,
		Language:  req.Language,
	})
	if err != nil {
		return "", "", fmt.Errorf("render script prompt: %w", err)
	}
	return p.System.Default, prompt, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package creative wraps the chat-completion calls of the campaign
// pipeline: brief analysis, brief refinement, copy writing and HTML
// assembly. Each call is single-shot and returns a tagged result; provider
// failures never escape as Go errors.
package creative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elyriond/llmmail/internal/ai"
	"github.com/elyriond/llmmail/internal/prompts"
)

// Prompt definition names.
const (
	PromptCreativeDirector = "creative_director"
	PromptBriefRefinement  = "brief_refinement"
	PromptEmailContent     = "email_content_generation"
	PromptEmailHTML        = "email_html_generation"
)

// BrandProfile is the narrative brand description embedded in the brief
// prompt. It is untrusted free text and is never parsed.
type BrandProfile struct {
	Markdown   string `json:"markdown"`
	WebsiteURL string `json:"websiteUrl,omitempty"`
}

// BriefResult is the outcome of AnalyzeBrief and RefineBrief.
type BriefResult struct {
	Success   bool   `json:"success"`
	BriefText string `json:"briefText,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CopyResult is the outcome of GenerateCopy.
type CopyResult struct {
	Success     bool   `json:"success"`
	ContentText string `json:"contentText,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Adapter runs prompt definitions against a text generator.
type Adapter struct {
	llm     ai.TextGenerator
	prompts *prompts.Store
}

// New creates an Adapter.
func New(llm ai.TextGenerator, store *prompts.Store) *Adapter {
	return &Adapter{llm: llm, prompts: store}
}

// AnalyzeBrief asks the creative director prompt for a campaign brief. A
// nil profile produces a request carrying the "settings not configured"
// notice, which the model answers with the settings sentinel.
func (a *Adapter) AnalyzeBrief(ctx context.Context, userPrompt string, profile *BrandProfile) BriefResult {
	vars := map[string]any{
		"user_prompt":     strings.TrimSpace(userPrompt),
		"missing_profile": profile == nil,
	}
	if profile != nil {
		vars["brand_profile"] = strings.TrimSpace(profile.Markdown)
		vars["website_url"] = strings.TrimSpace(profile.WebsiteURL)
	}

	text, err := a.run(ctx, PromptCreativeDirector, vars)
	if err != nil {
		return BriefResult{Error: err.Error()}
	}
	return BriefResult{Success: true, BriefText: text}
}

// RefineBrief re-submits a brief with the user's answers to its questions.
func (a *Adapter) RefineBrief(ctx context.Context, originalBrief string, answers map[string]string) BriefResult {
	if strings.TrimSpace(originalBrief) == "" {
		return BriefResult{Error: "original brief is empty"}
	}
	if answers == nil {
		answers = map[string]string{}
	}
	qa, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return BriefResult{Error: fmt.Sprintf("encode answers: %v", err)}
	}

	text, err := a.run(ctx, PromptBriefRefinement, map[string]any{
		"original_brief": originalBrief,
		"answers":        string(qa),
	})
	if err != nil {
		return BriefResult{Error: err.Error()}
	}
	return BriefResult{Success: true, BriefText: text}
}

// GenerateCopy writes the labeled email copy for a brief.
func (a *Adapter) GenerateCopy(ctx context.Context, briefText string) CopyResult {
	if strings.TrimSpace(briefText) == "" {
		return CopyResult{Error: "brief is empty"}
	}
	text, err := a.run(ctx, PromptEmailContent, map[string]any{"brief": briefText})
	if err != nil {
		return CopyResult{Error: err.Error()}
	}
	return CopyResult{Success: true, ContentText: text}
}

// run loads a definition, renders its user template and calls the model.
// An empty reply is an error.
func (a *Adapter) run(ctx context.Context, name string, vars map[string]any) (string, error) {
	p, err := a.prompts.Load(name)
	if err != nil {
		return "", err
	}

	req := ai.Request{
		System:      p.SystemPrompt,
		User:        prompts.Render(p.UserTemplate, vars),
		Model:       p.Settings.Model,
		Temperature: p.Settings.Temperature,
		JSON:        p.Settings.JSON(),
	}
	text, err := a.llm.Generate(ctx, req)
	if err != nil {
		slog.Warn("model call failed", "prompt", name, "error", err)
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: model returned an empty response", name)
	}
	slog.Debug("model call complete", "prompt", name, "chars", len(text))
	return text, nil
}

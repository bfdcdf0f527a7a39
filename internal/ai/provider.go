// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for interacting with multiple
// LLM providers (OpenAI, Gemini, Claude, Mistral). Each provider implements
// the Provider interface, and the Registry selects the active one by name.
// Text generation and image generation are selected independently.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Request is a single-shot chat completion request.
type Request struct {
	System string
	User   string

	// Model overrides the provider's default model when non-empty.
	Model string
	// Temperature is left to the provider default when nil.
	Temperature *float64
	// JSON asks the provider for a single JSON object response.
	JSON bool
}

// Provider defines the interface that all AI providers must implement.
// Each provider handles its own HTTP communication and response parsing.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the generated text.
	Generate(ctx context.Context, req Request) (string, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
}

// Registry manages available AI providers and selects the active ones.
// It supports runtime switching by changing the active provider names.
// All methods are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	images      map[string]ImageGenerator
	active      string
	activeImage string
	moderator   Moderator // may be nil if no moderation API is available
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are silently skipped;
// providers that fail to initialise are logged and skipped.
func NewRegistry(active, activeImage string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers:   make(map[string]Provider),
		images:      make(map[string]ImageGenerator),
		active:      active,
		activeImage: activeImage,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			p := newOpenAI(cfg)
			r.providers[name] = p
			r.images[name] = p
		case "gemini":
			p, err := newGemini(context.Background(), cfg)
			if err != nil {
				slog.Warn("gemini provider disabled", "error", err)
				continue
			}
			r.providers[name] = p
			r.images[name] = p
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		}
	}

	// Prompt moderation: prefer OpenAI (free), fall back to Mistral.
	openaiCfg, hasOpenAI := configs["openai"]
	hasOpenAI = hasOpenAI && openaiCfg.APIKey != ""
	mistralCfg, hasMistral := configs["mistral"]
	hasMistral = hasMistral && mistralCfg.APIKey != ""

	switch {
	case hasOpenAI && hasMistral:
		r.moderator = &fallbackModerator{
			primary:   newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL),
			secondary: newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL),
		}
	case hasOpenAI:
		r.moderator = newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL)
	case hasMistral:
		r.moderator = newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL)
	}

	return r
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, req Request) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, req)
}

// Active returns the currently active text provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active text provider at runtime. Returns an error
// if the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active text provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all text providers that have valid
// API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a text provider in the registry. If p also
// implements ImageGenerator it is registered for images too.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	if ig, ok := p.(ImageGenerator); ok {
		r.images[name] = ig
	}
}

// SetModerator replaces the prompt moderator. nil disables moderation.
func (r *Registry) SetModerator(m Moderator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderator = m
}

// CheckPrompt runs the user prompt through the moderation API before
// generation. Returns a safe result if no moderator is configured;
// providers still have their own built-in safety filters.
func (r *Registry) CheckPrompt(ctx context.Context, prompt string) (*ModerationResult, error) {
	r.mu.RLock()
	m := r.moderator
	r.mu.RUnlock()

	if m == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return m.CheckSafety(ctx, prompt)
}

// HasModerator reports whether prompts are moderated.
func (r *Registry) HasModerator() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moderator != nil
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}

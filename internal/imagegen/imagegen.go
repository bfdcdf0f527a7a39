// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imagegen wraps a text-to-image provider call and turns its
// output into a stable URL. Hosted URLs are passed through; inline bytes
// are persisted to an artifact store under a random name.
package imagegen

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/elyriond/llmmail/internal/ai"
	"github.com/elyriond/llmmail/internal/slug"
	"github.com/elyriond/llmmail/internal/storage"
)

// Defaults applied to empty Options fields.
const (
	DefaultSize    = "1792x1024"
	DefaultQuality = "standard"
	DefaultStyle   = "vivid"
)

// maxSlugLen bounds the prompt-derived part of a filename.
const maxSlugLen = 40

// Provider is the image capability of an AI backend.
type Provider interface {
	GenerateImage(ctx context.Context, req ai.ImageRequest) (*ai.Image, error)
}

// Options tune a single generation.
type Options struct {
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Size == "" {
		o.Size = DefaultSize
	}
	if o.Quality == "" {
		o.Quality = DefaultQuality
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	return o
}

// Result is the tagged outcome of one generation. Callers must check
// Success before reading ImageURL.
type Result struct {
	Success        bool   `json:"success"`
	ImageURL       string `json:"imageUrl,omitempty"`
	RevisedPrompt  string `json:"revisedPrompt,omitempty"`
	OriginalPrompt string `json:"originalPrompt,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Generator produces images through a provider.
type Generator struct {
	provider Provider
	store    storage.ArtifactStore
}

// New creates a Generator. store receives inline image bytes.
func New(provider Provider, store storage.ArtifactStore) *Generator {
	return &Generator{provider: provider, store: store}
}

// Generate runs one image generation. Provider and storage failures are
// reported in Result.Error; Generate never returns them as Go errors.
func (g *Generator) Generate(ctx context.Context, prompt string, opts Options) Result {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{Error: "image prompt is empty"}
	}
	opts = opts.withDefaults()

	img, err := g.provider.GenerateImage(ctx, ai.ImageRequest{
		Prompt:  prompt,
		Size:    opts.Size,
		Quality: opts.Quality,
		Style:   opts.Style,
	})
	if err != nil {
		slog.Warn("image generation failed", "error", err)
		return Result{OriginalPrompt: prompt, Error: err.Error()}
	}

	revised := img.RevisedPrompt
	if revised == "" {
		revised = prompt
	}

	if img.URL != "" {
		return Result{Success: true, ImageURL: img.URL, RevisedPrompt: revised, OriginalPrompt: prompt}
	}

	if len(img.Data) == 0 {
		return Result{OriginalPrompt: prompt, Error: "provider returned no image"}
	}
	if g.store == nil {
		return Result{OriginalPrompt: prompt, Error: "no storage configured for inline image data"}
	}

	name := FileName(prompt, img.ContentType)
	url, err := g.store.Save(ctx, name, img.ContentType, img.Data)
	if err != nil {
		slog.Error("image persist failed", "file", name, "error", err)
		return Result{OriginalPrompt: prompt, Error: err.Error()}
	}

	slog.Info("image persisted", "file", name, "bytes", len(img.Data))
	return Result{Success: true, ImageURL: url, RevisedPrompt: revised, OriginalPrompt: prompt}
}

// FileName builds "<slug-of-prompt>-<uuid>.<ext>".
func FileName(prompt, contentType string) string {
	return slug.Short(prompt, maxSlugLen, "image") + "-" + uuid.NewString() + extension(contentType)
}

func extension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"sort"
)

// ImageRequest describes one text-to-image call. Empty fields use the
// provider defaults.
type ImageRequest struct {
	Prompt  string
	Size    string // e.g. "1792x1024"
	Quality string // "standard" or "hd"
	Style   string // "vivid" or "natural"
}

// Image is a generated image. Exactly one of URL (hosted by the provider)
// or Data (inline bytes with ContentType) is set.
type Image struct {
	URL           string
	Data          []byte
	ContentType   string
	RevisedPrompt string
}

// ImageGenerator is an optional interface that AI providers can implement
// to support image generation. Not all providers have this capability
// (e.g., Claude and Mistral are text-only).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}

// GenerateImage calls the active image provider.
func (r *Registry) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	r.mu.RLock()
	ig, ok := r.images[r.activeImage]
	name := r.activeImage
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("ai: no image provider configured for %q", name)
	}
	return ig.GenerateImage(ctx, req)
}

// SupportsImageGeneration returns true if the active image provider is
// configured.
func (r *Registry) SupportsImageGeneration() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.images[r.activeImage]
	return ok
}

// SetActiveImage switches the image provider at runtime.
func (r *Registry) SetActiveImage(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[name]; !ok {
		return fmt.Errorf("ai: provider %q cannot generate images", name)
	}
	r.activeImage = name
	return nil
}

// ActiveImageName returns the name of the active image provider.
func (r *Registry) ActiveImageName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeImage
}

// ImageAvailable returns the sorted names of providers able to generate images.
func (r *Registry) ImageAvailable() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.images))
	for name := range r.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

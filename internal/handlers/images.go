// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/elyriond/llmmail/internal/campaign"
	"github.com/elyriond/llmmail/internal/imagegen"
)

// ImageGenerator produces one image per call.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, opts imagegen.Options) imagegen.Result
}

// campaignImageParallelism bounds concurrent provider calls for one
// request.
const campaignImageParallelism = 2

// Images serves the standalone image endpoints.
type Images struct {
	gen       ImageGenerator
	moderator campaign.Moderator
}

// NewImages creates the image handlers. moderator may be nil.
func NewImages(gen ImageGenerator, moderator campaign.Moderator) *Images {
	return &Images{gen: gen, moderator: moderator}
}

type imageRequest struct {
	Prompt string `json:"prompt"`
	imagegen.Options
}

// GenerateImage creates a single image from a prompt.
func (h *Images) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var in imageRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validatePrompt(in.Prompt); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := campaign.Screen(r.Context(), h.moderator, in.Prompt); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res := h.gen.Generate(r.Context(), in.Prompt, in.Options)
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type campaignImagesRequest struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
	imagegen.Options
}

// campaignShots vary the composition across a set of campaign images.
var campaignShots = []string{
	"hero banner composition",
	"close-up product detail",
	"lifestyle scene",
	"flat lay arrangement",
}

// campaignPrompts expands a theme into count prompts.
func campaignPrompts(theme string, count int) []string {
	theme = strings.TrimSpace(theme)
	if count <= 1 {
		return []string{theme}
	}
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("%s, %s", theme, campaignShots[i%len(campaignShots)])
	}
	return out
}

// GenerateCampaignImages creates up to maxCampaignImages variations of a
// theme. Results keep the order of the prompts; individual failures are
// reported per image.
func (h *Images) GenerateCampaignImages(w http.ResponseWriter, r *http.Request) {
	var in campaignImagesRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Theme) == "" {
		writeError(w, http.StatusBadRequest, "Theme is required")
		return
	}
	if msg := validatePrompt(in.Theme); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if in.Count < 0 || in.Count > maxCampaignImages {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count must be between 1 and %d", maxCampaignImages))
		return
	}
	if msg := campaign.Screen(r.Context(), h.moderator, in.Theme); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	prompts := campaignPrompts(in.Theme, in.Count)
	results := make([]imagegen.Result, len(prompts))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(campaignImageParallelism)
	for i, p := range prompts {
		g.Go(func() error {
			results[i] = h.gen.Generate(ctx, p, in.Options)
			return nil
		})
	}
	g.Wait()

	ok := 0
	for _, res := range results {
		if res.Success {
			ok++
		}
	}
	if ok == 0 {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to generate campaign images",
			"images":  results,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "images": results})
}

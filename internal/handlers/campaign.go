// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elyriond/llmmail/internal/campaign"
	"github.com/elyriond/llmmail/internal/creative"
	"github.com/elyriond/llmmail/internal/dressipi"
	"github.com/elyriond/llmmail/internal/extract"
	"github.com/elyriond/llmmail/internal/imagegen"
	"github.com/elyriond/llmmail/internal/models"
	"github.com/elyriond/llmmail/internal/sse"
)

// Pipeline runs campaigns.
type Pipeline interface {
	Generate(ctx context.Context, req campaign.Request, sink campaign.Sink) *campaign.Outcome
	Refine(ctx context.Context, req campaign.RefineRequest, sink campaign.Sink) *campaign.Outcome
}

// ProfileStore reads and writes the brand profile.
type ProfileStore interface {
	Get() (*models.ClientProfile, error)
	Upsert(p *models.ClientProfile) (*models.ClientProfile, error)
}

// Campaign serves the generation endpoints, as plain JSON or as an event
// stream.
type Campaign struct {
	pipeline     Pipeline
	profiles     ProfileStore
	pingInterval time.Duration
}

// NewCampaign creates the campaign handlers.
func NewCampaign(pipeline Pipeline, profiles ProfileStore) *Campaign {
	return &Campaign{pipeline: pipeline, profiles: profiles, pingInterval: sse.DefaultPingInterval}
}

// lookAndFeelInput is the look & feel picked in the editor. Its values
// fill whatever the brief does not specify.
type lookAndFeelInput struct {
	BrandColor      string `json:"brandColor"`
	AccentColor     string `json:"accentColor"`
	BackgroundColor string `json:"backgroundColor"`
	FontFamily      string `json:"fontFamily"`
	HeadingFont     string `json:"headingFont"`
}

func (l lookAndFeelInput) defaults() extract.BrandStyle {
	heading := l.HeadingFont
	if heading == "" {
		heading = l.FontFamily
	}
	return extract.BrandStyle{
		PrimaryColor:    l.BrandColor,
		AccentColor:     l.AccentColor,
		BackgroundColor: l.BackgroundColor,
		HeadingFont:     heading,
		BodyFont:        l.FontFamily,
	}
}

// recommendationInput selects the Dressipi seed product.
type recommendationInput struct {
	ItemID       string            `json:"itemId"`
	Domain       string            `json:"domain"`
	CustomerName string            `json:"customerName"`
	Query        map[string]string `json:"query"`
}

// seed returns nil when no item was chosen.
func (in *recommendationInput) seed() *campaign.RecommendationSeed {
	if in == nil || strings.TrimSpace(in.ItemID) == "" {
		return nil
	}
	q := url.Values{}
	for k, v := range in.Query {
		q.Set(k, v)
	}
	return &campaign.RecommendationSeed{
		Target: dressipi.Target{Domain: in.Domain, Account: in.CustomerName},
		ItemID: strings.TrimSpace(in.ItemID),
		Query:  q,
	}
}

type generateRequest struct {
	Prompt         string               `json:"prompt"`
	LookAndFeel    lookAndFeelInput     `json:"lookAndFeel"`
	Recommendation *recommendationInput `json:"recommendation"`
	ImageOptions   imagegen.Options     `json:"imageOptions"`
}

type refineRequest struct {
	OriginalBrief  string               `json:"originalBrief"`
	Answers        map[string]string    `json:"answers"`
	LookAndFeel    lookAndFeelInput     `json:"lookAndFeel"`
	Recommendation *recommendationInput `json:"recommendation"`
	ImageOptions   imagegen.Options     `json:"imageOptions"`
}

// GenerateEmail runs a campaign and returns the outcome as JSON.
func (c *Campaign) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := c.generateInput(w, r)
	if !ok {
		return
	}
	writeOutcome(w, c.pipeline.Generate(r.Context(), req, nil))
}

// GenerateEmailStream runs a campaign and streams its progress as
// Server-Sent Events. The last event is the outcome.
func (c *Campaign) GenerateEmailStream(w http.ResponseWriter, r *http.Request) {
	req, ok := c.generateInput(w, r)
	if !ok {
		return
	}
	c.stream(w, func(sink campaign.Sink) {
		c.pipeline.Generate(r.Context(), req, sink)
	})
}

// RefineBrief rewrites a brief with the user's answers and finishes the
// campaign.
func (c *Campaign) RefineBrief(w http.ResponseWriter, r *http.Request) {
	req, ok := refineInput(w, r)
	if !ok {
		return
	}
	writeOutcome(w, c.pipeline.Refine(r.Context(), req, nil))
}

// RefineBriefStream is RefineBrief with streamed progress.
func (c *Campaign) RefineBriefStream(w http.ResponseWriter, r *http.Request) {
	req, ok := refineInput(w, r)
	if !ok {
		return
	}
	c.stream(w, func(sink campaign.Sink) {
		c.pipeline.Refine(r.Context(), req, sink)
	})
}

func (c *Campaign) stream(w http.ResponseWriter, run func(campaign.Sink)) {
	s, err := sse.Start(w, c.pingInterval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Streaming is not supported by this connection")
		return
	}
	defer s.Close()
	run(s)
}

func (c *Campaign) generateInput(w http.ResponseWriter, r *http.Request) (campaign.Request, bool) {
	var in generateRequest
	if !decodeJSON(w, r, &in) {
		return campaign.Request{}, false
	}
	if msg := validatePrompt(in.Prompt); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return campaign.Request{}, false
	}
	lf := in.LookAndFeel
	if msg := validateColors(lf.BrandColor, lf.AccentColor, lf.BackgroundColor); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return campaign.Request{}, false
	}

	profile, err := c.profiles.Get()
	if err != nil {
		slog.Error("load client profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load company settings")
		return campaign.Request{}, false
	}

	return campaign.Request{
		Prompt:             strings.TrimSpace(in.Prompt),
		BrandDefaults:      lf.defaults(),
		Profile:            brandProfile(profile),
		RecommendationSeed: in.Recommendation.seed(),
		ImageOptions:       in.ImageOptions,
	}, true
}

func refineInput(w http.ResponseWriter, r *http.Request) (campaign.RefineRequest, bool) {
	var in refineRequest
	if !decodeJSON(w, r, &in) {
		return campaign.RefineRequest{}, false
	}
	if msg := validateRefine(in.OriginalBrief, in.Answers); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return campaign.RefineRequest{}, false
	}
	lf := in.LookAndFeel
	if msg := validateColors(lf.BrandColor, lf.AccentColor, lf.BackgroundColor); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return campaign.RefineRequest{}, false
	}
	return campaign.RefineRequest{
		OriginalBrief:      in.OriginalBrief,
		Answers:            in.Answers,
		BrandDefaults:      lf.defaults(),
		RecommendationSeed: in.Recommendation.seed(),
		ImageOptions:       in.ImageOptions,
	}, true
}

// brandProfile returns nil for a missing or empty profile, which makes the
// pipeline ask for settings.
func brandProfile(p *models.ClientProfile) *creative.BrandProfile {
	if !p.Configured() {
		return nil
	}
	return &creative.BrandProfile{Markdown: p.Narrative(), WebsiteURL: p.WebsiteURL}
}

// writeOutcome maps a pipeline outcome onto the JSON envelope. Only the
// error outcome is a failed HTTP request.
func writeOutcome(w http.ResponseWriter, out *campaign.Outcome) {
	switch out.Status {
	case campaign.StatusSuccess:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"status":  out.Status,
			"result":  out.Result,
		})
	case campaign.StatusRequiresSettings:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":          false,
			"status":           out.Status,
			"requiresSettings": true,
			"error":            "Company settings are not configured. Set up the brand profile and try again.",
		})
	case campaign.StatusNeedsClarification:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":            false,
			"status":             out.Status,
			"needsClarification": true,
			"questions":          out.Questions,
			"brief":              out.Brief,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"status":  out.Status,
			"error":   out.Error,
		})
	}
}

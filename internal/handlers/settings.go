// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elyriond/llmmail/internal/markdown"
	"github.com/elyriond/llmmail/internal/models"
	"github.com/elyriond/llmmail/internal/scanner"
)

// WebsiteScanner builds a brand profile from a public website.
type WebsiteScanner interface {
	Scan(ctx context.Context, rawURL string) (*scanner.Report, error)
}

// Settings serves the brand profile used to brief every campaign.
type Settings struct {
	profiles ProfileStore
	scanner  WebsiteScanner
	now      func() time.Time
}

// NewSettings creates the settings handlers.
func NewSettings(profiles ProfileStore, scanner WebsiteScanner) *Settings {
	return &Settings{profiles: profiles, scanner: scanner, now: time.Now}
}

// Get returns the profile and an HTML rendering of its narrative.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get()
	if err != nil {
		slog.Error("load client profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load company settings")
		return
	}
	writeProfile(w, p)
}

// Update merges the submitted sections into the stored profile. Empty
// fields keep their stored value.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var in models.ClientProfile
	if !decodeJSON(w, r, &in) {
		return
	}
	if u := strings.TrimSpace(in.WebsiteURL); u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		writeError(w, http.StatusBadRequest, "Website URL must start with http:// or https://")
		return
	}
	// Only the scanner records scan times.
	in.LastScannedAt = nil

	p, err := h.profiles.Upsert(&in)
	if err != nil {
		slog.Error("save client profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save company settings")
		return
	}
	slog.Info("client profile updated")
	writeProfile(w, p)
}

type scanRequest struct {
	WebsiteURL string `json:"websiteUrl"`
}

// Scan analyses a website and stores the resulting profile.
func (h *Settings) Scan(w http.ResponseWriter, r *http.Request) {
	var in scanRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.WebsiteURL) == "" {
		writeError(w, http.StatusBadRequest, "Website URL is required")
		return
	}

	report, err := h.scanner.Scan(r.Context(), in.WebsiteURL)
	if errors.Is(err, scanner.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "Website URL must be an absolute http or https URL")
		return
	}
	if err != nil {
		slog.Error("website scan failed", "url", in.WebsiteURL, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to scan website")
		return
	}

	p, err := h.profiles.Upsert(report.Profile(h.now()))
	if err != nil {
		slog.Error("save scanned profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save company settings")
		return
	}
	slog.Info("website scanned", "url", report.URL, "logos", len(report.LogoCandidates))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"profile":        p,
		"logoCandidates": report.LogoCandidates,
		"analysis":       report.Data,
	})
}

func writeProfile(w http.ResponseWriter, p *models.ClientProfile) {
	preview := ""
	if p.Configured() {
		html, err := markdown.ToHTML(p.Narrative())
		if err != nil {
			slog.Warn("profile preview failed", "error", err)
		}
		preview = html
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"configured":  p.Configured(),
		"profile":     p,
		"previewHtml": preview,
	})
}

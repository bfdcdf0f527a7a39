// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/elyriond/llmmail/internal/campaign"
	"github.com/elyriond/llmmail/internal/dressipi"
)

// CacheFlusher drops cached upstream responses.
type CacheFlusher interface {
	InvalidateAll(ctx context.Context) int
}

// Dressipi proxies the related-items API for the editor's product picker.
type Dressipi struct {
	client campaign.Recommender
	cache  CacheFlusher
}

// NewDressipi creates the Dressipi handlers. cache may be nil.
func NewDressipi(client campaign.Recommender, cache CacheFlusher) *Dressipi {
	return &Dressipi{client: client, cache: cache}
}

// Related returns the related items of itemId. Query parameters other
// than itemId, domain and customerName are forwarded upstream.
func (h *Dressipi) Related(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	itemID := strings.TrimSpace(q.Get("itemId"))
	target := dressipi.Target{
		Domain:  strings.TrimSpace(q.Get("domain")),
		Account: strings.TrimSpace(q.Get("customerName")),
	}
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "itemId query parameter is required")
		return
	}
	if target.Domain == "" && target.Account == "" {
		writeError(w, http.StatusBadRequest, "Provide either customerName or domain to call the Dressipi API")
		return
	}

	forward := url.Values{}
	for k, vs := range q {
		if k == "itemId" || k == "domain" || k == "customerName" {
			continue
		}
		for _, v := range vs {
			if v != "" {
				forward.Add(k, v)
			}
		}
	}

	payload, err := h.client.FetchRelated(r.Context(), target, itemID, forward)
	if err != nil {
		status, msg := dressipiFailure(err)
		slog.Warn("dressipi related failed", "item", itemID, "status", status, "error", err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"data":            payload,
		"recommendations": dressipi.Normalize(payload),
	})
}

// dressipiFailure maps client errors to a status and message. Upstream
// client errors keep their status; everything else is a bad gateway.
func dressipiFailure(err error) (int, string) {
	if errors.Is(err, dressipi.ErrNoTarget) || errors.Is(err, dressipi.ErrNoItem) {
		return http.StatusBadRequest, err.Error()
	}
	var se *dressipi.StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
		return se.StatusCode, se.Error()
	}
	var me *dressipi.MalformedResponseError
	if errors.As(err, &me) {
		return http.StatusBadGateway, me.Error()
	}
	if errors.As(err, &se) {
		return http.StatusBadGateway, se.Error()
	}
	return http.StatusBadGateway, "Failed to fetch Dressipi related items"
}

// FlushCache empties the response cache.
func (h *Dressipi) FlushCache(w http.ResponseWriter, r *http.Request) {
	removed := 0
	if h.cache != nil {
		removed = h.cache.InvalidateAll(r.Context())
	}
	slog.Info("dressipi cache flushed", "removed", removed)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "removed": removed})
}

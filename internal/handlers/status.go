// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import "net/http"

// ProviderInfo describes the configured AI backends.
type ProviderInfo interface {
	Available() []string
	ActiveName() string
	ActiveImageName() string
	SupportsImageGeneration() bool
	HasModerator() bool
}

// Status reports what the server is configured to do, without secrets.
type Status struct {
	providers ProviderInfo
	storage   string
	dressipi  bool
}

// NewStatus creates the status handler. storage names the image backend;
// cached reports whether Dressipi responses are cached.
func NewStatus(providers ProviderInfo, storage string, cached bool) *Status {
	return &Status{providers: providers, storage: storage, dressipi: cached}
}

// Test serves /api/test.
func (h *Status) Test(w http.ResponseWriter, r *http.Request) {
	available := h.providers.Available()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "API is working",
		"configured":      len(available) > 0,
		"providers":       available,
		"textProvider":    h.providers.ActiveName(),
		"imageProvider":   h.providers.ActiveImageName(),
		"imageGeneration": h.providers.SupportsImageGeneration(),
		"moderation":      h.providers.HasModerator(),
		"imageStorage":    h.storage,
		"dressipiCache":   h.dressipi,
	})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/elyriond/llmmail/internal/models"
	"github.com/elyriond/llmmail/internal/personalize"
	"github.com/elyriond/llmmail/internal/store"
)

// Template list paging.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TemplateStore persists email templates.
type TemplateStore interface {
	List(limit, offset int) ([]models.EmailTemplate, error)
	FindByID(id uuid.UUID) (*models.EmailTemplate, error)
	Create(t *models.EmailTemplate) (*models.EmailTemplate, error)
	Update(t *models.EmailTemplate) error
	Delete(id uuid.UUID) error
}

// PresetStore persists look & feel presets.
type PresetStore interface {
	List() ([]models.LookAndFeel, error)
	Create(l *models.LookAndFeel) (*models.LookAndFeel, error)
	Delete(id uuid.UUID) error
}

// Previewer renders a template for one recipient.
type Previewer interface {
	Render(html string, recipient map[string]any) (*personalize.Preview, error)
}

// Templates serves saved email templates and look & feel presets.
type Templates struct {
	templates TemplateStore
	presets   PresetStore
	previewer Previewer
}

// NewTemplates creates the template handlers.
func NewTemplates(templates TemplateStore, presets PresetStore, previewer Previewer) *Templates {
	return &Templates{templates: templates, presets: presets, previewer: previewer}
}

// List returns saved templates, newest first.
func (h *Templates) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := max(queryInt(r, "offset", 0), 0)

	list, err := h.templates.List(limit, offset)
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load templates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "templates": list})
}

// Create saves a new template.
func (h *Templates) Create(w http.ResponseWriter, r *http.Request) {
	var t models.EmailTemplate
	if !h.decodeTemplate(w, r, &t) {
		return
	}

	created, err := h.templates.Create(&t)
	if errors.Is(err, store.ErrDuplicateName) {
		writeError(w, http.StatusConflict, "A template with this name already exists")
		return
	}
	if err != nil {
		slog.Error("create template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save template")
		return
	}
	slog.Info("template saved", "id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "template": created})
}

// Get returns one template.
func (h *Templates) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.find(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "template": t})
}

// Update replaces a template.
func (h *Templates) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var t models.EmailTemplate
	if !h.decodeTemplate(w, r, &t) {
		return
	}
	t.ID = id

	err := h.templates.Update(&t)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Template not found")
		return
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, "A template with this name already exists")
		return
	case err != nil:
		slog.Error("update template failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}

	updated, err := h.templates.FindByID(id)
	if err != nil || updated == nil {
		updated = &t
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "template": updated})
}

// Delete removes a template.
func (h *Templates) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.templates.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	if err != nil {
		slog.Error("delete template failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type previewRequest struct {
	Recipient map[string]any `json:"recipient"`
}

// Preview renders a template's merge tags for a recipient, or for the
// sample recipient when the body names none.
func (h *Templates) Preview(w http.ResponseWriter, r *http.Request) {
	t, ok := h.find(w, r)
	if !ok {
		return
	}

	var in previewRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.previewer.Render(t.HTMLContent, in.Recipient)
	if p == nil {
		p = &personalize.Preview{HTML: t.HTMLContent}
	}
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success":  false,
			"error":    "Template could not be rendered: " + err.Error(),
			"html":     p.HTML,
			"warnings": p.Warnings,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"html":     p.HTML,
		"warnings": p.Warnings,
	})
}

func (h *Templates) find(w http.ResponseWriter, r *http.Request) (*models.EmailTemplate, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	t, err := h.templates.FindByID(id)
	if err != nil {
		slog.Error("load template failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load template")
		return nil, false
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "Template not found")
		return nil, false
	}
	return t, true
}

func (h *Templates) decodeTemplate(w http.ResponseWriter, r *http.Request, t *models.EmailTemplate) bool {
	if !decodeJSON(w, r, t) {
		return false
	}
	if msg := validateTemplate(t.Name, t.Description, t.HTMLContent); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	if msg := validateColors(t.BrandColor, t.AccentColor); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// ListLookAndFeel returns all presets.
func (h *Templates) ListLookAndFeel(w http.ResponseWriter, r *http.Request) {
	list, err := h.presets.List()
	if err != nil {
		slog.Error("list look and feel failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load look & feel presets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "presets": list})
}

// CreateLookAndFeel saves a preset.
func (h *Templates) CreateLookAndFeel(w http.ResponseWriter, r *http.Request) {
	var l models.LookAndFeel
	if !decodeJSON(w, r, &l) {
		return
	}
	if err := l.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Name, brandColor, and accentColor are required")
		return
	}
	if msg := validateColors(l.BrandColor, l.AccentColor); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.presets.Create(&l)
	if errors.Is(err, store.ErrDuplicateName) {
		writeError(w, http.StatusConflict, "A preset with this name already exists")
		return
	}
	if err != nil {
		slog.Error("create look and feel failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save look & feel preset")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "preset": created})
}

// DeleteLookAndFeel removes a preset.
func (h *Templates) DeleteLookAndFeel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.presets.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Preset not found")
		return
	}
	if err != nil {
		slog.Error("delete look and feel failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete look & feel preset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// queryInt reads an integer query parameter, returning def when it is
// absent or malformed.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

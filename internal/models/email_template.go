// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persisted records: saved email templates,
// look & feel presets and the client profile.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Defaults applied to missing look & feel values.
const (
	DefaultBrandColor  = "#6366f1"
	DefaultAccentColor = "#ec4899"
	DefaultFontFamily  = "Arial, sans-serif"
)

// EmailTemplate is a generated email saved for reuse. The HTML keeps its
// mail-merge tags untouched.
type EmailTemplate struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserPrompt  string    `json:"userPrompt"`
	Subject     string    `json:"subject"`
	Preheader   string    `json:"preheader"`
	HTMLContent string    `json:"htmlContent"`
	BrandColor  string    `json:"brandColor"`
	AccentColor string    `json:"accentColor"`
	LogoURL     string    `json:"logoUrl"`
	FontFamily  string    `json:"fontFamily"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks required fields and fills look & feel defaults.
func (t *EmailTemplate) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(t.HTMLContent) == "" {
		return errors.New("html content is required")
	}
	if t.BrandColor == "" {
		t.BrandColor = DefaultBrandColor
	}
	if t.AccentColor == "" {
		t.AccentColor = DefaultAccentColor
	}
	if t.FontFamily == "" {
		t.FontFamily = DefaultFontFamily
	}
	return nil
}

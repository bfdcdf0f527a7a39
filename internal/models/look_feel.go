// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LookAndFeel is a named colour and typography preset.
type LookAndFeel struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	BrandColor  string    `json:"brandColor"`
	AccentColor string    `json:"accentColor"`
	LogoURL     string    `json:"logoUrl"`
	FontFamily  string    `json:"fontFamily"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate requires a name and both colours.
func (l *LookAndFeel) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" || strings.TrimSpace(l.BrandColor) == "" || strings.TrimSpace(l.AccentColor) == "" {
		return errors.New("name, brandColor, and accentColor are required")
	}
	if l.FontFamily == "" {
		l.FontFamily = DefaultFontFamily
	}
	return nil
}

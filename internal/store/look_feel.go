// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/elyriond/llmmail/internal/models"
)

// LookAndFeelStore handles look & feel presets.
type LookAndFeelStore struct {
	db *sql.DB
}

// NewLookAndFeelStore creates a new LookAndFeelStore.
func NewLookAndFeelStore(db *sql.DB) *LookAndFeelStore {
	return &LookAndFeelStore{db: db}
}

// List returns all presets, newest first.
func (s *LookAndFeelStore) List() ([]models.LookAndFeel, error) {
	rows, err := s.db.Query(`
		SELECT id, name, brand_color, accent_color, logo_url, font_family, created_at, updated_at
		FROM look_feel_templates
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list look and feel: %w", err)
	}
	defer rows.Close()

	presets := []models.LookAndFeel{}
	for rows.Next() {
		var l models.LookAndFeel
		if err := rows.Scan(&l.ID, &l.Name, &l.BrandColor, &l.AccentColor, &l.LogoURL,
			&l.FontFamily, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan look and feel: %w", err)
		}
		presets = append(presets, l)
	}
	return presets, rows.Err()
}

// Create inserts a preset and returns the stored row.
func (s *LookAndFeelStore) Create(l *models.LookAndFeel) (*models.LookAndFeel, error) {
	out := &models.LookAndFeel{}
	err := s.db.QueryRow(`
		INSERT INTO look_feel_templates (name, brand_color, accent_color, logo_url, font_family)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, brand_color, accent_color, logo_url, font_family, created_at, updated_at
	`, l.Name, l.BrandColor, l.AccentColor, l.LogoURL, l.FontFamily).Scan(
		&out.ID, &out.Name, &out.BrandColor, &out.AccentColor, &out.LogoURL,
		&out.FontFamily, &out.CreatedAt, &out.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("create look and feel: %w", err)
	}
	return out, nil
}

// Delete removes a preset.
func (s *LookAndFeelStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM look_feel_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete look and feel: %w", err)
	}
	return expectOne(res, "delete look and feel")
}

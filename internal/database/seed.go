// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// defaultPreset is inserted on first start so the look & feel picker is
// never empty.
var defaultPreset = struct {
	name, brand, accent, font string
}{"Default", "#6366f1", "#ec4899", "Arial, sans-serif"}

// Seed populates the database with initial data. It creates the default
// look & feel preset if no presets exist yet.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM look_feel_templates").Scan(&count); err != nil {
		return fmt.Errorf("seed check presets: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO look_feel_templates (name, brand_color, accent_color, font_family)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`, defaultPreset.name, defaultPreset.brand, defaultPreset.accent, defaultPreset.font)
	if err != nil {
		return fmt.Errorf("seed insert preset: %w", err)
	}

	slog.Info("database seeded with default look and feel preset", "name", defaultPreset.name)
	return nil
}

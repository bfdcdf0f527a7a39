// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/elyriond/llmmail/internal/models"
)

const profileColumns = `website_url, corporate_identity, tone_of_voice, contact_info, email_config,
	content_guidelines, compliance, full_scan_markdown, last_scanned_at, updated_at`

// ClientProfileStore handles the singleton profile row (id = 1).
type ClientProfileStore struct {
	db *sql.DB
}

// NewClientProfileStore creates a new ClientProfileStore.
func NewClientProfileStore(db *sql.DB) *ClientProfileStore {
	return &ClientProfileStore{db: db}
}

// Get returns the profile. Returns nil if it was never saved.
func (s *ClientProfileStore) Get() (*models.ClientProfile, error) {
	p, err := scanProfile(s.db.QueryRow(`SELECT ` + profileColumns + ` FROM client_profile WHERE id = 1`))
	if err != nil {
		return nil, fmt.Errorf("get client profile: %w", err)
	}
	return p, nil
}

// Upsert creates the profile or updates it in place. Blank fields in p
// keep the stored values, so partial updates never erase data.
func (s *ClientProfileStore) Upsert(p *models.ClientProfile) (*models.ClientProfile, error) {
	trim := strings.TrimSpace
	out, err := scanProfile(s.db.QueryRow(`
		INSERT INTO client_profile (
			id, website_url, corporate_identity, tone_of_voice, contact_info, email_config,
			content_guidelines, compliance, full_scan_markdown, last_scanned_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			website_url        = COALESCE(NULLIF(EXCLUDED.website_url, ''), client_profile.website_url),
			corporate_identity = COALESCE(NULLIF(EXCLUDED.corporate_identity, ''), client_profile.corporate_identity),
			tone_of_voice      = COALESCE(NULLIF(EXCLUDED.tone_of_voice, ''), client_profile.tone_of_voice),
			contact_info       = COALESCE(NULLIF(EXCLUDED.contact_info, ''), client_profile.contact_info),
			email_config       = COALESCE(NULLIF(EXCLUDED.email_config, ''), client_profile.email_config),
			content_guidelines = COALESCE(NULLIF(EXCLUDED.content_guidelines, ''), client_profile.content_guidelines),
			compliance         = COALESCE(NULLIF(EXCLUDED.compliance, ''), client_profile.compliance),
			full_scan_markdown = COALESCE(NULLIF(EXCLUDED.full_scan_markdown, ''), client_profile.full_scan_markdown),
			last_scanned_at    = COALESCE(EXCLUDED.last_scanned_at, client_profile.last_scanned_at),
			updated_at         = NOW()
		RETURNING `+profileColumns,
		trim(p.WebsiteURL), trim(p.CorporateIdentity), trim(p.ToneOfVoice), trim(p.ContactInfo),
		trim(p.EmailConfig), trim(p.ContentGuidelines), trim(p.Compliance), trim(p.FullScanMarkdown),
		p.LastScannedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert client profile: %w", err)
	}
	return out, nil
}

func scanProfile(row *sql.Row) (*models.ClientProfile, error) {
	p := &models.ClientProfile{}
	var scanned sql.NullTime
	err := row.Scan(
		&p.WebsiteURL, &p.CorporateIdentity, &p.ToneOfVoice, &p.ContactInfo, &p.EmailConfig,
		&p.ContentGuidelines, &p.Compliance, &p.FullScanMarkdown, &scanned, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if scanned.Valid {
		t := scanned.Time
		p.LastScannedAt = &t
	}
	return p, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/elyriond/llmmail/internal/models"
)

const templateColumns = `id, name, description, user_prompt, subject, preheader, html_content,
	brand_color, accent_color, logo_url, font_family, created_at, updated_at`

// EmailTemplateStore handles saved email templates.
type EmailTemplateStore struct {
	db *sql.DB
}

// NewEmailTemplateStore creates a new EmailTemplateStore.
func NewEmailTemplateStore(db *sql.DB) *EmailTemplateStore {
	return &EmailTemplateStore{db: db}
}

// List returns template summaries, newest first. The HTML body and prompt
// are not loaded.
func (s *EmailTemplateStore) List(limit, offset int) ([]models.EmailTemplate, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, subject, created_at, updated_at
		FROM email_templates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list email templates: %w", err)
	}
	defer rows.Close()

	templates := []models.EmailTemplate{}
	for rows.Next() {
		var t models.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Subject, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan email template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template by its UUID. Returns nil if not found.
func (s *EmailTemplateStore) FindByID(id uuid.UUID) (*models.EmailTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(`SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("find email template by id: %w", err)
	}
	return t, nil
}

// FindByName retrieves a template by its unique name. Returns nil if not found.
func (s *EmailTemplateStore) FindByName(name string) (*models.EmailTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(`SELECT `+templateColumns+` FROM email_templates WHERE name = $1`, name))
	if err != nil {
		return nil, fmt.Errorf("find email template by name: %w", err)
	}
	return t, nil
}

// Create inserts a template and returns the stored row.
func (s *EmailTemplateStore) Create(t *models.EmailTemplate) (*models.EmailTemplate, error) {
	created, err := scanTemplate(s.db.QueryRow(`
		INSERT INTO email_templates (
			name, description, user_prompt, subject, preheader, html_content,
			brand_color, accent_color, logo_url, font_family
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+templateColumns,
		t.Name, t.Description, t.UserPrompt, t.Subject, t.Preheader, t.HTMLContent,
		t.BrandColor, t.AccentColor, t.LogoURL, t.FontFamily,
	))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("create email template: %w", err)
	}
	return created, nil
}

// Update overwrites the editable fields of a template.
func (s *EmailTemplateStore) Update(t *models.EmailTemplate) error {
	res, err := s.db.Exec(`
		UPDATE email_templates SET
			name = $1, description = $2, subject = $3, preheader = $4, html_content = $5,
			brand_color = $6, accent_color = $7, logo_url = $8, font_family = $9,
			updated_at = NOW()
		WHERE id = $10
	`, t.Name, t.Description, t.Subject, t.Preheader, t.HTMLContent,
		t.BrandColor, t.AccentColor, t.LogoURL, t.FontFamily, t.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update email template: %w", err)
	}
	return expectOne(res, "update email template")
}

// Delete removes a template.
func (s *EmailTemplateStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete email template: %w", err)
	}
	return expectOne(res, "delete email template")
}

// scanTemplate reads one full row. A missing row yields (nil, nil).
func scanTemplate(row *sql.Row) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.UserPrompt, &t.Subject, &t.Preheader, &t.HTMLContent,
		&t.BrandColor, &t.AccentColor, &t.LogoURL, &t.FontFamily, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package personalize renders Liquid merge tags
// ({{ recipient.first_name }}, {{ unsubscribe_url }}, {% if recipient.vip %})
// in saved email templates so users can preview a campaign as a specific
// recipient would see it.
package personalize

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/osteele/liquid"
)

// SampleUnsubscribeURL fills {{ unsubscribe_url }} unless the recipient
// carries its own.
const SampleUnsubscribeURL = "https://example.com/unsubscribe"

// SampleRecipient is used when a preview request carries no recipient.
func SampleRecipient() map[string]any {
	return map[string]any{
		"first_name": "Alex",
		"last_name":  "Morgan",
		"email":      "alex.morgan@example.com",
		"city":       "London",
		"vip":        true,
	}
}

// Warning reports a merge tag the recipient data does not define.
type Warning struct {
	Variable string `json:"variable"`
	Message  string `json:"message"`
}

// Preview is the rendered template plus any missing-variable warnings.
type Preview struct {
	HTML     string    `json:"html"`
	Warnings []Warning `json:"warnings"`
}

// Renderer renders Liquid templates with the email filters registered.
type Renderer struct {
	engine *liquid.Engine
}

// New creates a Renderer.
func New() *Renderer {
	engine := liquid.NewEngine()

	// {{ first_name | default: "Friend" }} also treats "" as missing.
	engine.RegisterFilter("default", func(value any, fallback string) any {
		if value == nil || fmt.Sprint(value) == "" {
			return fallback
		}
		return value
	})
	engine.RegisterFilter("urlencode", url.QueryEscape)
	engine.RegisterFilter("email_domain", func(email string) string {
		if _, domain, ok := strings.Cut(email, "@"); ok {
			return domain
		}
		return ""
	})
	engine.RegisterFilter("mask_email", func(email string) string {
		local, domain, ok := strings.Cut(email, "@")
		if !ok {
			return email
		}
		if len(local) > 2 {
			local = local[:2]
		}
		return local + "***@" + domain
	})

	return &Renderer{engine: engine}
}

// Render renders html for recipient. A nil recipient uses SampleRecipient.
// recipient holds the recipient's own fields (first_name, email, ...); they
// are exposed as recipient.* and, for older templates, at the top level.
// Templates that fail to parse or render are returned unchanged together
// with the error.
func (r *Renderer) Render(html string, recipient map[string]any) (*Preview, error) {
	data := MergeData(recipient)
	p := &Preview{HTML: html, Warnings: Missing(html, data)}

	out, err := r.engine.ParseAndRenderString(html, data)
	if err != nil {
		slog.Warn("liquid render failed", "error", err)
		return p, fmt.Errorf("personalize render: %w", err)
	}
	p.HTML = out
	return p, nil
}

// MergeData builds the variables a template is rendered with. A recipient
// "unsubscribe_url" field overrides SampleUnsubscribeURL.
func MergeData(recipient map[string]any) map[string]any {
	if recipient == nil {
		recipient = SampleRecipient()
	}
	data := map[string]any{"unsubscribe_url": SampleUnsubscribeURL}
	for k, v := range recipient {
		data[k] = v
	}
	data["recipient"] = recipient
	return data
}

// mergeTag matches {{ var }}, {{ var | filter }} and {{ var.nested }}.
var mergeTag = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*?)\s*(?:\||\}\})`)

// Missing lists merge tags in html whose variable is absent from data, in
// order of first appearance.
func Missing(html string, data map[string]any) []Warning {
	warnings := []Warning{}
	seen := map[string]bool{}
	for _, m := range mergeTag.FindAllStringSubmatch(html, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if !defined(name, data) {
			warnings = append(warnings, Warning{
				Variable: name,
				Message:  fmt.Sprintf("Variable '%s' may not be defined for all recipients", name),
			})
		}
	}
	return warnings
}

func defined(path string, data map[string]any) bool {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		if current, ok = m[part]; !ok {
			return false
		}
	}
	return true
}

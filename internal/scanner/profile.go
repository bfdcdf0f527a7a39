// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scanner

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/elyriond/llmmail/internal/models"
)

// Merge combines the content and style analyses. Style values replace
// content values for the same key.
func Merge(content, style map[string]any) map[string]any {
	out := make(map[string]any, len(content)+len(style))
	maps.Copy(out, content)
	maps.Copy(out, style)
	return out
}

// section maps report keys to a markdown heading.
type section struct {
	key, title string
}

var sections = []section{
	{"description", "Overview"},
	{"industry", "Industry"},
	{"target_audience", "Target Audience"},
	{"tone_of_voice", "Tone of Voice"},
	{"key_messages", "Key Messages"},
	{"products_services", "Products and Services"},
	{"logo_url", "Logo"},
	{"primary_color", "Primary Color"},
	{"accent_color", "Accent Color"},
	{"background_color", "Background Color"},
	{"text_color", "Text Color"},
	{"heading_font", "Heading Font"},
	{"body_font", "Body Font"},
	{"button_style", "Button Style"},
	{"layout_notes", "Layout Notes"},
	{"contact_info", "Contact Information"},
	{"content_guidelines", "Content Guidelines"},
}

// Markdown renders the merged analysis as a brand profile document.
// Known keys come first in a fixed order; anything else follows sorted.
func Markdown(site string, data map[string]any) string {
	var b strings.Builder

	name := stringValue(data["company_name"])
	if name == "" {
		name = site
	}
	fmt.Fprintf(&b, "# Brand Profile: %s\n\nWebsite: %s\n", name, site)

	known := map[string]bool{"company_name": true}
	for _, s := range sections {
		known[s.key] = true
		writeSection(&b, s.title, data[s.key])
	}
	for _, key := range slices.Sorted(maps.Keys(data)) {
		if !known[key] {
			writeSection(&b, titleCase(key), data[key])
		}
	}
	return strings.TrimSpace(b.String()) + "\n"
}

func writeSection(b *strings.Builder, title string, v any) {
	body := render(v)
	if body == "" {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n%s\n", title, body)
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		var lines []string
		for _, item := range t {
			if s := render(item); s != "" {
				lines = append(lines, "- "+s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		var lines []string
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if s := render(t[k]); s != "" {
				lines = append(lines, fmt.Sprintf("- **%s**: %s", titleCase(k), s))
			}
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(t)
	}
}

func titleCase(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// identityKeys are stored together as the corporate identity JSON.
var identityKeys = []string{
	"company_name", "industry", "logo_url", "primary_color", "accent_color",
	"background_color", "text_color", "heading_font", "body_font", "button_style",
}

// Profile converts a report into the profile fields it can fill. Fields
// the scan did not produce stay empty so an upsert keeps stored values.
func (r *Report) Profile(scannedAt time.Time) *models.ClientProfile {
	identity := map[string]any{}
	for _, k := range identityKeys {
		if v, ok := r.Data[k]; ok && render(v) != "" {
			identity[k] = v
		}
	}

	p := &models.ClientProfile{
		WebsiteURL:        r.URL,
		CorporateIdentity: jsonOrEmpty(identity),
		ToneOfVoice:       render(r.Data["tone_of_voice"]),
		ContactInfo:       jsonOrEmpty(r.Data["contact_info"]),
		ContentGuidelines: render(r.Data["content_guidelines"]),
		FullScanMarkdown:  r.Markdown,
		LastScannedAt:     &scannedAt,
	}
	return p
}

func jsonOrEmpty(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

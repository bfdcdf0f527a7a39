// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// ClientProfile is the singleton brand profile ("settings"). The section
// fields hold free text or JSON produced by the website scanner or typed by
// the user; they are only ever embedded in prompts.
type ClientProfile struct {
	WebsiteURL        string     `json:"websiteUrl"`
	CorporateIdentity string     `json:"corporateIdentity"`
	ToneOfVoice       string     `json:"toneOfVoice"`
	ContactInfo       string     `json:"contactInfo"`
	EmailConfig       string     `json:"emailConfig"`
	ContentGuidelines string     `json:"contentGuidelines"`
	Compliance        string     `json:"compliance"`
	FullScanMarkdown  string     `json:"fullScanMarkdown"`
	LastScannedAt     *time.Time `json:"lastScannedAt,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Configured reports whether the profile has enough content to brief a
// campaign.
func (p *ClientProfile) Configured() bool {
	return p != nil && strings.TrimSpace(p.Narrative()) != ""
}

// Narrative returns the markdown embedded in the brief prompt: the full
// scan when present, otherwise the filled sections under headings.
func (p *ClientProfile) Narrative() string {
	if p == nil {
		return ""
	}
	if s := strings.TrimSpace(p.FullScanMarkdown); s != "" {
		return s
	}

	sections := []struct{ title, body string }{
		{"Corporate Identity", p.CorporateIdentity},
		{"Tone of Voice", p.ToneOfVoice},
		{"Contact Information", p.ContactInfo},
		{"Email Configuration", p.EmailConfig},
		{"Content Guidelines", p.ContentGuidelines},
		{"Compliance", p.Compliance},
	}
	var b strings.Builder
	for _, s := range sections {
		body := strings.TrimSpace(s.body)
		if body == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(s.title)
		b.WriteString("\n")
		b.WriteString(body)
	}
	return b.String()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package extract

import (
	"regexp"
	"strings"
)

// Fallback values used when the copy omits a section.
const (
	DefaultSubject = "Your Campaign"
	DefaultCTA     = "Shop Now"
	DefaultCTAURL  = "#"
	DefaultFooter  = "You are receiving this email because you subscribed to our updates."
)

// EmailContent holds the summary fields parsed from generated copy.
type EmailContent struct {
	Subject   string `json:"subject"`
	Preheader string `json:"preheader"`
	Headline  string `json:"headline"`
	Body      string `json:"body"`
	CTA       string `json:"cta"`
	CTAURL    string `json:"ctaUrl"`
	Footer    string `json:"footer"`
}

type contentField int

const (
	fieldNone contentField = iota
	fieldSubject
	fieldPreheader
	fieldHeadline
	fieldBody
	fieldCTA
	fieldCTAURL
	fieldFooter
)

// Longer labels come first so "CTA URL" is not read as "CTA".
const contentLabels = `subject\s+line|subject|pre-?header(?:\s+text)?|headline|body\s+copy|body|` +
	`call[\s-]+to[\s-]+action(?:\s+url|\s+link)?|cta\s+(?:url|link)|button\s+(?:url|link)|cta(?:\s+button|\s+text)?|footer`

var (
	labelWithValueRe = regexp.MustCompile(`(?i)^[\s#*>\-]*(` + contentLabels + `)\**\s*:\s*\**\s*(.*)$`)
	labelHeadingRe   = regexp.MustCompile(`(?i)^[\s#*>\-]*(` + contentLabels + `)[\s*]*$`)
)

func classify(label string) contentField {
	l := strings.ToLower(strings.Join(strings.Fields(label), " "))
	switch {
	case strings.HasPrefix(l, "subject"):
		return fieldSubject
	case strings.HasPrefix(l, "pre"):
		return fieldPreheader
	case l == "headline":
		return fieldHeadline
	case strings.HasPrefix(l, "body"):
		return fieldBody
	case strings.HasSuffix(l, "url"), strings.HasSuffix(l, "link"):
		return fieldCTAURL
	case strings.HasPrefix(l, "footer"):
		return fieldFooter
	default:
		return fieldCTA
	}
}

// Content parses labeled sections (Subject, Preheader, Headline, Body,
// CTA, CTA URL, Footer) out of free-text email copy. Body and Footer may
// span several lines; the other fields take the first non-empty line.
// Missing fields receive fixed fallbacks; a missing headline reuses the
// subject and a missing body reuses the whole text.
func Content(text string) EmailContent {
	values := map[contentField][]string{}
	current := fieldNone

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := labelWithValueRe.FindStringSubmatch(trimmed); m != nil {
			current = classify(m[1])
			if _, seen := values[current]; seen {
				// Repeated labels (e.g. a second "Subject:" mention) keep the first value.
				current = fieldNone
				continue
			}
			values[current] = nil
			if v := strings.TrimSpace(m[2]); v != "" {
				values[current] = append(values[current], v)
			}
			continue
		}
		if m := labelHeadingRe.FindStringSubmatch(trimmed); m != nil {
			current = classify(m[1])
			if _, seen := values[current]; seen {
				current = fieldNone
				continue
			}
			values[current] = nil
			continue
		}

		if current == fieldNone || trimmed == "" && len(values[current]) == 0 {
			continue
		}
		if isRule(trimmed) {
			current = fieldNone
			continue
		}
		if multiline(current) || len(values[current]) == 0 {
			values[current] = append(values[current], trimmed)
		}
	}

	single := func(f contentField) string {
		if len(values[f]) == 0 {
			return ""
		}
		return unquote(values[f][0])
	}
	multi := func(f contentField) string {
		return strings.TrimSpace(strings.Join(values[f], "\n"))
	}

	c := EmailContent{
		Subject:   single(fieldSubject),
		Preheader: single(fieldPreheader),
		Headline:  single(fieldHeadline),
		Body:      multi(fieldBody),
		CTA:       single(fieldCTA),
		CTAURL:    single(fieldCTAURL),
		Footer:    multi(fieldFooter),
	}

	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.Headline == "" {
		c.Headline = c.Subject
	}
	if c.Body == "" {
		c.Body = strings.TrimSpace(text)
	}
	if c.CTA == "" {
		c.CTA = DefaultCTA
	}
	if c.CTAURL == "" {
		c.CTAURL = DefaultCTAURL
	}
	if c.Footer == "" {
		c.Footer = DefaultFooter
	}
	return c
}

func multiline(f contentField) bool {
	return f == fieldBody || f == fieldFooter
}

// isRule reports markdown horizontal rules that separate sections.
func isRule(s string) bool {
	if len(s) < 3 {
		return false
	}
	return strings.Trim(s, "-") == "" || strings.Trim(s, "*") == "" || strings.Trim(s, "=") == ""
}

func unquote(s string) string {
	s = strings.TrimSpace(strings.Trim(s, "*_`"))
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '[' && last == ']') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}

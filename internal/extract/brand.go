// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package extract derives structured facts from free-text model output.
// Models do not emit strict schemas, so every parser here is a pure,
// best-effort function: malformed or partial input yields empty fields,
// never a panic or an error.
package extract

import (
	"regexp"
	"strings"
)

// BrandStyle is the resolved set of visual parameters applied to HTML
// assembly. Every field is optional; an empty string means "not found".
type BrandStyle struct {
	PrimaryColor    string `json:"primaryColor,omitempty"`
	AccentColor     string `json:"accentColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	HeadingFont     string `json:"headingFont,omitempty"`
	BodyFont        string `json:"bodyFont,omitempty"`
	BrandVoice      string `json:"brandVoice,omitempty"`
}

// Merge returns a copy of s with empty fields filled from defaults.
// Values already present in s take precedence.
func (s BrandStyle) Merge(defaults BrandStyle) BrandStyle {
	out := s
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&out.PrimaryColor, defaults.PrimaryColor)
	fill(&out.AccentColor, defaults.AccentColor)
	fill(&out.BackgroundColor, defaults.BackgroundColor)
	fill(&out.HeadingFont, defaults.HeadingFont)
	fill(&out.BodyFont, defaults.BodyFont)
	fill(&out.BrandVoice, defaults.BrandVoice)
	return out
}

// IsZero reports whether no field is set.
func (s BrandStyle) IsZero() bool {
	return s == BrandStyle{}
}

// hexBody matches a 6- or 3-digit hex code. The 6-digit form is tried first.
const hexBody = `([0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`

// label tolerates markdown emphasis and bullets around "<name>:".
func labeled(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + name + `\**\s*:\s*\**\s*#?` + hexBody)
}

func labeledText(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + name + `\**\s*:\s*\**[ \t]*([^\n]+)`)
}

var (
	primaryColorRe    = labeled(`primary\s+colou?r`)
	accentColorRe     = labeled(`accent\s+colou?r`)
	backgroundColorRe = labeled(`background\s+colou?r`)
	anyHexRe          = regexp.MustCompile(`#` + hexBody)

	headingFontRe = labeledText(`heading\s+font`)
	bodyFontRe    = labeledText(`body\s+font`)
	brandVoiceRe  = labeledText(`brand\s+voice`)
	toneRe        = labeledText(`tone`)
)

// Brand scans free text for colors, fonts, and a voice descriptor.
//
// Labeled colors ("Primary color: #112233") win. Missing labeled colors
// are filled positionally from the unlabeled "#hex" codes in document
// order: the 1st goes to primary, the 2nd to accent, the 3rd to background.
// A slot stays empty when fewer unlabeled codes exist.
func Brand(text string) BrandStyle {
	var style BrandStyle
	if strings.TrimSpace(text) == "" {
		return style
	}

	var claimed [][2]int
	findColor := func(re *regexp.Regexp) string {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			return ""
		}
		claimed = append(claimed, [2]int{loc[2], loc[3]})
		return normalizeHex(text[loc[2]:loc[3]])
	}

	style.PrimaryColor = findColor(primaryColorRe)
	style.AccentColor = findColor(accentColorRe)
	style.BackgroundColor = findColor(backgroundColorRe)

	var unlabeled []string
	for _, loc := range anyHexRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(claimed, loc[2], loc[3]) {
			continue
		}
		unlabeled = append(unlabeled, normalizeHex(text[loc[2]:loc[3]]))
	}

	slots := []*string{&style.PrimaryColor, &style.AccentColor, &style.BackgroundColor}
	for i, slot := range slots {
		if *slot == "" && i < len(unlabeled) {
			*slot = unlabeled[i]
		}
	}

	style.HeadingFont = findText(headingFontRe, text)
	style.BodyFont = findText(bodyFontRe, text)
	style.BrandVoice = findText(brandVoiceRe, text)
	if style.BrandVoice == "" {
		style.BrandVoice = findText(toneRe, text)
	}

	return style
}

func findText(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return cleanValue(m[1])
}

// cleanValue strips markdown decoration and wrapping quotes from a
// captured label value.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "*_`")
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	v = strings.TrimRight(v, ".;,")
	return strings.TrimSpace(v)
}

func normalizeHex(h string) string {
	return "#" + strings.ToLower(h)
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

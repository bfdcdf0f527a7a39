// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package extract

import (
	"regexp"
	"strings"
)

// FallbackImagePrompt is returned when a brief carries no usable image prompt.
const FallbackImagePrompt = "Professional email marketing photography, high quality, brand-aligned aesthetic, clean composition"

// MaxImagePrompts caps how many images a single campaign generates.
const MaxImagePrompts = 3

var (
	delimitedPromptRe = regexp.MustCompile(`(?s)\[?IMAGE_PROMPT_START\]?(.*?)\[?IMAGE_PROMPT_END\]?`)

	imageHeadingRe = regexp.MustCompile(`(?i)^[\s#*>\-\d.]*(image\s*\d+|hero\s+image|product\s+image|lifestyle\s+image|banner\s+image)\b`)
	promptLabelRe  = regexp.MustCompile(`(?i)\b(?:prompt|description)\**\s*:\s*\**\s*(.*)$`)
)

// ImagePrompts returns between 1 and MaxImagePrompts image-generation
// prompts found in a brief, in document order.
func ImagePrompts(brief string) []string {
	prompts := delimitedPrompts(brief)
	if len(prompts) == 0 {
		prompts = headingPrompts(brief)
	}
	if len(prompts) == 0 {
		return []string{FallbackImagePrompt}
	}
	if len(prompts) > MaxImagePrompts {
		prompts = prompts[:MaxImagePrompts]
	}
	return prompts
}

func delimitedPrompts(text string) []string {
	var out []string
	for _, m := range delimitedPromptRe.FindAllStringSubmatch(text, -1) {
		if p := strings.TrimSpace(m[1]); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// headingPrompts scans for "Hero Image" style headings followed by a
// Prompt or Description label. The label may sit on the heading line.
func headingPrompts(text string) []string {
	var (
		out       []string
		inSection bool
		capturing bool
		current   []string
	)

	flush := func() {
		if p := strings.TrimSpace(strings.Join(current, " ")); p != "" {
			out = append(out, p)
		}
		current = nil
		capturing = false
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if imageHeadingRe.MatchString(trimmed) {
			if capturing {
				flush()
			}
			inSection = true
			if m := promptLabelRe.FindStringSubmatch(trimmed); m != nil {
				capturing = true
				current = appendClean(current, m[1])
			}
			continue
		}

		if trimmed == "" {
			if capturing {
				flush()
				inSection = false
			}
			continue
		}

		switch {
		case capturing:
			current = appendClean(current, trimmed)
		case inSection:
			if m := promptLabelRe.FindStringSubmatch(trimmed); m != nil {
				capturing = true
				current = appendClean(current, m[1])
			}
		}
	}
	if capturing {
		flush()
	}
	return out
}

func appendClean(parts []string, s string) []string {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_\"'"))
	if s == "" {
		return parts
	}
	return append(parts, s)
}

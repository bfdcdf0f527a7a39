// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns free text such as image prompts into short,
// filename-safe slugs.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators collapses whitespace and hyphen runs into a single hyphen.
	separators = regexp.MustCompile(`[\s-]+`)
)

// Generate creates a lowercase hyphenated slug.
// Example: "A red dress, studio light" → "a-red-dress-studio-light"
func Generate(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Short returns Generate(s) cut to at most max bytes without a trailing
// hyphen. If nothing usable remains, fallback is returned.
func Short(s string, max int, fallback string) string {
	result := Generate(s)
	if max > 0 && len(result) > max {
		result = strings.TrimRight(result[:max], "-")
	}
	if result == "" {
		return fallback
	}
	return result
}

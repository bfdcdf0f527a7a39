// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	maxPromptLen       = 4_000
	maxAnswerLen       = 2_000
	maxBriefLen        = 50_000
	maxTemplateNameLen = 200
	maxTemplateHTMLLen = 500_000
	maxDescriptionLen  = 1_000
	maxCampaignImages  = 4
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validatePrompt checks a generation prompt and returns the first error found.
func validatePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "Prompt is required"
	}
	if utf8.RuneCountInString(prompt) > maxPromptLen {
		return "Prompt is too long (max 4,000 characters)"
	}
	return ""
}

// validateRefine checks a brief refinement request.
func validateRefine(brief string, answers map[string]string) string {
	if strings.TrimSpace(brief) == "" {
		return "Original brief is required"
	}
	if utf8.RuneCountInString(brief) > maxBriefLen {
		return "Original brief is too long"
	}
	if len(answers) == 0 {
		return "Answers are required"
	}
	for _, a := range answers {
		if utf8.RuneCountInString(a) > maxAnswerLen {
			return "Answer is too long (max 2,000 characters)"
		}
	}
	return ""
}

// validateTemplate checks template inputs and returns the first error found.
func validateTemplate(name, description, htmlContent string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(htmlContent) == "" {
		return "Name and HTML content are required"
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLen {
		return "Template name is too long (max 200 characters)"
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 1,000 characters)"
	}
	if utf8.RuneCountInString(htmlContent) > maxTemplateHTMLLen {
		return "Template HTML content is too long (max 500,000 characters)"
	}
	return ""
}

// validateColors checks that every non-empty value is a hex colour.
func validateColors(colors ...string) string {
	for _, c := range colors {
		if c != "" && !hexColor.MatchString(c) {
			return "Colors must be hex values like #1a2b3c"
		}
	}
	return ""
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package creative

import (
	"regexp"
	"strings"
)

// Markers the creative director prompt asks the model to emit.
const (
	SettingsRequiredMarker = "SETTINGS_REQUIRED"
	ClarificationMarker    = "CLARIFICATION_NEEDED"
)

var settingsPhraseRe = regexp.MustCompile(`(?i)settings are not configured|set up (?:their|your) profile`)

// RequiresSettings reports whether a brief signals that the brand profile
// must be configured before a campaign can be written.
func RequiresSettings(brief string) bool {
	return strings.Contains(brief, SettingsRequiredMarker) || settingsPhraseRe.MatchString(brief)
}

var questionLineRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+?)\s*$`)

// Clarification returns the questions that follow the clarification
// marker, one per bullet line. The list is the first run of consecutive
// bullet lines; it ends at the first line that is not a bullet. ok is
// false when the marker is absent. A marker with no bullet lines yields ok
// with no questions.
func Clarification(brief string) (questions []string, ok bool) {
	i := strings.Index(brief, ClarificationMarker)
	if i < 0 {
		return nil, false
	}
	rest := brief[i+len(ClarificationMarker):]
	for _, line := range strings.Split(rest, "\n") {
		m := questionLineRe.FindStringSubmatch(line)
		if m == nil {
			if len(questions) > 0 {
				break
			}
			continue
		}
		questions = append(questions, m[1])
	}
	return questions, true
}

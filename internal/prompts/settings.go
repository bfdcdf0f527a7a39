// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings are the model parameters declared by a definition. Zero values
// mean "use the provider default".
type Settings struct {
	Model          string
	Temperature    *float64
	ResponseFormat string // "json" or ""
}

// JSON reports whether the definition asks for a JSON object response.
func (s Settings) JSON() bool {
	return strings.EqualFold(s.ResponseFormat, "json") || strings.EqualFold(s.ResponseFormat, "json_object")
}

// parseSettings reads the "## Settings" block as YAML. Markdown bullets and
// bold markers around keys are stripped first, so both
//
//	Temperature: 0.8
//	- **Temperature**: 0.8
//
// are accepted. Keys are matched case-insensitively.
func parseSettings(block string) (Settings, error) {
	var s Settings
	if strings.TrimSpace(block) == "" {
		return s, nil
	}

	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.TrimLeft(line, "-* \t")
		line = strings.ReplaceAll(line, "**", "")
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		lines = append(lines, line)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &raw); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}

	for key, val := range raw {
		switch normalizeKey(key) {
		case "model":
			s.Model = fmt.Sprint(val)
		case "temperature":
			t, err := toFloat(val)
			if err != nil {
				return s, fmt.Errorf("parse settings temperature: %w", err)
			}
			s.Temperature = &t
		case "responseformat":
			s.ResponseFormat = strings.ToLower(fmt.Sprint(val))
		}
	}
	return s, nil
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(k)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
}

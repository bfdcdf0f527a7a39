package handlers

import (
	"strings"
	"testing"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name      string
		prompt    string
		wantError bool
	}{
		{"valid", "Spring sale for our linen dresses", false},
		{"empty", "", true},
		{"whitespace", "   \n", true},
		{"at limit", strings.Repeat("a", 4_000), false},
		{"too long", strings.Repeat("a", 4_001), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validatePrompt(tt.prompt)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateRefine(t *testing.T) {
	tests := []struct {
		name      string
		brief     string
		answers   map[string]string
		wantError bool
	}{
		{"valid", "brief", map[string]string{"Audience?": "Students"}, false},
		{"no brief", "", map[string]string{"q": "a"}, true},
		{"no answers", "brief", nil, true},
		{"answer too long", "brief", map[string]string{"q": strings.Repeat("a", 2_001)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateRefine(tt.brief, tt.answers)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name      string
		tmplName  string
		desc      string
		html      string
		wantError bool
	}{
		{"valid", "Welcome", "", "<html></html>", false},
		{"empty name", "", "", "<html></html>", true},
		{"whitespace name", "   ", "", "<html></html>", true},
		{"empty html", "Welcome", "", "  ", true},
		{"name too long", strings.Repeat("a", 201), "", "<p/>", true},
		{"description too long", "Welcome", strings.Repeat("a", 1_001), "<p/>", true},
		{"html too long", "Welcome", "", strings.Repeat("a", 500_001), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateTemplate(tt.tmplName, tt.desc, tt.html)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateColors(t *testing.T) {
	if msg := validateColors("#fff", "#0A84FF", ""); msg != "" {
		t.Errorf("valid colors rejected: %s", msg)
	}
	for _, bad := range []string{"red", "#ggg", "0a84ff", "#12345", "#fff;background:url(x)"} {
		if validateColors(bad) == "" {
			t.Errorf("validateColors(%q) accepted", bad)
		}
	}
}

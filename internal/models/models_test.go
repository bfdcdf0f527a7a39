package models

import "testing"

func TestEmailTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    EmailTemplate
		wantErr bool
	}{
		{"valid", EmailTemplate{Name: " Summer ", HTMLContent: "<html></html>"}, false},
		{"missing name", EmailTemplate{Name: "  ", HTMLContent: "<html></html>"}, true},
		{"missing html", EmailTemplate{Name: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	tmpl := EmailTemplate{Name: " Summer ", HTMLContent: "x", AccentColor: "#000000"}
	if err := tmpl.Validate(); err != nil {
		t.Fatal(err)
	}
	if tmpl.Name != "Summer" || tmpl.BrandColor != DefaultBrandColor || tmpl.AccentColor != "#000000" || tmpl.FontFamily != DefaultFontFamily {
		t.Errorf("defaults not applied: %+v", tmpl)
	}
}

func TestLookAndFeelValidate(t *testing.T) {
	l := LookAndFeel{Name: "Brand", BrandColor: "#111111", AccentColor: "#222222"}
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if l.FontFamily != DefaultFontFamily {
		t.Errorf("FontFamily = %q", l.FontFamily)
	}
	for _, bad := range []LookAndFeel{
		{BrandColor: "#1", AccentColor: "#2"},
		{Name: "n", AccentColor: "#2"},
		{Name: "n", BrandColor: "#1"},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil", bad)
		}
	}
}

func TestClientProfileNarrative(t *testing.T) {
	var nilProfile *ClientProfile
	if nilProfile.Configured() || nilProfile.Narrative() != "" {
		t.Error("nil profile must be unconfigured")
	}

	p := &ClientProfile{WebsiteURL: "https://acme.test"}
	if p.Configured() {
		t.Error("a website URL alone is not a brand profile")
	}

	p.ToneOfVoice = "Warm and playful"
	p.Compliance = "GDPR footer"
	want := "## Tone of Voice\nWarm and playful\n\n## Compliance\nGDPR footer"
	if got := p.Narrative(); got != want {
		t.Errorf("Narrative =\n%s\nwant\n%s", got, want)
	}

	p.FullScanMarkdown = "# Acme brand profile"
	if got := p.Narrative(); got != "# Acme brand profile" {
		t.Errorf("full scan should win, got %q", got)
	}
	if !p.Configured() {
		t.Error("profile should be configured")
	}
}

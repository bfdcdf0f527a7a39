package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

const sampleDefinition = `# Sample

## System Prompt

` + "```" + `
You are helpful.
{{include shared}}
` + "```" + `

## Settings

- **Model**: gpt-4o-mini
- Temperature: 0.4
- Response Format: json

## User Prompt Template

Hello {{name}}.
{{#if vip}}You are a VIP.
{{/if}}Bye.
`

func newTestStore(files map[string]string) *Store {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name+".md"] = &fstest.MapFile{Data: []byte(body)}
	}
	return New(fsys)
}

func TestStore_Load(t *testing.T) {
	s := newTestStore(map[string]string{
		"sample": sampleDefinition,
		"shared": "Always answer in English.",
	})

	p, err := s.Load("sample")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if p.SystemPrompt != "You are helpful.\nAlways answer in English." {
		t.Errorf("SystemPrompt = %q", p.SystemPrompt)
	}
	if p.Settings.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", p.Settings.Model)
	}
	if p.Settings.Temperature == nil || *p.Settings.Temperature != 0.4 {
		t.Errorf("Temperature = %v", p.Settings.Temperature)
	}
	if !p.Settings.JSON() {
		t.Error("ResponseFormat json not detected")
	}
	if !strings.HasPrefix(p.UserTemplate, "Hello {{name}}.") {
		t.Errorf("UserTemplate = %q", p.UserTemplate)
	}
}

func TestStore_Build(t *testing.T) {
	s := newTestStore(map[string]string{
		"sample": sampleDefinition,
		"shared": "x",
	})

	tests := []struct {
		name string
		vars map[string]any
		want string
	}{
		{"flag set", map[string]any{"name": "Ana", "vip": true}, "Hello Ana.\nYou are a VIP.\nBye."},
		{"flag false", map[string]any{"name": "Ana", "vip": false}, "Hello Ana.\nBye."},
		{"flag absent and name missing", nil, "Hello .\nBye."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Build("sample", tt.vars)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got != tt.want {
				t.Errorf("Build = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(nil)

	_, err := s.Load("missing")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
	var nf *TemplateNotFoundError
	if !errors.As(err, &nf) || nf.Name != "missing" {
		t.Errorf("err = %#v", err)
	}
}

func TestStore_MissingInclude(t *testing.T) {
	s := newTestStore(map[string]string{"a": "## System Prompt\n{{include ghost}}"})

	_, err := s.Load("a")
	var nf *TemplateNotFoundError
	if !errors.As(err, &nf) || nf.Name != "ghost" {
		t.Fatalf("err = %v, want not found for ghost", err)
	}
}

func TestStore_CircularInclude(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		s := newTestStore(map[string]string{"A": "## System Prompt\n{{include A}}"})

		_, err := s.Load("A")
		var ce *CircularIncludeError
		if !errors.As(err, &ce) {
			t.Fatalf("err = %v, want CircularIncludeError", err)
		}
		if strings.Join(ce.Chain, ",") != "A,A" {
			t.Errorf("Chain = %v", ce.Chain)
		}
	})

	t.Run("indirect cycle", func(t *testing.T) {
		s := newTestStore(map[string]string{
			"a": "{{include b}}",
			"b": "{{include c}}",
			"c": "{{include a}}",
		})

		_, err := s.Load("a")
		var ce *CircularIncludeError
		if !errors.As(err, &ce) {
			t.Fatalf("err = %v, want CircularIncludeError", err)
		}
		if strings.Join(ce.Chain, ",") != "a,b,c,a" {
			t.Errorf("Chain = %v", ce.Chain)
		}
	})

	t.Run("repeated sibling include is not a cycle", func(t *testing.T) {
		s := newTestStore(map[string]string{
			"a":    "## System Prompt\n{{include part}} {{include part}}",
			"part": "P",
		})

		p, err := s.Load("a")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if p.SystemPrompt != "P P" {
			t.Errorf("SystemPrompt = %q", p.SystemPrompt)
		}
	})
}

func TestStore_RereadsFiles(t *testing.T) {
	fsys := fstest.MapFS{"p.md": &fstest.MapFile{Data: []byte("## System Prompt\none")}}
	s := New(fsys)

	if p, _ := s.Load("p"); p.SystemPrompt != "one" {
		t.Fatalf("SystemPrompt = %q", p.SystemPrompt)
	}
	fsys["p.md"] = &fstest.MapFile{Data: []byte("## System Prompt\ntwo")}
	if p, _ := s.Load("p"); p.SystemPrompt != "two" {
		t.Errorf("edit not picked up, SystemPrompt = %q", p.SystemPrompt)
	}
}

func TestDefault_EmbeddedDefinitions(t *testing.T) {
	s := Default("")

	names := []string{
		"creative_director", "brief_refinement", "email_content_generation",
		"email_html_generation", "website_content_analysis", "technical_style_extraction",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			p, err := s.Load(name)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if p.SystemPrompt == "" || p.UserTemplate == "" {
				t.Error("definition has an empty section")
			}
			if p.Settings.Temperature == nil {
				t.Error("definition declares no temperature")
			}
			if strings.Contains(p.SystemPrompt, "{{include") {
				t.Error("unresolved include in system prompt")
			}
		})
	}
}

func TestDefault_CreativeDirectorContext(t *testing.T) {
	s := Default("")

	withProfile, err := s.Build("creative_director", map[string]any{
		"user_prompt":   "Create a summer sale email",
		"brand_profile": "# Acme\nBold and bright.",
		"website_url":   "https://acme.test",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{
		`User Request: "Create a summer sale email"`,
		"=== BRAND PROFILE & STYLE GUIDE ===\n# Acme\nBold and bright.\n=== END BRAND PROFILE ===",
		"Brand Website: https://acme.test",
	} {
		if !strings.Contains(withProfile, want) {
			t.Errorf("context missing %q:\n%s", want, withProfile)
		}
	}
	if strings.Contains(withProfile, "not configured") {
		t.Error("configured context must not carry the missing-settings notice")
	}

	without, err := s.Build("creative_director", map[string]any{
		"user_prompt":     "Create a summer sale email",
		"missing_profile": true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(without, "BRAND PROFILE") || !strings.Contains(without, "not configured") {
		t.Errorf("unexpected context:\n%s", without)
	}
}

func TestDefault_DirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	override := "## System Prompt\nOverridden.\n\n## User Prompt Template\n{{brief}}"
	if err := os.WriteFile(filepath.Join(dir, "email_content_generation.md"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Default(dir)

	p, err := s.Load("email_content_generation")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.SystemPrompt != "Overridden." {
		t.Errorf("SystemPrompt = %q", p.SystemPrompt)
	}
	if _, err := s.Load("creative_director"); err != nil {
		t.Errorf("embedded fallback failed: %v", err)
	}
}

func TestRender_LeavesMailMergeTags(t *testing.T) {
	got := Render(`Hi {{ recipient.first_name | default: "there" }} from {{brand}}`, map[string]any{"brand": "Acme"})
	want := `Hi {{ recipient.first_name | default: "there" }} from Acme`
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_ValuesAreNotRescanned(t *testing.T) {
	got := Render("{{a}}", map[string]any{"a": "{{b}}", "b": "x"})
	if got != "{{b}}" {
		t.Errorf("Render = %q", got)
	}
}

func TestRender_NestedConditionals(t *testing.T) {
	tmpl := "{{#if a}}A{{#if b}}B{{/if}}C{{/if}}D"
	tests := []struct {
		a, b bool
		want string
	}{
		{false, true, "D"},
		{false, false, "D"},
		{true, false, "ACD"},
		{true, true, "ABCD"},
	}
	for _, tt := range tests {
		got := Render(tmpl, map[string]any{"a": tt.a, "b": tt.b})
		if got != tt.want {
			t.Errorf("Render(a=%v, b=%v) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRender_UnclosedConditional(t *testing.T) {
	got := Render("{{#if a}}A", map[string]any{"a": true})
	if got != "{{#if a}}A" {
		t.Errorf("Render = %q", got)
	}
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, "", false, 0, 0.0, []string{}, map[string]string{}}
	for _, v := range falsy {
		if truthy(v) {
			t.Errorf("truthy(%#v) = true", v)
		}
	}
	truthyVals := []any{"x", true, 1, 2.5, []string{"a"}, map[string]int{"a": 1}}
	for _, v := range truthyVals {
		if !truthy(v) {
			t.Errorf("truthy(%#v) = false", v)
		}
	}
}

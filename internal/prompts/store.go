// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompts loads prompt definitions from markdown files. A definition
// has three sections:
//
//	## System Prompt
//	## Settings
//	## User Prompt Template
//
// Files may pull in other files with {{include name}}. User prompt
// templates support {{variable}} substitution and {{#if flag}}...{{/if}}
// blocks. Definitions are re-read on every call so edits apply without a
// restart.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

//go:embed defaults/*.md
var embedDefaults embed.FS

// ErrTemplateNotFound matches any *TemplateNotFoundError via errors.Is.
var ErrTemplateNotFound = errors.New("prompt template not found")

// TemplateNotFoundError reports a definition missing from the store.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("prompt template %q not found", e.Name)
}

func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// CircularIncludeError reports an include chain that loops back on itself.
// Chain lists the active names, ending with the repeated one.
type CircularIncludeError struct {
	Chain []string
}

func (e *CircularIncludeError) Error() string {
	return "circular prompt include: " + strings.Join(e.Chain, " -> ")
}

// Prompt is a parsed definition.
type Prompt struct {
	Name         string
	SystemPrompt string
	UserTemplate string
	Settings     Settings
}

// Store resolves prompt definitions from a filesystem.
type Store struct {
	fsys fs.FS
}

// New creates a store reading <name>.md files from the root of fsys.
func New(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

// Default returns a store over the embedded definitions. When dir is
// non-empty, files found there take precedence over the embedded ones.
func Default(dir string) *Store {
	sub, err := fs.Sub(embedDefaults, "defaults")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(fmt.Sprintf("prompts: embedded defaults: %v", err))
	}
	if dir == "" {
		return New(sub)
	}
	return New(overlayFS{upper: os.DirFS(dir), lower: sub})
}

var (
	includeRe   = regexp.MustCompile(`\{\{\s*include\s+([\w./-]+)\s*\}\}`)
	sectionRe   = regexp.MustCompile(`(?m)^##[ \t]+(.+?)[ \t]*$`)
	codeFenceRe = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*\n?")
)

// Load reads and parses the definition called name.
func (s *Store) Load(name string) (*Prompt, error) {
	body, err := s.resolve(name, nil)
	if err != nil {
		return nil, err
	}

	sections := splitSections(body)

	settings, err := parseSettings(sections["settings"])
	if err != nil {
		return nil, fmt.Errorf("prompts %s: %w", name, err)
	}

	return &Prompt{
		Name:         name,
		SystemPrompt: strings.TrimSpace(codeFenceRe.ReplaceAllString(sections["system prompt"], "")),
		UserTemplate: sections["user prompt template"],
		Settings:     settings,
	}, nil
}

// Build loads name and renders its user prompt template with vars.
func (s *Store) Build(name string, vars map[string]any) (string, error) {
	p, err := s.Load(name)
	if err != nil {
		return "", err
	}
	return Render(p.UserTemplate, vars), nil
}

// resolve reads name and expands its includes. chain holds the names
// currently being expanded above this call.
func (s *Store) resolve(name string, chain []string) (string, error) {
	for _, active := range chain {
		if active == name {
			cycle := append(append([]string(nil), chain...), name)
			return "", &CircularIncludeError{Chain: cycle}
		}
	}

	raw, err := fs.ReadFile(s.fsys, name+".md")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateNotFoundError{Name: name}
		}
		return "", fmt.Errorf("prompts read %s: %w", name, err)
	}

	chain = append(chain, name)

	var resolveErr error
	out := includeRe.ReplaceAllStringFunc(string(raw), func(tag string) string {
		if resolveErr != nil {
			return ""
		}
		child := includeRe.FindStringSubmatch(tag)[1]
		body, err := s.resolve(child, chain)
		if err != nil {
			resolveErr = err
			return ""
		}
		return strings.TrimSpace(body)
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return out, nil
}

// splitSections maps lower-cased "## " headings to their trimmed content.
func splitSections(body string) map[string]string {
	sections := make(map[string]string)
	locs := sectionRe.FindAllStringSubmatchIndex(body, -1)
	for i, loc := range locs {
		title := strings.ToLower(strings.TrimSpace(body[loc[2]:loc[3]]))
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections[title] = strings.TrimSpace(body[loc[1]:end])
	}
	return sections
}

// overlayFS serves files from upper, falling back to lower.
type overlayFS struct {
	upper, lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	return o.lower.Open(name)
}

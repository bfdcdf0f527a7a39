// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scanner builds a brand profile from a company website. It fetches
// the page, collects logo candidates and stylesheets, and runs two model
// analyses in parallel: one on the visible copy and one on the markup and
// CSS. The style analysis wins where both report the same key.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/elyriond/llmmail/internal/ai"
	"github.com/elyriond/llmmail/internal/extract"
	"github.com/elyriond/llmmail/internal/prompts"
)

// Prompt definition names.
const (
	PromptContentAnalysis = "website_content_analysis"
	PromptStyleExtraction = "technical_style_extraction"
)

const (
	// BrowserUserAgent is sent with page requests; many storefronts block
	// unknown agents.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	pageTimeout          = 20 * time.Second
	stylesheetTimeout    = 5 * time.Second
	maxStylesheetFetches = 4
	maxPageBytes         = 5 << 20
	maxTextChars         = 12000
	maxHTMLChars         = 20000
	maxCSSChars          = 20000
)

// ErrInvalidURL is returned when the website URL is not absolute http(s).
var ErrInvalidURL = errors.New("website URL must be an absolute http or https URL")

// HTTPDoer is the subset of *http.Client the scanner needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Report is the outcome of a scan.
type Report struct {
	URL            string         `json:"url"`
	LogoCandidates []string       `json:"logoCandidates"`
	Content        map[string]any `json:"content"`
	Style          map[string]any `json:"style"`
	Data           map[string]any `json:"data"`
	Markdown       string         `json:"markdown"`
}

// Scanner runs website scans.
type Scanner struct {
	http    HTTPDoer
	llm     ai.TextGenerator
	prompts *prompts.Store
}

// New creates a Scanner. A nil client uses a default *http.Client.
func New(llm ai.TextGenerator, store *prompts.Store, client HTTPDoer) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: pageTimeout}
	}
	return &Scanner{http: client, llm: llm, prompts: store}
}

// Scan fetches rawURL and returns the merged analysis.
func (s *Scanner) Scan(ctx context.Context, rawURL string) (*Report, error) {
	base, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, ErrInvalidURL
	}
	site := base.String()
	start := time.Now()

	page, err := s.fetch(ctx, site, pageTimeout)
	if err != nil {
		return nil, fmt.Errorf("scanner fetch page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("scanner parse page: %w", err)
	}

	report := &Report{URL: site, LogoCandidates: LogoCandidates(doc, base)}
	sheets := Stylesheets(doc, base)
	text := truncate(VisibleText(doc), maxTextChars)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.analyze(gctx, PromptContentAnalysis, map[string]any{
			"url":       site,
			"page_text": text,
		})
		report.Content = out
		return err
	})
	g.Go(func() error {
		css := s.fetchStylesheets(gctx, sheets)
		out, err := s.analyze(gctx, PromptStyleExtraction, map[string]any{
			"url":             site,
			"logo_candidates": strings.Join(report.LogoCandidates, "\n"),
			"html_excerpt":    truncate(page, maxHTMLChars),
			"css_excerpt":     truncate(css, maxCSSChars),
		})
		report.Style = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Data = Merge(report.Content, report.Style)
	report.Markdown = Markdown(site, report.Data)

	slog.Info("website scanned",
		"url", site,
		"logos", len(report.LogoCandidates),
		"stylesheets", len(sheets),
		"duration", time.Since(start),
	)
	return report, nil
}

// analyze runs one prompt definition and decodes its JSON reply.
func (s *Scanner) analyze(ctx context.Context, name string, vars map[string]any) (map[string]any, error) {
	p, err := s.prompts.Load(name)
	if err != nil {
		return nil, err
	}
	reply, err := s.llm.Generate(ctx, ai.Request{
		System:      p.SystemPrompt,
		User:        prompts.Render(p.UserTemplate, vars),
		Model:       p.Settings.Model,
		Temperature: p.Settings.Temperature,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("scanner %s: %w", name, err)
	}
	out := map[string]any{}
	if err := extract.DecodeJSON(reply, &out); err != nil {
		return nil, fmt.Errorf("scanner %s: %w", name, err)
	}
	return out, nil
}

func (s *Scanner) fetch(ctx context.Context, target string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", BrowserUserAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// fetchStylesheets downloads the sheets, at most maxStylesheetFetches at a
// time. Failed sheets are skipped; order follows the document.
func (s *Scanner) fetchStylesheets(ctx context.Context, sheets []string) string {
	contents := make([]string, len(sheets))
	var g errgroup.Group
	g.SetLimit(maxStylesheetFetches)
	for i, sheet := range sheets {
		g.Go(func() error {
			css, err := s.fetch(ctx, sheet, stylesheetTimeout)
			if err != nil {
				slog.Debug("stylesheet skipped", "url", sheet, "error", err)
				return nil
			}
			contents[i] = css
			return nil
		})
	}
	g.Wait()
	return strings.Join(contents, "\n")
}

// LogoCandidates returns absolute URLs of images and SVG sprites inside
// header and nav elements.
func LogoCandidates(doc *goquery.Document, base *url.URL) []string {
	var out []string
	seen := map[string]bool{}
	doc.Find("header img, nav img, header svg, nav svg").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			use := sel.Find("use")
			if src, ok = use.Attr("xlink:href"); !ok {
				src, ok = use.Attr("href")
			}
		}
		if !ok || src == "" {
			return
		}
		if abs := resolve(base, src); abs != "" && !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	})
	return out
}

// Stylesheets returns absolute URLs of linked stylesheets.
func Stylesheets(doc *goquery.Document, base *url.URL) []string {
	var out []string
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			if abs := resolve(base, href); abs != "" {
				out = append(out, abs)
			}
		}
	})
	return out
}

// VisibleText returns the body text with scripts and styles removed and
// whitespace collapsed.
func VisibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, svg").Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}

func resolve(base *url.URL, ref string) string {
	u, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return u.String()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

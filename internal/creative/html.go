// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package creative

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/elyriond/llmmail/internal/extract"
)

// GeneratedImage is an image produced for the campaign. It is referenced
// from copy and HTML by its 1-based position as [IMAGE_n].
type GeneratedImage struct {
	URL           string `json:"url"`
	Prompt        string `json:"prompt"`
	RevisedPrompt string `json:"revisedPrompt,omitempty"`
}

// HTMLResult is the outcome of AssembleHTML.
type HTMLResult struct {
	Success bool   `json:"success"`
	HTML    string `json:"html,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AssembleHTML turns copy, brand style and images into one HTML document.
// The model output is cleaned with CleanDocument and any [IMAGE_n] token
// left in it is replaced with the image URL.
func (a *Adapter) AssembleHTML(ctx context.Context, contentText string, style extract.BrandStyle, images []GeneratedImage) HTMLResult {
	if strings.TrimSpace(contentText) == "" {
		return HTMLResult{Error: "email content is empty"}
	}

	raw, err := a.run(ctx, PromptEmailHTML, map[string]any{
		"content":          contentText,
		"has_images":       len(images) > 0,
		"images":           ImageList(images),
		"primary_color":    style.PrimaryColor,
		"accent_color":     style.AccentColor,
		"background_color": style.BackgroundColor,
		"heading_font":     style.HeadingFont,
		"body_font":        style.BodyFont,
		"brand_voice":      style.BrandVoice,
	})
	if err != nil {
		return HTMLResult{Error: err.Error()}
	}

	doc := CleanDocument(raw)
	if doc == "" {
		return HTMLResult{Error: "model response did not contain an HTML document"}
	}
	return HTMLResult{Success: true, HTML: ReplaceImagePlaceholders(doc, images)}
}

// ImageList renders images as the enumerated placeholder list given to the
// model:
//
//	[IMAGE_1]: https://... (prompt: ...)
func ImageList(images []GeneratedImage) string {
	var b strings.Builder
	for i, img := range images {
		fmt.Fprintf(&b, "[IMAGE_%d]: %s", i+1, img.URL)
		if img.Prompt != "" {
			fmt.Fprintf(&b, " (prompt: %s)", img.Prompt)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

var fenceRe = regexp.MustCompile("```[A-Za-z]*")

// CleanDocument extracts the HTML document from raw model output. Code
// fences are removed, text before the first <!doctype or <html is dropped
// and so is text after the last </html>. It returns "" when the output has
// no document start.
func CleanDocument(raw string) string {
	s := fenceRe.ReplaceAllString(raw, "")
	lower := strings.ToLower(s)

	start := -1
	for _, marker := range []string{"<!doctype", "<html"} {
		if i := strings.Index(lower, marker); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 {
		return ""
	}

	end := len(s)
	if i := strings.LastIndex(lower, "</html>"); i >= start {
		end = i + len("</html>")
	}
	return strings.TrimSpace(s[start:end])
}

var placeholderRe = regexp.MustCompile(`\[IMAGE_(\d+)\]`)

// ReplaceImagePlaceholders substitutes [IMAGE_n] with the URL of the n-th
// image. Tokens without a matching image are removed.
func ReplaceImagePlaceholders(doc string, images []GeneratedImage) string {
	return placeholderRe.ReplaceAllStringFunc(doc, func(tok string) string {
		n, err := strconv.Atoi(placeholderRe.FindStringSubmatch(tok)[1])
		if err != nil || n < 1 || n > len(images) {
			return ""
		}
		return images[n-1].URL
	})
}

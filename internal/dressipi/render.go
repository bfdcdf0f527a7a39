// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package dressipi

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"

	"github.com/elyriond/llmmail/internal/extract"
)

// MaxCards is the number of related items rendered below the seed card.
const MaxCards = 3

// Colours and font used when the brand style leaves them empty.
const (
	defaultPrimary = "#6366f1"
	defaultAccent  = "#ec4899"
	defaultFont    = "Arial, sans-serif"
)

var fragmentTmpl = template.Must(template.New("recommendations").Parse(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0" style="max-width:600px;margin:0 auto;font-family:{{.Font}};">
{{- with .Seed}}
<tr><td style="padding:24px 16px 8px;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0" style="border:1px solid #e5e7eb;border-radius:8px;">
{{- if .ImageURL}}
<tr><td><img src="{{.ImageURL}}" alt="{{.Name}}" width="100%" style="display:block;max-width:568px;border-radius:8px 8px 0 0;"></td></tr>
{{- end}}
<tr><td style="padding:16px;">
{{- if .Name}}<h2 style="margin:0 0 8px;font-size:22px;color:{{$.Primary}};">{{.Name}}</h2>{{end}}
{{- if .Price}}<p style="margin:0 0 12px;font-size:16px;color:#111827;">{{.Price}}</p>{{end}}
{{- if .ProductURL}}<a href="{{.ProductURL}}" style="display:inline-block;padding:12px 24px;background:{{$.Accent}};color:#ffffff;text-decoration:none;border-radius:4px;">Shop now</a>{{end}}
</td></tr>
</table>
</td></tr>
{{- end}}
{{- if .Items}}
<tr><td style="padding:16px 16px 8px;"><h3 style="margin:0;font-size:18px;color:{{.Primary}};">You may also like</h3></td></tr>
<tr><td style="padding:0 8px 24px;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0"><tr>
{{- range .Items}}
<td width="{{$.CardWidth}}%" valign="top" style="padding:8px;">
{{- if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}" width="100%" style="display:block;border-radius:4px;">{{end}}
{{- if .Name}}<p style="margin:8px 0 4px;font-size:14px;color:#111827;">{{.Name}}</p>{{end}}
{{- if .Price}}<p style="margin:0 0 8px;font-size:14px;font-weight:bold;color:{{$.Primary}};">{{.Price}}</p>{{end}}
{{- if .ProductURL}}<a href="{{.ProductURL}}" style="font-size:13px;color:{{$.Accent}};">View product</a>{{end}}
</td>
{{- end}}
</tr></table>
</td></tr>
{{- end}}
</table>`))

type fragmentData struct {
	Seed      *Item
	Items     []Item
	Primary   template.CSS
	Accent    template.CSS
	Font      template.CSS
	CardWidth int
}

// RenderFragment renders the seed hero card and up to MaxCards related
// items as a self-contained table. Missing fields are omitted. It returns
// "" when the set has nothing to show.
func RenderFragment(set RecommendationSet, style extract.BrandStyle) string {
	items := set.Items
	if len(items) > MaxCards {
		items = items[:MaxCards]
	}
	if set.SeedItem == nil && len(items) == 0 {
		return ""
	}

	style = style.Merge(extract.BrandStyle{
		PrimaryColor: defaultPrimary,
		AccentColor:  defaultAccent,
		BodyFont:     defaultFont,
	})
	data := fragmentData{
		Seed:    set.SeedItem,
		Items:   items,
		Primary: cssValue(style.PrimaryColor),
		Accent:  cssValue(style.AccentColor),
		Font:    cssValue(style.BodyFont),
	}
	if len(items) > 0 {
		data.CardWidth = 100 / len(items)
	}

	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, data); err != nil {
		slog.Error("render recommendations fragment", "error", err)
		return ""
	}
	return buf.String()
}

// cssValue drops characters that could end the declaration or open a
// nested construct, so font stacks with quotes survive html/template.
func cssValue(s string) template.CSS {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '(', ')', '<', '>', '\\', '@', '[', ']', '`', '/', '"':
			return -1
		}
		return r
	}, s)
	return template.CSS(strings.TrimSpace(clean))
}

// Inject inserts fragment before the last </body> of document, followed by
// a newline. Without a closing body tag the fragment is appended.
func Inject(document, fragment string) string {
	if fragment == "" {
		return document
	}
	i := strings.LastIndex(strings.ToLower(document), "</body>")
	if i < 0 {
		return document + fragment + "\n"
	}
	return document[:i] + fragment + "\n" + document[i:]
}

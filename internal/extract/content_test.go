package extract

import "testing"

func TestContent_LabeledCopy(t *testing.T) {
	copyText := `Subject Line: "Summer Sale: 30% Off Everything"
Preheader: Sun's out, savings are in
Headline: **Make Waves This Summer**

Body Copy:
Hi {{ recipient.first_name | default: "there" }},

Our biggest sale of the season is here.

CTA: Shop the Sale
CTA URL: https://example.com/sale
Footer: You are receiving this because you opted in.
Unsubscribe anytime.`

	got := Content(copyText)
	want := EmailContent{
		Subject:   "Summer Sale: 30% Off Everything",
		Preheader: "Sun's out, savings are in",
		Headline:  "Make Waves This Summer",
		Body:      "Hi {{ recipient.first_name | default: \"there\" }},\n\nOur biggest sale of the season is here.",
		CTA:       "Shop the Sale",
		CTAURL:    "https://example.com/sale",
		Footer:    "You are receiving this because you opted in.\nUnsubscribe anytime.",
	}
	if got != want {
		t.Errorf("Content()\n got  %+v\n want %+v", got, want)
	}
}

func TestContent_HeadingSections(t *testing.T) {
	got := Content("## Subject\nBig News\n\n## Body\nLine one\nLine two\n\n---\nP.S. ignore")

	if got.Subject != "Big News" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if got.Headline != "Big News" {
		t.Errorf("Headline should fall back to subject, got %q", got.Headline)
	}
	if got.Body != "Line one\nLine two" {
		t.Errorf("Body = %q", got.Body)
	}
	if got.CTA != DefaultCTA || got.CTAURL != DefaultCTAURL || got.Footer != DefaultFooter {
		t.Errorf("fallbacks not applied: %+v", got)
	}
}

func TestContent_CallToActionVariants(t *testing.T) {
	got := Content("Call-to-Action: Book now\nCall to Action URL: https://example.com/book")
	if got.CTA != "Book now" {
		t.Errorf("CTA = %q", got.CTA)
	}
	if got.CTAURL != "https://example.com/book" {
		t.Errorf("CTAURL = %q", got.CTAURL)
	}
}

func TestContent_Fallbacks(t *testing.T) {
	got := Content("")
	want := EmailContent{
		Subject:  DefaultSubject,
		Headline: DefaultSubject,
		CTA:      "Shop Now",
		CTAURL:   "#",
		Footer:   "You are receiving this email because you subscribed to our updates.",
	}
	if got != want {
		t.Errorf("Content(\"\") = %+v, want %+v", got, want)
	}
}

func TestContent_UnlabeledBodyUsesWholeText(t *testing.T) {
	got := Content("  Just a paragraph of copy.  ")
	if got.Body != "Just a paragraph of copy." {
		t.Errorf("Body = %q", got.Body)
	}
}

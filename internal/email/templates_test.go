package email

import (
	"strings"
	"testing"
)

func TestRenderWelcomeTemplate(t *testing.T) {
	html, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{Title: subjectWelcome, Heading: "Welcome aboard"},
		FirstName:     "Mara",
	})
	if err != nil {
		t.Fatalf("render welcome: %v", err)
	}
	if !strings.Contains(html, "Mara") {
		t.Fatalf("expected first name in body, got: %s", html)
	}
	if !strings.Contains(html, "Welcome aboard") {
		t.Fatalf("expected heading in body")
	}
}

func TestRenderSavedSearchMatchTemplate(t *testing.T) {
	html, err := renderEmailTemplate("saved_search_match.html", savedSearchMatchEmailData{
		baseEmailData: baseEmailData{
			Title:    subjectSavedSearchMatch,
			Heading:  "New match found",
			CTALabel: "View listing",
			CTAURL:   "https://example.com/properties/abc",
		},
		SearchName: "Rotterdam under 1200",
	})
	if err != nil {
		t.Fatalf("render saved search match: %v", err)
	}
	if !strings.Contains(html, "Rotterdam under 1200") {
		t.Fatalf("expected search name in body")
	}
	if !strings.Contains(html, "https://example.com/properties/abc") {
		t.Fatalf("expected listing URL in body")
	}
}

func TestRenderTrustScoreChangedTemplate(t *testing.T) {
	html, err := renderEmailTemplate("trust_score_changed.html", trustScoreChangedEmailData{
		baseEmailData: baseEmailData{Title: subjectTrustScoreChanged, Heading: "Trust score updated"},
		Score:         72,
		PreviousScore: 55,
		Improved:      true,
	})
	if err != nil {
		t.Fatalf("render trust score changed: %v", err)
	}
	if !strings.Contains(html, "72") || !strings.Contains(html, "55") {
		t.Fatalf("expected both scores in body")
	}
	if !strings.Contains(html, "went up") {
		t.Fatalf("expected improvement wording for a higher score")
	}
}

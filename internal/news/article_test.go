package news

import "testing"

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	if got := NormalizeTitle("Fed Cuts Rates!!"); got != "fed cuts rates" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
	if got := NormalizeTitle("  Breaking:   Markets \t Rally  "); got != "breaking markets rally" {
		t.Fatalf("unexpected collapsed title: %q", got)
	}
	if got := NormalizeTitle("Q2-2026 earnings (preview)"); got != "q22026 earnings preview" {
		t.Fatalf("unexpected stripped title: %q", got)
	}
}

func TestNormalizeTitle_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := NormalizeTitle(""); got != "" {
		t.Fatalf("expected empty key for empty title, got %q", got)
	}
	if got := NormalizeTitle("  !!! ???  "); got != "" {
		t.Fatalf("expected empty key for punctuation-only title, got %q", got)
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Fed Cuts Rates!!",
		"Äpfel & Birnen: ein Vergleich",
		"already normalized title",
	}
	for _, input := range inputs {
		once := NormalizeTitle(input)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Fatalf("normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

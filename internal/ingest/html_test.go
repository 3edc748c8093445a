package ingest

import (
	"strings"
	"testing"
)

func TestPlainTextPassesThroughPlainContent(t *testing.T) {
	tests := []string{
		"The checkout flow is broken.",
		"Rating: 5 > 4 for sure",
		"price < 10",
		"",
	}

	for _, content := range tests {
		if got := PlainText(content); got != content {
			t.Fatalf("PlainText(%q) = %q, want unchanged", content, got)
		}
	}
}

func TestPlainTextStripsMarkup(t *testing.T) {
	content := `<html><body><p>The <b>checkout</b> is broken.</p><p>Please fix it.</p></body></html>`

	got := PlainText(content)
	if strings.Contains(got, "<") {
		t.Fatalf("PlainText() = %q, markup survived", got)
	}
	if !strings.Contains(got, "checkout") || !strings.Contains(got, "Please fix it.") {
		t.Fatalf("PlainText() = %q, text lost", got)
	}
}

func TestPlainTextRemovesScriptAndStyle(t *testing.T) {
	content := `<div><style>p { color: red; }</style><script>alert("x")</script><p>Real feedback here.</p></div>`

	got := PlainText(content)
	if strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Fatalf("PlainText() = %q, script/style content survived", got)
	}
	if !strings.Contains(got, "Real feedback here.") {
		t.Fatalf("PlainText() = %q", got)
	}
}

func TestPlainTextCollapsesWhitespace(t *testing.T) {
	content := "<p>too     many\t\tspaces</p>"

	got := PlainText(content)
	if strings.Contains(got, "  ") {
		t.Fatalf("PlainText() = %q, runs of spaces survived", got)
	}
}

func TestPlainTextKeepsOriginalWhenEmptyAfterStripping(t *testing.T) {
	content := `<style>p { color: red; }</style>`

	if got := PlainText(content); got != content {
		t.Fatalf("PlainText(%q) = %q, want original when nothing remains", content, got)
	}
}

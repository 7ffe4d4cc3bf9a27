package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes tags",
			input:    "<h1>标题</h1><p>第一段正文</p>",
			expected: "标题 第一段正文",
		},
		{
			name:     "collapses whitespace runs",
			input:    "first\n\n\tsecond   third",
			expected: "first second third",
		},
		{
			name:     "unescapes entities",
			input:    "<p>A &amp; B</p>",
			expected: "A & B",
		},
		{
			name:     "plain text untouched",
			input:    "already plain",
			expected: "already plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripMarkup(tt.input)
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGenerateExcerptTruncatesLongContent(t *testing.T) {
	content := "<p>" + strings.Repeat("内容", 200) + "</p>"

	excerpt := GenerateExcerpt(content)
	if !strings.HasSuffix(excerpt, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", excerpt)
	}
	if got := utf8.RuneCountInString(excerpt); got != excerptLength+3 {
		t.Fatalf("expected %d runes, got %d", excerptLength+3, got)
	}
}

func TestGenerateExcerptKeepsShortContent(t *testing.T) {
	excerpt := GenerateExcerpt("<p>short body</p>")
	if excerpt != "short body" {
		t.Fatalf("expected untouched short excerpt, got %q", excerpt)
	}
}

func TestSearchExcerptCentersOnMatch(t *testing.T) {
	content := strings.Repeat("filler words before the match ", 20) +
		"the kubernetes section lives here " +
		strings.Repeat("and plenty of trailing words after it ", 20)

	excerpt := SearchExcerpt(content, "kubernetes")
	if !strings.Contains(excerpt, "kubernetes") {
		t.Fatalf("expected excerpt to contain query, got %q", excerpt)
	}
	if !strings.HasPrefix(excerpt, "...") {
		t.Fatalf("expected leading ellipsis, got %q", excerpt)
	}
	if !strings.HasSuffix(excerpt, "...") {
		t.Fatalf("expected trailing ellipsis, got %q", excerpt)
	}
}

func TestSearchExcerptMatchesCaseInsensitively(t *testing.T) {
	content := strings.Repeat("padding text ", 30) + "Deploying with Docker is covered later " +
		strings.Repeat("more padding ", 30)

	excerpt := SearchExcerpt(content, "docker")
	if !strings.Contains(excerpt, "Docker") {
		t.Fatalf("expected excerpt around original casing, got %q", excerpt)
	}
}

func TestSearchExcerptFallsBackWhenQueryAbsent(t *testing.T) {
	content := strings.Repeat("词", 300)

	excerpt := SearchExcerpt(content, "missing")
	if got := utf8.RuneCountInString(excerpt); got != excerptLength+3 {
		t.Fatalf("expected plain truncation of %d runes, got %d", excerptLength+3, got)
	}

	if got := SearchExcerpt("short text", ""); got != "short text" {
		t.Fatalf("expected blank query to return full short text, got %q", got)
	}
}

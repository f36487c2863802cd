package post

import (
	"strings"
	"testing"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestEstimateReadTime_Boundaries(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"zero words", "", "Quick read"},
		{"one word", "hello", "1 min read"},
		{"exactly one minute", words(225), "1 min read"},
		{"just over one minute", words(226), "2 min read"},
		{"two minutes", words(450), "2 min read"},
		{"five minutes", words(1125), "5 min read"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateReadTime(tc.body); got != tc.want {
				t.Errorf("EstimateReadTime = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEstimateReadTime_StripsMarkdown(t *testing.T) {
	// Code blocks vanish entirely, links keep their text, images vanish.
	body := "# Heading\n\n" +
		"Some **bold** and *italic* text with `inline code`.\n\n" +
		"```go\nfunc main() { fmt.Println(\"lots of words in here\") }\n```\n\n" +
		"A [link text](https://example.com) and ![alt](img.png).\n"
	// "Heading" + 8 words from the emphasis line + "A link text and ."
	// (the stranded period after the stripped image still counts).
	if got := countWords(body); got != 14 {
		t.Errorf("countWords = %d, want 14", got)
	}
}

func TestEstimateReadTime_OnlyCode(t *testing.T) {
	body := "```\n" + words(500) + "\n```\n"
	if got := EstimateReadTime(body); got != "Quick read" {
		t.Errorf("EstimateReadTime = %q, want Quick read", got)
	}
}

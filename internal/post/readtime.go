package post

import (
	"fmt"
	"regexp"
	"strings"
)

// Average reading speed in words per minute.
const wordsPerMinute = 225

var (
	codeBlockRe = regexp.MustCompile("(?s)```.*?```")
	inlineRe    = regexp.MustCompile("`([^`]*)`")
	imageRe     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe    = regexp.MustCompile(`\*(.*?)\*`)
	headingRe   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	newlinesRe  = regexp.MustCompile(`\n+`)
)

// EstimateReadTime returns a display string for how long the Markdown body
// takes to read: "Quick read" for an empty body, "1 min read", or
// "N min read".
func EstimateReadTime(body string) string {
	minutes := (countWords(body) + wordsPerMinute - 1) / wordsPerMinute
	switch {
	case minutes < 1:
		return "Quick read"
	case minutes == 1:
		return "1 min read"
	default:
		return fmt.Sprintf("%d min read", minutes)
	}
}

// countWords strips Markdown syntax and counts the remaining whitespace
// separated tokens.
func countWords(body string) int {
	plain := codeBlockRe.ReplaceAllString(body, "")
	plain = imageRe.ReplaceAllString(plain, "")
	plain = linkRe.ReplaceAllString(plain, "$1")
	plain = inlineRe.ReplaceAllString(plain, "$1")
	plain = boldRe.ReplaceAllString(plain, "$1")
	plain = italicRe.ReplaceAllString(plain, "$1")
	plain = headingRe.ReplaceAllString(plain, "")
	plain = newlinesRe.ReplaceAllString(plain, " ")
	return len(strings.Fields(plain))
}

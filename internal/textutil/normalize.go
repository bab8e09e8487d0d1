package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// leadingArticles are stripped from the front of a lowercased title.
var leadingArticles = []string{"the ", "a ", "an "}

// editionMarkers is the keyword group shared by the bracketed and
// dash/colon-introduced suffix patterns.
const editionMarkers = `(edition|remaster|deluxe|version|expanded)`

// editionSuffixDefs lists suffix patterns removed from a lowercased title
// before punctuation stripping, so bracket and dash delimiters are still visible.
var editionSuffixDefs = []string{
	`\s*\(.*?` + editionMarkers + `.*?\)\s*$`,
	`\s*-\s*.*?` + editionMarkers + `.*$`,
	`\s*:\s*.*?` + editionMarkers + `.*$`,
	`\s+\(remastered\)\s*$`,
	`\s+\(deluxe\)\s*$`,
}

// editionSuffixPatterns is compiled from editionSuffixDefs at init time.
var editionSuffixPatterns []*regexp.Regexp

var (
	romanSuffixPattern = regexp.MustCompile(`(?i)\s+(m{0,4}(?:cm|cd|d?c{0,3})(?:xc|xl|l?x{0,3})(?:ix|iv|v?i{0,3}))$`)
	digitSuffixPattern = regexp.MustCompile(`\s+\d+$`)
)

func init() {
	for _, def := range editionSuffixDefs {
		editionSuffixPatterns = append(editionSuffixPatterns, regexp.MustCompile(`(?i)`+def))
	}
}

// NormalizeTitle canonicalizes a display title with edition markers removed.
func NormalizeTitle(title string) string {
	return Normalize(title, true)
}

// Normalize lowercases title, strips one leading article, optionally removes
// trailing edition markers, drops punctuation, and collapses whitespace.
// The result is a fixed point: Normalize(Normalize(x)) == Normalize(x).
func Normalize(title string, stripEditions bool) string {
	if title == "" {
		return ""
	}
	normalized := stripLeadingArticle(strings.ToLower(title))

	if stripEditions {
		for _, pattern := range editionSuffixPatterns {
			normalized = pattern.ReplaceAllString(normalized, "")
		}
	}

	normalized = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")

	// Punctuation removal can expose a new leading article ("the 'a' team").
	for {
		next := stripLeadingArticle(normalized)
		if next == normalized {
			break
		}
		normalized = strings.TrimSpace(next)
	}
	return normalized
}

func stripLeadingArticle(value string) string {
	for _, article := range leadingArticles {
		if strings.HasPrefix(value, article) {
			return value[len(article):]
		}
	}
	return value
}

// StripSequelNumbers removes one trailing roman numeral or decimal token.
// Matching is case-insensitive and the remaining text is returned trimmed.
func StripSequelNumbers(title string) string {
	trimmed := strings.TrimSpace(title)
	if loc := romanSuffixPattern.FindStringSubmatchIndex(trimmed); loc != nil && loc[3] > loc[2] {
		return strings.TrimSpace(trimmed[:loc[0]])
	}
	if loc := digitSuffixPattern.FindStringIndex(trimmed); loc != nil {
		return strings.TrimSpace(trimmed[:loc[0]])
	}
	return trimmed
}

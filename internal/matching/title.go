package matching

import (
	"strings"
	"unicode/utf8"

	"discovery/internal/textutil"
)

// TitlesMatch reports whether two titles name the same thing using the lenient tier.
//
// In order: an empty side never matches; equal normalized forms match;
// containment either way matches when the shorter form has at least five
// characters; equal forms after sequel-number stripping match; otherwise the
// token-set ratio must reach threshold.
func TitlesMatch(a, b string, threshold float64) bool {
	return titlesMatch(a, b, threshold, DefaultMinSubstringLength)
}

// TitlesMatchStrict is the same algorithm as TitlesMatch with a higher bar on
// the fuzzy step. Callers always pair it with a creator check.
func TitlesMatchStrict(a, b string, threshold float64) bool {
	return titlesMatch(a, b, threshold, DefaultMinSubstringLength)
}

// TitleScore returns the token-set ratio of the normalized titles.
func TitleScore(a, b string) float64 {
	return textutil.TokenSetRatio(textutil.NormalizeTitle(a), textutil.NormalizeTitle(b))
}

// SequelVariants reports whether two titles differ only by a trailing sequel
// number, e.g. "Matrix 2" and "Matrix 3".
func SequelVariants(a, b string) bool {
	normA := textutil.NormalizeTitle(a)
	normB := textutil.NormalizeTitle(b)
	if normA == normB {
		return false
	}
	strippedA := textutil.StripSequelNumbers(normA)
	strippedB := textutil.StripSequelNumbers(normB)
	return strippedA != "" && strippedA == strippedB
}

func titlesMatch(a, b string, threshold float64, minSubstring int) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}

	normA := textutil.NormalizeTitle(a)
	normB := textutil.NormalizeTitle(b)

	// Titles made only of punctuation normalize to nothing.
	if normA == "" || normB == "" {
		return normA == normB && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}

	if normA == normB {
		return true
	}

	if strings.Contains(normA, normB) || strings.Contains(normB, normA) {
		shorter := min(utf8.RuneCountInString(normA), utf8.RuneCountInString(normB))
		if shorter >= minSubstring {
			return true
		}
	}

	strippedA := textutil.StripSequelNumbers(normA)
	strippedB := textutil.StripSequelNumbers(normB)
	if strippedA != "" && strippedA == strippedB {
		return true
	}

	return textutil.TokenSetRatio(normA, normB) >= threshold
}

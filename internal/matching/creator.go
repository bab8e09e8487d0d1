package matching

import (
	"strings"

	"discovery/internal/textutil"
)

// CreatorsMatch fuzzy-compares two optional creators.
//
// A missing creator on either side matches: most sources omit creators, and
// treating absence as a mismatch would fragment items across sources.
func CreatorsMatch(a, b string, threshold float64) bool {
	ca := strings.ToLower(strings.TrimSpace(a))
	cb := strings.ToLower(strings.TrimSpace(b))
	if ca == "" || cb == "" {
		return true
	}
	if ca == cb {
		return true
	}
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return true
	}
	partsA := strings.Fields(ca)
	partsB := strings.Fields(cb)
	if len(partsA) > 0 && len(partsB) > 0 && partsA[len(partsA)-1] == partsB[len(partsB)-1] {
		return true
	}
	return textutil.Ratio(ca, cb) >= threshold
}

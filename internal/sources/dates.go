package sources

import (
	"strings"
	"time"
)

var looseDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"1/2/06",
	"2/1/06",
	"01/02/2006",
	"02/01/2006",
	time.RFC3339,
}

// parseLooseDate accepts the date shapes seen in vendor exports. US month-first
// forms are tried before day-first ones. Unparseable input yields the zero time.
func parseLooseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range looseDateLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts
		}
	}
	return time.Time{}
}

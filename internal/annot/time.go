package annot

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp formats observed in ETAD annotation documents.
// The annotation uses formats like "2023-06-15T14:00:00.000000" while
// derived metadata may carry an explicit zone designator.
var annotTimeFormats = []string{
	"2006-01-02T15:04:05.000000",    // annotation format with microseconds
	"2006-01-02T15:04:05.999999999", // with nanoseconds
	time.RFC3339Nano,                // "2006-01-02T15:04:05.999999999Z07:00"
	time.RFC3339,                    // "2006-01-02T15:04:05Z07:00"
	"2006-01-02T15:04:05Z",          // UTC without offset
	"2006-01-02T15:04:05",           // without timezone
}

// ParseTime parses an annotation timestamp string into a time.Time.
// Returns time in UTC.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}

	s = strings.TrimSpace(s)

	var lastErr error
	for _, format := range annotTimeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("failed to parse annotation time %q: %w", s, lastErr)
}

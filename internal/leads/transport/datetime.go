package transport

import (
	"errors"
	"strings"
	"time"
)

var errDateTime = errors.New("not a date or datetime")

// ParseDateTime accepts RFC 3339, a local "2006-01-02T15:04" datetime or a
// bare date. Values without an offset are read in loc.
func ParseDateTime(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04", DateLayout} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errDateTime
}

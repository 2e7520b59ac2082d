// Package cache holds the date-keyed stores for computed daily results.
// Every backend is write-once: a second write for a day that already has a
// value is ignored.
package cache

import (
	"errors"
	"time"
)

// ErrNotFound is returned when reading a day that has no entry.
var ErrNotFound = errors.New("cache entry not found")

const keyLayout = "2006-01-02"

// DateKey returns the calendar date of t in loc, e.g. "2026-10-19".
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(keyLayout)
}

// validKey rejects anything that is not a calendar date, which keeps keys
// safe to use as file names.
func validKey(key string) bool {
	_, err := time.Parse(keyLayout, key)
	return err == nil
}

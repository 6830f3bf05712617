// Package calendar computes UTC calendar bucket boundaries.
package calendar

import (
	"fmt"
	"time"

	"stream-accounting/internal/domain"
)

// StartOf returns the first second of the bucket of granularity g containing ts.
// Weeks start on Monday.
func StartOf(ts int64, g domain.Granularity) int64 {
	t := time.Unix(ts, 0).UTC()
	y, m, d := t.Date()

	switch g {
	case domain.GranularityHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, time.UTC).Unix()
	case domain.GranularityDay:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
	case domain.GranularityWeek:
		// time.Weekday counts from Sunday
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC).Unix()
	case domain.GranularityMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Unix()
	case domain.GranularityYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	default:
		panic(fmt.Sprintf("calendar: unknown granularity %q", g))
	}
}

// EndOf returns the instant at which the bucket of granularity g containing ts ends,
// which is the first second of the following bucket.
func EndOf(ts int64, g domain.Granularity) int64 {
	start := time.Unix(StartOf(ts, g), 0).UTC()

	switch g {
	case domain.GranularityHour:
		return start.Add(time.Hour).Unix()
	case domain.GranularityDay:
		return start.AddDate(0, 0, 1).Unix()
	case domain.GranularityWeek:
		return start.AddDate(0, 0, 7).Unix()
	case domain.GranularityMonth:
		return start.AddDate(0, 1, 0).Unix()
	default:
		return start.AddDate(1, 0, 0).Unix()
	}
}

// IsBoundary reports whether ts is the first second of a bucket.
func IsBoundary(ts int64, g domain.Granularity) bool {
	return StartOf(ts, g) == ts
}

// StartOfMonth returns the first second of the UTC month containing t.
func StartOfMonth(t time.Time) int64 {
	return StartOf(t.Unix(), domain.GranularityMonth)
}

package domain

import (
	"fmt"
	"strings"
)

// Granularity is the calendar bucket size used for virtual periods and price series.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// Granularities lists the closed set of supported granularities.
var Granularities = []Granularity{
	GranularityHour,
	GranularityDay,
	GranularityWeek,
	GranularityMonth,
	GranularityYear,
}

// ParseGranularity parses a granularity name. Both "day" and "daily" forms are accepted.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour", "hourly":
		return GranularityHour, nil
	case "day", "daily":
		return GranularityDay, nil
	case "week", "weekly":
		return GranularityWeek, nil
	case "month", "monthly":
		return GranularityMonth, nil
	case "year", "yearly":
		return GranularityYear, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// Valid reports whether g is one of the supported granularities.
func (g Granularity) Valid() bool {
	for _, v := range Granularities {
		if g == v {
			return true
		}
	}
	return false
}

func (g Granularity) String() string { return string(g) }

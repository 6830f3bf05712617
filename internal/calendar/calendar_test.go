package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stream-accounting/internal/domain"
)

func unix(y int, m time.Month, d, h, min, s int) int64 {
	return time.Date(y, m, d, h, min, s, 0, time.UTC).Unix()
}

func TestEndOf(t *testing.T) {
	// Wednesday 2024-02-14 10:30:15 UTC
	ts := unix(2024, time.February, 14, 10, 30, 15)

	tests := []struct {
		name string
		g    domain.Granularity
		want int64
	}{
		{"hour", domain.GranularityHour, unix(2024, time.February, 14, 11, 0, 0)},
		{"day", domain.GranularityDay, unix(2024, time.February, 15, 0, 0, 0)},
		{"week", domain.GranularityWeek, unix(2024, time.February, 19, 0, 0, 0)},
		{"month", domain.GranularityMonth, unix(2024, time.March, 1, 0, 0, 0)},
		{"year", domain.GranularityYear, unix(2025, time.January, 1, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EndOf(ts, tt.g))
		})
	}
}

func TestEndOf_OnBoundary(t *testing.T) {
	// A timestamp on a boundary belongs to the bucket it opens.
	ts := unix(2024, time.March, 1, 0, 0, 0)
	assert.Equal(t, unix(2024, time.April, 1, 0, 0, 0), EndOf(ts, domain.GranularityMonth))
	assert.Equal(t, int64(3600), EndOf(0, domain.GranularityHour))
}

func TestStartOf_WeekStartsMonday(t *testing.T) {
	sunday := unix(2024, time.February, 18, 23, 59, 59)
	monday := unix(2024, time.February, 19, 0, 0, 0)

	assert.Equal(t, unix(2024, time.February, 12, 0, 0, 0), StartOf(sunday, domain.GranularityWeek))
	assert.Equal(t, monday, StartOf(monday, domain.GranularityWeek))
}

func TestEndOf_LeapYear(t *testing.T) {
	ts := unix(2024, time.February, 29, 12, 0, 0)
	assert.Equal(t, unix(2024, time.March, 1, 0, 0, 0), EndOf(ts, domain.GranularityDay))
	assert.Equal(t, unix(2024, time.March, 1, 0, 0, 0), EndOf(ts, domain.GranularityMonth))
}

func TestIsBoundary(t *testing.T) {
	assert.True(t, IsBoundary(unix(2024, time.January, 1, 0, 0, 0), domain.GranularityYear))
	assert.False(t, IsBoundary(unix(2024, time.January, 1, 0, 0, 1), domain.GranularityYear))
}

func TestStartOf_UnknownGranularityPanics(t *testing.T) {
	assert.Panics(t, func() { StartOf(0, domain.Granularity("fortnight")) })
}

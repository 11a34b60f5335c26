package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"ISO", "2025-12-10", date(2025, 12, 10), true},
		{"RFC3339 keeps calendar day", "2025-12-10T23:10:00Z", date(2025, 12, 10), true},
		{"day month name", "11 Dec 2025", date(2025, 12, 11), true},
		{"day full month name", "3 September 2024", date(2024, 9, 3), true},
		{"lower case month", "11 dec 2025", date(2025, 12, 11), true},
		{"ordinal day", "1st Jan 2025", date(2025, 1, 1), true},
		{"abbreviated sept", "5 Sept 2025", date(2025, 9, 5), true},
		{"US long form", "Dec 11, 2025", date(2025, 12, 11), true},
		{"numeric ambiguous prefers day first", "12/11/2025", date(2025, 11, 12), true},
		{"numeric dashes", "05-03-2025", date(2025, 3, 5), true},
		{"numeric dots", "31.01.2025", date(2025, 1, 31), true},
		{"month first only when day first impossible", "12/25/2025", date(2025, 12, 25), true},
		{"extra whitespace", "  11   Dec   2025 ", date(2025, 12, 11), true},
		{"impossible day", "31/02/2025", time.Time{}, false},
		{"both parts above twelve", "25/13/2025", time.Time{}, false},
		{"year out of range", "1850-01-01", time.Time{}, false},
		{"year at upper bound", "2100-01-01", time.Time{}, false},
		{"two digit year", "12/11/25", time.Time{}, false},
		{"garbage", "pay", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(date(2025, 12, 13)))
	assert.True(t, IsWeekend(date(2025, 12, 14)))
	assert.False(t, IsWeekend(date(2025, 12, 15)))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 1, 31, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(a, b))
	assert.Equal(t, -30, DaysBetween(b, a))
}

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "11 Dec 2025", CleanDateString("\t11  Dec\n2025 "))
	assert.Equal(t, "2025-12-10", ToISODate(date(2025, 12, 10)))
}

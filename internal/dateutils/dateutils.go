// Package dateutils normalizes the free-form date strings found in bank
// statements into calendar dates.
package dateutils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutDayMonth = "2 Jan 2006"

	minYear = 1900
	maxYear = 2100
)

// nativeLayouts are tried first, in order. None of them is a purely numeric
// day/month form, so a match here is never ambiguous.
var nativeLayouts = []string{
	DateLayoutISO,
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateLayoutFull,
	"2006/01/02",
	DateLayoutDayMonth,
	"2 January 2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 2 Jan 2006",
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var (
	whitespaceRe      = regexp.MustCompile(`\s+`)
	dayMonthNameRe    = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?[\s\-]+([A-Za-z]{3,9})\.?,?[\s\-]+(\d{4})$`)
	numericDayFirstRe = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})$`)
)

// NormalizeDate parses a free-form date string into a UTC calendar date.
//
// It tries the native layouts, then "D Mon YYYY" with a fixed month table,
// then numeric "D/M/YYYY" read day-first. A numeric triple is read
// month-first only when the day-first reading is impossible (e.g. 12/25/2025).
// Anything else returns ok=false; the normalizer never guesses.
func NormalizeDate(s string) (time.Time, bool) {
	s = CleanDateString(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range nativeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if !yearInRange(t.Year()) {
				continue
			}
			return ToDate(t), true
		}
	}

	if m := dayMonthNameRe.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[strings.ToLower(m[2])]
		if ok {
			if t, ok := buildDate(m[3], month, m[1]); ok {
				return t, true
			}
		}
	}

	if m := numericDayFirstRe.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		if second >= 1 && second <= 12 {
			if t, ok := buildDate(m[3], time.Month(second), m[1]); ok {
				return t, true
			}
		}
		if first >= 1 && first <= 12 && second > 12 {
			if t, ok := buildDate(m[3], time.Month(first), m[2]); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func buildDate(yearStr string, month time.Month, dayStr string) (time.Time, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || !yearInRange(year) {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31 Feb into March; reject it instead.
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func yearInRange(year int) bool {
	return year >= minYear && year < maxYear
}

// ToDate truncates t to midnight UTC of its calendar day.
func ToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToISODate formats a date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims a date string and collapses inner whitespace.
func CleanDateString(dateStr string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// IsWeekend checks if the date falls on a weekend
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// DaysBetween returns the number of calendar days from a to b, ignoring time of day.
func DaysBetween(a, b time.Time) int {
	return int(ToDate(b).Sub(ToDate(a)).Hours() / 24)
}

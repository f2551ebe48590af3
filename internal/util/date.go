package util

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var isoLayouts = []string{"2006-1-2", "2006/1/2", "2006.1.2"}

var dayFirstLayouts = []string{"2/1/2006", "2-1-2006", "2.1.2006", "2/1/06", "2-1-06", "2.1.06"}

var monthFirstLayouts = []string{"1/2/2006", "1-2-2006", "1.2.2006", "1/2/06", "1-2-06", "1.2.06"}

var verboseLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseDate reads a calendar date the way invoice sheets tend to carry them:
// ISO first, then day-first numeric, then month-first numeric, then textual
// forms and Excel serial numbers. The time of day is dropped.
func ParseDate(input string) (time.Time, bool) {
	s := CollapseSpaces(input)
	if s == "" {
		return time.Time{}, false
	}

	groups := [][]string{isoLayouts, dayFirstLayouts, monthFirstLayouts, verboseLayouts}
	for _, layouts := range groups {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return DateOnly(t), true
			}
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 20000 && serial <= 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}

func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

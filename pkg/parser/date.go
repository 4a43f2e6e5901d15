package parser

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// extractDate evaluates the date rule table. Submatches follow the table's
// layout: day-or-month, month-or-day, year, then optional hour, minute,
// second and AM/PM marker.
func (s *parserService) extractDate(text string, now time.Time) (time.Time, bool) {
	for _, rule := range s.rules.Date {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		first, _ := strconv.Atoi(match[1])
		second, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if year < 100 {
			year += 2000
		}

		hour, minute, sec := 0, 0, 0
		if len(match) > 4 && match[4] != "" {
			hour, _ = strconv.Atoi(match[4])
			minute, _ = strconv.Atoi(match[5])
			if match[6] != "" {
				sec, _ = strconv.Atoi(match[6])
			}
			if marker := strings.ToUpper(match[7]); marker != "" {
				if marker == "PM" && hour < 12 {
					hour += 12
				}
				if marker == "AM" && hour == 12 {
					hour = 0
				}
			}
		}

		day, month, ok := resolveDayMonth(first, second, year, now)
		if !ok {
			continue
		}

		parsed := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
		if parsed.Day() != day || parsed.Month() != time.Month(month) {
			continue // impossible calendar date rolled over
		}
		return parsed, true
	}

	return time.Time{}, false
}

// resolveDayMonth disambiguates day/month order. When both tokens could be a
// month, the candidate date numerically closest to now wins.
func resolveDayMonth(first, second, year int, now time.Time) (day, month int, ok bool) {
	firstIsDay := first > 12
	secondIsDay := second > 12

	switch {
	case firstIsDay && secondIsDay:
		return 0, 0, false
	case firstIsDay:
		return first, second, second >= 1 && second <= 12
	case secondIsDay:
		return second, first, first >= 1 && first <= 12
	}

	if first < 1 || second < 1 {
		return 0, 0, false
	}

	dayFirst := time.Date(year, time.Month(second), first, 0, 0, 0, 0, time.UTC)
	monthFirst := time.Date(year, time.Month(first), second, 0, 0, 0, 0, time.UTC)

	if math.Abs(now.Sub(dayFirst).Hours()) <= math.Abs(now.Sub(monthFirst).Hours()) {
		return first, second, true
	}
	return second, first, true
}

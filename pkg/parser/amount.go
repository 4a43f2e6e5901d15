package parser

import (
	"strconv"
	"strings"
)

// normalizeDecimal converts a captured currency string to a float, accepting
// both comma-decimal ("1.234,56") and dot-decimal ("1,234.56") writing.
func normalizeDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, ".,")
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The rightmost separator is the decimal one.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// A single comma followed by exactly two digits is a decimal
		// separator; otherwise it groups thousands.
		if len(s)-lastComma-1 == 2 && strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if digits := len(s) - lastDot - 1; digits == 3 && strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// extractAmount tries each currency pattern set in priority order, then a
// tighter-bound fallback pass over unlabeled decimals.
func (s *parserService) extractAmount(text string) (float64, string) {
	for _, cr := range s.rules.Currency {
		for _, pattern := range cr.Patterns {
			match := pattern.FindStringSubmatch(text)
			if match == nil {
				continue
			}
			amount, ok := normalizeDecimal(match[1])
			if ok && amount > 0 && amount < s.config.MaxAmount {
				return amount, cr.Currency
			}
		}
	}

	// Secondary pass: no currency symbol, so re-validate against the
	// narrower bound to keep ambiguous captures out.
	for _, rule := range s.rules.FallbackAmount {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		amount, ok := normalizeDecimal(match[1])
		if ok && amount > 0 && amount < s.config.FallbackMaxAmount {
			return amount, ""
		}
	}

	return 0, ""
}

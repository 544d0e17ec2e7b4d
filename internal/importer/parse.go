package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date formats seen in hospital claim exports: day-first, two- or
// four-digit year, slash or dash separated.
var dateFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/06",
	"2/1/06",
	"02-01-06",
	"2-1-06",
}

// ParseDate attempts the known day/month/year formats. Returns nil when the
// input is empty or unparseable; an unreadable date never fails a row.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Noise keywords that show up inside amount cells alongside a number.
var amountNoise = []string{"SIR", "API", "DEPOSITE"}

var leadingNumber = regexp.MustCompile(`^[\d.,]+`)

// ParseAmount extracts a numeric amount from messy spreadsheet text.
// Thousands separators, stray symbols, parenthetical annotations, and
// known noise keywords are stripped. Returns nil (absent, not zero) when
// no numeric content remains.
func ParseAmount(s string) *float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, `"'`)
	if cleaned == "" {
		return nil
	}

	if !strings.ContainsAny(cleaned, "0123456789") {
		return nil
	}

	if strings.Contains(cleaned, "(") || containsNoise(cleaned) {
		m := leadingNumber.FindString(cleaned)
		if m == "" {
			return nil
		}
		cleaned = m
	}

	cleaned = strings.NewReplacer(",", "", "*", "", "#", "", "@", "").Replace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

func containsNoise(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range amountNoise {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

package anomaly

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDatePattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	slashDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	dashDatePattern  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
)

var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"02.01.2006",
	"02.01.2006 15:04",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// excelEpoch is day zero of spreadsheet serial dates (1900 date system).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDetectionDate tries, in order: YYYY-MM-DD[ HH:MM[:SS]], DD/MM/YYYY,
// DD-MM-YYYY, then a set of generic layouts and spreadsheet serial days.
// Results are in UTC.
func ParseDetectionDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if m := isoDatePattern.FindStringSubmatch(trimmed); m != nil {
		return buildDate(trimmed, m[1], m[2], m[3], m[4], m[5], m[6])
	}
	if m := slashDatePattern.FindStringSubmatch(trimmed); m != nil {
		return buildDate(trimmed, m[3], m[2], m[1], m[4], m[5], m[6])
	}
	if m := dashDatePattern.FindStringSubmatch(trimmed); m != nil {
		return buildDate(trimmed, m[3], m[2], m[1], m[4], m[5], m[6])
	}

	for _, layout := range genericLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial >= 1 && serial < 2958466 {
		days := int(serial)
		seconds := int((serial - float64(days)) * 86400)
		return excelEpoch.AddDate(0, 0, days).Add(time.Duration(seconds) * time.Second), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func buildDate(raw, year, month, day, hour, minute, second string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	h := atoiOrZero(hour)
	mi := atoiOrZero(minute)
	s := atoiOrZero(second)

	if mo < 1 || mo > 12 || d < 1 || d > 31 || h > 23 || mi > 59 || s > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}

	parsed := time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
	// time.Date normalizes overflow (31 February -> March); reject instead.
	if parsed.Day() != d || int(parsed.Month()) != mo {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return parsed, nil
}

func atoiOrZero(value string) int {
	if value == "" {
		return 0
	}
	n, _ := strconv.Atoi(value)
	return n
}

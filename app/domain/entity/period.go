package entity

import (
	"fmt"
	"strings"
	"time"
)

// NormalizePeriod accepts "2024-10" or "202410" and returns the canonical
// six digit token, validating that it names a real month.
func NormalizePeriod(raw string) (string, error) {
	token := strings.ReplaceAll(raw, "-", "")
	if _, err := time.Parse("200601", token); err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadPeriod, raw)
	}
	return token, nil
}

// PeriodRange resolves a YYYYMM token to its UTC [start, end) month range.
func PeriodRange(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("200601", period)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrBadPeriod, period)
	}
	start = start.UTC()
	return start, start.AddDate(0, 1, 0), nil
}

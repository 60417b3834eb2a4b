package service

import (
	"strings"
	"time"

	"collectible-order/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

type dateRange struct {
	start time.Time
	end   time.Time
}

// empty reports a range that starts after it ends. It matches nothing.
func (r *dateRange) empty() bool {
	return r.start.After(r.end)
}

// parseDateRange applies the order listing rule: no dates means no filter,
// an end without a start is rejected, and a start without an end runs up
// to now. Both bounds are inclusive. A start after the end is not an error;
// the range is empty.
func parseDateRange(startDate, endDate string, now time.Time) (*dateRange, error) {
	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)

	if startDate == "" && endDate == "" {
		return nil, nil
	}
	if startDate == "" {
		return nil, domain.ErrInvalidDateRange.Withf("endDate %q given without startDate", endDate)
	}

	start, err := parseBound(startDate, true)
	if err != nil {
		return nil, domain.ErrInvalidDateRange.Withf("startDate %q is not a date", startDate)
	}

	end := now.UTC()
	if endDate != "" {
		if end, err = parseBound(endDate, false); err != nil {
			return nil, domain.ErrInvalidDateRange.Withf("endDate %q is not a date", endDate)
		}
	}
	return &dateRange{start: start, end: end}, nil
}

// parseBound accepts a date or a date-time. A bare date means the first
// instant of the day for a lower bound and the last instant for an upper
// bound.
func parseBound(v string, lower bool) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, v, time.UTC); err == nil {
		if lower {
			return t, nil
		}
		return t.Add(24*time.Hour - time.Nanosecond), nil
	}
	if t, err := time.ParseInLocation(dateTimeLayout, v, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

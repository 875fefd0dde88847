package core

import (
	"fmt"
	"time"
)

// Period identifies one calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod creates a Period from a year and a 1-12 month.
func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: time.Month(month)}
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return ErrInvalidMonth
	}
	if p.Year < 1 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// Days returns the number of days in the month, leap years included.
func (p Period) Days() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidDay reports whether day exists in the month.
func (p Period) ValidDay(day int) bool {
	return day >= 1 && day <= p.Days()
}

func (p Period) Prev() Period {
	t := time.Date(p.Year, p.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return PeriodOf(t)
}

func (p Period) Next() Period {
	t := time.Date(p.Year, p.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return PeriodOf(t)
}

// Key is the storage bucket name of the period, e.g. "2025-03".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// ParsePeriodKey is the inverse of Key.
func ParsePeriodKey(key string) (Period, error) {
	var y, m int
	if _, err := fmt.Sscanf(key, "%d-%d", &y, &m); err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", key, err)
	}
	p := NewPeriod(y, m)
	if err := p.Validate(); err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", key, err)
	}
	return p, nil
}

func (p Period) String() string {
	return p.Key()
}

// Label is the display name of the month in the fixed locale.
func (p Period) Label() string {
	return MonthLabel(p)
}

// Before reports whether p is earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

package models

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month, always normalised to the first day.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth reads the first 7 characters of raw as YYYY-MM.
// Longer values such as "2024-03-31" or "2024-03-01 00:00:00" are accepted.
func ParseMonth(raw string) (Month, error) {
	s := strings.TrimSpace(raw)
	if len(s) > len(monthLayout) {
		s = s[:len(monthLayout)]
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", raw, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MustParseMonth is ParseMonth for literals in tests and fixtures.
func MustParseMonth(raw string) Month {
	m, err := ParseMonth(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Time returns the first instant of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Index is the absolute month number. Consecutive months differ by exactly 1,
// which makes gap detection and "12 months back" joins plain integer arithmetic.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// MonthFromIndex is the inverse of Index.
func MonthFromIndex(idx int) Month {
	return Month{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// AddMonths returns the month n months later (n may be negative).
func (m Month) AddMonths(n int) Month {
	return MonthFromIndex(m.Index() + n)
}

func (m Month) Before(other Month) bool { return m.Index() < other.Index() }

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalCSV writes the month as YYYY-MM.
func (m Month) MarshalCSV() (string, error) {
	return m.String(), nil
}

// UnmarshalCSV normalises the cell with ParseMonth.
func (m *Month) UnmarshalCSV(cell string) error {
	parsed, err := ParseMonth(cell)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used across all datasets.
const DateLayout = "2006-01-02"

// ContentItem is one original show in the catalog. Immutable once loaded.
type ContentItem struct {
	ShowID         string
	Title          string
	Genre          string
	ReleaseDate    time.Time // calendar date, UTC midnight
	ProductionCost decimal.Decimal
}

// User is one subscriber. AttributedShowID is empty for organic signups and
// is the only field the attribution engine is allowed to set.
type User struct {
	UserID           string
	SignUpDate       time.Time // calendar date, UTC midnight
	LastActiveDate   time.Time // calendar date, >= SignUpDate
	MonthlyRevenue   decimal.Decimal
	AttributedShowID string
}

// Attributed reports whether the user has an attributed show.
func (u User) Attributed() bool {
	return u.AttributedShowID != ""
}

// LifetimeMonths is the whole-calendar-month span between signup and last
// activity, floored at 1 so that a same-day churner still counts one month.
func (u User) LifetimeMonths() int {
	months := (u.LastActiveDate.Year()-u.SignUpDate.Year())*12 +
		int(u.LastActiveDate.Month()) - int(u.SignUpDate.Month())
	if months < 1 {
		return 1
	}
	return months
}

// LifetimeValue is MonthlyRevenue * LifetimeMonths. Derived, never stored.
func (u User) LifetimeValue() decimal.Decimal {
	return u.MonthlyRevenue.Mul(decimal.NewFromInt(int64(u.LifetimeMonths())))
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthStart truncates a date to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

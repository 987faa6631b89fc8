// Package date provides a calendar date with day granularity.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical ISO-8601 form used for storage.
const Layout = "2006-01-02"

// readLayout also accepts single-digit months and days ("2025-7-1").
const readLayout = "2006-1-2"

// DisplayLayout is the dd/mm/yyyy form shown in lists.
const DisplayLayout = "02/01/2006"

// Date is a calendar day with no time-of-day or zone.
// The zero value is "no date".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2025, 1, 32) is 2025-02-01.
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{t.Year(), t.Month(), t.Day()}
}

// Of returns the local calendar day of t.
func Of(t time.Time) Date { return New(t.Date()) }

// Today returns the current local calendar day.
func Today() Date { return Of(time.Now()) }

// Parse reads a YYYY-MM-DD date, leniently.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(readLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }
func (d Date) After(x Date) bool  { return d.time().After(x.time()) }

// Add returns d shifted by n days.
func (d Date) Add(n int) Date { return New(d.y, d.m, d.d+n) }

// DaysUntil returns the signed number of days from d to x.
func (d Date) DaysUntil(x Date) int {
	return int(x.time().Sub(d.time()).Hours() / 24)
}

// String returns the ISO form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(Layout)
}

// Display returns the dd/mm/yyyy form, or "" for the zero Date.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DisplayLayout)
}

// DisplayString formats a stored ISO date string as dd/mm/yyyy.
// Unparseable input is returned unchanged.
func DisplayString(s string) string {
	d, err := Parse(s)
	if err != nil {
		return s
	}
	return d.Display()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)

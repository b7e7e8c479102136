package db

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Date is a calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the day t falls on, in t's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Time is a time of day, to the second.
type Time struct {
	Hour   int
	Minute int
	Second int
}

func TimeOf(t time.Time) Time {
	hour, minute, second := t.Clock()
	return Time{Hour: hour, Minute: minute, Second: second}
}

// ParseTime parses hh:mm:ss.
func ParseTime(s string) (Time, error) {
	t, err := time.Parse(time.TimeOnly, s)
	if err != nil {
		return Time{}, err
	}
	return TimeOf(t), nil
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t Time) Value() (driver.Value, error) {
	return t.String(), nil
}

// Timestamp is a date and time of day with fractional seconds.
type Timestamp struct {
	Date
	Time
	Nanosecond int
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Date: DateOf(t), Time: TimeOf(t), Nanosecond: t.Nanosecond()}
}

var timestampLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

// ParseTimestamp accepts the layouts SQLite and ODBC drivers produce.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimestampOf(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("cannot parse %q as a timestamp", s)
}

func (ts Timestamp) String() string {
	s := ts.Date.String() + " " + ts.Time.String()
	if ts.Nanosecond != 0 {
		s += fmt.Sprintf(".%09d", ts.Nanosecond)
	}
	return s
}

// In returns ts as an instant in loc.
func (ts Timestamp) In(loc *time.Location) time.Time {
	return time.Date(ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second, ts.Nanosecond, loc)
}

func (ts Timestamp) Value() (driver.Value, error) {
	return ts.String(), nil
}

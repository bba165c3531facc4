// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package dates

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultServerDateTimeFormat is the Go layout for DateTime objects
	DefaultServerDateTimeFormat = "2006-01-02 15:04:05"
	// TimeOfDayFormat is the 12 hours layout used in calendar titles ("hh:mm a")
	TimeOfDayFormat = "03:04 PM"
)

// DateTime type that JSON marshals and unmarshals as "YYYY-MM-DD HH:MM:SS".
//
// The zero DateTime means "no value" and is stored as NULL.
type DateTime struct {
	time.Time
}

// String method for DateTime.
func (d DateTime) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DefaultServerDateTimeFormat)
}

// TimeOfDay returns the time of d formatted as "03:04 PM"
func (d DateTime) TimeOfDay() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(TimeOfDayFormat)
}

// ToDate returns the Date of this DateTime
func (d DateTime) ToDate() Date {
	if d.IsZero() {
		return Date{}
	}
	return Date{time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())}
}

// MarshalJSON for DateTime type
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"%s"`, d.String())), nil
}

// UnmarshalJSON for DateTime type. It accepts the server format,
// RFC3339 strings, null, false and the empty string.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" || str == "false" {
		*d = DateTime{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	dt, err := ParseDateTimeAny(value)
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

// Value formats our DateTime for storing in database
// Especially handles empty DateTime.
func (d DateTime) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time.UTC(), nil
}

// Scan casts the database output to a DateTime
func (d *DateTime) Scan(src interface{}) error {
	switch t := src.(type) {
	case nil:
		*d = DateTime{}
		return nil
	case time.Time:
		d.Time = t.UTC()
		return nil
	case []byte:
		return d.Scan(string(t))
	case string:
		if t == "" {
			*d = DateTime{}
			return nil
		}
		val, err := ParseDateTimeAny(t)
		*d = val
		return err
	}
	return fmt.Errorf("DateTime data is not time.Time but %T", src)
}

var _ driver.Valuer = DateTime{}
var _ sql.Scanner = new(DateTime)

// Now returns the current date/time with UTC timezone
func Now() DateTime {
	return DateTime{time.Now().UTC()}
}

// ParseDateTime returns a datetime from the given string value
// that is formatted with the default YYYY-MM-DD HH:MM:SS format.
//
// It panics in case the parsing cannot be done.
func ParseDateTime(value string) DateTime {
	dt, err := ParseDateTimeWithLayout(DefaultServerDateTimeFormat, value)
	if err != nil {
		panic(err)
	}
	return dt
}

// ParseDateTimeWithLayout returns a datetime from the given string value
// that is formatted with layout.
func ParseDateTimeWithLayout(layout, value string) (DateTime, error) {
	t, err := time.Parse(layout, value)
	return DateTime{Time: t.UTC()}, err
}

// ParseDateTimeAny parses value with the server layout, then RFC3339 and
// finally the date only layout.
func ParseDateTimeAny(value string) (DateTime, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DateTime{}, nil
	}
	var firstErr error
	for _, layout := range []string{DefaultServerDateTimeFormat, time.RFC3339, DefaultServerDateFormat} {
		dt, err := ParseDateTimeWithLayout(layout, value)
		if err == nil {
			return dt, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return DateTime{}, firstErr
}

// Equal reports whether d and other represent the same time instant
func (d DateTime) Equal(other DateTime) bool {
	return d.Time.Equal(other.Time)
}

// Greater returns true if d is strictly greater than other
func (d DateTime) Greater(other DateTime) bool {
	return d.Sub(other) > 0
}

// GreaterEqual returns true if d is greater than or equal to other
func (d DateTime) GreaterEqual(other DateTime) bool {
	return d.Sub(other) >= 0
}

// Lower returns true if d is strictly lower than other
func (d DateTime) Lower(other DateTime) bool {
	return d.Sub(other) < 0
}

// LowerEqual returns true if d is lower than or equal to other
func (d DateTime) LowerEqual(other DateTime) bool {
	return d.Sub(other) <= 0
}

// Add adds the given duration to this DateTime
func (d DateTime) Add(duration time.Duration) DateTime {
	return DateTime{Time: d.Time.Add(duration)}
}

// AddMinutes adds the given amount of minutes (which may be negative)
func (d DateTime) AddMinutes(minutes int) DateTime {
	return d.Add(time.Duration(minutes) * time.Minute)
}

// AddDate adds the given years, months or days to the current DateTime
func (d DateTime) AddDate(years, months, days int) DateTime {
	return DateTime{Time: d.Time.AddDate(years, months, days)}
}

// Sub returns the duration d-t.
func (d DateTime) Sub(t DateTime) time.Duration {
	return d.Time.Sub(t.Time)
}

// In returns d with the location information set to loc.
func (d DateTime) In(loc *time.Location) DateTime {
	return DateTime{Time: d.Time.In(loc)}
}

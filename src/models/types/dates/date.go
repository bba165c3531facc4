// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package dates

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DefaultServerDateFormat is the Go layout for Date objects
	DefaultServerDateFormat = "2006-01-02"
)

// Date type that JSON marshal and unmarshals as "YYYY-MM-DD"
type Date struct {
	time.Time
}

// String method for Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DefaultServerDateFormat)
}

// MarshalJSON for Date type
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"%s"`, d.String())), nil
}

// Today returns the current date in UTC
func Today() Date {
	return Now().ToDate()
}

// Equal reports whether d and other represent the same day
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

// Greater returns true if d is strictly after other
func (d Date) Greater(other Date) bool {
	return d.String() > other.String()
}

// Lower returns true if d is strictly before other
func (d Date) Lower(other Date) bool {
	return d.String() < other.String()
}

// AddDate adds the given years, months or days to the current Date
func (d Date) AddDate(years, months, days int) Date {
	return Date{Time: d.Time.AddDate(years, months, days)}
}

// Value formats our Date for storing in database
// Especially handles empty Date.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan casts the database output to a Date
func (d *Date) Scan(src interface{}) error {
	switch t := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case []byte:
		return d.Scan(string(t))
	case string:
		val, err := ParseDate(t)
		*d = val
		return err
	}
	return fmt.Errorf("Date data is not time.Time but %T", src)
}

// UnmarshalJSON for Date type
func (d *Date) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" || str == "false" {
		*d = Date{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	val, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = val
	return nil
}

// ParseDate returns a date from the given string value. It accepts the
// server date layout and any layout accepted by ParseDateTimeAny.
func ParseDate(value string) (Date, error) {
	if value == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DefaultServerDateFormat, value); err == nil {
		return Date{t}, nil
	}
	dt, err := ParseDateTimeAny(value)
	if err != nil {
		return Date{}, err
	}
	return dt.ToDate(), nil
}

// ToDateTime returns the DateTime at midnight of this Date
func (d Date) ToDateTime() DateTime {
	if d.IsZero() {
		return DateTime{}
	}
	return DateTime{d.Time}
}

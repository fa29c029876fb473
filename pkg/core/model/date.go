// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"log/slog"
	"time"
)

// Date is a calendar day without a time-of-day or zone component.
// Menus are keyed by the day they are served on, so all comparisons in
// the staleness policy and the cache operate on whole days. Date is a
// comparable value type and may be used as a map key directly.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates the given time instant to its calendar day, as
// observed in the location of the t value.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in the 2006-01-02 format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date: %w", err)
	}
	return DateOf(t), nil
}

// Time returns the UTC midnight instant of the d day, suitable for
// storage in a DATE column.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day which is n days after d (or before, for a
// negative n), normalizing month and year overflows.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d falls strictly before the o day.
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// After reports whether d falls strictly after the o day.
func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

// String formats d in the 2006-01-02 format.
func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

// MarshalText implements encoding.TextMarshaler, so a Date is encoded
// in JSON responses as a plain 2006-01-02 string.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	dd, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = dd
	return nil
}

// LogValue implements slog.LogValuer.
func (d Date) LogValue() slog.Value {
	return slog.StringValue(d.String())
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

func TestParseDate(t *testing.T) {
	d, err := model.ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(
		t, model.Date{Year: 2025, Month: time.February, Day: 28}, d,
	)
	assert.Equal(t, "2025-02-28", d.String())

	_, err = model.ParseDate("28.02.2025")
	assert.Error(t, err)
}

func TestAddDaysNormalizesOverflows(t *testing.T) {
	d := model.Date{Year: 2024, Month: time.February, Day: 28}
	assert.Equal(
		t,
		model.Date{Year: 2024, Month: time.February, Day: 29},
		d.AddDays(1),
		"2024 is a leap year",
	)
	assert.Equal(
		t,
		model.Date{Year: 2024, Month: time.March, Day: 1},
		d.AddDays(2),
	)
	assert.Equal(
		t,
		model.Date{Year: 2023, Month: time.December, Day: 31},
		model.Date{Year: 2024, Month: time.January, Day: 1}.AddDays(-1),
	)
}

func TestBeforeAfter(t *testing.T) {
	a := model.Date{Year: 2025, Month: time.March, Day: 12}
	b := a.AddDays(1)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.False(t, a.After(a))
}

func TestDateTextRoundTrip(t *testing.T) {
	d := model.Date{Year: 2025, Month: time.March, Day: 2}
	data, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", string(data))
	var d2 model.Date
	require.NoError(t, d2.UnmarshalText(data))
	assert.Equal(t, d, d2)
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("east", 2*3600)
	instant := time.Date(2025, time.March, 12, 23, 30, 0, 0, loc)
	assert.Equal(
		t,
		model.Date{Year: 2025, Month: time.March, Day: 12},
		model.DateOf(instant),
	)
}

func TestParseCanteenRoundTrip(t *testing.T) {
	for _, c := range model.AllCanteens() {
		parsed, err := model.ParseCanteen(c.Identifier())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := model.ParseCanteen("cafeteria")
	assert.ErrorIs(t, err, model.ErrUnknownCanteen)
}

func TestParseDishTypeRoundTrip(t *testing.T) {
	for _, dt := range []model.DishType{
		model.DishTypeMain, model.DishTypeSide, model.DishTypeDessert,
	} {
		parsed, err := model.ParseDishType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}
	_, err := model.ParseDishType("soup")
	assert.ErrorIs(t, err, model.ErrUnknownDishType)
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

var policyToday = model.Date{Year: 2025, Month: time.March, Day: 12}

func TestWithinScrapeHorizon(t *testing.T) {
	for _, tc := range []struct {
		name  string
		date  model.Date
		force bool
		want  bool
	}{
		{"today", policyToday, false, true},
		{"tomorrow", policyToday.AddDays(1), false, true},
		{"horizon edge", policyToday.AddDays(31), false, true},
		{"beyond horizon", policyToday.AddDays(32), false, false},
		{"beyond horizon forced", policyToday.AddDays(32), true, false},
		{"yesterday", policyToday.AddDays(-1), false, false},
		{"yesterday forced", policyToday.AddDays(-1), true, true},
		{"far past forced", policyToday.AddDays(-365), true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := withinScrapeHorizon(
				tc.date, policyToday, 31, tc.force,
			)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNeedsRefresh(t *testing.T) {
	now := time.Date(2025, time.March, 12, 13, 0, 0, 0, time.UTC)
	scrapedAgo := func(d time.Duration) *time.Time {
		at := now.Add(-d)
		return &at
	}
	for _, tc := range []struct {
		name string
		date model.Date
		last *time.Time
		want bool
	}{
		{"never scraped today", policyToday, nil, true},
		{"never scraped future", policyToday.AddDays(3), nil, true},
		{"never scraped past", policyToday.AddDays(-3), nil, true},
		{
			"today just scraped",
			policyToday, scrapedAgo(time.Minute), false,
		},
		{
			"today below interval",
			policyToday, scrapedAgo(7 * time.Hour), false,
		},
		{
			"today at interval",
			policyToday, scrapedAgo(8 * time.Hour), true,
		},
		{
			"future below interval",
			policyToday.AddDays(5), scrapedAgo(47 * time.Hour), false,
		},
		{
			"future at interval",
			policyToday.AddDays(5), scrapedAgo(48 * time.Hour), true,
		},
		{
			"past stays captured",
			policyToday.AddDays(-5), scrapedAgo(1000 * time.Hour),
			false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := needsRefresh(
				tc.date, policyToday, now, tc.last,
				8*time.Hour, 48*time.Hour,
			)
			assert.Equal(t, tc.want, got)
		})
	}
}

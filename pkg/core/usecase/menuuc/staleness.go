// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"time"

	"github.com/upbmensa/mensaweb/pkg/core/model"
)

// withinScrapeHorizon reports whether the date may be scraped at all.
// Days beyond the future horizon are refused even for forced
// refreshes, bounding total scrape volume. Days in the past are
// refused unless forced; there is no configurable look-back because
// captured history never changes on the feed side.
func withinScrapeHorizon(
	date, today model.Date, horizonDays int, force bool,
) bool {
	if date.After(today.AddDays(horizonDays)) {
		return false
	}
	if date.Before(today) {
		return force
	}
	return true
}

// needsRefresh decides whether a (date, canteen) pair whose last
// successful scrape happened at lastScraped is due for a re-scrape.
// A nil lastScraped means the pair was never scraped and is always
// due. Today's menu goes stale after todayInterval since it changes
// intraday; future menus go stale after futureInterval; past menus
// are immutable once captured and are never due.
// This function is pure: it depends only on its arguments.
func needsRefresh(
	date, today model.Date,
	now time.Time,
	lastScraped *time.Time,
	todayInterval, futureInterval time.Duration,
) bool {
	if lastScraped == nil {
		return true
	}
	switch {
	case date == today:
		return now.Sub(*lastScraped) >= todayInterval
	case date.Before(today):
		return false
	default:
		return now.Sub(*lastScraped) >= futureInterval
	}
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"errors"
	"fmt"
	"time"
)

// Default settings of the menus use case, applied by New for options
// which were not given.
const (
	// DefaultHorizonDays bounds how far into the future a menu may
	// be scraped; refreshes beyond it are refused outright.
	DefaultHorizonDays = 31
	// DefaultTodayInterval is the elapsed time after which today's
	// menu is considered stale (it changes intraday).
	DefaultTodayInterval = 8 * time.Hour
	// DefaultFutureInterval is the elapsed time after which a
	// future day's menu is considered stale (it rarely changes).
	DefaultFutureInterval = 48 * time.Hour
	// DefaultConcurrency bounds the simultaneous in-flight scrapes
	// of one refresh batch.
	DefaultConcurrency = 4
	// DefaultCacheLimit is the soft size threshold above which the
	// menu cache sweeps out entries for past days.
	DefaultCacheLimit = 100
)

// Option is a functional option for the menus use case.
type Option func(uc *UseCase) error

// WithScrapeHorizon option bounds, in days, how far ahead of today a
// refresh may reach. This option may be passed to the New() function.
func WithScrapeHorizon(days int) Option {
	return func(uc *UseCase) error {
		if days <= 0 {
			return fmt.Errorf("horizon (%d) is not positive", days)
		}
		if uc.horizonDays != 0 {
			return errors.New("horizon is already configured")
		}
		uc.horizonDays = days
		return nil
	}
}

// WithTodayRefreshInterval option configures the elapsed time after
// which the menu of the current day becomes stale.
func WithTodayRefreshInterval(d time.Duration) Option {
	return func(uc *UseCase) error {
		if d <= 0 {
			return fmt.Errorf("interval (%d) is not positive", d)
		}
		if uc.todayInterval != 0 {
			return errors.New("today interval is already configured")
		}
		uc.todayInterval = d
		return nil
	}
}

// WithFutureRefreshInterval option configures the elapsed time after
// which the menu of a future day becomes stale.
func WithFutureRefreshInterval(d time.Duration) Option {
	return func(uc *UseCase) error {
		if d <= 0 {
			return fmt.Errorf("interval (%d) is not positive", d)
		}
		if uc.futureInterval != 0 {
			return errors.New("future interval is already configured")
		}
		uc.futureInterval = d
		return nil
	}
}

// WithScrapeConcurrency option bounds the number of simultaneous
// in-flight scrapes during one refresh batch. The external feed is
// the bottleneck and is rate-sensitive, so the bound stays small.
func WithScrapeConcurrency(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("concurrency (%d) is not positive", n)
		}
		if uc.concurrency != 0 {
			return errors.New("concurrency is already configured")
		}
		uc.concurrency = n
		return nil
	}
}

// WithCacheSizeLimit option configures the soft number of cached
// menus above which the read path sweeps out entries for past days.
func WithCacheSizeLimit(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("cache limit (%d) is not positive", n)
		}
		if uc.cacheLimit != 0 {
			return errors.New("cache limit is already configured")
		}
		uc.cacheLimit = n
		return nil
	}
}

// withClock fixes the use case notion of the current time; tests use
// it to pin "today" and elapsed durations.
func withClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("nil clock")
		}
		uc.now = now
		return nil
	}
}

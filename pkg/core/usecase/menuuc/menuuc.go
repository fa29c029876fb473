// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package menuuc contains the menus use case: the refresh engine that
// keeps persisted daily menus eventually fresh, and the query surface
// serving combined, deduplicated menu views from a short-lived
// in-memory cache.
//
// The moving parts are:
//   - a pure staleness policy deciding which (date, canteen) pairs
//     are due for a re-scrape (staleness.go),
//   - the refresh orchestrator fanning scrapes out concurrently and
//     handing results to the synchronizer (refresh.go),
//   - the synchronizer reconciling scraped dishes against persisted
//     latest rows inside one transaction per batch (sync.go),
//   - a read-through cache shielding the scrape path from bursty
//     read traffic (cache.go).
package menuuc

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/upbmensa/mensaweb/pkg/core/log"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
	"github.com/upbmensa/mensaweb/pkg/core/scrape"
)

// UseCase represents the menus use case. It holds a database
// connection pool, the menus repository instance (to be guided with
// the DB pool), the scraper port, the in-memory menu cache, and the
// staleness policy settings.
// A UseCase is an explicitly owned object whose lifecycle is tied to
// the serving process; handlers receive it by reference instead of
// reaching for process-wide state.
type UseCase struct {
	pool    repo.Pool
	menusrp repo.Menus
	scraper scrape.Scraper
	cache   *menuCache

	horizonDays    int
	todayInterval  time.Duration
	futureInterval time.Duration
	concurrency    int
	cacheLimit     int

	now func() time.Time

	mu           sync.Mutex
	earliestMeal *model.Date
}

// New instantiates a menus use case.
// Required collaborators are passed individually, so the caller has
// to provision them and notices missing ones as compilation errors.
// Optional parameters are passed as functional options in order to
// facilitate their validation and flexibility.
func New(
	p repo.Pool, m repo.Menus, s scrape.Scraper, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:    p,
		menusrp: m,
		scraper: s,
		now:     time.Now,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.horizonDays == 0 {
		uc.horizonDays = DefaultHorizonDays
	}
	if uc.todayInterval == 0 {
		uc.todayInterval = DefaultTodayInterval
	}
	if uc.futureInterval == 0 {
		uc.futureInterval = DefaultFutureInterval
	}
	if uc.concurrency == 0 {
		uc.concurrency = DefaultConcurrency
	}
	if uc.cacheLimit == 0 {
		uc.cacheLimit = DefaultCacheLimit
	}
	uc.cache = newMenuCache(uc.cacheLimit)
	return uc, nil
}

// Menu serves the combined menu of the given canteens for one day.
// Per-canteen menus are taken from the cache when present; absent
// entries are populated by querying storage, which first runs a
// synchronous refresh check unless noRefresh suppresses it.
// Canteens whose population fails are dropped from the result rather
// than failing the whole request. The per-canteen menus are folded
// through Menu.Merged, so equal dishes collapse into one entry
// carrying the sorted union of their canteens.
func (menus *UseCase) Menu(
	ctx context.Context,
	date model.Date,
	canteens []model.Canteen,
	noRefresh bool,
) (model.Menu, error) {
	canteens = dedupCanteens(canteens)
	menus.cache.sweepIfOverLimit(model.DateOf(menus.now()))

	parts := make([]*model.Menu, len(canteens))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range canteens {
		i, c := i, c
		g.Go(func() error {
			m, err := menus.canteenMenu(gctx, date, c, noRefresh)
			if err != nil {
				log.Warn(
					gctx, "dropping canteen from combined menu",
					log.Valuer("canteen", c),
					log.Valuer("date", date),
					log.Err("error", err),
				)
				return nil
			}
			parts[i] = m
			return nil
		})
	}
	_ = g.Wait() // per-canteen failures are logged, not propagated

	combined := model.Menu{Date: date}
	populated := false
	for _, m := range parts {
		if m == nil {
			continue
		}
		combined = combined.Merged(*m)
		populated = true
	}
	if !populated && len(canteens) > 0 {
		return combined, fmt.Errorf(
			"no menu data available for %s", date,
		)
	}
	return combined, nil
}

// canteenMenu returns the menu of a single canteen, going through
// the read-through cache.
func (menus *UseCase) canteenMenu(
	ctx context.Context,
	date model.Date,
	canteen model.Canteen,
	noRefresh bool,
) (*model.Menu, error) {
	if m, ok := menus.cache.get(date, canteen); ok {
		return &m, nil
	}
	if !noRefresh {
		sel := []model.Canteen{canteen}
		if _, err := menus.Refresh(ctx, date, sel, false); err != nil {
			// The batch transaction rolled back, so storage still
			// holds the consistent pre-refresh state; serve that.
			log.Error(
				ctx, "read-triggered refresh failed",
				log.Valuer("canteen", canteen),
				log.Valuer("date", date),
				log.Err("error", err),
			)
		}
	}
	var dishes []model.Dish
	err := menus.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			q := menus.menusrp.Conn(c)
			byCanteen, err := q.LatestDishes(
				ctx, date, []model.Canteen{canteen},
			)
			if err != nil {
				return err
			}
			dishes = byCanteen[canteen]
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("loading latest dishes: %w", err)
	}
	m := model.NewMenu(date, dishes)
	menus.cache.put(date, canteen, m)
	return &m, nil
}

func dedupCanteens(canteens []model.Canteen) []model.Canteen {
	cs := slices.Clone(canteens)
	slices.Sort(cs)
	return slices.Compact(cs)
}

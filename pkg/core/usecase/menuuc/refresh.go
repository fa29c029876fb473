// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/upbmensa/mensaweb/pkg/core/log"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

// Refresh re-scrapes the menus of the given day for every candidate
// canteen which the staleness policy considers due, and reconciles
// the results against the persisted latest rows. It returns true iff
// any write occurred.
//
// The common case is a no-op: all candidates are fresh and neither
// storage nor network is touched beyond the audit lookup. Otherwise
// the due canteens are scraped concurrently (bounded fan-out), the
// persisted latest dishes are read in parallel with the fan-in, and
// the whole batch is synchronized in a single transaction which also
// appends one scrape audit row per successfully scraped canteen.
//
// A scrape failure drops only its canteen from the cycle; it will be
// retried on the next natural staleness check. A storage failure
// aborts the whole batch without mutating durable state.
//
// A force refresh bypasses the elapsed-time checks (and may reach
// back to past days), but never beyond the future scrape horizon.
// Concurrent refreshes of the same (date, canteen) are not
// deduplicated; both diff against the same pre-state and the
// transaction serializes their writes, so the race is safe, merely
// wasteful.
func (menus *UseCase) Refresh(
	ctx context.Context,
	date model.Date,
	candidates []model.Canteen,
	force bool,
) (bool, error) {
	today := model.DateOf(menus.now())
	if !withinScrapeHorizon(date, today, menus.horizonDays, force) {
		log.Debug(
			ctx, "not refreshing menu outside scrape horizon",
			log.Valuer("date", date),
		)
		return false, nil
	}

	due, err := menus.dueCanteens(ctx, date, today, candidates, force)
	if err != nil {
		return false, err
	}
	if len(due) == 0 {
		return false, nil
	}
	log.Debug(
		ctx, "refreshing menu",
		log.Valuer("date", date),
		log.Any("canteens", due),
	)

	scraped, persisted, err := menus.scrapeAndLoad(ctx, date, due)
	if err != nil {
		return false, err
	}
	if len(scraped) == 0 {
		return false, nil // every scrape failed; retry next check
	}

	attempted := make([]model.Canteen, 0, len(scraped))
	for _, c := range due {
		if _, ok := scraped[c]; ok {
			attempted = append(attempted, c)
		}
	}
	scrapedAt := menus.now()
	err = menus.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
				q := menus.menusrp.Tx(tx)
				for _, can := range attempted {
					err := synchronize(
						ctx, q, date, can,
						scraped[can], persisted[can],
					)
					if err != nil {
						return err
					}
				}
				return q.RecordScrapes(ctx, date, attempted, scrapedAt)
			})
		},
	)
	if err != nil {
		return false, fmt.Errorf("synchronizing menu batch: %w", err)
	}
	menus.cache.invalidate(date, attempted)
	return true, nil
}

// dueCanteens filters the candidates down to those needing a refresh
// per the staleness policy, treating canteens without an audit row as
// never scraped. A forced refresh takes every candidate.
func (menus *UseCase) dueCanteens(
	ctx context.Context,
	date, today model.Date,
	candidates []model.Canteen,
	force bool,
) ([]model.Canteen, error) {
	candidates = dedupCanteens(candidates)
	if force {
		return candidates, nil
	}
	var audits map[model.Canteen]time.Time
	err := menus.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			var err error
			audits, err = menus.menusrp.Conn(c).LastScrapes(
				ctx, date, candidates,
			)
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("loading scrape audits: %w", err)
	}
	now := menus.now()
	due := make([]model.Canteen, 0, len(candidates))
	for _, c := range candidates {
		var last *time.Time
		if at, ok := audits[c]; ok {
			at := at
			last = &at
		}
		if needsRefresh(
			date, today, now, last,
			menus.todayInterval, menus.futureInterval,
		) {
			due = append(due, c)
		}
	}
	return due, nil
}

// scrapeAndLoad fans the scrapes out with a bounded number of
// in-flight requests and, concurrently with the fan-in, reads the
// persisted latest dishes of the due canteens. Scrape failures are
// logged and their canteens are left out of the scraped map; a
// storage failure fails the whole call.
func (menus *UseCase) scrapeAndLoad(
	ctx context.Context, date model.Date, due []model.Canteen,
) (
	scraped map[model.Canteen][]model.Dish,
	persisted map[model.Canteen][]model.Dish,
	err error,
) {
	scraped = make(map[model.Canteen][]model.Dish, len(due))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return menus.pool.Conn(
			gctx, func(ctx context.Context, c repo.Conn) error {
				var err error
				persisted, err = menus.menusrp.Conn(c).LatestDishes(
					ctx, date, due,
				)
				if err != nil {
					return fmt.Errorf(
						"loading latest dishes: %w", err,
					)
				}
				return nil
			},
		)
	})

	sg, sgctx := errgroup.WithContext(gctx)
	sg.SetLimit(menus.concurrency)
	for _, c := range due {
		c := c
		sg.Go(func() error {
			dishes, err := menus.scraper.Scrape(sgctx, date, c)
			if err != nil {
				log.Warn(
					sgctx, "skipping canteen after failed scrape",
					log.Valuer("canteen", c),
					log.Valuer("date", date),
					log.Err("error", err),
				)
				return nil
			}
			for i := range dishes {
				dishes[i] = dishes[i].Normalize()
			}
			mu.Lock()
			scraped[c] = dishes
			mu.Unlock()
			return nil
		})
	}
	g.Go(sg.Wait)

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return scraped, persisted, nil
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
	"github.com/upbmensa/mensaweb/pkg/core/scrape"
)

// fakePool satisfies repo.Pool without a database; every handler runs
// on the same fake connection and transaction.
type fakePool struct {
	conn fakeConn
}

func (p *fakePool) Conn(
	ctx context.Context, handler repo.ConnHandler,
) error {
	return handler(ctx, &p.conn)
}

func (p *fakePool) Close() error {
	return nil
}

type fakeConn struct {
	tx fakeTx
}

func (c *fakeConn) Exec(
	context.Context, string, ...any,
) (int64, error) {
	return 0, nil
}

func (c *fakeConn) Query(
	context.Context, string, ...any,
) (repo.Rows, error) {
	return nil, nil
}

func (c *fakeConn) Tx(
	ctx context.Context, handler repo.TxHandler,
) error {
	return handler(ctx, &c.tx)
}

func (c *fakeConn) IsConn() {}

type fakeTx struct{}

func (t *fakeTx) Exec(
	context.Context, string, ...any,
) (int64, error) {
	return 0, nil
}

func (t *fakeTx) Query(
	context.Context, string, ...any,
) (repo.Rows, error) {
	return nil, nil
}

func (t *fakeTx) IsTx() {}

type mealKey struct {
	date    model.Date
	canteen model.Canteen
}

// memStore is an in-memory menus repository which keeps the latest
// dishes and scrape audits per (date, canteen) pair and counts the
// performed write operations, so tests can assert on idempotence.
type memStore struct {
	mu     sync.Mutex
	dishes map[mealKey][]model.Dish
	audits map[mealKey]time.Time

	markCalls   int
	insertCalls int
	marked      int
	inserted    int

	failWrites bool
}

func newMemStore() *memStore {
	return &memStore{
		dishes: make(map[mealKey][]model.Dish),
		audits: make(map[mealKey]time.Time),
	}
}

func (s *memStore) Conn(repo.Conn) repo.MenusConnQueryer { return s }

func (s *memStore) Tx(repo.Tx) repo.MenusTxQueryer { return s }

func (s *memStore) LatestDishes(
	_ context.Context, date model.Date, canteens []model.Canteen,
) (map[model.Canteen][]model.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byCanteen := make(map[model.Canteen][]model.Dish)
	for _, c := range canteens {
		if ds := s.dishes[mealKey{date, c}]; len(ds) > 0 {
			byCanteen[c] = slices.Clone(ds)
		}
	}
	return byCanteen, nil
}

func (s *memStore) LastScrapes(
	_ context.Context, date model.Date, canteens []model.Canteen,
) (map[model.Canteen]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	audits := make(map[model.Canteen]time.Time)
	for _, c := range canteens {
		if at, ok := s.audits[mealKey{date, c}]; ok {
			audits[c] = at
		}
	}
	return audits, nil
}

func (s *memStore) NutritionFor(
	_ context.Context, name string, _ *model.Date,
) (*model.NutritionValues, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ds := range s.dishes {
		for i := range ds {
			if ds[i].Name == name {
				n := ds[i].Nutrition
				return &n, nil
			}
		}
	}
	return nil, nil
}

func (s *memStore) PriceHistory(
	_ context.Context,
	name string,
	canteens []model.Canteen,
	limit int,
) ([]repo.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var points []repo.PricePoint
	for k, ds := range s.dishes {
		if len(canteens) > 0 && !slices.Contains(canteens, k.canteen) {
			continue
		}
		for i := range ds {
			if ds[i].Name == name && len(points) < limit {
				points = append(points, repo.PricePoint{
					Date:    k.date,
					Canteen: k.canteen,
					Prices:  ds[i].Prices,
				})
			}
		}
	}
	return points, nil
}

func (s *memStore) EarliestMealDate(
	context.Context,
) (model.Date, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var earliest model.Date
	found := false
	for k, ds := range s.dishes {
		if len(ds) == 0 {
			continue
		}
		if !found || k.date.Before(earliest) {
			earliest = k.date
			found = true
		}
	}
	return earliest, found, nil
}

func (s *memStore) MarkDishesStale(
	_ context.Context,
	date model.Date,
	canteen model.Canteen,
	dishes []model.Dish,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	if s.failWrites {
		return 0, fmt.Errorf("injected write failure")
	}
	keys := make(map[string]bool, len(dishes))
	for i := range dishes {
		keys[dishes[i].IdentityKey()] = true
	}
	k := mealKey{date, canteen}
	kept := make([]model.Dish, 0, len(s.dishes[k]))
	var affected int64
	for _, d := range s.dishes[k] {
		if keys[d.IdentityKey()] {
			affected++
			continue
		}
		kept = append(kept, d)
	}
	s.dishes[k] = kept
	s.marked += int(affected)
	return affected, nil
}

func (s *memStore) InsertDishes(
	_ context.Context,
	date model.Date,
	canteen model.Canteen,
	dishes []model.Dish,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.failWrites {
		return fmt.Errorf("injected write failure")
	}
	k := mealKey{date, canteen}
	s.dishes[k] = append(s.dishes[k], dishes...)
	s.inserted += len(dishes)
	return nil
}

func (s *memStore) RecordScrapes(
	_ context.Context,
	date model.Date,
	canteens []model.Canteen,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return fmt.Errorf("injected write failure")
	}
	for _, c := range canteens {
		s.audits[mealKey{date, c}] = at
	}
	return nil
}

// fakeScraper serves canned dishes per canteen and counts the scrapes.
type fakeScraper struct {
	mu      sync.Mutex
	menus   map[model.Canteen][]model.Dish
	failing map[model.Canteen]bool
	scrapes int
}

func (f *fakeScraper) Scrape(
	_ context.Context, date model.Date, canteen model.Canteen,
) ([]model.Dish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrapes++
	if f.failing[canteen] {
		return nil, &scrape.Error{
			Date:    date,
			Canteen: canteen,
			Err:     fmt.Errorf("injected scrape failure"),
		}
	}
	return slices.Clone(f.menus[canteen]), nil
}

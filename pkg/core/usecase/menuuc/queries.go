// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"context"
	"errors"
	"fmt"

	"github.com/upbmensa/mensaweb/pkg/core/cerr"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

// Nutrition returns the nutrition values of the most recent latest
// row matching the dish name (case-insensitively), optionally pinned
// to one day. Unknown dishes yield a NotFound error.
func (menus *UseCase) Nutrition(
	ctx context.Context, name string, date *model.Date,
) (n *model.NutritionValues, err error) {
	err = menus.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			var err error
			n, err = menus.menusrp.Conn(c).NutritionFor(
				ctx, name, date,
			)
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("loading nutrition values: %w", err)
	}
	if n == nil {
		return nil, cerr.NotFound(
			errors.New("dish cannot be found"),
		)
	}
	return n, nil
}

// PriceHistory returns the per-day prices which the given canteens
// charged for the named dish, most recent days first, up to limit
// entries. An empty canteens slice covers all canteens. The result
// is a read-only projection over superseded and latest rows snapshot
// per day; this use case never writes price history itself.
func (menus *UseCase) PriceHistory(
	ctx context.Context,
	name string,
	canteens []model.Canteen,
	limit int,
) (points []repo.PricePoint, err error) {
	if limit <= 0 {
		limit = 1000
	}
	err = menus.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			var err error
			points, err = menus.menusrp.Conn(c).PriceHistory(
				ctx, name, dedupCanteens(canteens), limit,
			)
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("loading price history: %w", err)
	}
	return points, nil
}

// EarliestMealDate returns the earliest day with any latest row.
// The value can only move backwards by manual intervention, so the
// first successful lookup is memoized for the process lifetime.
// When the meals table is empty, a NotFound error is returned and
// nothing is memoized.
func (menus *UseCase) EarliestMealDate(ctx context.Context) (
	model.Date, error,
) {
	menus.mu.Lock()
	memo := menus.earliestMeal
	menus.mu.Unlock()
	if memo != nil {
		return *memo, nil
	}
	var (
		date model.Date
		ok   bool
	)
	err := menus.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			var err error
			date, ok, err = menus.menusrp.Conn(c).EarliestMealDate(ctx)
			return err
		},
	)
	if err != nil {
		return model.Date{}, fmt.Errorf(
			"loading earliest meal date: %w", err,
		)
	}
	if !ok {
		return model.Date{}, cerr.NotFound(
			errors.New("no meals are recorded yet"),
		)
	}
	menus.mu.Lock()
	menus.earliestMeal = &date
	menus.mu.Unlock()
	return date, nil
}

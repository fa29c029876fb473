// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/upbmensa/mensaweb/pkg/core/model"
)

// PricePoint is one entry of a dish price history projection: the
// prices which a canteen charged for the dish on a given day.
type PricePoint struct {
	Date    model.Date
	Canteen model.Canteen
	Prices  model.DishPrices
}

// MenusConnQueryer provides the menus queries which may run on a
// plain connection, outside of any transaction.
type MenusConnQueryer interface {
	MenusQueryer
}

// MenusTxQueryer provides the menus queries plus the write operations
// of one refresh batch. The writes are only exposed on a transaction,
// so a reader can never observe a partially synchronized menu.
type MenusTxQueryer interface {
	MenusQueryer

	// MarkDishesStale clears the is_latest flag of the rows matching
	// the given dishes by identity (model.Dish.SameAs fields) for the
	// given day and canteen, returning the number of affected rows.
	// Superseded rows are kept for history.
	MarkDishesStale(
		ctx context.Context,
		date model.Date,
		canteen model.Canteen,
		dishes []model.Dish,
	) (int64, error)

	// InsertDishes creates new latest rows for the given dishes.
	InsertDishes(
		ctx context.Context,
		date model.Date,
		canteen model.Canteen,
		dishes []model.Dish,
	) error

	// RecordScrapes appends one scrape audit row per canteen with
	// the given timestamp, recording that a fetch for that day and
	// canteen completed successfully (whether or not it changed
	// any dish rows).
	RecordScrapes(
		ctx context.Context,
		date model.Date,
		canteens []model.Canteen,
		at time.Time,
	) error
}

// MenusQueryer provides the read-only menus queries.
type MenusQueryer interface {
	// LatestDishes returns the currently valid dishes of the given
	// day, grouped by canteen. Canteens without rows are absent
	// from the map.
	LatestDishes(
		ctx context.Context,
		date model.Date,
		canteens []model.Canteen,
	) (map[model.Canteen][]model.Dish, error)

	// LastScrapes returns the most recent successful scrape
	// timestamp per canteen for the given day. Canteens which were
	// never scraped for that day are absent from the map.
	LastScrapes(
		ctx context.Context,
		date model.Date,
		canteens []model.Canteen,
	) (map[model.Canteen]time.Time, error)

	// NutritionFor returns the nutrition values of the most recent
	// latest row matching the dish name (case-insensitively),
	// optionally pinned to one day. A nil result with nil error
	// means no such dish exists.
	NutritionFor(
		ctx context.Context,
		name string,
		date *model.Date,
	) (*model.NutritionValues, error)

	// PriceHistory returns up to limit latest-row price entries for
	// the named dish (case-insensitively) over the given canteens,
	// most recent days first. An empty canteens slice means all
	// canteens.
	PriceHistory(
		ctx context.Context,
		name string,
		canteens []model.Canteen,
		limit int,
	) ([]PricePoint, error)

	// EarliestMealDate returns the earliest day with a latest row.
	// The ok result is false when the meals table is empty.
	EarliestMealDate(ctx context.Context) (
		date model.Date, ok bool, err error,
	)
}

// Menus is the menus repository port. Obtained queryer instances wrap
// and use the given connection or transaction.
type Menus interface {
	Conn(Conn) MenusConnQueryer
	Tx(Tx) MenusTxQueryer
}

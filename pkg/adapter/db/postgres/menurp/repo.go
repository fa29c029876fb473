// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package menurp is the menus repository, implementing the
// repo.Menus interface over the PostgreSQL adapter.
package menurp

import (
	"context"
	"time"

	"github.com/upbmensa/mensaweb/pkg/adapter/db/postgres"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

// Repo is the menus repository instance.
type Repo struct {
}

// New instantiates a menus repository.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn takes a repo.Conn connection and returns a connection-based
// menus queryer.
func (menus *Repo) Conn(c repo.Conn) repo.MenusConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) LatestDishes(
	ctx context.Context, date model.Date, canteens []model.Canteen,
) (map[model.Canteen][]model.Dish, error) {
	return LatestDishes(ctx, cq.Conn, date, canteens)
}

func (cq connQueryer) LastScrapes(
	ctx context.Context, date model.Date, canteens []model.Canteen,
) (map[model.Canteen]time.Time, error) {
	return LastScrapes(ctx, cq.Conn, date, canteens)
}

func (cq connQueryer) NutritionFor(
	ctx context.Context, name string, date *model.Date,
) (*model.NutritionValues, error) {
	return NutritionFor(ctx, cq.Conn, name, date)
}

func (cq connQueryer) PriceHistory(
	ctx context.Context,
	name string,
	canteens []model.Canteen,
	limit int,
) ([]repo.PricePoint, error) {
	return PriceHistory(ctx, cq.Conn, name, canteens, limit)
}

func (cq connQueryer) EarliestMealDate(ctx context.Context) (
	model.Date, bool, error,
) {
	return EarliestMealDate(ctx, cq.Conn)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx takes a repo.Tx transaction and returns a transaction-based
// menus queryer which additionally exposes the batch write
// operations.
func (menus *Repo) Tx(tx repo.Tx) repo.MenusTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) LatestDishes(
	ctx context.Context, date model.Date, canteens []model.Canteen,
) (map[model.Canteen][]model.Dish, error) {
	return LatestDishes(ctx, tq.Tx, date, canteens)
}

func (tq txQueryer) LastScrapes(
	ctx context.Context, date model.Date, canteens []model.Canteen,
) (map[model.Canteen]time.Time, error) {
	return LastScrapes(ctx, tq.Tx, date, canteens)
}

func (tq txQueryer) NutritionFor(
	ctx context.Context, name string, date *model.Date,
) (*model.NutritionValues, error) {
	return NutritionFor(ctx, tq.Tx, name, date)
}

func (tq txQueryer) PriceHistory(
	ctx context.Context,
	name string,
	canteens []model.Canteen,
	limit int,
) ([]repo.PricePoint, error) {
	return PriceHistory(ctx, tq.Tx, name, canteens, limit)
}

func (tq txQueryer) EarliestMealDate(ctx context.Context) (
	model.Date, bool, error,
) {
	return EarliestMealDate(ctx, tq.Tx)
}

func (tq txQueryer) MarkDishesStale(
	ctx context.Context,
	date model.Date,
	canteen model.Canteen,
	dishes []model.Dish,
) (int64, error) {
	return MarkDishesStale(ctx, tq.Tx, date, canteen, dishes)
}

func (tq txQueryer) InsertDishes(
	ctx context.Context,
	date model.Date,
	canteen model.Canteen,
	dishes []model.Dish,
) error {
	return InsertDishes(ctx, tq.Tx, date, canteen, dishes)
}

func (tq txQueryer) RecordScrapes(
	ctx context.Context,
	date model.Date,
	canteens []model.Canteen,
	at time.Time,
) error {
	return RecordScrapes(ctx, tq.Tx, date, canteens, at)
}

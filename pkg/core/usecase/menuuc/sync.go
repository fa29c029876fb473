// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"context"
	"fmt"

	"github.com/upbmensa/mensaweb/pkg/core/log"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

// synchronize reconciles the freshly scraped dishes of one canteen
// against its persisted latest rows, inside the already open batch
// transaction. It computes the symmetric difference keyed by the
// dish identity (model.Dish.IdentityKey, not full structural
// equality): persisted dishes missing from the scrape are marked
// stale in one bulk update, scraped dishes missing from storage are
// created in one bulk insert, and dishes present in both sets are
// left untouched. No row is rewritten merely because nutrition
// values drifted; such dishes are only counted and logged.
//
// The operation is idempotent: re-running it after a successful
// commit yields an empty diff and zero writes. An empty scrape
// result stales every previously latest row, so the served menu
// correctly becomes empty.
func synchronize(
	ctx context.Context,
	q repo.MenusTxQueryer,
	date model.Date,
	canteen model.Canteen,
	scraped, persisted []model.Dish,
) error {
	scrapedByKey := make(map[string]*model.Dish, len(scraped))
	for i := range scraped {
		scrapedByKey[scraped[i].IdentityKey()] = &scraped[i]
	}
	persistedByKey := make(map[string]*model.Dish, len(persisted))
	for i := range persisted {
		persistedByKey[persisted[i].IdentityKey()] = &persisted[i]
	}

	var stale []model.Dish
	for key, d := range persistedByKey {
		if _, ok := scrapedByKey[key]; !ok {
			stale = append(stale, *d)
		}
	}
	var fresh []model.Dish
	nutritionDrift := 0
	for key, d := range scrapedByKey {
		kept, ok := persistedByKey[key]
		if !ok {
			fresh = append(fresh, *d)
			continue
		}
		if !kept.Nutrition.Equal(d.Nutrition) {
			nutritionDrift++
		}
	}
	if nutritionDrift > 0 {
		log.Debug(
			ctx, "ignoring nutrition drift of unchanged dishes",
			log.Valuer("canteen", canteen),
			log.Valuer("date", date),
			log.Int("dishes", nutritionDrift),
		)
	}
	if len(stale) == 0 && len(fresh) == 0 {
		return nil
	}
	log.Debug(
		ctx, "synchronizing dishes",
		log.Valuer("canteen", canteen),
		log.Valuer("date", date),
		log.Int("stale", len(stale)),
		log.Int("new", len(fresh)),
	)

	if len(stale) > 0 {
		_, err := q.MarkDishesStale(ctx, date, canteen, stale)
		if err != nil {
			return fmt.Errorf(
				"marking stale dishes of %s: %w", canteen, err,
			)
		}
	}
	if len(fresh) > 0 {
		if err := q.InsertDishes(ctx, date, canteen, fresh); err != nil {
			return fmt.Errorf(
				"inserting new dishes of %s: %w", canteen, err,
			)
		}
	}
	return nil
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"fmt"

	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

// Schema DDL of the menus storage. The meals table keeps one row per
// (date, canteen, dish) observation; superseded rows keep is_latest
// FALSE and are never deleted, forming the price/nutrition history.
// The canteens_scraped table is the append-only scrape audit whose
// per-(date, canteen) maximum timestamp drives the staleness policy.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS meals (
    id uuid PRIMARY KEY,
    date date NOT NULL,
    canteen text NOT NULL,
    name text NOT NULL,
    dish_type text NOT NULL,
    image_src text,
    price_students numeric(6, 2) NOT NULL,
    price_employees numeric(6, 2) NOT NULL,
    price_guests numeric(6, 2) NOT NULL,
    vegetarian boolean NOT NULL DEFAULT FALSE,
    vegan boolean NOT NULL DEFAULT FALSE,
    kjoules integer,
    proteins numeric(6, 2),
    carbohydrates numeric(6, 2),
    fats numeric(6, 2),
    is_latest boolean NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS meals_latest_idx
    ON meals (date, canteen) WHERE is_latest;
CREATE INDEX IF NOT EXISTS meals_name_idx
    ON meals (LOWER(name)) WHERE is_latest;
CREATE TABLE IF NOT EXISTS canteens_scraped (
    scraped_for date NOT NULL,
    canteen text NOT NULL,
    scraped_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS canteens_scraped_idx
    ON canteens_scraped (scraped_for, canteen);
`

// InitSchema creates the meals and canteens_scraped tables and their
// indices within the given transaction, so a failed initialization
// leaves no partial schema behind. Statements are idempotent and may
// be re-run against an existing database.
func InitSchema(ctx context.Context, tx repo.Tx) error {
	if _, err := tx.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("creating menus schema: %w", err)
	}
	return nil
}

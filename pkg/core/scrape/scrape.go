// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scrape declares the scraper port of the core layer.
// The actual HTTP request and HTML selector logic live in an adapter
// (see pkg/adapter/scrape/stwpb); the core only depends on this
// interface, so the refresh orchestrator can be exercised with fake
// scrapers in tests.
package scrape

import (
	"context"
	"fmt"

	"github.com/upbmensa/mensaweb/pkg/core/model"
)

// Scraper fetches the list of dishes which a canteen offers on a
// given day. Implementations are expected to construct dish identity
// deterministically from the source document and to return dishes in
// normalized form (see model.Dish.Normalize).
// A returned error is scoped to the requested (date, canteen) pair;
// it never corrupts persisted state and the pair is simply retried on
// the next staleness check.
type Scraper interface {
	Scrape(
		ctx context.Context, date model.Date, canteen model.Canteen,
	) ([]model.Dish, error)
}

// Error describes a failed scrape of one (date, canteen) pair.
type Error struct {
	Date    model.Date
	Canteen model.Canteen
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf(
		"scraping %s for %s: %s", e.Canteen, e.Date, e.Err,
	)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"sync"

	"github.com/upbmensa/mensaweb/pkg/core/model"
)

type cacheKey struct {
	date    model.Date
	canteen model.Canteen
}

// menuCache is the short-lived in-memory menu store which shields the
// scrape path from bursty read traffic. It maps (date, canteen) to a
// previously assembled menu snapshot behind a reader/writer lock, so
// many readers proceed concurrently and writers take the lock only
// for insert, invalidation, and eviction.
//
// The cache is a pure read accelerator: it never judges freshness
// itself. Entries are dropped when the refresh orchestrator writes
// new rows for their key, and entries for days that have passed are
// swept opportunistically on the read path once the soft size limit
// is exceeded (no background timer).
type menuCache struct {
	mu      sync.RWMutex
	limit   int
	entries map[cacheKey]model.Menu
}

func newMenuCache(limit int) *menuCache {
	return &menuCache{
		limit:   limit,
		entries: make(map[cacheKey]model.Menu),
	}
}

func (mc *menuCache) get(
	date model.Date, canteen model.Canteen,
) (model.Menu, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	m, ok := mc.entries[cacheKey{date: date, canteen: canteen}]
	return m, ok
}

func (mc *menuCache) put(
	date model.Date, canteen model.Canteen, m model.Menu,
) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries[cacheKey{date: date, canteen: canteen}] = m
}

func (mc *menuCache) invalidate(
	date model.Date, canteens []model.Canteen,
) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, c := range canteens {
		delete(mc.entries, cacheKey{date: date, canteen: c})
	}
}

// sweepIfOverLimit removes every entry whose date lies strictly
// before today, once the cache has grown past its soft size limit.
// It runs inline on the read path.
func (mc *menuCache) sweepIfOverLimit(today model.Date) {
	mc.mu.RLock()
	tooLarge := len(mc.entries) > mc.limit
	mc.mu.RUnlock()
	if !tooLarge {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for k := range mc.entries {
		if k.date.Before(today) {
			delete(mc.entries, k)
		}
	}
}

func (mc *menuCache) size() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menuuc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

var testNow = time.Date(2025, time.March, 12, 12, 0, 0, 0, time.UTC)

func newTestUseCase(
	t *testing.T, st *memStore, sc *fakeScraper,
) *UseCase {
	t.Helper()
	uc, err := New(
		&fakePool{}, st, sc,
		withClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)
	return uc
}

func TestRefreshPersistsScrapedDishes(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	sc := &fakeScraper{menus: map[model.Canteen][]model.Dish{
		model.CanteenForum: {dish("Schnitzel", 280)},
		model.CanteenZM2:   {dish("Curry", 220)},
	}}
	uc := newTestUseCase(t, st, sc)

	canteens := []model.Canteen{model.CanteenForum, model.CanteenZM2}
	refreshed, err := uc.Refresh(ctx, date, canteens, false)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, 2, sc.scrapes)
	assert.Equal(t, 2, st.inserted)
	assert.Len(t, st.audits, 2, "both canteens must be audited")
}

func TestRefreshIsNoOpWhileFresh(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	sc := &fakeScraper{menus: map[model.Canteen][]model.Dish{
		model.CanteenForum: {dish("Schnitzel", 280)},
	}}
	uc := newTestUseCase(t, st, sc)

	canteens := []model.Canteen{model.CanteenForum}
	refreshed, err := uc.Refresh(ctx, date, canteens, false)
	require.NoError(t, err)
	require.True(t, refreshed)

	refreshed, err = uc.Refresh(ctx, date, canteens, false)
	require.NoError(t, err)
	assert.False(t, refreshed, "audited canteen is fresh for 8h")
	assert.Equal(t, 1, sc.scrapes, "fresh canteen must not be scraped")

	refreshed, err = uc.Refresh(ctx, date, canteens, true)
	require.NoError(t, err)
	assert.True(t, refreshed, "forced refresh bypasses freshness")
	assert.Equal(t, 2, sc.scrapes)
}

func TestRefreshOutsideHorizon(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	sc := &fakeScraper{}
	uc := newTestUseCase(t, st, sc)

	canteens := []model.Canteen{model.CanteenForum}
	far := model.DateOf(testNow).AddDays(60)
	refreshed, err := uc.Refresh(ctx, far, canteens, true)
	require.NoError(t, err)
	assert.False(t, refreshed)

	past := model.DateOf(testNow).AddDays(-2)
	refreshed, err = uc.Refresh(ctx, past, canteens, false)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, 0, sc.scrapes)
}

func TestRefreshSkipsFailedScrapes(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	sc := &fakeScraper{
		menus: map[model.Canteen][]model.Dish{
			model.CanteenForum: {dish("Schnitzel", 280)},
		},
		failing: map[model.Canteen]bool{model.CanteenZM2: true},
	}
	uc := newTestUseCase(t, st, sc)

	canteens := []model.Canteen{model.CanteenForum, model.CanteenZM2}
	refreshed, err := uc.Refresh(ctx, date, canteens, false)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Len(t, st.audits, 1, "failed canteen must not be audited")
	_, ok := st.audits[mealKey{date, model.CanteenForum}]
	assert.True(t, ok)

	// The failed canteen stays due and is retried next time.
	refreshed, err = uc.Refresh(ctx, date, canteens, false)
	require.NoError(t, err)
	assert.False(t, refreshed, "ZM2 still fails, Forum is fresh")
	assert.Equal(t, 3, sc.scrapes)
}

func TestRefreshAllScrapesFailed(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	sc := &fakeScraper{
		failing: map[model.Canteen]bool{model.CanteenForum: true},
	}
	uc := newTestUseCase(t, st, sc)

	refreshed, err := uc.Refresh(
		ctx, date, []model.Canteen{model.CanteenForum}, false,
	)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Empty(t, st.audits)
}

func TestRefreshWriteFailureAbortsBatch(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	st.failWrites = true
	sc := &fakeScraper{menus: map[model.Canteen][]model.Dish{
		model.CanteenForum: {dish("Schnitzel", 280)},
	}}
	uc := newTestUseCase(t, st, sc)

	refreshed, err := uc.Refresh(
		ctx, date, []model.Canteen{model.CanteenForum}, false,
	)
	assert.Error(t, err)
	assert.False(t, refreshed)
}

func TestMenuCombinesCanteens(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	shared := dish("Schnitzel", 280)
	forumOnly := dish("Pudding", 80)
	zm2Dish := shared
	zm2Dish.Canteens = []model.Canteen{model.CanteenZM2}
	sc := &fakeScraper{menus: map[model.Canteen][]model.Dish{
		model.CanteenForum: {shared, forumOnly},
		model.CanteenZM2:   {zm2Dish},
	}}
	uc := newTestUseCase(t, st, sc)

	canteens := []model.Canteen{model.CanteenForum, model.CanteenZM2}
	m, err := uc.Menu(ctx, date, canteens, false)
	require.NoError(t, err)
	require.Len(t, m.MainDishes, 2)
	assert.Equal(t, "Pudding", m.MainDishes[0].Name)
	assert.Equal(t, "Schnitzel", m.MainDishes[1].Name)
	assert.Equal(
		t,
		[]model.Canteen{model.CanteenForum, model.CanteenZM2},
		m.MainDishes[1].Canteens,
	)
}

func TestMenuServesCacheWithoutRescrape(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	sc := &fakeScraper{menus: map[model.Canteen][]model.Dish{
		model.CanteenForum: {dish("Schnitzel", 280)},
	}}
	uc := newTestUseCase(t, st, sc)

	canteens := []model.Canteen{model.CanteenForum}
	_, err := uc.Menu(ctx, date, canteens, false)
	require.NoError(t, err)
	scrapesAfterFirst := sc.scrapes

	m, err := uc.Menu(ctx, date, canteens, false)
	require.NoError(t, err)
	assert.Equal(t, sc.scrapes, scrapesAfterFirst)
	assert.False(t, m.IsEmpty())
}

func TestMenuNoRefreshServesPersistedState(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	st.dishes[mealKey{date, model.CanteenForum}] = []model.Dish{
		dish("Schnitzel", 280),
	}
	sc := &fakeScraper{}
	uc := newTestUseCase(t, st, sc)

	m, err := uc.Menu(
		ctx, date, []model.Canteen{model.CanteenForum}, true,
	)
	require.NoError(t, err)
	assert.Equal(t, 0, sc.scrapes)
	require.Len(t, m.MainDishes, 1)
}

func TestNutritionNotFound(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	uc := newTestUseCase(t, st, &fakeScraper{})

	_, err := uc.Nutrition(ctx, "Schnitzel", nil)
	assert.Error(t, err)
}

func TestEarliestMealDateIsMemoized(t *testing.T) {
	ctx := context.Background()
	date := model.DateOf(testNow)
	st := newMemStore()
	st.dishes[mealKey{date, model.CanteenForum}] = []model.Dish{
		dish("Schnitzel", 280),
	}
	uc := newTestUseCase(t, st, &fakeScraper{})

	got, err := uc.EarliestMealDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, date, got)

	// Rows added afterwards must not move the memoized answer.
	earlier := date.AddDays(-10)
	st.dishes[mealKey{earlier, model.CanteenForum}] = []model.Dish{
		dish("Suppe", 150),
	}
	got, err = uc.EarliestMealDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, date, got)
}

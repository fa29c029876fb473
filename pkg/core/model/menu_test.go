// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

func sampleDish(
	name string, cents int64, t model.DishType, cs ...model.Canteen,
) model.Dish {
	d := model.Dish{
		Name: name,
		Prices: model.DishPrices{
			Students:  decimal.New(cents, -2),
			Employees: decimal.New(cents+130, -2),
			Guests:    decimal.New(cents+240, -2),
		},
		Type:     t,
		Canteens: cs,
	}
	return d.Normalize()
}

func TestNewMenuGroupsAndSorts(t *testing.T) {
	date := model.Date{Year: 2025, Month: 3, Day: 12}
	m := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Pudding", 80, model.DishTypeDessert, model.CanteenForum,
		),
		sampleDish(
			"Zucchini", 150, model.DishTypeMain, model.CanteenForum,
		),
		sampleDish(
			"Auflauf", 220, model.DishTypeMain, model.CanteenForum,
		),
		sampleDish(
			"Reis", 90, model.DishTypeSide, model.CanteenForum,
		),
	})
	require.Len(t, m.MainDishes, 2)
	assert.Equal(t, "Auflauf", m.MainDishes[0].Name)
	assert.Equal(t, "Zucchini", m.MainDishes[1].Name)
	require.Len(t, m.SideDishes, 1)
	require.Len(t, m.Desserts, 1)
	assert.False(t, m.IsEmpty())
	assert.Len(t, m.Dishes(), 4)
}

func TestMergedCollapsesEqualDishes(t *testing.T) {
	date := model.Date{Year: 2025, Month: 3, Day: 12}
	forum := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Schnitzel", 280, model.DishTypeMain, model.CanteenForum,
		),
		sampleDish(
			"Salat", 120, model.DishTypeSide, model.CanteenForum,
		),
	})
	academica := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Schnitzel", 280, model.DishTypeMain,
			model.CanteenAcademica,
		),
		sampleDish(
			"Brokkoli", 110, model.DishTypeSide,
			model.CanteenAcademica,
		),
	})
	m := forum.Merged(academica)
	require.Len(t, m.MainDishes, 1)
	assert.Equal(
		t,
		[]model.Canteen{model.CanteenForum, model.CanteenAcademica},
		m.MainDishes[0].Canteens,
	)
	require.Len(t, m.SideDishes, 2)
	assert.Equal(t, "Brokkoli", m.SideDishes[0].Name)
	assert.Equal(t, "Salat", m.SideDishes[1].Name)
}

func TestMergedKeepsDifferentlyPricedDishesApart(t *testing.T) {
	date := model.Date{Year: 2025, Month: 3, Day: 12}
	forum := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Schnitzel", 280, model.DishTypeMain, model.CanteenForum,
		),
	})
	zm2 := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Schnitzel", 310, model.DishTypeMain, model.CanteenZM2,
		),
	})
	m := forum.Merged(zm2)
	assert.Len(t, m.MainDishes, 2)
}

func TestMergedIsAssociativeAndCommutative(t *testing.T) {
	date := model.Date{Year: 2025, Month: 3, Day: 12}
	m1 := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Schnitzel", 280, model.DishTypeMain, model.CanteenForum,
		),
		sampleDish(
			"Salat", 120, model.DishTypeSide, model.CanteenForum,
		),
	})
	m2 := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Schnitzel", 280, model.DishTypeMain,
			model.CanteenAcademica,
		),
		sampleDish(
			"Pudding", 80, model.DishTypeDessert,
			model.CanteenAcademica,
		),
	})
	m3 := model.NewMenu(date, []model.Dish{
		// Same name as m1's Schnitzel but a distinct identity.
		sampleDish(
			"Schnitzel", 310, model.DishTypeMain, model.CanteenZM2,
		),
		sampleDish(
			"Salat", 120, model.DishTypeSide, model.CanteenZM2,
		),
	})

	left := m1.Merged(m2).Merged(m3)
	right := m1.Merged(m2.Merged(m3))
	assert.Equal(t, left, right)

	// Commutativity holds for the dish set; same-named dishes with
	// distinct identities may swap places within their group.
	ab := m1.Merged(m3)
	ba := m3.Merged(m1)
	assert.ElementsMatch(t, ab.MainDishes, ba.MainDishes)
	assert.ElementsMatch(t, ab.SideDishes, ba.SideDishes)
	assert.ElementsMatch(t, ab.Desserts, ba.Desserts)
}

func TestMergedWithEmptyMenuIsIdentity(t *testing.T) {
	date := model.Date{Year: 2025, Month: 3, Day: 12}
	forum := model.NewMenu(date, []model.Dish{
		sampleDish(
			"Schnitzel", 280, model.DishTypeMain, model.CanteenForum,
		),
	})
	m := forum.Merged(model.Menu{Date: date})
	assert.Equal(t, forum, m)
}

func TestSameAsIgnoresNutritionAndImage(t *testing.T) {
	kj := 2841
	img := "https://example.org/a.jpg"
	a := sampleDish(
		"Schnitzel", 280, model.DishTypeMain, model.CanteenForum,
	)
	b := sampleDish(
		"Schnitzel", 280, model.DishTypeMain, model.CanteenZM2,
	)
	b.Nutrition.KJoule = &kj
	b.ImageSrc = &img
	assert.True(t, a.SameAs(&b))
	assert.Equal(t, a.IdentityKey(), b.IdentityKey())

	c := b
	c.Vegan = true
	c = c.Normalize()
	assert.False(t, a.SameAs(&c))
	assert.NotEqual(t, a.IdentityKey(), c.IdentityKey())
}

func TestSameAsComparesPricesNumerically(t *testing.T) {
	a := sampleDish(
		"Schnitzel", 280, model.DishTypeMain, model.CanteenForum,
	)
	b := a
	b.Prices.Students = decimal.New(28, -1) // 2.8 == 2.80
	assert.True(t, a.SameAs(&b))
	assert.Equal(t, a.IdentityKey(), b.IdentityKey())
}

func TestNormalizeSortsCanteensAndImpliesVegetarian(t *testing.T) {
	d := model.Dish{
		Name:  "Curry",
		Vegan: true,
		Canteens: []model.Canteen{
			model.CanteenZM2,
			model.CanteenForum,
			model.CanteenZM2,
		},
	}
	d = d.Normalize()
	assert.True(t, d.Vegetarian)
	assert.Equal(
		t,
		[]model.Canteen{model.CanteenForum, model.CanteenZM2},
		d.Canteens,
	)
}

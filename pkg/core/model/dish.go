// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// DishPrices holds the three per-audience prices of a dish in euros.
// Prices are decimals (never floats) and are normalized to two
// fractional digits before being compared, persisted, or served.
type DishPrices struct {
	Students  decimal.Decimal `json:"students"`
	Employees decimal.Decimal `json:"employees"`
	Guests    decimal.Decimal `json:"guests"`
}

// Normalize returns a copy of p with every price rounded to two
// fractional digits.
func (p DishPrices) Normalize() DishPrices {
	return DishPrices{
		Students:  p.Students.Round(2),
		Employees: p.Employees.Round(2),
		Guests:    p.Guests.Round(2),
	}
}

// Equal reports whether p and o represent the same three prices.
// Decimal values are compared numerically, so 3.5 equals 3.50.
func (p DishPrices) Equal(o DishPrices) bool {
	return p.Students.Equal(o.Students) &&
		p.Employees.Equal(o.Employees) &&
		p.Guests.Equal(o.Guests)
}

// NutritionValues holds the optional per-portion nutrition data of a
// dish. A nil field means the feed did not publish that value.
// Nutrition is deliberately excluded from the dish identity used for
// diffing (see Dish.SameAs).
type NutritionValues struct {
	KJoule  *int             `json:"kjoule"`
	Protein *decimal.Decimal `json:"protein"`
	Carbs   *decimal.Decimal `json:"carbs"`
	Fat     *decimal.Decimal `json:"fat"`
}

// Normalize returns a copy of n with the decimal fields rounded to
// two fractional digits.
func (n NutritionValues) Normalize() NutritionValues {
	round := func(d *decimal.Decimal) *decimal.Decimal {
		if d == nil {
			return nil
		}
		r := d.Round(2)
		return &r
	}
	return NutritionValues{
		KJoule:  n.KJoule,
		Protein: round(n.Protein),
		Carbs:   round(n.Carbs),
		Fat:     round(n.Fat),
	}
}

// Equal reports whether n and o carry the same nutrition data,
// treating nil fields as equal only to nil fields.
func (n NutritionValues) Equal(o NutritionValues) bool {
	intEq := func(a, b *int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return *a == *b
	}
	decEq := func(a, b *decimal.Decimal) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Equal(*b)
	}
	return intEq(n.KJoule, o.KJoule) &&
		decEq(n.Protein, o.Protein) &&
		decEq(n.Carbs, o.Carbs) &&
		decEq(n.Fat, o.Fat)
}

// Dish models a single offered dish, either as freshly scraped from
// the feed or as reconstructed from storage. It is a value object and
// is not mutated after construction, except for the Canteens list
// which grows when equal dishes from several canteens are merged into
// one combined menu entry.
type Dish struct {
	Name       string          `json:"name"`
	ImageSrc   *string         `json:"imageSrc"`
	Prices     DishPrices      `json:"price"`
	Vegetarian bool            `json:"vegetarian"`
	Vegan      bool            `json:"vegan"`
	Type       DishType        `json:"-"`
	Nutrition  NutritionValues `json:"-"`
	Canteens   []Canteen       `json:"canteens"`
}

// Normalize rounds the price and nutrition decimals, sorts the
// canteen list, and enforces that a vegan dish is also flagged
// vegetarian. It returns the normalized copy.
func (d Dish) Normalize() Dish {
	d.Prices = d.Prices.Normalize()
	d.Nutrition = d.Nutrition.Normalize()
	d.Vegetarian = d.Vegetarian || d.Vegan
	slices.Sort(d.Canteens)
	d.Canteens = slices.Compact(d.Canteens)
	return d
}

// SameAs reports whether d and o are the same dish for refresh and
// merge purposes. Identity covers the name, the three prices, and the
// vegetarian/vegan flags; it excludes nutrition values, the image
// source, and the canteen list. A dish whose nutrition data changed
// while everything else stayed put is therefore still "the same dish"
// and its persisted row is left untouched by the synchronizer.
func (d *Dish) SameAs(o *Dish) bool {
	return d.Name == o.Name &&
		d.Prices.Equal(o.Prices) &&
		d.Vegetarian == o.Vegetarian &&
		d.Vegan == o.Vegan
}

// IdentityKey derives a stable string key from exactly the SameAs
// fields, so dish sets can be diffed through a keyed map instead of
// full-value hashing.
func (d *Dish) IdentityKey() string {
	return fmt.Sprintf(
		"%s|%s|%s|%s|%t|%t",
		d.Name,
		d.Prices.Students.StringFixed(2),
		d.Prices.Employees.StringFixed(2),
		d.Prices.Guests.StringFixed(2),
		d.Vegetarian,
		d.Vegan,
	)
}

// MergeCanteens unions the canteen list of o into d, keeping the
// list sorted and free of duplicates.
func (d *Dish) MergeCanteens(o *Dish) {
	d.Canteens = append(d.Canteens, o.Canteens...)
	slices.Sort(d.Canteens)
	d.Canteens = slices.Compact(d.Canteens)
}

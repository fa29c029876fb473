// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"sort"
)

// Menu aggregates the dishes which are served on a single day,
// grouped by dish type and sorted by name within each group.
// A Menu may cover one canteen or, after merging, several canteens;
// each dish then carries the sorted list of canteens offering it.
// Menus handed to external consumers are always fully constructed.
type Menu struct {
	Date       Date   `json:"date"`
	MainDishes []Dish `json:"mainDishes"`
	SideDishes []Dish `json:"sideDishes"`
	Desserts   []Dish `json:"desserts"`
}

// NewMenu builds a menu for the given day from an unordered dish
// list, grouping by dish type and sorting each group by name.
func NewMenu(date Date, dishes []Dish) Menu {
	m := Menu{Date: date}
	for _, d := range dishes {
		m.add(d)
	}
	m.sortGroups()
	return m
}

// IsEmpty reports whether the menu contains no dishes at all.
func (m *Menu) IsEmpty() bool {
	return len(m.MainDishes) == 0 &&
		len(m.SideDishes) == 0 &&
		len(m.Desserts) == 0
}

// Dishes returns all dishes of the menu in group order.
func (m *Menu) Dishes() []Dish {
	all := make(
		[]Dish, 0,
		len(m.MainDishes)+len(m.SideDishes)+len(m.Desserts),
	)
	all = append(all, m.MainDishes...)
	all = append(all, m.SideDishes...)
	all = append(all, m.Desserts...)
	return all
}

// Merged combines m and o into one logical menu. For each dish-type
// group, dishes of o which are SameAs an existing dish only extend
// its canteen list; all others are appended as new entries. The
// operation is associative and commutative with respect to the
// resulting dish set, and merging with an empty menu returns a menu
// equal to m. Groups are re-sorted by name for deterministic output.
func (m Menu) Merged(o Menu) Menu {
	m.MainDishes = mergeGroup(m.MainDishes, o.MainDishes)
	m.SideDishes = mergeGroup(m.SideDishes, o.SideDishes)
	m.Desserts = mergeGroup(m.Desserts, o.Desserts)
	m.sortGroups()
	return m
}

func mergeGroup(a, b []Dish) []Dish {
	for i := range b {
		d := &b[i]
		merged := false
		for j := range a {
			if a[j].SameAs(d) {
				a[j].MergeCanteens(d)
				merged = true
				break
			}
		}
		if !merged {
			a = append(a, *d)
		}
	}
	return a
}

func (m *Menu) add(d Dish) {
	switch d.Type {
	case DishTypeSide:
		m.SideDishes = append(m.SideDishes, d)
	case DishTypeDessert:
		m.Desserts = append(m.Desserts, d)
	default:
		m.MainDishes = append(m.MainDishes, d)
	}
}

func (m *Menu) sortGroups() {
	byName := func(g []Dish) {
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].Name < g[j].Name
		})
	}
	byName(m.MainDishes)
	byName(m.SideDishes)
	byName(m.Desserts)
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stwpb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

type ParseTestSuite struct {
	suite.Suite

	Dishes []model.Dish
}

func TestParseTestSuite(t *testing.T) {
	suite.Run(t, &ParseTestSuite{})
}

func (pts *ParseTestSuite) SetupSuite() {
	page, err := os.ReadFile("testdata/forum.html")
	pts.Require().NoError(err, "failed to read forum.html file")
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			pts.Equal(http.MethodPost, r.Method)
			pts.Equal(
				"/gastronomie/speiseplaene/forum/", r.URL.Path,
			)
			pts.Equal(
				"2024-05-21",
				r.URL.Query().Get("tx_pamensa_mensa[date]"),
			)
			_, err := w.Write(page)
			pts.NoError(err)
		},
	))
	defer srv.Close()
	s, err := New(WithBaseURL(srv.URL))
	pts.Require().NoError(err, "failed to instantiate scraper")
	date := model.Date{Year: 2024, Month: 5, Day: 21}
	pts.Dishes, err = s.Scrape(
		context.Background(), date, model.CanteenForum,
	)
	pts.Require().NoError(err, "failed to scrape test server")
}

func (pts *ParseTestSuite) TestDishCountAndOrder() {
	names := make([]string, 0, len(pts.Dishes))
	for _, d := range pts.Dishes {
		names = append(names, d.Name)
	}
	pts.Equal([]string{
		"Schnitzel mit Pommes",
		"Gemüsecurry mit Reis",
		"Kartoffelgratin",
		"Vanillepudding",
	}, names)
}

func (pts *ParseTestSuite) TestMainDish() {
	d := pts.Dishes[0]
	pts.Equal(model.DishTypeMain, d.Type)
	pts.False(d.Vegetarian)
	pts.False(d.Vegan)
	pts.True(d.Prices.Students.Equal(decimal.New(280, -2)))
	pts.True(d.Prices.Employees.Equal(decimal.New(410, -2)))
	pts.True(d.Prices.Guests.Equal(decimal.New(520, -2)))
	pts.Require().NotNil(d.ImageSrc)
	pts.Contains(*d.ImageSrc, "/fileadmin/speiseplan/schnitzel.jpg")
}

func (pts *ParseTestSuite) TestNutritionValues() {
	n := pts.Dishes[0].Nutrition
	pts.Require().NotNil(n.KJoule)
	pts.Equal(2841, *n.KJoule)
	pts.Require().NotNil(n.Protein)
	pts.True(n.Protein.Equal(decimal.New(284, -1)))
	pts.Require().NotNil(n.Carbs)
	pts.True(n.Carbs.Equal(decimal.New(612, -1)))
	pts.Require().NotNil(n.Fat)
	pts.True(n.Fat.Equal(decimal.New(319, -1)))
}

func (pts *ParseTestSuite) TestPartialNutritionValues() {
	n := pts.Dishes[1].Nutrition
	pts.Require().NotNil(n.KJoule)
	pts.Equal(1754, *n.KJoule)
	pts.NotNil(n.Protein)
	pts.Nil(n.Carbs)
	pts.Nil(n.Fat)
}

func (pts *ParseTestSuite) TestVeganImpliesVegetarian() {
	d := pts.Dishes[1]
	pts.True(d.Vegan)
	pts.True(d.Vegetarian)
	pts.Nil(d.ImageSrc)
}

func (pts *ParseTestSuite) TestSideAndDessertCategories() {
	pts.Equal(model.DishTypeSide, pts.Dishes[2].Type)
	pts.True(pts.Dishes[2].Vegetarian)
	pts.False(pts.Dishes[2].Vegan)
	pts.Equal(model.DishTypeDessert, pts.Dishes[3].Type)
}

func (pts *ParseTestSuite) TestUnparseablePriceFallsBack() {
	d := pts.Dishes[3]
	pts.True(d.Prices.Students.Equal(decimal.New(80, -2)))
	pts.True(d.Prices.Guests.Equal(fallbackPrice))
}

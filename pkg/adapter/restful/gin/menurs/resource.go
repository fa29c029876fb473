// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package menurs realizes the menus resource, adapting the menus use
// case with the REST APIs for combined menus, nutrition values, price
// histories, and the service metadata.
package menurs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/upbmensa/mensaweb/pkg/adapter/restful/gin/serdser"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/usecase/menuuc"
)

// apiVersion is reported by the index endpoint.
const apiVersion = "1.0.0"

const apiDescription = "Daily menus of the Studierendenwerk " +
	"Paderborn canteens"

type resource struct {
	menus *menuuc.UseCase
}

// Register instantiates a resource adapting the menus use case
// instance with the relevant REST APIs including:
//  1. GET request to /api/mensa/v1/
//     in order to query the API version and supported canteens.
//  2. GET request to /api/mensa/v1/menu/:canteens
//     in order to query the combined menu of one or more canteens,
//     accepting date and noUpdate query parameters.
//  3. GET request to /api/mensa/v1/nutrition/:name
//     in order to query the nutrition values of a dish by its name,
//     accepting a date query parameter.
//  4. GET request to /api/mensa/v1/price-history/:name
//     in order to query the price history of a dish by its name,
//     accepting canteens and limit query parameters.
//  5. GET request to /api/mensa/v1/metadata/earliest-meal-date
//     in order to query the earliest day with recorded meals.
func Register(r *gin.RouterGroup, menus *menuuc.UseCase) {
	rs := &resource{menus: menus}
	r.GET("/", rs.Index)
	r.GET("menu/:canteens", rs.GetMenu)
	r.GET("nutrition/:name", rs.GetNutrition)
	r.GET("price-history/:name", rs.GetPriceHistory)
	r.GET("metadata/earliest-meal-date", rs.GetEarliestMealDate)
}

type indexResp struct {
	Version           string   `json:"version"`
	Description       string   `json:"description"`
	SupportedCanteens []string `json:"supportedCanteens"`
}

func (rs *resource) Index(c *gin.Context) {
	all := model.AllCanteens()
	ids := make([]string, 0, len(all))
	for _, canteen := range all {
		ids = append(ids, canteen.Identifier())
	}
	c.JSON(http.StatusOK, indexResp{
		Version:           apiVersion,
		Description:       apiDescription,
		SupportedCanteens: ids,
	})
}

func (rs *resource) GetMenu(c *gin.Context) {
	req := rs.DserMenuReq(c)
	if req == nil {
		return
	}
	menu, err := rs.menus.Menu(c, req.Date, req.Canteens, req.NoUpdate)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (rs *resource) GetNutrition(c *gin.Context) {
	req := rs.DserNutritionReq(c)
	if req == nil {
		return
	}
	n, err := rs.menus.Nutrition(c, req.Name, req.Date)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (rs *resource) GetPriceHistory(c *gin.Context) {
	req := rs.DserPriceHistoryReq(c)
	if req == nil {
		return
	}
	points, err := rs.menus.PriceHistory(
		c, req.Name, req.Canteens, req.Limit,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if len(req.Canteens) == 1 {
		flat := make(map[string]model.DishPrices, len(points))
		for _, p := range points {
			flat[p.Date.String()] = p.Prices
		}
		c.JSON(http.StatusOK, flat)
		return
	}
	byCanteen := make(map[string]map[string]model.DishPrices)
	for _, p := range points {
		id := p.Canteen.Identifier()
		if byCanteen[id] == nil {
			byCanteen[id] = make(map[string]model.DishPrices)
		}
		byCanteen[id][p.Date.String()] = p.Prices
	}
	c.JSON(http.StatusOK, byCanteen)
}

func (rs *resource) GetEarliestMealDate(c *gin.Context) {
	date, err := rs.menus.EarliestMealDate(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date})
}

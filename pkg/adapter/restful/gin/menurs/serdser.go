// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menurs

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/upbmensa/mensaweb/pkg/adapter/restful/gin/serdser"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

type rawMenuReq struct {
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	NoUpdate bool   `form:"noUpdate"`
}

type menuReq struct {
	Date     model.Date
	Canteens []model.Canteen
	NoUpdate bool
}

func (rs *resource) DserMenuReq(c *gin.Context) *menuReq {
	req := &rawMenuReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil
	}
	var errs map[string][]string
	defer func() {
		if errs != nil {
			c.JSON(http.StatusBadRequest, errs)
		}
	}()
	val := &menuReq{NoUpdate: req.NoUpdate}
	var err error
	val.Canteens, err = parseCanteens(c.Param("canteens"))
	if !serdser.Assert(&errs, err == nil, "canteens", errMsg(err)) {
		return nil
	}
	if req.Date == "" {
		val.Date = model.DateOf(time.Now())
	} else {
		val.Date, err = model.ParseDate(req.Date)
		if !serdser.Assert(&errs, err == nil, "date", errMsg(err)) {
			return nil
		}
	}
	return val
}

type rawNutritionReq struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

type nutritionReq struct {
	Name string
	Date *model.Date
}

func (rs *resource) DserNutritionReq(c *gin.Context) *nutritionReq {
	req := &rawNutritionReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil
	}
	var errs map[string][]string
	defer func() {
		if errs != nil {
			c.JSON(http.StatusBadRequest, errs)
		}
	}()
	val := &nutritionReq{Name: c.Param("name")}
	if !serdser.Assert(
		&errs, val.Name != "", "name",
		"Path param name may not be empty.",
	) {
		return nil
	}
	if req.Date != "" {
		date, err := model.ParseDate(req.Date)
		if !serdser.Assert(&errs, err == nil, "date", errMsg(err)) {
			return nil
		}
		val.Date = &date
	}
	return val
}

type rawPriceHistoryReq struct {
	Canteens string `form:"canteens"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
}

type priceHistoryReq struct {
	Name     string
	Canteens []model.Canteen
	Limit    int
}

func (rs *resource) DserPriceHistoryReq(
	c *gin.Context,
) *priceHistoryReq {
	req := &rawPriceHistoryReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil
	}
	var errs map[string][]string
	defer func() {
		if errs != nil {
			c.JSON(http.StatusBadRequest, errs)
		}
	}()
	val := &priceHistoryReq{Name: c.Param("name"), Limit: req.Limit}
	if !serdser.Assert(
		&errs, val.Name != "", "name",
		"Path param name may not be empty.",
	) {
		return nil
	}
	if req.Canteens != "" {
		var err error
		val.Canteens, err = parseCanteens(req.Canteens)
		if !serdser.Assert(&errs, err == nil, "canteens", errMsg(err)) {
			return nil
		}
	}
	return val
}

// parseCanteens splits a comma-separated list of canteen identifiers.
// The whole list is checked before reporting, so the error names every
// invalid identifier at once.
func parseCanteens(s string) ([]model.Canteen, error) {
	parts := strings.Split(s, ",")
	canteens := make([]model.Canteen, 0, len(parts))
	var invalid []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		canteen, err := model.ParseCanteen(part)
		if err != nil {
			invalid = append(invalid, part)
			continue
		}
		canteens = append(canteens, canteen)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf(
			"unknown canteen identifiers: %s",
			strings.Join(invalid, ", "),
		)
	}
	return canteens, nil
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

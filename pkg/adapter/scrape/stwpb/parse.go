// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stwpb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

// The menu plan page renders one table per dish category. Desserts
// live in the historically named "soups" table.
var categories = []struct {
	tbodySelector string
	dishType      model.DishType
}{
	{"table.table-dishes.main-dishes > tbody", model.DishTypeMain},
	{"table.table-dishes.side-dishes > tbody", model.DishTypeSide},
	{"table.table-dishes.soups > tbody", model.DishTypeDessert},
}

const (
	itemSelector       = "tr.odd > td.description > div.row"
	detailsSelector    = "tr.even > td.more > div.ingredients-list"
	nameSelector       = ".desc h4"
	imageSelector      = ".img img"
	priceSelector      = ".desc .price"
	extrasSelector     = ".desc .buttons > *"
	nutritionsSelector = ".nutritions > p"
)

// fallbackPrice substitutes prices whose value cell cannot be parsed,
// keeping the dish visible while making the bogus price obvious.
var fallbackPrice = decimal.New(99999, -2)

func parseDishes(
	doc *goquery.Document, baseURL string,
) ([]model.Dish, error) {
	var dishes []model.Dish
	for _, cat := range categories {
		tbody := doc.Find(cat.tbodySelector).First()
		if tbody.Length() == 0 {
			return nil, fmt.Errorf(
				"no dish table matches selector %q", cat.tbodySelector,
			)
		}
		items := tbody.Find(itemSelector)
		details := tbody.Find(detailsSelector)
		for i := 0; i < items.Length() && i < details.Length(); i++ {
			d, ok := parseDish(
				items.Eq(i), details.Eq(i), cat.dishType, baseURL,
			)
			if !ok {
				continue
			}
			dishes = append(dishes, d)
		}
	}
	return dishes, nil
}

// parseDish extracts one dish from its description row and the
// accompanying details row. Rows without a name or with a missing
// price label are skipped since they are layout artifacts rather
// than dishes.
func parseDish(
	item, details *goquery.Selection,
	dishType model.DishType,
	baseURL string,
) (model.Dish, bool) {
	name := strings.TrimSpace(item.Find(nameSelector).First().Text())
	if name == "" {
		return model.Dish{}, false
	}
	var imageSrc *string
	if src, ok := item.Find(imageSelector).First().Attr("src"); ok {
		abs := baseURL + "/" + strings.TrimPrefix(src, "/")
		imageSrc = &abs
	}
	prices, ok := parsePrices(item)
	if !ok {
		return model.Dish{}, false
	}
	var vegetarian, vegan bool
	item.Find(extrasSelector).Each(
		func(_ int, extra *goquery.Selection) {
			switch extra.AttrOr("title", "") {
			case "vegetarisch":
				vegetarian = true
			case "vegan":
				vegan = true
			}
		},
	)
	d := model.Dish{
		Name:       name,
		ImageSrc:   imageSrc,
		Prices:     prices,
		Vegetarian: vegetarian,
		Vegan:      vegan,
		Type:       dishType,
		Nutrition:  parseNutrition(details),
		Canteens:   nil,
	}
	return d.Normalize(), true
}

// parsePrices reads the three labeled price cells. All three labels
// must be present; an unparseable value falls back to fallbackPrice.
func parsePrices(item *goquery.Selection) (model.DishPrices, bool) {
	byLabel := map[string]string{}
	item.Find(priceSelector).Each(
		func(_ int, price *goquery.Selection) {
			label := price.Find("strong").First().Text()
			value := strings.Replace(price.Text(), label, "", 1)
			label = strings.TrimSuffix(strings.TrimSpace(label), ":")
			byLabel[label] = strings.TrimSpace(value)
		},
	)
	prices := model.DishPrices{}
	for _, p := range []struct {
		label string
		dst   *decimal.Decimal
	}{
		{"Studierende", &prices.Students},
		{"Bedienstete", &prices.Employees},
		{"Gäste", &prices.Guests},
	} {
		value, ok := byLabel[p.label]
		if !ok {
			return model.DishPrices{}, false
		}
		*p.dst = parsePrice(value)
	}
	return prices, true
}

func parsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimSuffix(s, "€"))
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fallbackPrice
	}
	return d
}

// parseNutrition reads the "Name = Value Unit" lines of the details
// row. Each line is a separate text node between <br> elements, so
// the text nodes are walked one by one.
func parseNutrition(details *goquery.Selection) model.NutritionValues {
	n := model.NutritionValues{}
	p := details.Find(nutritionsSelector).First()
	p.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) != "#text" {
			return
		}
		line := strings.TrimSpace(c.Get(0).Data)
		switch {
		case strings.HasPrefix(line, "Brennwert = "):
			rest := strings.TrimPrefix(line, "Brennwert = ")
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				return
			}
			if kj, err := strconv.Atoi(fields[0]); err == nil {
				n.KJoule = &kj
			}
		case strings.HasPrefix(line, "Eiweiß = "):
			n.Protein = parseGrams(
				strings.TrimPrefix(line, "Eiweiß = "),
			)
		case strings.HasPrefix(line, "Kohlenhydrate = "):
			n.Carbs = parseGrams(
				strings.TrimPrefix(line, "Kohlenhydrate = "),
			)
		case strings.HasPrefix(line, "Fett = "):
			n.Fat = parseGrams(strings.TrimPrefix(line, "Fett = "))
		}
	})
	return n
}

func parseGrams(s string) *decimal.Decimal {
	s = strings.TrimSpace(strings.TrimSuffix(s, "g"))
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package menurp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/upbmensa/mensaweb/pkg/adapter/db/postgres"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

// gMeal is the GORM row struct of the meals table. One row is one
// observation of a dish at (date, canteen); the is_latest flag marks
// the currently valid snapshot and is the only column that is ever
// updated. Superseded rows stay for the history projections.
type gMeal struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Date           time.Time `gorm:"column:date"`
	Canteen        string
	Name           string
	DishType       string `gorm:"column:dish_type"`
	ImageSrc       *string
	PriceStudents  decimal.Decimal `gorm:"type:numeric(6,2)"`
	PriceEmployees decimal.Decimal `gorm:"type:numeric(6,2)"`
	PriceGuests    decimal.Decimal `gorm:"type:numeric(6,2)"`
	Vegetarian     bool
	Vegan          bool
	KJoules        *int             `gorm:"column:kjoules"`
	Proteins       *decimal.Decimal `gorm:"type:numeric(6,2)"`
	Carbohydrates  *decimal.Decimal `gorm:"type:numeric(6,2)"`
	Fats           *decimal.Decimal `gorm:"type:numeric(6,2)"`
	IsLatest       bool
}

// TableName declares the meals table name.
func (gm *gMeal) TableName() string {
	return "meals"
}

// Model converts the row into a model.Dish, parsing the enum columns.
func (gm *gMeal) Model() (model.Dish, error) {
	canteen, err := model.ParseCanteen(gm.Canteen)
	if err != nil {
		return model.Dish{}, fmt.Errorf(
			"malformed canteen column %q: %w", gm.Canteen, err,
		)
	}
	dishType, err := model.ParseDishType(gm.DishType)
	if err != nil {
		return model.Dish{}, fmt.Errorf(
			"malformed dish_type column %q: %w", gm.DishType, err,
		)
	}
	d := model.Dish{
		Name:     gm.Name,
		ImageSrc: gm.ImageSrc,
		Prices: model.DishPrices{
			Students:  gm.PriceStudents,
			Employees: gm.PriceEmployees,
			Guests:    gm.PriceGuests,
		},
		Vegetarian: gm.Vegetarian,
		Vegan:      gm.Vegan,
		Type:       dishType,
		Nutrition: model.NutritionValues{
			KJoule:  gm.KJoules,
			Protein: gm.Proteins,
			Carbs:   gm.Carbohydrates,
			Fat:     gm.Fats,
		},
		Canteens: []model.Canteen{canteen},
	}
	return d.Normalize(), nil
}

func newGMeal(
	date model.Date, canteen model.Canteen, d model.Dish,
) gMeal {
	d = d.Normalize()
	return gMeal{
		ID:             uuid.New(),
		Date:           date.Time(),
		Canteen:        canteen.Identifier(),
		Name:           d.Name,
		DishType:       d.Type.String(),
		ImageSrc:       d.ImageSrc,
		PriceStudents:  d.Prices.Students,
		PriceEmployees: d.Prices.Employees,
		PriceGuests:    d.Prices.Guests,
		Vegetarian:     d.Vegetarian,
		Vegan:          d.Vegan,
		KJoules:        d.Nutrition.KJoule,
		Proteins:       d.Nutrition.Protein,
		Carbohydrates:  d.Nutrition.Carbs,
		Fats:           d.Nutrition.Fat,
		IsLatest:       true,
	}
}

// gScrape is the GORM row struct of the append-only scrape audit.
type gScrape struct {
	ScrapedFor time.Time `gorm:"column:scraped_for"`
	Canteen    string
	ScrapedAt  time.Time `gorm:"column:scraped_at"`
}

// TableName declares the canteens_scraped table name.
func (gs *gScrape) TableName() string {
	return "canteens_scraped"
}

func identifiers(canteens []model.Canteen) []string {
	ids := make([]string, 0, len(canteens))
	for _, c := range canteens {
		ids = append(ids, c.Identifier())
	}
	return ids
}

// LatestDishes loads the currently valid dishes of one day for the
// given canteens, grouped by canteen and sorted by name.
func LatestDishes[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	date model.Date,
	canteens []model.Canteen,
) (map[model.Canteen][]model.Dish, error) {
	if len(canteens) == 0 {
		return map[model.Canteen][]model.Dish{}, nil
	}
	gdb := q.GORM(ctx)
	var rows []gMeal
	tt := gdb.Where(
		"date = ? AND canteen IN ? AND is_latest",
		date.Time(), identifiers(canteens),
	).Order("name").Find(&rows)
	if err := tt.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	byCanteen := make(map[model.Canteen][]model.Dish)
	for i := range rows {
		d, err := rows[i].Model()
		if err != nil {
			return nil, err
		}
		c := d.Canteens[0]
		byCanteen[c] = append(byCanteen[c], d)
	}
	return byCanteen, nil
}

// LastScrapes loads the most recent successful scrape timestamp per
// canteen for one day. Never-scraped canteens are absent from the
// returned map.
func LastScrapes[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	date model.Date,
	canteens []model.Canteen,
) (map[model.Canteen]time.Time, error) {
	if len(canteens) == 0 {
		return map[model.Canteen]time.Time{}, nil
	}
	gdb := q.GORM(ctx)
	var rows []struct {
		Canteen   string
		ScrapedAt time.Time
	}
	tt := gdb.Raw(
		`SELECT canteen, MAX(scraped_at) AS scraped_at
		FROM canteens_scraped
		WHERE scraped_for = ? AND canteen IN ?
		GROUP BY canteen`,
		date.Time(), identifiers(canteens),
	).Scan(&rows)
	if err := tt.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	audits := make(map[model.Canteen]time.Time, len(rows))
	for _, r := range rows {
		c, err := model.ParseCanteen(r.Canteen)
		if err != nil {
			return nil, fmt.Errorf(
				"malformed canteen column %q: %w", r.Canteen, err,
			)
		}
		audits[c] = r.ScrapedAt
	}
	return audits, nil
}

// MarkDishesStale clears the is_latest flag of the given dishes for
// one (date, canteen) pair in a single bulk update, returning the
// number of affected rows. Rows are matched by the full dish identity
// tuple, so a same-named row with different prices or flags stays
// latest.
func MarkDishesStale[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	date model.Date,
	canteen model.Canteen,
	dishes []model.Dish,
) (int64, error) {
	if len(dishes) == 0 {
		return 0, nil
	}
	identities := make([][]any, 0, len(dishes))
	for _, d := range dishes {
		d = d.Normalize()
		identities = append(identities, []any{
			d.Name,
			d.Prices.Students,
			d.Prices.Employees,
			d.Prices.Guests,
			d.Vegetarian,
			d.Vegan,
		})
	}
	gdb := q.GORM(ctx)
	tt := gdb.Model(&gMeal{}).Where(
		`date = ? AND canteen = ? AND is_latest AND
		(name, price_students, price_employees, price_guests,
		vegetarian, vegan) IN ?`,
		date.Time(), canteen.Identifier(), identities,
	).Update("is_latest", false)
	if err := tt.Error; err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	return tt.RowsAffected, nil
}

// InsertDishes creates new latest rows for the given dishes in one
// bulk insert.
func InsertDishes[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	date model.Date,
	canteen model.Canteen,
	dishes []model.Dish,
) error {
	if len(dishes) == 0 {
		return nil
	}
	rows := make([]gMeal, 0, len(dishes))
	for _, d := range dishes {
		rows = append(rows, newGMeal(date, canteen, d))
	}
	gdb := q.GORM(ctx)
	if err := gdb.Create(&rows).Error; err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return nil
}

// RecordScrapes appends one audit row per canteen with the given
// timestamp.
func RecordScrapes[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	date model.Date,
	canteens []model.Canteen,
	at time.Time,
) error {
	if len(canteens) == 0 {
		return nil
	}
	rows := make([]gScrape, 0, len(canteens))
	for _, c := range canteens {
		rows = append(rows, gScrape{
			ScrapedFor: date.Time(),
			Canteen:    c.Identifier(),
			ScrapedAt:  at,
		})
	}
	gdb := q.GORM(ctx)
	if err := gdb.Create(&rows).Error; err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return nil
}

// NutritionFor loads the nutrition values of the most recent latest
// row matching the dish name case-insensitively, optionally pinned
// to one day. A nil result means no such dish exists.
func NutritionFor[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	name string,
	date *model.Date,
) (*model.NutritionValues, error) {
	gdb := q.GORM(ctx).Where(
		"is_latest AND LOWER(name) = ?", strings.ToLower(name),
	)
	if date != nil {
		gdb = gdb.Where("date = ?", date.Time())
	}
	var rows []gMeal
	tt := gdb.Order("date DESC").Limit(1).Find(&rows)
	if err := tt.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	n := model.NutritionValues{
		KJoule:  rows[0].KJoules,
		Protein: rows[0].Proteins,
		Carbs:   rows[0].Carbohydrates,
		Fat:     rows[0].Fats,
	}.Normalize()
	return &n, nil
}

// PriceHistory loads up to limit latest-row price entries for the
// named dish over the given canteens, most recent days first.
// An empty canteens slice covers all canteens.
func PriceHistory[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	name string,
	canteens []model.Canteen,
	limit int,
) ([]repo.PricePoint, error) {
	gdb := q.GORM(ctx).Where(
		"is_latest AND LOWER(name) = ?", strings.ToLower(name),
	)
	if len(canteens) > 0 {
		gdb = gdb.Where("canteen IN ?", identifiers(canteens))
	}
	var rows []gMeal
	tt := gdb.Order("date DESC").Limit(limit).Find(&rows)
	if err := tt.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	points := make([]repo.PricePoint, 0, len(rows))
	for _, r := range rows {
		c, err := model.ParseCanteen(r.Canteen)
		if err != nil {
			return nil, fmt.Errorf(
				"malformed canteen column %q: %w", r.Canteen, err,
			)
		}
		points = append(points, repo.PricePoint{
			Date:    model.DateOf(r.Date),
			Canteen: c,
			Prices: model.DishPrices{
				Students:  r.PriceStudents,
				Employees: r.PriceEmployees,
				Guests:    r.PriceGuests,
			}.Normalize(),
		})
	}
	return points, nil
}

// EarliestMealDate loads the earliest day with any latest row.
// The ok result is false when the meals table is empty.
func EarliestMealDate[Q postgres.Queryer](
	ctx context.Context, q Q,
) (model.Date, bool, error) {
	gdb := q.GORM(ctx)
	var d sql.NullTime
	tt := gdb.Raw(
		"SELECT MIN(date) FROM meals WHERE is_latest",
	).Scan(&d)
	if err := tt.Error; err != nil {
		return model.Date{}, false, fmt.Errorf("query: %w", err)
	}
	if !d.Valid {
		return model.Date{}, false, nil
	}
	return model.DateOf(d.Time), true, nil
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/upbmensa/mensaweb/pkg/adapter/config"
	"github.com/upbmensa/mensaweb/pkg/adapter/db/postgres/menurp"
	"github.com/upbmensa/mensaweb/pkg/core/model"
)

var (
	scrapeDays     int
	scrapeForce    bool
	scrapeCanteens []string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Refresh persisted menus from the menu plan website",
	Long: `Refresh persisted menus from the menu plan website for
today and the following days without serving any requests, e.g., from
a cron job. Each day is refreshed for the selected canteens (all known
canteens by default) subject to the configured staleness policy; the
--force flag refreshes the selected days unconditionally, as long as
they are within the scrape horizon.`,
	RunE: scrapeMenus,
	Args: cobra.NoArgs,
}

func scrapeMenus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	c.Logging.Setup()
	canteens, err := selectedCanteens()
	if err != nil {
		return err
	}
	p, err := c.Database.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	scraper, err := c.Scraper.NewScraper()
	if err != nil {
		return fmt.Errorf("creating scraper: %w", err)
	}
	menus, err := c.Usecases.Menus.NewUseCase(
		p, menurp.New(), scraper,
	)
	if err != nil {
		return fmt.Errorf("creating menus use case: %w", err)
	}
	date := model.DateOf(time.Now())
	for i := 0; i < scrapeDays; i++ {
		refreshed, err := menus.Refresh(
			ctx, date, canteens, scrapeForce,
		)
		if err != nil {
			return fmt.Errorf("refreshing %s: %w", date, err)
		}
		cmd.Printf("%s: refreshed=%t\n", date, refreshed)
		date = date.AddDays(1)
	}
	return nil
}

func selectedCanteens() ([]model.Canteen, error) {
	if len(scrapeCanteens) == 0 {
		return model.AllCanteens(), nil
	}
	canteens := make([]model.Canteen, 0, len(scrapeCanteens))
	for _, id := range scrapeCanteens {
		canteen, err := model.ParseCanteen(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("canteen %q: %w", id, err)
		}
		canteens = append(canteens, canteen)
	}
	return canteens, nil
}

func init() {
	scrapeCmd.Flags().IntVar(
		&scrapeDays, "days", 7,
		"number of days to refresh, starting from today",
	)
	scrapeCmd.Flags().BoolVar(
		&scrapeForce, "force", false,
		"refresh regardless of the staleness policy",
	)
	scrapeCmd.Flags().StringSliceVar(
		&scrapeCanteens, "canteens", nil,
		"comma-separated canteen identifiers (default all)",
	)
	rootCmd.AddCommand(scrapeCmd)
}

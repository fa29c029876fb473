// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upbmensa/mensaweb/pkg/adapter/config"
	"github.com/upbmensa/mensaweb/pkg/adapter/db/postgres"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema",
	Long: `Create the meals and canteens_scraped tables with their
indices in one transaction. The database connection information are
read from the config file. All statements only create missing objects
and existing rows are never touched.`,
	RunE: initSchema,
	Args: cobra.NoArgs,
}

func initSchema(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	c.Logging.Setup()
	p, err := c.Database.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	err = p.Conn(ctx, func(ctx context.Context, cc repo.Conn) error {
		return cc.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return postgres.InitSchema(ctx, tx)
		})
	})
	if err != nil {
		return fmt.Errorf("initializing DB schema: %w", err)
	}
	return nil
}

func init() {
	dbCmd.AddCommand(initCmd)
}

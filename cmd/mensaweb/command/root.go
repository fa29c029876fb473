// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the mensaweb
// project. Commands are organized using the cobra library.
// The root command starts the web server itself, the "db" sub-command
// manages the database schema, and the "scrape" sub-command refreshes
// persisted menus from the command line without serving requests.
//
//	./mensaweb [-c /path/of/main/config.yaml]        # start web server
//	./mensaweb db init [-c /path/of/main/config.yaml]
//	./mensaweb scrape [--days N] [--force] [--canteens forum,zm2]
package command

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upbmensa/mensaweb/pkg/adapter/config"
	"github.com/upbmensa/mensaweb/pkg/adapter/restful/gin"
	"github.com/upbmensa/mensaweb/pkg/adapter/restful/gin/routes"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "mensaweb",
	Short: "Menus of the Studierendenwerk Paderborn canteens",
	Long: `Menus of the Studierendenwerk Paderborn canteens, served as
a REST API. Daily menus are scraped from the menu plan website on
demand, reconciled against the previously persisted dishes within one
transaction per refresh batch, and served as combined views over one
or more canteens, with equal dishes of different canteens collapsed
into single entries. Dish rows are never deleted, so nutrition values
and price histories of older days stay queryable.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(_ *cobra.Command, _ []string) error {
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
	var e *gin.Engine = c.Gin.NewEngine()
	if err = routes.Register(e, p, c); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	if err = e.Run(); err != nil {
		return fmt.Errorf("running Gin engine: %w", err)
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code may
// be a boolean (zero for success and non-zero for failure) or may be
// chosen based on the error condition (if it is desired to report
// several error conditions in the CLI of this program).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the mensaweb to instantiate
// different components, from the adapter or use cases layers, using
// those loaded configuration settings.
// The parsed and validated configurations should be passed to their
// ultimate components as a series of individual params (for the
// mandatory items) and a series of functional options (for the
// optional items), so they may be accumulated and validated in the
// relevant end-component such as a UseCase instance.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/upbmensa/mensaweb/pkg/adapter/config/settings"
	"github.com/upbmensa/mensaweb/pkg/adapter/db/postgres"
	"github.com/upbmensa/mensaweb/pkg/adapter/restful/gin"
	"github.com/upbmensa/mensaweb/pkg/adapter/scrape/stwpb"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
	"github.com/upbmensa/mensaweb/pkg/core/scrape"
	"github.com/upbmensa/mensaweb/pkg/core/usecase/menuuc"
	"gopkg.in/yaml.v3"
)

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases. It is preferred to
// implement Config with primitive fields or other structs which are
// defined locally, not models or structs which are defined in lower
// layers, so the configuration file format can be kept intact while
// other layers change freely.
type Config struct {
	Database Database // PostgreSQL database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Logging  Logging  // Structured logging settings
	Scraper  Scraper  // Menu plan website scraper settings
	Usecases Usecases // Supported use cases configuration settings
}

// Load function loads, validates, and normalizes the configuration
// file and returns its settings as an instance of the Config struct.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values
// with their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.Logging.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating logging settings: %w", err)
	}
	settings.Nil2Zero(&c.Gin.Logger)
	settings.Nil2Zero(&c.Gin.Recovery)
	if err := settings.VerifyRange(
		&c.Usecases.Menus.ScrapeHorizonDays,
		c.Usecases.Menus.MinScrapeHorizonDays,
		c.Usecases.Menus.MaxScrapeHorizonDays,
	); err != nil {
		return fmt.Errorf(
			"VerifyRange(scrape horizon days=%v, minb=%v, maxb=%v): %w",
			err.Value,
			c.Usecases.Menus.MinScrapeHorizonDays,
			c.Usecases.Menus.MaxScrapeHorizonDays,
			err,
		)
	}
	return nil
}

// Database contains the database related configuration settings.
type Database struct {
	Host     string // domain name or IP address of the DBMS server
	Port     int    // port number of the DBMS server
	Name     string // database name, like mensaweb
	User     string // database role name
	Password string // password of the database role
}

// ValidateAndNormalize validates the database settings, filling the
// default host and port values if they are left unset.
func (d *Database) ValidateAndNormalize() error {
	if d.Host == "" {
		d.Host = "127.0.0.1"
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.Name == "" {
		return fmt.Errorf("database name may not be empty")
	}
	if d.User == "" {
		return fmt.Errorf("database user may not be empty")
	}
	return nil
}

// ConnectionURL returns the database connection URL embedding the
// host, port, role name, database name, and password value, with the
// postgresql scheme.
func (d Database) ConnectionURL() string {
	u := &url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + strconv.Itoa(d.Port),
		Path:   "/" + d.Name,
	}
	return u.String()
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
func (d Database) ConnectionPool(
	ctx context.Context,
) (repo.Pool, error) {
	p, err := postgres.NewPool(ctx, d.ConnectionURL())
	if err != nil {
		return nil, fmt.Errorf(
			"connecting to %s:%d/%s as %q: %w",
			d.Host, d.Port, d.Name, d.User, err,
		)
	}
	return p, nil
}

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized; uninitialized fields are filled with
// their default values by the ValidateAndNormalize method.
type Gin struct {
	Logger   *bool // Whether to register the gin.Logger() middleware
	Recovery *bool // Whether to register the gin.Recovery() middleware
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 2)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	return gin.New(middlewares...)
}

// Logging contains the structured logging configuration settings.
type Logging struct {
	// Level is the minimum severity of the emitted log records, one
	// of debug, info, warn, or error. The default level is info.
	Level string

	level slog.Level `yaml:"-"`
}

// ValidateAndNormalize validates the logging settings and resolves
// the level name.
func (l *Logging) ValidateAndNormalize() error {
	switch l.Level {
	case "debug":
		l.level = slog.LevelDebug
	case "", "info":
		l.Level = "info"
		l.level = slog.LevelInfo
	case "warn":
		l.level = slog.LevelWarn
	case "error":
		l.level = slog.LevelError
	default:
		return fmt.Errorf("unsupported log level: %q", l.Level)
	}
	return nil
}

// Setup installs a JSON slog handler writing to the standard error
// stream as the process-wide default logger.
func (l Logging) Setup() {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: l.level,
	})
	slog.SetDefault(slog.New(h))
}

// Scraper contains the menu plan website scraper settings.
type Scraper struct {
	// BaseURL overrides the scraped website base URL, which is useful
	// for local test deployments. The production website is used when
	// this setting is left empty.
	BaseURL string `yaml:"base-url"`
	// Timeout bounds each menu plan page download.
	Timeout *settings.Duration
}

// NewScraper instantiates a menu plan website scraper based on the
// `s` settings.
func (s Scraper) NewScraper() (scrape.Scraper, error) {
	opts := make([]stwpb.Option, 0, 2)
	if s.BaseURL != "" {
		opts = append(opts, stwpb.WithBaseURL(s.BaseURL))
	}
	if s.Timeout != nil {
		opts = append(opts, stwpb.WithHTTPClient(&http.Client{
			Timeout: time.Duration(*s.Timeout),
		}))
	}
	return stwpb.New(opts...)
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Menus Menus // menus use case related settings
}

// Menus contains the configuration settings for the menus use case.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized; for uninitialized fields, the use cases
// layer selects the default values.
type Menus struct {
	// ScrapeHorizonDays bounds how far in the future a menu may be
	// refreshed, in days from today.
	ScrapeHorizonDays *int `yaml:"scrape-horizon-days"`
	// MinScrapeHorizonDays is the inclusive minimum acceptable value
	// for the ScrapeHorizonDays setting.
	// A missing value indicates that there is no lower bound.
	MinScrapeHorizonDays *int `yaml:"scrape-horizon-days-minimum"`
	// MaxScrapeHorizonDays is the inclusive maximum acceptable value
	// for the ScrapeHorizonDays setting.
	// A missing value indicates that there is no upper bound.
	MaxScrapeHorizonDays *int `yaml:"scrape-horizon-days-maximum"`
	// TodayRefreshInterval is the minimum age of today's last scrape
	// audit before today's menu is considered stale again.
	TodayRefreshInterval *settings.Duration `yaml:"today-refresh-interval"`
	// FutureRefreshInterval is the minimum age of the last scrape
	// audit of a future day before its menu is considered stale again.
	FutureRefreshInterval *settings.Duration `yaml:"future-refresh-interval"`
	// ScrapeConcurrency bounds the number of concurrently running
	// scrapes within one refresh batch.
	ScrapeConcurrency *int `yaml:"scrape-concurrency"`
	// CacheSizeLimit is the number of cached per-canteen menus which,
	// when exceeded, triggers eviction of the past days entries.
	CacheSizeLimit *int `yaml:"cache-size-limit"`
}

// NewUseCase instantiates a new menus use case based on the settings
// in the `m` struct.
func (m Menus) NewUseCase(
	p repo.Pool, r repo.Menus, s scrape.Scraper,
) (*menuuc.UseCase, error) {
	opts := make([]menuuc.Option, 0, 5)
	if m.ScrapeHorizonDays != nil {
		opts = append(
			opts, menuuc.WithScrapeHorizon(*m.ScrapeHorizonDays),
		)
	}
	if m.TodayRefreshInterval != nil {
		opts = append(opts, menuuc.WithTodayRefreshInterval(
			time.Duration(*m.TodayRefreshInterval),
		))
	}
	if m.FutureRefreshInterval != nil {
		opts = append(opts, menuuc.WithFutureRefreshInterval(
			time.Duration(*m.FutureRefreshInterval),
		))
	}
	if m.ScrapeConcurrency != nil {
		opts = append(
			opts, menuuc.WithScrapeConcurrency(*m.ScrapeConcurrency),
		)
	}
	if m.CacheSizeLimit != nil {
		opts = append(
			opts, menuuc.WithCacheSizeLimit(*m.CacheSizeLimit),
		)
	}
	return menuuc.New(p, r, s, opts...)
}

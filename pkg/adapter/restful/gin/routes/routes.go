// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/upbmensa/mensaweb/pkg/adapter/config"
	"github.com/upbmensa/mensaweb/pkg/adapter/db/postgres/menurp"
	"github.com/upbmensa/mensaweb/pkg/adapter/restful/gin/menurs"
	"github.com/upbmensa/mensaweb/pkg/core/repo"
)

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like menuuc and each repository package is named like menurp.
// Register instantiates a series of "resource" structs, from packages
// which are named like menurs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
// Possible errors will be returned after possible wrapping.
func Register(
	e *gin.Engine, p repo.Pool, c *config.Config,
) error {
	menusRepo := menurp.New()
	scraper, err := c.Scraper.NewScraper()
	if err != nil {
		return fmt.Errorf("creating scraper: %w", err)
	}
	menusUseCase, err := c.Usecases.Menus.NewUseCase(
		p, menusRepo, scraper,
	)
	if err != nil {
		return fmt.Errorf("creating menus use case: %w", err)
	}
	r := e.Group("/api/mensa/v1")
	menurs.Register(r, menusUseCase)
	return nil
}

// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package stwpb adapts the menu plan pages of the Studierendenwerk
// Paderborn website as a scrape.Scraper. The website renders one page
// per canteen and serves the plan of a specific day when the request
// carries a tx_pamensa_mensa[date] parameter.
package stwpb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/upbmensa/mensaweb/pkg/core/model"
	"github.com/upbmensa/mensaweb/pkg/core/scrape"
)

// DefaultBaseURL is the website which the menu plan pages are
// downloaded from, unless overridden by WithBaseURL.
const DefaultBaseURL = "https://www.studierendenwerk-pb.de"

const planPathPrefix = "/gastronomie/speiseplaene/"

// canteenPaths maps each canteen to its menu plan page path segment.
// The segment does not always match the canteen identifier since the
// website prefixes some of them with "mensa-".
var canteenPaths = map[model.Canteen]string{
	model.CanteenForum:     "forum",
	model.CanteenAcademica: "mensa-academica",
	model.CanteenPicknick:  "picknick",
	model.CanteenBonaVista: "bona-vista",
	model.CanteenGrillCafe: "grillcafe",
	model.CanteenZM2:       "mensa-zm2",
	model.CanteenBasilica:  "mensa-basilica-hamm",
	model.CanteenAtrium:    "mensa-atrium-lippstadt",
}

// Scraper downloads and parses menu plan pages. It is safe for
// concurrent use.
type Scraper struct {
	baseURL string
	client  *http.Client
}

// Option is a functional option for the New function.
type Option func(s *Scraper) error

// WithBaseURL overrides the website base URL, e.g., pointing the
// scraper at a local test server. The given URL must not end with a
// trailing slash.
func WithBaseURL(u string) Option {
	return func(s *Scraper) error {
		if u == "" {
			return fmt.Errorf("base URL may not be empty")
		}
		if s.baseURL != "" {
			return fmt.Errorf("base URL is already set")
		}
		s.baseURL = u
		return nil
	}
}

// WithHTTPClient overrides the HTTP client which is used for the
// page downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) error {
		if c == nil {
			return fmt.Errorf("client may not be nil")
		}
		if s.client != nil {
			return fmt.Errorf("client is already set")
		}
		s.client = c
		return nil
	}
}

// New instantiates a Scraper, applying the given options.
func New(opts ...Option) (*Scraper, error) {
	s := &Scraper{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: 30 * time.Second}
	}
	return s, nil
}

// Scrape downloads the menu plan page of one canteen for one day and
// parses its dish tables. Errors are reported as *scrape.Error so the
// failed (date, canteen) pair travels with them.
func (s *Scraper) Scrape(
	ctx context.Context, date model.Date, canteen model.Canteen,
) ([]model.Dish, error) {
	dishes, err := s.scrape(ctx, date, canteen)
	if err != nil {
		return nil, &scrape.Error{
			Date: date, Canteen: canteen, Err: err,
		}
	}
	return dishes, nil
}

func (s *Scraper) scrape(
	ctx context.Context, date model.Date, canteen model.Canteen,
) ([]model.Dish, error) {
	path, ok := canteenPaths[canteen]
	if !ok {
		return nil, fmt.Errorf(
			"no menu plan page is known for canteen %q", canteen,
		)
	}
	u := s.baseURL + planPathPrefix + path + "/"
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, u, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	q := url.Values{}
	q.Set("tx_pamensa_mensa[date]", date.String())
	req.URL.RawQuery = q.Encode()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"requesting %s: unexpected status %s", u, resp.Status,
		)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return parseDishes(doc, s.baseURL)
}

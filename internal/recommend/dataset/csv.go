// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

// Package dataset loads training input from CSV files.
//
// The ratings file carries one (user_id, item_id, rating) row per
// observation; the catalog file carries item metadata with the columns
// id, title, genre, type, episodes, rating, members. Both files may
// start with a header row, detected by a non-numeric leading field.
// Malformed rows are skipped and counted, never fatal.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lledoerik/recommender-system/internal/logging"
	"github.com/lledoerik/recommender-system/internal/recommend"
)

// CSVProvider reads ratings and catalog data from two CSV files.
type CSVProvider struct {
	ratingsPath string
	catalogPath string
	logger      zerolog.Logger
}

// Compile-time interface check.
var _ recommend.DataProvider = (*CSVProvider)(nil)

// NewCSVProvider returns a provider over the given file paths.
func NewCSVProvider(ratingsPath, catalogPath string) *CSVProvider {
	return &CSVProvider{
		ratingsPath: ratingsPath,
		catalogPath: catalogPath,
		logger:      logging.WithComponent("dataset"),
	}
}

// Ratings parses the ratings file. Rows with the wrong field count or
// unparseable IDs or ratings are skipped and counted; sentinel and
// out-of-scale values are left to the matrix builder, which owns rating
// validity.
func (p *CSVProvider) Ratings(ctx context.Context) ([]recommend.RatingRecord, int, error) {
	f, err := os.Open(p.ratingsPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open ratings file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	var (
		records []recommend.RatingRecord
		skipped int
		first   = true
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if first {
			first = false
			if isHeaderRow(row) {
				continue
			}
		}
		if len(row) < 3 {
			skipped++
			continue
		}
		userID, err1 := strconv.Atoi(strings.TrimSpace(row[0]))
		itemID, err2 := strconv.Atoi(strings.TrimSpace(row[1]))
		rating, err3 := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			skipped++
			continue
		}
		records = append(records, recommend.RatingRecord{
			UserID: userID,
			ItemID: itemID,
			Rating: rating,
		})
	}

	p.logger.Info().
		Str("path", p.ratingsPath).
		Int("rows", len(records)).
		Int("skipped", skipped).
		Msg("Ratings file loaded")
	return records, skipped, nil
}

// Catalog parses the catalog file. A row needs a valid ID and a
// non-empty title; the remaining columns are optional and default to
// zero values when missing or unparseable.
func (p *CSVProvider) Catalog(ctx context.Context) ([]recommend.CatalogEntry, error) {
	f, err := os.Open(p.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var (
		entries []recommend.CatalogEntry
		skipped int
		first   = true
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if first {
			first = false
			if isHeaderRow(row) {
				continue
			}
		}
		if len(row) < 2 {
			skipped++
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		title := strings.TrimSpace(row[1])
		if err != nil || id <= 0 || title == "" {
			skipped++
			continue
		}

		entry := recommend.CatalogEntry{ID: id, Title: title}
		if len(row) > 2 {
			entry.Genre = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			entry.MediaType = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			entry.Episodes, _ = strconv.Atoi(strings.TrimSpace(row[4]))
		}
		if len(row) > 5 {
			entry.MeanRating, _ = strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		}
		if len(row) > 6 {
			entry.Popularity, _ = strconv.Atoi(strings.TrimSpace(row[6]))
		}
		entries = append(entries, entry)
	}

	p.logger.Info().
		Str("path", p.catalogPath).
		Int("items", len(entries)).
		Int("skipped", skipped).
		Msg("Catalog file loaded")
	return entries, nil
}

// isHeaderRow reports whether the first field fails numeric parsing,
// which marks a column-name header.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return true
	}
	_, err := strconv.Atoi(strings.TrimSpace(row[0]))
	return err != nil
}

// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"sort"
	"strings"
)

// CatalogEntry is the descriptive metadata for one item.
type CatalogEntry struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Genre      string  `json:"genre,omitempty"`
	Year       int     `json:"year,omitempty"`
	MediaType  string  `json:"media_type,omitempty"`
	Episodes   int     `json:"episodes,omitempty"`
	MeanRating float64 `json:"mean_rating,omitempty"`
	Popularity int     `json:"popularity,omitempty"`
	PosterURL  string  `json:"poster_url,omitempty"`
}

// Catalog indexes item metadata for ID lookup and free-text title
// resolution. Catalogs are immutable after construction and swap
// atomically with the model they were trained alongside.
type Catalog struct {
	byID    map[int]CatalogEntry
	ordered []CatalogEntry
}

// NewCatalog builds a catalog from entries. Duplicate IDs resolve
// last-seen-wins, matching the rating dedup rule.
func NewCatalog(entries []CatalogEntry) *Catalog {
	byID := make(map[int]CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	ordered := make([]CatalogEntry, 0, len(byID))
	for _, e := range byID {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return &Catalog{byID: byID, ordered: ordered}
}

// Len returns the number of cataloged items.
func (c *Catalog) Len() int { return len(c.ordered) }

// ByID returns the entry for an item ID.
func (c *Catalog) ByID(id int) (CatalogEntry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Entries returns all entries ordered by ID.
func (c *Catalog) Entries() []CatalogEntry { return c.ordered }

// Resolve matches a free-text query against item titles,
// case-insensitively on substrings. Results are ordered exact matches
// first, then by descending popularity, then ascending ID, so the same
// query always resolves the same way. An empty result means no title
// matched; more than one means the query is ambiguous and the caller
// must disambiguate.
func (c *Catalog) Resolve(query string) []CatalogEntry {
	q := normalizeTitle(query)
	if q == "" {
		return nil
	}
	var matches []CatalogEntry
	for _, e := range c.ordered {
		if strings.Contains(normalizeTitle(e.Title), q) {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		ei, ej := matches[i], matches[j]
		exactI := normalizeTitle(ei.Title) == q
		exactJ := normalizeTitle(ej.Title) == q
		if exactI != exactJ {
			return exactI
		}
		if ei.Popularity != ej.Popularity {
			return ei.Popularity > ej.Popularity
		}
		return ei.ID < ej.ID
	})
	return matches
}

// Search is Resolve with a result cap, for the catalog search endpoint.
func (c *Catalog) Search(query string, limit int) []CatalogEntry {
	matches := c.Resolve(query)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the HTTP surface of the service.
type Router struct {
	handlers   *Handlers
	middleware *Middleware
}

// NewRouter creates a router over the given handlers and middleware
// factory.
func NewRouter(handlers *Handlers, mw *Middleware) *Router {
	return &Router{handlers: handlers, middleware: mw}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Versioned API surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(Instrument())

		r.Post("/recommendations", router.handlers.Recommendations)

		r.Get("/model", router.handlers.GetModel)
		r.Post("/model/train", router.handlers.TrainModel)
		r.Get("/model/versions", router.handlers.ModelVersions)

		r.Get("/catalog/search", router.handlers.SearchCatalog)
		r.Get("/catalog/items", router.handlers.ListCatalogItems)
		r.Get("/catalog/items/{id}", router.handlers.GetCatalogItem)
	})

	// Operational endpoints stay outside the rate-limited group.
	r.Get("/health", router.handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, r, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed for this endpoint")
	})

	return r
}

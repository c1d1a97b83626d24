// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

// Package metrics provides Prometheus instrumentation for the recommender:
// API latency and throughput, training runs, and the active model version.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Serving Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation pages served",
		},
		[]string{"strategy"}, // "similar", "blended", "alternative", "multi_seed"
	)

	RecommendationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "Latency of scoring and ranking a recommendation request",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	AmbiguousResolutions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "title_resolutions_ambiguous_total",
			Help: "Total number of title queries that matched multiple catalog entries",
		},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Total number of training runs by outcome",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	TrainingPairsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "training_correlation_pairs_total",
			Help: "Total number of item pairs evaluated during correlation builds",
		},
	)

	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "training_records_skipped_total",
			Help: "Total number of malformed or unrated records skipped during matrix builds",
		},
	)

	// Model Store Metrics
	ActiveModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_model_version",
			Help: "Version number of the currently active model (0 when none published)",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_model_items",
			Help: "Number of items in the active model",
		},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_model_users",
			Help: "Number of users in the active model",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendation records a served recommendation page.
func RecordRecommendation(strategy string, duration time.Duration) {
	RecommendationsServed.WithLabelValues(strategy).Inc()
	RecommendationLatency.Observe(duration.Seconds())
}

// RecordTraining records the outcome of a training run.
func RecordTraining(duration time.Duration, err error) {
	if err != nil {
		TrainingRuns.WithLabelValues("failure").Inc()
		return
	}
	TrainingRuns.WithLabelValues("success").Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordTrainingRejected records a training trigger refused because a run
// was already in progress.
func RecordTrainingRejected() {
	TrainingRuns.WithLabelValues("rejected").Inc()
}

// SetActiveModel updates the active model gauges after a publish or reload.
func SetActiveModel(version, items, users int) {
	ActiveModelVersion.Set(float64(version))
	ModelItems.Set(float64(items))
	ModelUsers.Set(float64(users))
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// Copyright 2024 The Crush Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/cephkit/crush/crush"
)

// Engine wraps a *crush.Engine and records prometheus series (and, via
// Output, periodic log lines) for every placement it serves. It embeds
// the wrapped engine so that AddWeight, SetInOut, GetWeight, GetInOut,
// TotalWeight, RecommendedPGs and Select pass through unchanged; only
// Locate and LocateAll are intercepted. Retries and escalations are
// counted for every selection, Select included, through the Observer hook.
type Engine struct {
	*crush.Engine

	registry *prometheus.Registry

	placements        prometheus.Counter
	placementsPerLeaf *prometheus.CounterVec
	retries           prometheus.Counter
	escalations       prometheus.Counter
	failures          prometheus.Counter
	duration          prometheus.Histogram

	// placementCount, retryCount and escalationCount mirror the
	// prometheus counters above. Prometheus counters don't expose their
	// current value for reading back, so Output keeps its own running
	// totals to log the delta since the last tick.
	placementCount  uint64
	retryCount      uint64
	escalationCount uint64
	lastPlacements  uint64
	lastRetries     uint64
	lastEscalations uint64
}

// NewEngine wraps engine with prometheus instrumentation and registers
// itself as engine's Observer for retry and escalation events. Every
// Engine gets its own registry rather than registering into the global
// default one, so that a process (or a test binary) can construct more
// than one without a duplicate-registration panic; Registry exposes it
// for Server to serve.
func NewEngine(e *crush.Engine) *Engine {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	placementsOpts := prometheus.CounterOpts{
		Name:      "placements_total",
		Namespace: namespace,
		Help:      "number of completed Locate/LocateAll calls",
	}
	placements := factory.NewCounter(placementsOpts)

	perLeafOpts := prometheus.CounterOpts{
		Name:      "placements_per_leaf_total",
		Namespace: namespace,
		Help:      "number of times each leaf was returned by a placement",
	}
	placementsPerLeaf := factory.NewCounterVec(perLeafOpts, []string{"leaf"})

	retriesOpts := prometheus.CounterOpts{
		Name:      "selection_retries_total",
		Namespace: namespace,
		Help:      "number of rejected draws during selection",
	}
	retries := factory.NewCounter(retriesOpts)

	escalationsOpts := prometheus.CounterOpts{
		Name:      "selection_escalations_total",
		Namespace: namespace,
		Help:      "number of times a saturated subtree forced a restart from the root",
	}
	escalations := factory.NewCounter(escalationsOpts)

	failuresOpts := prometheus.CounterOpts{
		Name:      "placement_failures_total",
		Namespace: namespace,
		Help:      "number of Locate/LocateAll calls that returned an error",
	}
	failures := factory.NewCounter(failuresOpts)

	durationOpts := prometheus.HistogramOpts{
		Name:      "selection_duration_seconds",
		Namespace: namespace,
		Help:      "time taken by a single Locate/LocateAll call",
		Buckets:   prometheus.DefBuckets,
	}
	duration := factory.NewHistogram(durationOpts)

	m := Engine{
		Engine:            e,
		registry:          registry,
		placements:        placements,
		placementsPerLeaf: placementsPerLeaf,
		retries:           retries,
		escalations:       escalations,
		failures:          failures,
		duration:          duration,
	}
	e.SetObserver(&m)

	return &m
}

// Registry returns the prometheus registry this Engine's series were
// registered into, for Server to serve over HTTP.
func (m *Engine) Registry() *prometheus.Registry {
	return m.registry
}

// OnRetry implements crush.Observer.
func (m *Engine) OnRetry() {
	m.retries.Inc()
	atomic.AddUint64(&m.retryCount, 1)
}

// OnEscalate implements crush.Observer.
func (m *Engine) OnEscalate() {
	m.escalations.Inc()
	atomic.AddUint64(&m.escalationCount, 1)
}

// Locate instruments crush.Engine.Locate with a duration observation and
// a per-leaf placement count.
func (m *Engine) Locate(pgid uint32) (string, error) {
	start := time.Now()
	path, err := m.Engine.Locate(pgid)
	m.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.Inc()
		return "", err
	}
	m.placements.Inc()
	m.placementsPerLeaf.WithLabelValues(path).Inc()
	atomic.AddUint64(&m.placementCount, 1)
	return path, nil
}

// LocateAll instruments crush.Engine.LocateAll the same way Locate does,
// recording one placement for the call and one per-leaf count for every
// returned path.
func (m *Engine) LocateAll(pgid uint32, replicas uint32) ([]string, error) {
	start := time.Now()
	paths, err := m.Engine.LocateAll(pgid, replicas)
	m.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.Inc()
		return nil, err
	}
	m.placements.Inc()
	for _, path := range paths {
		m.placementsPerLeaf.WithLabelValues(path).Inc()
	}
	atomic.AddUint64(&m.placementCount, 1)
	return paths, nil
}

// Output implements Collector, logging a snapshot of the counters since
// the previous call.
func (m *Engine) Output(log zerolog.Logger) {
	placements := atomic.LoadUint64(&m.placementCount)
	retries := atomic.LoadUint64(&m.retryCount)
	escalations := atomic.LoadUint64(&m.escalationCount)

	log.Info().
		Uint64("placements", placements-atomic.LoadUint64(&m.lastPlacements)).
		Uint64("retries", retries-atomic.LoadUint64(&m.lastRetries)).
		Uint64("escalations", escalations-atomic.LoadUint64(&m.lastEscalations)).
		Msg("placement activity")

	atomic.StoreUint64(&m.lastPlacements, placements)
	atomic.StoreUint64(&m.lastRetries, retries)
	atomic.StoreUint64(&m.lastEscalations, escalations)
}

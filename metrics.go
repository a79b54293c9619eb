// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routing

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// routerMetrics holds the router's Prometheus collectors. A nil
// *routerMetrics records nothing.
type routerMetrics struct {
	lookupHit      prometheus.Counter
	lookupMiss     prometheus.Counter
	routes         prometheus.Gauge
	registerErrors *prometheus.CounterVec
	reloads        *prometheus.CounterVec
	reloadDuration prometheus.Histogram
}

func newRouterMetrics(namespace string, reg prometheus.Registerer) (*routerMetrics, error) {
	lookups, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "lookups_total",
			Help:      "Route lookups by result (hit or miss).",
		},
		[]string{"result"},
	))
	if err != nil {
		return nil, err
	}
	routes, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "routes",
		Help:      "Number of registered routes.",
	}))
	if err != nil {
		return nil, err
	}
	registerErrors, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "registration_errors_total",
			Help:      "Rejected route registrations by error kind.",
		},
		[]string{"kind"},
	))
	if err != nil {
		return nil, err
	}
	reloads, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "reloads_total",
			Help:      "Router rebuilds by result (success or error).",
		},
		[]string{"result"},
	))
	if err != nil {
		return nil, err
	}
	reloadDuration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "reload_duration_seconds",
		Help:      "Time spent building a router during reload.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}))
	if err != nil {
		return nil, err
	}

	return &routerMetrics{
		// Curried once so the lookup path does not resolve labels.
		lookupHit:      lookups.WithLabelValues("hit"),
		lookupMiss:     lookups.WithLabelValues("miss"),
		routes:         routes,
		registerErrors: registerErrors,
		reloads:        reloads,
		reloadDuration: reloadDuration,
	}, nil
}

// register registers c, or returns the collector registered earlier under
// the same descriptor. Routers rebuilt by a Reloader share collectors.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *routerMetrics) hit() {
	if m != nil {
		m.lookupHit.Inc()
	}
}

func (m *routerMetrics) miss() {
	if m != nil {
		m.lookupMiss.Inc()
	}
}

func (m *routerMetrics) setRoutes(n int) {
	if m != nil {
		m.routes.Set(float64(n))
	}
}

func (m *routerMetrics) registrationError(kind ErrorKind) {
	if m != nil {
		m.registerErrors.WithLabelValues(string(kind)).Inc()
	}
}

func (m *routerMetrics) reloaded(err error, took time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
	m.reloadDuration.Observe(took.Seconds())
}

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
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"rivaas.dev/routing/constraint"
)

// Option configures a Router.
type Option func(*Router)

// WithCaseSensitive controls whether static path text is matched
// case-sensitively. It defaults to true. When disabled, captured
// parameter values keep their original case.
func WithCaseSensitive(enabled bool) Option {
	return func(r *Router) {
		r.caseSensitive = enabled
	}
}

// WithIgnoreDuplicateSlashes folds runs of "/" into one, both in patterns
// and in looked-up paths.
func WithIgnoreDuplicateSlashes(enabled bool) Option {
	return func(r *Router) {
		r.ignoreDuplicateSlashes = enabled
	}
}

// WithMaxParamLength sets the longest parameter value, in bytes, that can
// match. Longer values make the branch fail. Zero, the default, disables
// the limit.
func WithMaxParamLength(n int) Option {
	return func(r *Router) {
		r.maxParamLength = n
	}
}

// WithReloadMode makes re-registering an existing method, pattern and
// constraints tuple replace the previous handler instead of failing.
// Use it while re-applying the same route table during a hot reload.
func WithReloadMode(enabled bool) Option {
	return func(r *Router) {
		r.reloadMode = enabled
	}
}

// WithStrategy adds custom constraint strategies. A strategy named like a
// built-in ("host", "version") replaces it.
//
// Example:
//
//	r := routing.MustNew(routing.WithStrategy(constraint.Header("tenant", "X-Tenant-ID")))
//	r.MustOn("GET", "/", home, routing.WithConstraint("tenant", "acme"))
func WithStrategy(s ...constraint.Strategy) Option {
	return func(r *Router) {
		r.strategies = append(r.strategies, s...)
	}
}

// WithLogger sets the structured logger. Registration is logged at debug
// level; the lookup path never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithDiagnostics sets a diagnostic handler for the router.
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Router) {
		r.diagnostics = handler
	}
}

// WithMetrics registers the router's Prometheus collectors with reg.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	r := routing.MustNew(routing.WithMetrics(reg))
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Router) {
		r.registerer = reg
	}
}

// WithMetricsNamespace prefixes metric names. The default is no prefix.
func WithMetricsNamespace(ns string) Option {
	return func(r *Router) {
		r.metricsNamespace = ns
	}
}

// WithNotFound sets the handler ServeHTTP uses when nothing matches.
// The default is http.NotFound.
func WithNotFound(h http.Handler) Option {
	return func(r *Router) {
		r.notFound = h
	}
}

// WithMethodNotAllowed controls whether ServeHTTP answers 405 with an
// Allow header when the path matches under other methods. It defaults to
// true.
func WithMethodNotAllowed(enabled bool) Option {
	return func(r *Router) {
		r.methodNotAllowed = enabled
	}
}

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
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"rivaas.dev/routing/constraint"
	"rivaas.dev/routing/internal/tree"
	"rivaas.dev/routing/route"
)

// highParamCount is the parameter count above which registration emits a diagnostic.
const highParamCount = 8

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// entry is a registered route together with the segments it was inserted with.
type entry struct {
	route *route.Route
	segs  []tree.Segment
}

// Router maps (method, path, constraints) to registered handlers.
//
// Thread safety:
// Registration (On, Mount, Off, Reset) is serialized by an internal mutex
// but must not overlap with lookups. Once registration is finished,
// Lookup, Find and ServeHTTP may be called from any number of goroutines
// without locking. To change routes while serving, build a new Router and
// swap it in with a Reloader.
type Router struct {
	mu sync.Mutex // serializes registration

	caseSensitive          bool
	ignoreDuplicateSlashes bool
	maxParamLength         int
	reloadMode             bool
	methodNotAllowed       bool
	strategies             []constraint.Strategy
	logger                 *slog.Logger
	diagnostics            DiagnosticHandler
	registerer             prometheus.Registerer
	metricsNamespace       string
	notFound               http.Handler

	registry *constraint.Registry
	metrics  *routerMetrics
	trees    methodTrees
	routes   []entry
	frozen   atomic.Bool
}

// New creates a Router configured by opts.
//
// Example:
//
//	r, err := routing.New(
//	    routing.WithCaseSensitive(false),
//	    routing.WithLogger(slog.Default()),
//	)
func New(opts ...Option) (*Router, error) {
	r := &Router{
		caseSensitive:    true,
		methodNotAllowed: true,
		logger:           noopLogger,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	reg, err := constraint.NewRegistry(r.strategies...)
	if err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}
	r.registry = reg

	if r.registerer != nil {
		m, err := newRouterMetrics(r.metricsNamespace, r.registerer)
		if err != nil {
			return nil, fmt.Errorf("router metrics registration failed: %w", err)
		}
		r.metrics = m
	}

	return r, nil
}

// MustNew creates a new Router and panics if the configuration is invalid.
//
// Usage:
//
//	r := routing.MustNew(routing.WithMaxParamLength(64))
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("routing.MustNew: %v", err))
	}
	return r
}

// validate checks the router configuration for common errors.
func (r *Router) validate() error {
	if r.maxParamLength < 0 {
		return fmt.Errorf("%w: max param length must not be negative, got %d", ErrInvalidOption, r.maxParamLength)
	}
	if r.logger == nil {
		r.logger = noopLogger
	}
	return nil
}

// Freeze rejects further registrations with ErrRouterFrozen.
func (r *Router) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether Freeze was called.
func (r *Router) Frozen() bool {
	return r.frozen.Load()
}

// ReloadMode reports whether duplicate registrations replace earlier ones.
func (r *Router) ReloadMode() bool {
	return r.reloadMode
}

// Len returns the number of registered routes. Each variant of a
// pattern with an optional group counts once.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routes)
}

// Routes returns every registered route in registration order.
func (r *Router) Routes() []route.Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]route.Info, len(r.routes))
	for i, e := range r.routes {
		out[i] = e.route.Info()
	}
	return out
}

// Methods returns the methods with at least one route, sorted.
func (r *Router) Methods() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trees.methods()
}

// HasConstraintStrategy reports whether lookups derive the named
// constraint. Custom strategies always do; built-ins once a route uses them.
func (r *Router) HasConstraintStrategy(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.HasStrategy(name)
}

// HasRoute reports whether a route with the given method, pattern and
// constraints is registered. For patterns with an optional group, every
// variant must be present.
func (r *Router) HasRoute(method, pattern string, opts ...RouteOption) bool {
	cfg, err := r.routeConfig(opts)
	if err != nil {
		return false
	}
	variants, err := r.compile(method, pattern)
	if err != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range variants {
		if r.indexOf(method, v.pattern, cfg.constraints) < 0 {
			return false
		}
	}
	return true
}

// Off removes routes registered for method and pattern. Without a
// constraint option every constrained variant is removed; with one, only
// the route declaring exactly those constraints. It returns the number of
// routes removed.
func (r *Router) Off(method, pattern string, opts ...RouteOption) (int, error) {
	cfg, err := r.routeConfig(opts)
	if err != nil {
		return 0, newError(KindConstraint, method, pattern, err)
	}
	variants, err := r.compile(method, pattern)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return 0, newError(KindFrozen, method, pattern, ErrRouterFrozen)
	}

	kept := r.routes[:0:0]
	removed := 0
	for _, e := range r.routes {
		if e.route.Method == method && matchesVariant(e.route, variants) &&
			(!cfg.constraintsSet || e.route.SameConstraints(cfg.constraints)) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed > 0 {
		r.rebuild(kept)
		r.logger.Debug("routes removed", "method", method, "pattern", pattern, "count", removed)
	}
	return removed, nil
}

// Reset removes every route. It fails once the router is frozen.
func (r *Router) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return newError(KindFrozen, "", "", ErrRouterFrozen)
	}
	r.rebuild(nil)
	return nil
}

// rebuild replaces the trees with ones holding exactly routes.
func (r *Router) rebuild(routes []entry) {
	r.trees = methodTrees{}
	r.routes = nil
	r.registry.ResetUsage()
	for _, e := range routes {
		t := r.trees.getOrCreate(e.route.Method, r.maxParamLength)
		hs := t.Handlers(t.Insert(e.segs), r.newStorage)
		if err := hs.Add(e.route, false); err != nil {
			panic(fmt.Sprintf("routing: rebuild %s %s: %v", e.route.Method, e.route.Pattern, err))
		}
		r.registry.NoteUsage(e.route.Constraints)
		r.routes = append(r.routes, e)
	}
	r.metrics.setRoutes(len(r.routes))
}

// PrettyPrint writes the trees of every method to w.
func (r *Router) PrettyPrint(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, method := range r.trees.methods() {
		if _, err := fmt.Fprintln(w, method); err != nil {
			return err
		}
		if err := r.trees.getTree(method).Print(w); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) newStorage() *tree.HandlerStorage {
	return tree.NewHandlerStorage(r.registry)
}

func (r *Router) indexOf(method, pattern string, cs map[string]constraint.Value) int {
	for i, e := range r.routes {
		if e.route.Method == method && e.route.Pattern == pattern && e.route.SameConstraints(cs) {
			return i
		}
	}
	return -1
}

func (r *Router) indexOfRoute(rt *route.Route) int {
	if rt == nil {
		return -1
	}
	for i, e := range r.routes {
		if e.route == rt {
			return i
		}
	}
	return -1
}

func matchesVariant(rt *route.Route, variants []compiledPattern) bool {
	for _, v := range variants {
		if rt.Pattern == v.pattern {
			return true
		}
	}
	return false
}

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
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// BuildFunc registers routes on a fresh router.
type BuildFunc func(r *Router) error

// Reloader serves from a router it can rebuild and swap while requests are
// in flight. Rebuilds are serialized; readers always see a complete,
// frozen router and never take a lock.
type Reloader struct {
	mu         sync.Mutex // serializes rebuilds
	build      BuildFunc
	opts       []Option
	current    atomic.Pointer[Router]
	generation atomic.Uint64
}

// NewReloader builds the first router with build and opts. Every router
// it builds runs in reload mode, so a route table that registers the same
// route twice keeps the last registration.
func NewReloader(build BuildFunc, opts ...Option) (*Reloader, error) {
	if build == nil {
		return nil, fmt.Errorf("%w: nil build function", ErrInvalidOption)
	}
	rl := &Reloader{build: build, opts: slices.Clone(opts)}
	if err := rl.Reload(); err != nil {
		return nil, err
	}
	return rl, nil
}

// Reload rebuilds the router with the current build function. On error the
// previous router keeps serving.
func (rl *Reloader) Reload() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.swap(rl.build)
}

// Rebuild replaces the build function and reloads with it. The new
// function is kept only if it succeeds.
func (rl *Reloader) Rebuild(build BuildFunc) error {
	if build == nil {
		return fmt.Errorf("%w: nil build function", ErrInvalidOption)
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if err := rl.swap(build); err != nil {
		return err
	}
	rl.build = build
	return nil
}

func (rl *Reloader) swap(build BuildFunc) error {
	start := time.Now()
	opts := append(slices.Clone(rl.opts), WithReloadMode(true))
	r, err := New(opts...)
	if err != nil {
		return fmt.Errorf("routing: reload: %w", err)
	}
	if err := build(r); err != nil {
		r.metrics.reloaded(err, time.Since(start))
		r.logger.Warn("router reload failed", "error", err, "generation", rl.generation.Load())
		return fmt.Errorf("routing: reload: %w", err)
	}
	r.Freeze()

	rl.current.Store(r)
	gen := rl.generation.Add(1)
	took := time.Since(start)
	r.metrics.reloaded(nil, took)
	r.logger.Info("router reloaded", "generation", gen, "routes", r.Len(), "took", took)
	r.emit(DiagRouterReloaded, "router reloaded", map[string]any{
		"generation": gen,
		"routes":     r.Len(),
	})
	return nil
}

// Router returns the router currently serving.
func (rl *Reloader) Router() *Router {
	return rl.current.Load()
}

// Generation counts successful builds, starting at 1.
func (rl *Reloader) Generation() uint64 {
	return rl.generation.Load()
}

// Lookup delegates to the current router.
func (rl *Reloader) Lookup(method, path string, req *http.Request) (Match, bool) {
	return rl.Router().Lookup(method, path, req)
}

// ServeHTTP delegates to the current router.
func (rl *Reloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rl.Router().ServeHTTP(w, req)
}

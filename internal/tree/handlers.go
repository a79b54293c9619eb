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

package tree

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"rivaas.dev/routing/constraint"
	"rivaas.dev/routing/route"
)

// MaxHandlers is the number of routes one leaf can hold.
const MaxHandlers = 32

var (
	// ErrTooManyHandlers indicates a leaf is full.
	ErrTooManyHandlers = fmt.Errorf("a maximum of %d route handlers per node allowed when there are constraints", MaxHandlers)

	// ErrDuplicateHandler indicates a route with the same constraints is already stored at the leaf.
	ErrDuplicateHandler = errors.New("route with the same constraints already stored at node")
)

// keyMatcher holds the per-key state of the compiled matcher.
type keyMatcher struct {
	id     int
	store  constraint.Store
	always uint32 // entries not constrained by this key
	strict bool   // derived values only select constrained entries
}

// HandlerStorage holds the routes that end at one leaf and picks the one a
// request's constraint values select.
type HandlerStorage struct {
	registry      *constraint.Registry
	unconstrained *route.Route
	entries       []*route.Route // ascending by constraint count
	keys          []keyMatcher
	mustMatch     []int // must-match strategies not constrained at this leaf
	match         func(*constraint.Values) *route.Route
}

// NewHandlerStorage returns an empty storage bound to the router's registry.
func NewHandlerStorage(reg *constraint.Registry) *HandlerStorage {
	h := &HandlerStorage{registry: reg}
	h.compile()
	return h
}

// Len returns the number of stored routes.
func (h *HandlerStorage) Len() int { return len(h.entries) }

// Routes returns the stored routes in priority order, least constrained first.
func (h *HandlerStorage) Routes() []*route.Route { return slices.Clone(h.entries) }

// HasConstraints reports whether any stored route declares constraints.
func (h *HandlerStorage) HasConstraints() bool { return len(h.keys) > 0 }

// Conflict returns the stored route declaring the same constraints as cs, or nil.
func (h *HandlerStorage) Conflict(cs map[string]constraint.Value) *route.Route {
	for _, e := range h.entries {
		if e.SameConstraints(cs) {
			return e
		}
	}
	return nil
}

// Add stores r. When replace is set, a stored route with the same
// constraints is swapped for r instead of failing with ErrDuplicateHandler.
func (h *HandlerStorage) Add(r *route.Route, replace bool) error {
	for i, e := range h.entries {
		if !e.SameConstraints(r.Constraints) {
			continue
		}
		if !replace {
			return ErrDuplicateHandler
		}
		h.entries[i] = r
		h.compile()
		return nil
	}
	if len(h.entries) >= MaxHandlers {
		return ErrTooManyHandlers
	}

	h.entries = append(h.entries, r)
	slices.SortStableFunc(h.entries, func(a, b *route.Route) int {
		return len(a.Constraints) - len(b.Constraints)
	})
	h.compile()
	return nil
}

// Match returns the route selected by vals, or nil.
func (h *HandlerStorage) Match(vals *constraint.Values) *route.Route {
	return h.match(vals)
}

// compile rebuilds the per-key stores and the matcher closure.
func (h *HandlerStorage) compile() {
	h.unconstrained = nil
	h.keys = h.keys[:0]
	h.mustMatch = h.mustMatch[:0]

	var used uint32
	for i, e := range h.entries {
		if len(e.Constraints) == 0 {
			h.unconstrained = e
			continue
		}
		for key, v := range e.Constraints {
			id, ok := h.registry.ID(key)
			if !ok {
				panic(fmt.Sprintf("tree: unregistered constraint %q", key))
			}
			k := h.keyFor(id, &used)
			k.store.Add(v, 1<<uint(i))
		}
	}

	if len(h.keys) == 0 {
		unconstrained := h.unconstrained
		h.match = func(*constraint.Values) *route.Route { return unconstrained }
		return
	}

	all := uint32((uint64(1) << uint(len(h.entries))) - 1)
	for i := range h.keys {
		k := &h.keys[i]
		k.always = all
		for j, e := range h.entries {
			if _, ok := e.Constraints[h.registry.Strategy(k.id).Name()]; ok {
				k.always &^= 1 << uint(j)
			}
		}
	}
	for id := range h.registry.Len() {
		if used&(1<<uint(id)) == 0 && h.registry.Strategy(id).MustMatchWhenDerived() {
			h.mustMatch = append(h.mustMatch, id)
		}
	}

	keys := slices.Clone(h.keys)
	mustMatch := slices.Clone(h.mustMatch)
	entries := slices.Clone(h.entries)
	h.match = func(vals *constraint.Values) *route.Route {
		candidates := all
		for i := range keys {
			m := keys[i].always
			if v, ok := vals.Get(keys[i].id); ok {
				if keys[i].strict {
					m = keys[i].store.Get(v)
				} else {
					m |= keys[i].store.Get(v)
				}
			}
			candidates &= m
			if candidates == 0 {
				return nil
			}
		}
		for _, id := range mustMatch {
			if vals.Has(id) {
				return nil
			}
		}
		// Entries are sorted by constraint count, so the highest surviving
		// bit is the most specific route.
		idx := 31 - bits.LeadingZeros32(candidates)
		if idx >= len(entries) {
			panic(fmt.Sprintf("tree: candidate bit %d beyond %d handlers", idx, len(entries)))
		}
		return entries[idx]
	}
}

func (h *HandlerStorage) keyFor(id int, used *uint32) *keyMatcher {
	if *used&(1<<uint(id)) != 0 {
		for i := range h.keys {
			if h.keys[i].id == id {
				return &h.keys[i]
			}
		}
	}
	*used |= 1 << uint(id)
	h.keys = append(h.keys, keyMatcher{
		id:     id,
		store:  h.registry.NewStore(id),
		strict: h.registry.Strategy(id).MustMatchWhenDerived(),
	})
	return &h.keys[len(h.keys)-1]
}

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

package constraint

import (
	"fmt"
	"net/http"
	"slices"
)

// Registry holds the strategies known to one router. Strategy IDs are
// stable indexes; the built-in host and version strategies take IDs 0 and 1.
//
// Registration-time methods (Register, NoteUsage) must not run concurrently
// with Derive.
type Registry struct {
	strategies []Strategy
	index      map[string]int
	inUse      uint32 // IDs referenced by at least one route
	derive     []int  // IDs derived on each lookup
}

// NewRegistry returns a registry holding the built-in strategies followed
// by custom. A custom strategy named like a built-in replaces it.
func NewRegistry(custom ...Strategy) (*Registry, error) {
	r := &Registry{index: make(map[string]int, 2+len(custom))}
	r.add(Host())
	r.add(Version())
	for _, s := range custom {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(s Strategy) {
	r.index[s.Name()] = len(r.strategies)
	r.strategies = append(r.strategies, s)
	r.rebuild()
}

// Register adds a strategy.
func (r *Registry) Register(s Strategy) error {
	if s == nil || s.Name() == "" {
		return fmt.Errorf("%w: strategy needs a name", ErrInvalidValue)
	}
	if id, ok := r.index[s.Name()]; ok {
		if r.strategies[id].Custom() || r.inUse&(1<<uint(id)) != 0 {
			return fmt.Errorf("%w: %q", ErrDuplicateStrategy, s.Name())
		}
		r.strategies[id] = s
		r.rebuild()
		return nil
	}
	if len(r.strategies) >= MaxStrategies {
		return fmt.Errorf("%w: limit is %d", ErrTooManyStrategies, MaxStrategies)
	}
	r.add(s)
	return nil
}

// ID returns the index of the strategy called name.
func (r *Registry) ID(name string) (int, bool) {
	id, ok := r.index[name]
	return id, ok
}

// Strategy returns the strategy with the given ID.
func (r *Registry) Strategy(id int) Strategy { return r.strategies[id] }

// Len returns the number of strategies.
func (r *Registry) Len() int { return len(r.strategies) }

// Names returns strategy names in ID order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// HasStrategy reports whether name is derived on lookups. Custom strategies
// always are; built-ins only once a route has used them.
func (r *Registry) HasStrategy(name string) bool {
	id, ok := r.index[name]
	if !ok {
		return false
	}
	return slices.Contains(r.derive, id)
}

// Validate checks every key and value of a route's constraints.
func (r *Registry) Validate(cs map[string]Value) error {
	for key, v := range cs {
		id, ok := r.index[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownConstraint, key)
		}
		if err := r.strategies[id].Validate(v); err != nil {
			return err
		}
	}
	return nil
}

// NoteUsage marks the keys of cs as in use, so lookups start deriving them.
func (r *Registry) NoteUsage(cs map[string]Value) {
	before := r.inUse
	for key := range cs {
		if id, ok := r.index[key]; ok {
			r.inUse |= 1 << uint(id)
		}
	}
	if r.inUse != before {
		r.rebuild()
	}
}

// ResetUsage forgets which strategies routes use.
func (r *Registry) ResetUsage() {
	r.inUse = 0
	r.rebuild()
}

func (r *Registry) rebuild() {
	r.derive = r.derive[:0]
	for id, s := range r.strategies {
		if s.Custom() || r.inUse&(1<<uint(id)) != 0 {
			r.derive = append(r.derive, id)
		}
	}
}

// Derive fills out with the values of every active strategy found in req.
func (r *Registry) Derive(req *http.Request, out *Values) {
	out.Reset()
	if req == nil {
		return
	}
	for _, id := range r.derive {
		if s, ok := r.strategies[id].Derive(req); ok {
			out.Set(id, s)
		}
	}
}

// ValuesFrom converts already-derived values keyed by strategy name.
func (r *Registry) ValuesFrom(m map[string]string) (Values, error) {
	var out Values
	for key, s := range m {
		id, ok := r.index[key]
		if !ok {
			return Values{}, fmt.Errorf("%w: %q", ErrUnknownConstraint, key)
		}
		out.Set(id, s)
	}
	return out, nil
}

// NewStore returns a fresh store for strategy id.
func (r *Registry) NewStore(id int) Store { return r.strategies[id].NewStore() }

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

package config

import (
	"fmt"
	"maps"
	"net/http"

	"rivaas.dev/routing"
	"rivaas.dev/routing/route"
)

// Resolver maps a declared handler name to the value registered for it.
// Mount handlers must resolve to an http.Handler.
type Resolver func(name string) (any, error)

// Handlers returns a Resolver backed by m.
func Handlers(m map[string]any) Resolver {
	return func(name string) (any, error) {
		h, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
		}
		return h, nil
	}
}

// Names resolves every handler to its own name. It suits tools that
// inspect a route table without serving it.
func Names(name string) (any, error) {
	return name, nil
}

// Apply registers the routes and mounts of f on r. It stops at the first
// failure; routes registered before it stay on r.
func Apply(r *routing.Router, f *File, resolve Resolver) error {
	for i, rs := range f.Routes {
		source := fmt.Sprintf("routes[%d]", i)
		h, err := resolve(rs.Handler)
		if err != nil {
			return NewFieldError(source, "handler", "apply", err)
		}
		opts, err := rs.options()
		if err != nil {
			return NewFieldError(source, "constraints", "apply", err)
		}
		for _, method := range rs.Methods {
			if err := r.On(method, rs.Path, h, opts...); err != nil {
				return NewError(source, "apply", err)
			}
		}
	}

	for i, ms := range f.Mounts {
		source := fmt.Sprintf("mounts[%d]", i)
		h, err := resolve(ms.Handler)
		if err != nil {
			return NewFieldError(source, "handler", "apply", err)
		}
		hh, ok := h.(http.Handler)
		if !ok {
			return NewFieldError(source, "handler", "apply",
				fmt.Errorf("%q resolved to %T, not an http.Handler", ms.Handler, h))
		}
		if err := r.Mount(ms.Prefix, hh, ms.Methods...); err != nil {
			return NewError(source, "apply", err)
		}
	}
	return nil
}

// Build creates a router from the settings of f plus opts, then applies
// the routes of f to it.
func Build(f *File, resolve Resolver, opts ...routing.Option) (*routing.Router, error) {
	r, err := routing.New(append(f.Options(), opts...)...)
	if err != nil {
		return nil, NewError("router", "build", err)
	}
	if err := Apply(r, f, resolve); err != nil {
		return nil, err
	}
	return r, nil
}

// BuildFunc adapts f for a [routing.Reloader]. Router settings are fixed
// when the reloader is created; only routes and mounts come from f.
func BuildFunc(f *File, resolve Resolver) routing.BuildFunc {
	return func(r *routing.Router) error {
		return Apply(r, f, resolve)
	}
}

func (rs RouteSpec) options() ([]routing.RouteOption, error) {
	var opts []routing.RouteOption
	if len(rs.Constraints) > 0 {
		cs := make(map[string]any, len(rs.Constraints))
		for key, spec := range rs.Constraints {
			v, err := spec.Value()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			cs[key] = v
		}
		opts = append(opts, routing.WithConstraints(cs))
	}
	if len(rs.Defaults) > 0 {
		opts = append(opts, routing.WithDefaults(rs.Defaults))
	}
	meta := maps.Clone(rs.Meta)
	if rs.Controller != "" || rs.Action != "" {
		if meta == nil {
			meta = make(map[string]string, 2)
		}
		if rs.Controller != "" {
			meta[route.MetaController] = rs.Controller
		}
		if rs.Action != "" {
			meta[route.MetaAction] = rs.Action
		}
	}
	if len(meta) > 0 {
		opts = append(opts, routing.WithMeta(meta))
	}
	return opts, nil
}

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

// Package route defines the immutable record a router keeps for every
// registered route, plus the Info snapshot returned by introspection.
package route

import (
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"rivaas.dev/routing/constraint"
)

// Well-known metadata keys.
const (
	// MetaController and MetaAction are copied into lookup params.
	MetaController = "controller"
	MetaAction     = "action"
	// MetaMount marks routes registered by Mount.
	MetaMount = "mount"
)

// WildcardParam is the parameter name a trailing "*" captures into.
const WildcardParam = "*"

// Route is one registered (method, pattern, constraints) mapping.
// A Route is built during registration and never modified afterwards.
type Route struct {
	Method      string
	Path        string // pattern as declared, before optional-group expansion
	Pattern     string // canonical pattern used for duplicate detection
	Params      []string
	Constraints map[string]constraint.Value
	Defaults    map[string]string
	Meta        map[string]string
	Handler     any
}

// SameConstraints reports whether cs declares exactly the route's constraints.
func (r *Route) SameConstraints(cs map[string]constraint.Value) bool {
	return constraint.EqualMaps(r.Constraints, cs)
}

// IsStatic reports whether the route captures no parameters.
func (r *Route) IsStatic() bool { return len(r.Params) == 0 }

// IsMount reports whether the route was registered by Mount.
func (r *Route) IsMount() bool { return r.Meta[MetaMount] != "" }

// Info returns an introspection snapshot of the route.
func (r *Route) Info() Info {
	var cs map[string]string
	if len(r.Constraints) > 0 {
		cs = make(map[string]string, len(r.Constraints))
		for k, v := range r.Constraints {
			cs[k] = v.String()
		}
	}
	return Info{
		Method:      r.Method,
		Path:        r.Path,
		Pattern:     r.Pattern,
		Params:      slices.Clone(r.Params),
		Constraints: cs,
		Defaults:    maps.Clone(r.Defaults),
		Meta:        maps.Clone(r.Meta),
		HandlerName: HandlerName(r.Handler),
		IsStatic:    r.IsStatic(),
		IsMount:     r.IsMount(),
	}
}

// Info describes a registered route.
type Info struct {
	Method      string            // HTTP method (GET, POST, etc.)
	Path        string            // Route path as declared (/photos(/:id))
	Pattern     string            // Canonical pattern (/photos/:id)
	Params      []string          // Parameter names in capture order
	Constraints map[string]string // Constraint key -> exact value or pattern source
	Defaults    map[string]string // Declared defaults
	Meta        map[string]string // Free-form metadata
	HandlerName string            // Name of the handler
	IsStatic    bool              // True if route has no parameters
	IsMount     bool              // True if registered by Mount
}

// HandlerName returns a readable name for an opaque handler value.
func HandlerName(h any) string {
	switch v := h.(type) {
	case nil:
		return "nil"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(h)
	if rv.Kind() != reflect.Func {
		return fmt.Sprintf("%T", h)
	}
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return "unknown"
	}
	return shortFuncName(fn.Name())
}

// shortFuncName drops the import path, keeping "pkg.Func".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

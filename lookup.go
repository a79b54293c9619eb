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
	"maps"
	"net/http"

	"rivaas.dev/routing/constraint"
	"rivaas.dev/routing/route"
)

// Match is the result of a successful lookup.
type Match struct {
	// Handler is the opaque value passed to On.
	Handler any
	// Params holds, in increasing precedence, declared defaults, the
	// route's controller and action metadata, and captured path values.
	// The wildcard value is stored under "*".
	Params map[string]string
	// Route is the matched route.
	Route *route.Route
}

// Param returns the named parameter, or "".
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Lookup matches method and path, deriving constraint values from req.
// A nil req derives nothing. The path may carry a query string and may be
// in absolute form ("http://host/path").
func (r *Router) Lookup(method, path string, req *http.Request) (Match, bool) {
	var vals constraint.Values
	r.registry.Derive(req, &vals)
	return r.lookup(method, path, &vals)
}

// Find matches method and path against already-derived constraint values
// keyed by strategy name. Unknown keys never match.
func (r *Router) Find(method, path string, derived map[string]string) (Match, bool) {
	vals, err := r.registry.ValuesFrom(derived)
	if err != nil {
		r.metrics.miss()
		return Match{}, false
	}
	return r.lookup(method, path, &vals)
}

func (r *Router) lookup(method, path string, vals *constraint.Values) (Match, bool) {
	t := r.trees.getTree(method)
	if t == nil {
		r.metrics.miss()
		return Match{}, false
	}
	q, ok := r.prepare(path)
	if !ok {
		r.metrics.miss()
		return Match{}, false
	}
	q.Values = vals

	var buf [8]string
	rt, values := t.Find(q, buf[:0])
	if rt == nil {
		r.metrics.miss()
		return Match{}, false
	}
	r.metrics.hit()
	return Match{Handler: rt.Handler, Params: buildParams(rt, values), Route: rt}, true
}

// AllowedMethods returns the methods under which path matches, sorted.
func (r *Router) AllowedMethods(path string, req *http.Request) []string {
	var vals constraint.Values
	r.registry.Derive(req, &vals)
	q, ok := r.prepare(path)
	if !ok {
		return nil
	}
	q.Values = &vals

	var (
		out []string
		buf [8]string
	)
	for _, method := range r.trees.methods() {
		if rt, _ := r.trees.getTree(method).Find(q, buf[:0]); rt != nil {
			out = append(out, method)
		}
	}
	return out
}

func buildParams(rt *route.Route, values []string) map[string]string {
	params := make(map[string]string, len(rt.Defaults)+len(values)+2)
	maps.Copy(params, rt.Defaults)
	if c, ok := rt.Meta[route.MetaController]; ok {
		params[route.MetaController] = c
	}
	if a, ok := rt.Meta[route.MetaAction]; ok {
		params[route.MetaAction] = a
	}
	for i, name := range rt.Params {
		if i < len(values) {
			params[name] = values[i]
		}
	}
	return params
}

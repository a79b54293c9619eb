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
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type matchKey struct{}

// MatchFromContext returns the match ServeHTTP stored in ctx.
func MatchFromContext(ctx context.Context) (*Match, bool) {
	m, ok := ctx.Value(matchKey{}).(*Match)
	return m, ok
}

// ParamsFromContext returns the matched params, or nil.
func ParamsFromContext(ctx context.Context) map[string]string {
	if m, ok := MatchFromContext(ctx); ok {
		return m.Params
	}
	return nil
}

// Param returns one matched parameter of req, or "".
func Param(req *http.Request, name string) string {
	return ParamsFromContext(req.Context())[name]
}

// ServeHTTP looks up the request and dispatches to the matched handler.
//
// Handlers must implement http.Handler or be a
// func(http.ResponseWriter, *http.Request); any other handler value gets a
// 500 response. When nothing matches, ServeHTTP answers 405 with an Allow
// header if the path matches under other methods, and otherwise calls the
// not-found handler.
//
// If the request context carries a recording OpenTelemetry span, it is
// renamed to "METHOD pattern" and given the http.route attribute.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := req.URL.EscapedPath()
	m, ok := r.Lookup(req.Method, path, req)
	if !ok {
		r.serveMiss(w, req, path)
		return
	}

	ctx := context.WithValue(req.Context(), matchKey{}, &m)
	annotateSpan(ctx, req.Method, m.Route.Pattern)
	req = req.WithContext(ctx)

	switch h := m.Handler.(type) {
	case http.Handler:
		h.ServeHTTP(w, req)
	case func(http.ResponseWriter, *http.Request):
		h(w, req)
	default:
		r.emit(DiagHandlerNotServable, "handler cannot serve HTTP", map[string]any{
			"method":  req.Method,
			"pattern": m.Route.Pattern,
			"handler": m.Route.Info().HandlerName,
		})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (r *Router) serveMiss(w http.ResponseWriter, req *http.Request, path string) {
	if _, ok := r.prepare(path); !ok {
		r.emit(DiagBadRequestPath, "request path cannot be matched", map[string]any{
			"path": path,
		})
	}
	if r.methodNotAllowed {
		if allowed := r.AllowedMethods(path, req); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
	}
	if r.notFound != nil {
		r.notFound.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func annotateSpan(ctx context.Context, method, pattern string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetName(method + " " + pattern)
	span.SetAttributes(attribute.String("http.route", pattern))
}

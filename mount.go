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
	"slices"
	"strings"

	"rivaas.dev/routing/route"
)

type scriptNameKey struct{}

// ScriptName returns the path prefix consumed by mounts above the current
// handler, or "".
func ScriptName(ctx context.Context) string {
	s, _ := ctx.Value(scriptNameKey{}).(string)
	return s
}

// Mount serves every path below prefix with h. It registers prefix and
// prefix+"/*" for each method (GET when none is given). h sees a request
// whose URL path has the prefix removed; ScriptName reports the removed
// part. The caller's request is left untouched. If any route cannot be
// registered, none are.
//
// Example:
//
//	r.Mount("/static", http.FileServer(http.Dir("public")))
//	// GET /static/css/site.css is served as /css/site.css
func (r *Router) Mount(prefix string, h http.Handler, methods ...string) error {
	if h == nil {
		return newError(KindHandler, "", prefix, ErrInvalidHandler)
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	mh := &mountHandler{prefix: prefix, next: h}
	meta := WithMeta(map[string]string{route.MetaMount: prefix})

	root := prefix
	if root == "" {
		root = "/"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// All or nothing: on failure the routes from before the mount come back.
	saved := slices.Clone(r.routes)
	for _, method := range methods {
		for _, pattern := range []string{root, prefix + "/*"} {
			if err := r.on(method, pattern, mh, []RouteOption{meta}); err != nil {
				if !r.frozen.Load() {
					r.rebuild(saved)
				}
				r.registrationFailed(method, pattern, err)
				return err
			}
		}
	}
	return nil
}

// mountHandler rewrites the request path around a mounted handler.
type mountHandler struct {
	prefix string
	next   http.Handler
}

func (m *mountHandler) String() string {
	return "mount(" + route.HandlerName(m.next) + ")"
}

func (m *mountHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rest := ParamsFromContext(req.Context())[route.WildcardParam]

	consumed := m.prefix
	if p := req.URL.Path; strings.HasSuffix(p, rest) {
		consumed = strings.TrimSuffix(p[:len(p)-len(rest)], "/")
	}

	u := *req.URL
	u.Path = "/" + rest
	u.RawPath = ""
	ctx := context.WithValue(req.Context(), scriptNameKey{}, ScriptName(req.Context())+consumed)

	inner := req.WithContext(ctx)
	inner.URL = &u
	m.next.ServeHTTP(w, inner)
}

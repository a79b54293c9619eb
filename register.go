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
	"errors"
	"fmt"
	"maps"

	"golang.org/x/net/http/httpguts"

	"rivaas.dev/routing/constraint"
	"rivaas.dev/routing/internal/tree"
	"rivaas.dev/routing/route"
)

// RouteOption configures a single registration.
type RouteOption func(*routeOptions)

type routeOptions struct {
	constraints    map[string]any
	constraintsSet bool
	defaults       map[string]string
	meta           map[string]string
}

// routeConfig is the validated form of routeOptions.
type routeConfig struct {
	constraints    map[string]constraint.Value
	constraintsSet bool
	defaults       map[string]string
	meta           map[string]string
}

// WithConstraint requires the request-derived value of key to match v,
// which may be a string, a *regexp.Regexp or a constraint.Value.
//
// Example:
//
//	r.On("GET", "/", home, routing.WithConstraint("host", regexp.MustCompile(`^.+\.example\.com$`)))
func WithConstraint(key string, v any) RouteOption {
	return func(o *routeOptions) {
		if o.constraints == nil {
			o.constraints = make(map[string]any)
		}
		o.constraints[key] = v
		o.constraintsSet = true
	}
}

// WithConstraints adds several constraints at once. See WithConstraint.
func WithConstraints(cs map[string]any) RouteOption {
	return func(o *routeOptions) {
		if o.constraints == nil {
			o.constraints = make(map[string]any, len(cs))
		}
		maps.Copy(o.constraints, cs)
		o.constraintsSet = true
	}
}

// WithDefaults declares parameter values used when the path does not
// capture them.
func WithDefaults(defaults map[string]string) RouteOption {
	return func(o *routeOptions) {
		if o.defaults == nil {
			o.defaults = make(map[string]string, len(defaults))
		}
		maps.Copy(o.defaults, defaults)
	}
}

// WithMeta attaches free-form metadata to the route.
func WithMeta(meta map[string]string) RouteOption {
	return func(o *routeOptions) {
		if o.meta == nil {
			o.meta = make(map[string]string, len(meta))
		}
		maps.Copy(o.meta, meta)
	}
}

// WithController records the controller and action the route dispatches
// to. Both are merged into lookup params.
func WithController(controller, action string) RouteOption {
	return WithMeta(map[string]string{
		route.MetaController: controller,
		route.MetaAction:     action,
	})
}

func (r *Router) routeConfig(opts []RouteOption) (routeConfig, error) {
	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := routeConfig{
		constraintsSet: o.constraintsSet,
		defaults:       o.defaults,
		meta:           o.meta,
	}
	if len(o.constraints) > 0 {
		cfg.constraints = make(map[string]constraint.Value, len(o.constraints))
		for key, raw := range o.constraints {
			v, err := constraint.ValueOf(raw)
			if err != nil {
				return routeConfig{}, fmt.Errorf("constraint %q: %w", key, err)
			}
			cfg.constraints[key] = v
		}
		if err := r.registry.Validate(cfg.constraints); err != nil {
			return routeConfig{}, err
		}
	}
	return cfg, nil
}

// On registers handler for method and pattern.
//
// Pattern syntax:
//
//	/photos/print      static text
//	/photos/:id        named parameter, up to the next '/'
//	/books/:id::edit   parameter followed by the literal suffix ":edit"
//	/files/*           wildcard capturing the rest of the path as "*"
//	/photos(/:id)      trailing optional parameter, registered with and without it
//	/time/10::30       "::" is a literal ':'; '%' is matched literally as "%25"
//
// The handler is opaque to the router. ServeHTTP can dispatch values
// implementing http.Handler or of type func(http.ResponseWriter, *http.Request).
//
// Routes on the same method whose patterns differ only in parameter names,
// such as /p/:id and /p/:name, are duplicates.
//
// Errors are of type *Error and wrap ErrInvalidPattern, ErrDuplicateRoute,
// ErrUnknownConstraint, ErrInvalidConstraintValue, ErrTooManyHandlers,
// ErrInvalidMethod or ErrRouterFrozen.
func (r *Router) On(method, pattern string, handler any, opts ...RouteOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.on(method, pattern, handler, opts)
	if err != nil {
		r.registrationFailed(method, pattern, err)
	}
	return err
}

// registrationFailed records a rejected registration. Called under r.mu.
func (r *Router) registrationFailed(method, pattern string, err error) {
	kind := ErrorKind("unknown")
	var re *Error
	if errors.As(err, &re) {
		kind = re.Kind
	}
	r.metrics.registrationError(kind)
	r.emit(DiagRouteRegistrationError, "route registration failed", map[string]any{
		"method":  method,
		"pattern": pattern,
		"error":   err.Error(),
	})
}

// MustOn is like On but panics on error.
func (r *Router) MustOn(method, pattern string, handler any, opts ...RouteOption) {
	if err := r.On(method, pattern, handler, opts...); err != nil {
		panic(err)
	}
}

// check returns, per variant, the index of the route it replaces or -1.
func (r *Router) check(t *tree.Tree, method string, variants []compiledPattern, cs map[string]constraint.Value) ([]int, error) {
	replace := make([]int, len(variants))
	for i, v := range variants {
		hs := t.Handlers(t.Insert(v.segs), r.newStorage)
		// A route at the same leaf may differ only in parameter names.
		replace[i] = r.indexOfRoute(hs.Conflict(cs))
		if replace[i] >= 0 && !r.reloadMode {
			return nil, newError(KindDuplicate, method, v.pattern, ErrDuplicateRoute)
		}
		if replace[i] < 0 && hs.Len() >= tree.MaxHandlers {
			return nil, newError(KindCapacity, method, v.pattern, ErrTooManyHandlers)
		}
	}
	return replace, nil
}

// on registers under r.mu.
func (r *Router) on(method, pattern string, handler any, opts []RouteOption) error {
	if r.frozen.Load() {
		return newError(KindFrozen, method, pattern, ErrRouterFrozen)
	}
	if !httpguts.ValidHeaderFieldName(method) {
		return newError(KindMethod, method, pattern, fmt.Errorf("%w: %q", ErrInvalidMethod, method))
	}
	if handler == nil {
		return newError(KindHandler, method, pattern, ErrInvalidHandler)
	}

	cfg, err := r.routeConfig(opts)
	if err != nil {
		return newError(KindConstraint, method, pattern, err)
	}
	variants, err := r.compile(method, pattern)
	if err != nil {
		return err
	}

	// Check every variant before inserting any. Checking walks the tree by
	// inserting nodes, so a rejected registration rebuilds the trees from
	// the route list and leaves them as they were.
	t := r.trees.getOrCreate(method, r.maxParamLength)
	replace, err := r.check(t, method, variants, cfg.constraints)
	if err != nil {
		r.rebuild(r.routes)
		return err
	}

	for i, v := range variants {
		rt := &route.Route{
			Method:      method,
			Path:        pattern,
			Pattern:     v.pattern,
			Params:      v.params,
			Constraints: cfg.constraints,
			Defaults:    cfg.defaults,
			Meta:        cfg.meta,
			Handler:     handler,
		}
		hs := t.Handlers(t.Insert(v.segs), r.newStorage)
		if err := hs.Add(rt, replace[i] >= 0); err != nil {
			// Capacity and duplicates were checked above.
			panic(fmt.Sprintf("routing: inconsistent handler storage for %s %s: %v", method, v.pattern, err))
		}

		if replace[i] >= 0 {
			r.routes[replace[i]] = entry{route: rt, segs: v.segs}
			r.logger.Info("route replaced", "method", method, "pattern", v.pattern)
			r.emit(DiagRouteReplaced, "duplicate route replaced in reload mode", map[string]any{
				"method":  method,
				"pattern": v.pattern,
			})
			continue
		}

		r.routes = append(r.routes, entry{route: rt, segs: v.segs})
		r.logger.Debug("route registered",
			"method", method,
			"pattern", v.pattern,
			"params", len(v.params),
			"constraints", len(cfg.constraints),
		)
		r.emit(DiagRouteRegistered, "route registered", map[string]any{
			"method":  method,
			"pattern": v.pattern,
		})
		if len(v.params) > highParamCount {
			r.emit(DiagHighParamCount, "route has many parameters", map[string]any{
				"method":  method,
				"pattern": v.pattern,
				"params":  len(v.params),
			})
		}
	}

	r.registry.NoteUsage(cfg.constraints)
	r.metrics.setRoutes(len(r.routes))
	return nil
}

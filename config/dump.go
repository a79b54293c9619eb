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
	"slices"

	"rivaas.dev/routing/config/codec"
)

// Encode renders f as a document of type typ. Empty fields are left out,
// so a decoded and re-encoded file keeps its shape.
func Encode(f *File, typ codec.Type) ([]byte, error) {
	enc, err := codec.GetEncoder(typ)
	if err != nil {
		return nil, NewError(string(typ), "encode", err)
	}
	b, err := enc.Encode(f.document())
	if err != nil {
		return nil, NewError(string(typ), "encode", err)
	}
	return b, nil
}

// document converts f into the generic shape every codec can encode.
func (f *File) document() map[string]any {
	doc := make(map[string]any)

	router := make(map[string]any)
	s := f.Router
	setIf(router, "case_insensitive", s.CaseInsensitive, s.CaseInsensitive)
	setIf(router, "ignore_duplicate_slashes", s.IgnoreDuplicateSlashes, s.IgnoreDuplicateSlashes)
	setIf(router, "max_param_length", s.MaxParamLength, s.MaxParamLength != 0)
	setIf(router, "reload_mode", s.ReloadMode, s.ReloadMode)
	if s.MethodNotAllowed != nil {
		router["method_not_allowed"] = *s.MethodNotAllowed
	}
	setIf(router, "metrics_namespace", s.MetricsNamespace, s.MetricsNamespace != "")
	if len(router) > 0 {
		doc["router"] = router
	}

	if len(f.Strategies) > 0 {
		strategies := make([]map[string]any, len(f.Strategies))
		for i, st := range f.Strategies {
			strategies[i] = map[string]any{"name": st.Name, "header": st.Header}
		}
		doc["strategies"] = strategies
	}

	if len(f.Routes) > 0 {
		routes := make([]map[string]any, len(f.Routes))
		for i, rs := range f.Routes {
			m := map[string]any{
				"methods": slices.Clone(rs.Methods),
				"path":    rs.Path,
				"handler": rs.Handler,
			}
			if len(rs.Constraints) > 0 {
				cs := make(map[string]any, len(rs.Constraints))
				for k, c := range rs.Constraints {
					if c.Pattern != "" {
						cs[k] = map[string]any{"pattern": c.Pattern}
					} else {
						cs[k] = c.Exact
					}
				}
				m["constraints"] = cs
			}
			setIf(m, "defaults", rs.Defaults, len(rs.Defaults) > 0)
			setIf(m, "controller", rs.Controller, rs.Controller != "")
			setIf(m, "action", rs.Action, rs.Action != "")
			setIf(m, "meta", rs.Meta, len(rs.Meta) > 0)
			routes[i] = m
		}
		doc["routes"] = routes
	}

	if len(f.Mounts) > 0 {
		mounts := make([]map[string]any, len(f.Mounts))
		for i, ms := range f.Mounts {
			m := map[string]any{"prefix": ms.Prefix, "handler": ms.Handler}
			setIf(m, "methods", slices.Clone(ms.Methods), len(ms.Methods) > 0)
			mounts[i] = m
		}
		doc["mounts"] = mounts
	}

	return doc
}

func setIf(m map[string]any, key string, v any, ok bool) {
	if ok {
		m[key] = v
	}
}

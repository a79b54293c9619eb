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
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"rivaas.dev/routing/config/codec"
)

// envSettings lists the router settings environment variables can
// override, with the conversion each value goes through.
var envSettings = map[string]func(any) (any, error){
	"case_insensitive":         func(v any) (any, error) { return cast.ToBoolE(v) },
	"ignore_duplicate_slashes": func(v any) (any, error) { return cast.ToBoolE(v) },
	"max_param_length":         func(v any) (any, error) { return cast.ToIntE(v) },
	"reload_mode":              func(v any) (any, error) { return cast.ToBoolE(v) },
	"method_not_allowed":       func(v any) (any, error) { return cast.ToBoolE(v) },
	"metrics_namespace":        func(v any) (any, error) { return cast.ToStringE(v) },
}

// envOverrides returns {"router": {...}} for the prefixed variables in
// environ that name a router setting. Other prefixed variables are ignored.
func envOverrides(prefix string, environ []string) (map[string]any, error) {
	var raw map[string]any
	if err := (codec.EnvCodec{Prefix: prefix}).Decode([]byte(strings.Join(environ, "\n")), &raw); err != nil {
		return nil, NewError("env", "decode", err)
	}

	router := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		convert, ok := envSettings[key]
		if !ok {
			continue
		}
		v, err := convert(raw[key])
		if err != nil {
			return nil, NewFieldError("env", strings.ToUpper(prefix+"_"+key), "decode", err)
		}
		router[key] = v
	}
	if len(router) == 0 {
		return map[string]any{}, nil
	}
	return map[string]any{"router": router}, nil
}

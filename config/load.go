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
	"os"
	"reflect"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"

	"rivaas.dev/routing/config/codec"
)

// DefaultEnvPrefix is the environment prefix used by [WithEnv] when given
// an empty prefix.
const DefaultEnvPrefix = "ROUTING"

// LoadOption configures Load and Parse.
type LoadOption func(*loader)

type loader struct {
	typ       codec.Type
	envPrefix string
	environ   []string
}

// WithEnv enables router setting overrides from environment variables
// named PREFIX_SETTING, such as ROUTING_MAX_PARAM_LENGTH.
func WithEnv(prefix string) LoadOption {
	return func(l *loader) {
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}
		l.envPrefix = prefix
	}
}

// WithEnviron replaces os.Environ as the source of environment overrides.
// It has no effect unless WithEnv is also given.
func WithEnviron(environ []string) LoadOption {
	return func(l *loader) {
		l.environ = environ
	}
}

// WithType decodes the document as typ instead of guessing from the
// file extension.
func WithType(typ codec.Type) LoadOption {
	return func(l *loader) {
		l.typ = typ
	}
}

func newLoader(opts []LoadOption) *loader {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, decodes, binds and validates the route table at path.
// The format follows the file extension unless WithType is given.
func Load(path string, opts ...LoadOption) (*File, error) {
	l := newLoader(opts)
	typ := l.typ
	if typ == "" {
		var err error
		if typ, err = codec.TypeForPath(path); err != nil {
			return nil, NewError(path, "decode", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(path, "read", err)
	}
	return l.load(path, data, typ)
}

// Parse decodes, binds and validates a route table held in memory.
func Parse(data []byte, typ codec.Type, opts ...LoadOption) (*File, error) {
	return newLoader(opts).load(string(typ), data, typ)
}

func (l *loader) load(source string, data []byte, typ codec.Type) (*File, error) {
	dec, err := codec.GetDecoder(typ)
	if err != nil {
		return nil, NewError(source, "decode", err)
	}
	var doc map[string]any
	if err := dec.Decode(data, &doc); err != nil {
		return nil, NewError(source, "decode", err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	if l.envPrefix != "" {
		environ := l.environ
		if environ == nil {
			environ = os.Environ()
		}
		overrides, err := envOverrides(l.envPrefix, environ)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&doc, overrides, mergo.WithOverride); err != nil {
			return nil, NewError("env", "merge", err)
		}
	}

	var f File
	if err := bind(doc, &f); err != nil {
		return nil, NewError(source, "bind", err)
	}
	f.normalize()
	if err := validateFile(source, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func bind(doc map[string]any, f *File) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           f,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(constraintHook),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(doc)
}

var constraintSpecType = reflect.TypeFor[ConstraintSpec]()

// constraintHook lets a scalar stand for an exact constraint value.
func constraintHook(from, to reflect.Type, data any) (any, error) {
	if to != constraintSpecType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return ConstraintSpec{Exact: fmt.Sprint(data)}, nil
	default:
		return data, nil
	}
}

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
	"errors"
	"fmt"
	"regexp"

	"rivaas.dev/routing"
	"rivaas.dev/routing/constraint"
)

// File is a declarative route table.
type File struct {
	Router     Settings       `config:"router"`
	Strategies []StrategySpec `config:"strategies" validate:"dive"`
	Routes     []RouteSpec    `config:"routes" validate:"dive"`
	Mounts     []MountSpec    `config:"mounts" validate:"dive"`
}

// Settings holds router options.
type Settings struct {
	CaseInsensitive        bool  `config:"case_insensitive"`
	IgnoreDuplicateSlashes bool  `config:"ignore_duplicate_slashes"`
	MaxParamLength         int   `config:"max_param_length" validate:"gte=0"` // zero keeps the router default
	ReloadMode             bool  `config:"reload_mode"`
	MethodNotAllowed       *bool `config:"method_not_allowed"`
	// MetricsNamespace prefixes metric names when metrics are enabled by the caller.
	MetricsNamespace string `config:"metrics_namespace"`
}

// StrategySpec declares a custom constraint strategy that reads a request header.
type StrategySpec struct {
	Name   string `config:"name" validate:"required"`
	Header string `config:"header" validate:"required"`
}

// RouteSpec declares one route, registered once per method.
type RouteSpec struct {
	Methods     []string                  `config:"methods" validate:"required,min=1,dive,required"`
	Path        string                    `config:"path" validate:"required"`
	Handler     string                    `config:"handler" validate:"required"`
	Constraints map[string]ConstraintSpec `config:"constraints"`
	Defaults    map[string]string         `config:"defaults"`
	Controller  string                    `config:"controller"`
	Action      string                    `config:"action"`
	Meta        map[string]string         `config:"meta"`
}

// MountSpec declares a sub-application mounted under a prefix.
type MountSpec struct {
	Prefix  string   `config:"prefix" validate:"omitempty,startswith=/"`
	Handler string   `config:"handler" validate:"required"`
	Methods []string `config:"methods" validate:"dive,required"`
}

// ConstraintSpec is a constraint value. In a document it is either a plain
// string, matched exactly, or a table with a pattern key.
type ConstraintSpec struct {
	Exact   string `config:"exact"`
	Pattern string `config:"pattern"`
}

// Value compiles s into a constraint value.
func (s ConstraintSpec) Value() (constraint.Value, error) {
	switch {
	case s.Pattern != "" && s.Exact != "":
		return constraint.Value{}, errors.New("exact and pattern are mutually exclusive")
	case s.Pattern != "":
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return constraint.Value{}, fmt.Errorf("pattern: %w", err)
		}
		return constraint.Pattern(re), nil
	default:
		return constraint.Exact(s.Exact), nil
	}
}

// Options returns the router options declared by s.
func (s Settings) Options() []routing.Option {
	opts := []routing.Option{
		routing.WithCaseSensitive(!s.CaseInsensitive),
		routing.WithIgnoreDuplicateSlashes(s.IgnoreDuplicateSlashes),
		routing.WithReloadMode(s.ReloadMode),
	}
	if s.MaxParamLength > 0 {
		opts = append(opts, routing.WithMaxParamLength(s.MaxParamLength))
	}
	if s.MethodNotAllowed != nil {
		opts = append(opts, routing.WithMethodNotAllowed(*s.MethodNotAllowed))
	}
	if s.MetricsNamespace != "" {
		opts = append(opts, routing.WithMetricsNamespace(s.MetricsNamespace))
	}
	return opts
}

// Options returns the router settings plus one strategy option per
// declared strategy.
func (f *File) Options() []routing.Option {
	opts := f.Router.Options()
	if len(f.Strategies) > 0 {
		strategies := make([]constraint.Strategy, len(f.Strategies))
		for i, s := range f.Strategies {
			strategies[i] = constraint.Header(s.Name, s.Header)
		}
		opts = append(opts, routing.WithStrategy(strategies...))
	}
	return opts
}

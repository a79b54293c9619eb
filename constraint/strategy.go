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

package constraint

import (
	"fmt"
	"net/http"
	"net/textproto"
)

// Strategy derives one constraint value from a request and validates the
// values routes declare for it.
type Strategy interface {
	// Name is the constraint key routes use, e.g. "host".
	Name() string
	// Custom reports whether the strategy was supplied by the user.
	// Custom strategies are derived on every lookup; built-ins only once a
	// route uses them.
	Custom() bool
	// MustMatchWhenDerived reports whether a request that carries a value
	// for this strategy must never match a route lacking the constraint.
	MustMatchWhenDerived() bool
	// Validate checks a value declared on a route.
	Validate(v Value) error
	// NewStore returns the per-leaf storage for this strategy's values.
	NewStore() Store
	// Derive extracts the value from req.
	Derive(req *http.Request) (string, bool)
}

type hostStrategy struct{}

// Host returns the built-in strategy keyed "host". It derives the request
// host and accepts exact or pattern values.
func Host() Strategy { return hostStrategy{} }

func (hostStrategy) Name() string               { return "host" }
func (hostStrategy) Custom() bool               { return false }
func (hostStrategy) MustMatchWhenDerived() bool { return false }
func (hostStrategy) NewStore() Store            { return NewMatchStore() }

func (hostStrategy) Validate(v Value) error {
	if v.IsZero() {
		return fmt.Errorf("%w: host must be a string or a pattern", ErrInvalidValue)
	}
	return nil
}

func (hostStrategy) Derive(req *http.Request) (string, bool) {
	if req.Host != "" {
		return req.Host, true
	}
	if h := req.Header.Get("Host"); h != "" {
		return h, true
	}
	return "", false
}

type headerStrategy struct {
	name   string
	header string
}

// Header returns a custom strategy keyed name that derives its value from
// the given request header. Exact and pattern values are accepted.
func Header(name, header string) Strategy {
	return headerStrategy{name: name, header: textproto.CanonicalMIMEHeaderKey(header)}
}

func (s headerStrategy) Name() string             { return s.name }
func (headerStrategy) Custom() bool               { return true }
func (headerStrategy) MustMatchWhenDerived() bool { return false }
func (headerStrategy) NewStore() Store            { return NewMatchStore() }

func (s headerStrategy) Validate(v Value) error {
	if v.IsZero() {
		return fmt.Errorf("%w: %s must be a string or a pattern", ErrInvalidValue, s.name)
	}
	return nil
}

func (s headerStrategy) Derive(req *http.Request) (string, bool) {
	vals := req.Header[s.header]
	if len(vals) == 0 || vals[0] == "" {
		return "", false
	}
	return vals[0], true
}

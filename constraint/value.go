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
	"regexp"
)

// Kind tells which variant a Value holds.
type Kind uint8

const (
	// KindExact matches a derived value by string equality.
	KindExact Kind = iota + 1
	// KindPattern matches a derived value with a regular expression.
	KindPattern
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPattern:
		return "pattern"
	default:
		return "invalid"
	}
}

// Value is a constraint value declared on a route.
// It is either an exact string or a compiled pattern; the zero Value is invalid.
type Value struct {
	kind  Kind
	exact string
	re    *regexp.Regexp
}

// Exact returns a Value that matches s exactly.
func Exact(s string) Value {
	return Value{kind: KindExact, exact: s}
}

// Pattern returns a Value that matches derived values accepted by re.
// A nil re yields the zero (invalid) Value.
func Pattern(re *regexp.Regexp) Value {
	if re == nil {
		return Value{}
	}
	return Value{kind: KindPattern, re: re}
}

// MustPattern compiles expr and returns it as a pattern Value.
// It panics if expr is not a valid regular expression.
func MustPattern(expr string) Value {
	return Pattern(regexp.MustCompile(expr))
}

// ValueOf converts a loosely typed constraint declaration into a Value.
// Accepted types are string, *regexp.Regexp and Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		if x.IsZero() {
			return Value{}, fmt.Errorf("%w: zero value", ErrInvalidValue)
		}
		return x, nil
	case string:
		return Exact(x), nil
	case *regexp.Regexp:
		if x == nil {
			return Value{}, fmt.Errorf("%w: nil pattern", ErrInvalidValue)
		}
		return Pattern(x), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the zero Value.
func (v Value) IsZero() bool { return v.kind == 0 }

// Regexp returns the compiled pattern, or nil for exact values.
func (v Value) Regexp() *regexp.Regexp { return v.re }

// String returns the exact text or the pattern source.
func (v Value) String() string {
	switch v.kind {
	case KindExact:
		return v.exact
	case KindPattern:
		return v.re.String()
	default:
		return ""
	}
}

// Match reports whether the derived value s satisfies v.
func (v Value) Match(s string) bool {
	switch v.kind {
	case KindExact:
		return v.exact == s
	case KindPattern:
		return v.re.MatchString(s)
	default:
		return false
	}
}

// Equal reports whether v and o declare the same constraint.
// Patterns compare by source text; a pattern never equals an exact value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindExact:
		return v.exact == o.exact
	case KindPattern:
		return v.re.String() == o.re.String()
	default:
		return true
	}
}

// EqualMaps reports whether two constraint maps declare the same constraints.
func EqualMaps(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

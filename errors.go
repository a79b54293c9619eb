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

	"rivaas.dev/routing/constraint"
	"rivaas.dev/routing/internal/tree"
)

var (
	// ErrInvalidPattern indicates a malformed route pattern.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrDuplicateRoute indicates the method, pattern and constraints are already registered.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrUnknownConstraint indicates a constraint key with no registered strategy.
	ErrUnknownConstraint = constraint.ErrUnknownConstraint

	// ErrInvalidConstraintValue indicates a constraint value its strategy rejects.
	ErrInvalidConstraintValue = constraint.ErrInvalidValue

	// ErrTooManyHandlers indicates more than 32 routes share one trie leaf.
	ErrTooManyHandlers = tree.ErrTooManyHandlers

	// ErrInvalidMethod indicates an empty or malformed HTTP method.
	ErrInvalidMethod = errors.New("invalid method")

	// ErrRouterFrozen indicates a registration after Freeze.
	ErrRouterFrozen = errors.New("router is frozen")

	// ErrInvalidHandler indicates a nil handler.
	ErrInvalidHandler = errors.New("invalid handler")

	// ErrInvalidOption indicates a router option with an out-of-range value.
	ErrInvalidOption = errors.New("invalid router option")
)

// ErrorKind classifies registration errors.
type ErrorKind string

const (
	KindPattern    ErrorKind = "pattern"
	KindDuplicate  ErrorKind = "duplicate"
	KindConstraint ErrorKind = "constraint"
	KindCapacity   ErrorKind = "capacity"
	KindMethod     ErrorKind = "method"
	KindHandler    ErrorKind = "handler"
	KindFrozen     ErrorKind = "frozen"
)

// Error is returned by registration methods. It carries the offending
// method and pattern and wraps one of the sentinel errors above, so
// errors.Is(err, ErrDuplicateRoute) works.
type Error struct {
	Kind    ErrorKind
	Method  string
	Pattern string
	Err     error
}

// Error returns a formatted error message with the route context.
func (e *Error) Error() string {
	switch {
	case e.Method == "" && e.Pattern == "":
		return "routing: " + e.Err.Error()
	case e.Method == "":
		return fmt.Sprintf("routing: %s: %v", e.Pattern, e.Err)
	default:
		return fmt.Sprintf("routing: %s %s: %v", e.Method, e.Pattern, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, method, pattern string, err error) *Error {
	return &Error{Kind: kind, Method: method, Pattern: pattern, Err: err}
}

func patternError(method, pattern, format string, args ...any) *Error {
	return newError(KindPattern, method, pattern, fmt.Errorf("%w: "+format, append([]any{ErrInvalidPattern}, args...)...))
}

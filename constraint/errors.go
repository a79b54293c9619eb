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

import "errors"

var (
	// ErrInvalidValue indicates a constraint value of the wrong type or shape for its strategy.
	ErrInvalidValue = errors.New("invalid constraint value")

	// ErrUnknownConstraint indicates a constraint key with no registered strategy.
	ErrUnknownConstraint = errors.New("unknown constraint")

	// ErrTooManyStrategies indicates the registry is full.
	ErrTooManyStrategies = errors.New("too many constraint strategies")

	// ErrDuplicateStrategy indicates two strategies registered under the same name.
	ErrDuplicateStrategy = errors.New("duplicate constraint strategy")
)

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

// Package constraint implements request-derived route constraints.
//
// A Strategy extracts one value from a request (the host, the
// Accept-Version header, or any custom header) and validates the values
// routes declare for it. Declared values are either exact strings or
// compiled patterns (see Value). Each trie leaf keeps one Store per
// constraint key, mapping declared values to bitsets of handler indices.
//
// The Registry owned by a router assigns every strategy a small integer
// ID so that derived values travel in a fixed-size Values array and the
// lookup path stays allocation-free.
package constraint

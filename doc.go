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

// Package routing is an HTTP request router built on a backtracking trie.
//
// It maps a method and path, optionally qualified by values derived from
// the request such as the host or the Accept-Version header, to a
// registered handler and the named parameters captured from the path.
//
// # Patterns
//
//	/photos/print      static text
//	/photos/:id        named parameter; never crosses '/'
//	/books/:id::edit   parameter followed by the literal suffix ":edit"
//	/files/*           wildcard; captures the rest of the path under "*"
//	/photos(/:id)      trailing optional parameter
//	/time/10::30       literal ':'
//
// When several routes could match, static text wins over parameters and
// parameters win over wildcards. The lookup backtracks, so "/a/b/c" still
// matches "/a/:x/c" when "/a/b/d" is also registered.
//
// # Constraints
//
// Routes sharing one path can be told apart by constraints:
//
//	r.MustOn("GET", "/", homeA, routing.WithConstraint("host", "a.com"))
//	r.MustOn("GET", "/", homeB, routing.WithConstraint("host", "b.com"))
//	r.MustOn("GET", "/", home)
//
// The most constrained matching route wins; the unconstrained one serves
// every other host. The built-in "version" constraint selects the highest
// declared semantic version satisfying the request's Accept-Version
// header. Custom strategies are added with WithStrategy.
//
// # Concurrency
//
// Routes are registered during a single-threaded setup phase. Afterwards
// Lookup, Find and ServeHTTP may run concurrently without locks. Use a
// Reloader to replace routes while serving.
package routing

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

// Package config loads declarative route tables for a [routing.Router].
//
// A route table is a YAML, TOML or JSON document:
//
//	router:
//	  case_insensitive: true
//	  max_param_length: 64
//	strategies:
//	  - name: tenant
//	    header: X-Tenant
//	routes:
//	  - methods: GET
//	    path: /users/:id
//	    handler: users.show
//	    constraints:
//	      host: api.example.com
//	      tenant:
//	        pattern: ^acme-
//	mounts:
//	  - prefix: /admin
//	    handler: admin
//
// [Load] picks the format from the file extension, applies environment
// overrides for router settings when [WithEnv] is given, binds the result
// to a [File] and validates it. [Build] turns a File into a router, with
// handler names resolved by a [Resolver]. [Watcher] reloads a file when it
// changes, which pairs with [routing.Reloader]:
//
//	f, err := config.Load("routes.yaml")
//	if err != nil {
//	    return err
//	}
//	rl, err := routing.NewReloader(config.BuildFunc(f, resolve), f.Options()...)
//	if err != nil {
//	    return err
//	}
//	w, err := config.NewWatcher("routes.yaml", func(f *config.File) {
//	    _ = rl.Rebuild(config.BuildFunc(f, resolve))
//	})
//
// Errors carry their source and field as an [*Error].
package config

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
	"maps"
	"net/http"
	"slices"

	"rivaas.dev/routing/internal/tree"
)

// methodTrees holds per-method tree roots for lookup via switch.
// Used instead of map[string]*tree.Tree to avoid string hashing in the hot
// path for the common methods; other methods fall back to a map.
type methodTrees struct {
	get     *tree.Tree
	post    *tree.Tree
	put     *tree.Tree
	delete  *tree.Tree
	patch   *tree.Tree
	head    *tree.Tree
	options *tree.Tree
	other   map[string]*tree.Tree
}

// getTree returns the tree for the given HTTP method, or nil.
func (m *methodTrees) getTree(method string) *tree.Tree {
	switch method {
	case http.MethodGet:
		return m.get
	case http.MethodPost:
		return m.post
	case http.MethodPut:
		return m.put
	case http.MethodDelete:
		return m.delete
	case http.MethodPatch:
		return m.patch
	case http.MethodHead:
		return m.head
	case http.MethodOptions:
		return m.options
	default:
		return m.other[method]
	}
}

// setTree sets the tree for the given HTTP method.
func (m *methodTrees) setTree(method string, t *tree.Tree) {
	switch method {
	case http.MethodGet:
		m.get = t
	case http.MethodPost:
		m.post = t
	case http.MethodPut:
		m.put = t
	case http.MethodDelete:
		m.delete = t
	case http.MethodPatch:
		m.patch = t
	case http.MethodHead:
		m.head = t
	case http.MethodOptions:
		m.options = t
	default:
		if m.other == nil {
			m.other = make(map[string]*tree.Tree)
		}
		m.other[method] = t
	}
}

// getOrCreate returns the tree for method, creating it when missing.
func (m *methodTrees) getOrCreate(method string, maxParamLength int) *tree.Tree {
	if t := m.getTree(method); t != nil {
		return t
	}
	t := tree.New(maxParamLength)
	m.setTree(method, t)
	return t
}

// methods returns the methods that have a tree, sorted.
func (m *methodTrees) methods() []string {
	var out []string
	for _, method := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions,
	} {
		if m.getTree(method) != nil {
			out = append(out, method)
		}
	}
	out = append(out, slices.Collect(maps.Keys(m.other))...)
	slices.Sort(out)
	return out
}

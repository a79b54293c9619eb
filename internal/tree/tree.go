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

// Package tree implements the backtracking trie behind the router.
//
// Nodes live in an arena owned by Tree and refer to their children by
// index. There are three node kinds:
//
//   - Static nodes match a literal prefix and may own static, parametric
//     and wildcard children.
//   - Parametric nodes capture one path segment and may require a literal
//     suffix after it. They own static children only.
//   - Wildcard nodes capture the rest of the path.
//
// Any node may be a leaf carrying a HandlerStorage, which picks one route
// among those sharing the node based on request-derived constraints.
//
// A Tree is built during a single-threaded registration phase. After that
// Find performs no writes and may be called from many goroutines.
package tree

import (
	"slices"
	"strings"
)

// Kind is the node variant.
type Kind uint8

const (
	Static Kind = iota
	Parametric
	Wildcard
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Parametric:
		return "parametric"
	case Wildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// NodeID is an index into the tree's node arena.
type NodeID int32

const (
	// Root is the ID of the root static node, whose prefix is "/".
	Root NodeID = 0
	none NodeID = -1
)

// Segment is one insertion step produced by the pattern compiler.
type Segment struct {
	Kind Kind
	// Text is the literal prefix of a static segment or the literal suffix
	// of a parametric one.
	Text string
	// NodePath is the pattern prefix up to and including a parameter.
	NodePath string
}

// edge is a static child keyed by the first byte of its prefix.
type edge struct {
	label byte
	child NodeID
}

type node struct {
	kind      Kind
	prefix    string   // static
	suffix    string   // parametric
	nodePaths []string // parametric, informational
	edges     []edge
	params    []NodeID // ordered most specific suffix first
	wildcard  NodeID
	handlers  *HandlerStorage
}

// Tree is the trie for one HTTP method.
type Tree struct {
	nodes          []node
	maxParamLength int
}

// New returns a tree holding only the root node. Parameter values longer
// than maxParamLength bytes never match; zero disables the limit.
func New(maxParamLength int) *Tree {
	t := &Tree{maxParamLength: maxParamLength}
	t.alloc(node{kind: Static, prefix: "/"})
	return t
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) alloc(n node) NodeID {
	n.wildcard = none
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Insert creates the nodes described by segs below the root and returns
// the final node. Segments are applied relative to the root's "/".
func (t *Tree) Insert(segs []Segment) NodeID {
	cur := Root
	for _, s := range segs {
		switch s.Kind {
		case Static:
			cur = t.staticChild(cur, s.Text)
		case Parametric:
			cur = t.parametricChild(cur, s.Text, s.NodePath)
		case Wildcard:
			cur = t.wildcardChild(cur)
		}
	}
	return cur
}

// Handlers returns the storage at id, creating it with newStorage when absent.
func (t *Tree) Handlers(id NodeID, newStorage func() *HandlerStorage) *HandlerStorage {
	n := &t.nodes[id]
	if n.handlers == nil {
		n.handlers = newStorage()
	}
	return n.handlers
}

func (t *Tree) findEdge(id NodeID, b byte) NodeID {
	edges := t.nodes[id].edges
	for i := range edges {
		if edges[i].label == b {
			return edges[i].child
		}
	}
	return none
}

// staticChild descends from id along path, splitting nodes whose prefix
// diverges from it, and returns the node where path ends.
func (t *Tree) staticChild(id NodeID, path string) NodeID {
	for path != "" {
		if t.nodes[id].kind == Wildcard {
			panic("tree: wildcard node cannot have children")
		}
		child := t.findEdge(id, path[0])
		if child == none {
			child = t.alloc(node{kind: Static, prefix: path})
			t.nodes[id].edges = append(t.nodes[id].edges, edge{label: path[0], child: child})
			return child
		}
		prefix := t.nodes[child].prefix
		l := commonPrefixLen(prefix, path)
		if l < len(prefix) {
			t.split(child, l)
		}
		path = path[l:]
		id = child
	}
	return id
}

// split cuts the prefix of static node id at i. id keeps the common part;
// a new node takes over the remainder together with every child and
// handler of id.
func (t *Tree) split(id NodeID, i int) {
	old := t.nodes[id]
	rest := t.alloc(node{
		kind:     Static,
		prefix:   old.prefix[i:],
		edges:    old.edges,
		params:   old.params,
		handlers: old.handlers,
	})
	t.nodes[rest].wildcard = old.wildcard

	n := &t.nodes[id]
	n.prefix = old.prefix[:i]
	n.edges = []edge{{label: old.prefix[i], child: rest}}
	n.params = nil
	n.wildcard = none
	n.handlers = nil
}

func (t *Tree) parametricChild(id NodeID, suffix, nodePath string) NodeID {
	if t.nodes[id].kind != Static {
		panic("tree: parametric child requires a static parent")
	}
	params := t.nodes[id].params
	for _, c := range params {
		if t.nodes[c].suffix == suffix {
			if !slices.Contains(t.nodes[c].nodePaths, nodePath) {
				t.nodes[c].nodePaths = append(t.nodes[c].nodePaths, nodePath)
			}
			return c
		}
	}

	child := t.alloc(node{kind: Parametric, suffix: suffix, nodePaths: []string{nodePath}})

	// A child is tried before any sibling whose suffix is a strict suffix
	// of its own. Siblings with unrelated suffixes keep insertion order and
	// the child without a suffix always comes last.
	pos := len(params)
	if suffix != "" {
		for i, c := range params {
			other := t.nodes[c].suffix
			if other == "" || strings.HasSuffix(suffix, other) {
				pos = i
				break
			}
		}
	}
	params = append(params, none)
	copy(params[pos+1:], params[pos:])
	params[pos] = child
	t.nodes[id].params = params
	return child
}

func (t *Tree) wildcardChild(id NodeID) NodeID {
	if t.nodes[id].kind != Static {
		panic("tree: wildcard child requires a static parent")
	}
	if w := t.nodes[id].wildcard; w != none {
		return w
	}
	w := t.alloc(node{kind: Wildcard})
	t.nodes[id].wildcard = w
	return w
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

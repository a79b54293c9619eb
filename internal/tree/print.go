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

package tree

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Print writes an indented rendering of the tree to w. Leaves list their
// routes, most specific first.
func (t *Tree) Print(w io.Writer) error {
	p := &printer{t: t, w: w}
	p.node(Root, "", true)
	return p.err
}

type printer struct {
	t   *Tree
	w   io.Writer
	err error
}

func (p *printer) node(id NodeID, indent string, last bool) {
	if p.err != nil {
		return
	}
	n := &p.t.nodes[id]

	branch := "├── "
	childIndent := indent + "│   "
	if last {
		branch = "└── "
		childIndent = indent + "    "
	}

	line := indent + branch + label(n)
	if n.handlers != nil && n.handlers.Len() > 0 {
		line += " " + describe(n.handlers)
	}
	if _, err := fmt.Fprintln(p.w, line); err != nil {
		p.err = err
		return
	}

	children := make([]NodeID, 0, len(n.edges)+len(n.params)+1)
	for _, e := range n.edges {
		children = append(children, e.child)
	}
	children = append(children, n.params...)
	if n.wildcard != none {
		children = append(children, n.wildcard)
	}
	for i, c := range children {
		p.node(c, childIndent, i == len(children)-1)
	}
}

func label(n *node) string {
	switch n.kind {
	case Parametric:
		return ":param" + n.suffix
	case Wildcard:
		return "*"
	default:
		return n.prefix
	}
}

func describe(h *HandlerStorage) string {
	routes := h.Routes()
	slices.Reverse(routes)
	parts := make([]string, len(routes))
	for i, r := range routes {
		s := r.Pattern
		if len(r.Constraints) > 0 {
			keys := make([]string, 0, len(r.Constraints))
			for k := range r.Constraints {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			cs := make([]string, len(keys))
			for j, k := range keys {
				cs[j] = k + "=" + r.Constraints[k].String()
			}
			s += " {" + strings.Join(cs, ", ") + "}"
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

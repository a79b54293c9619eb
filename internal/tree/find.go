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
	"net/url"
	"strings"

	"rivaas.dev/routing/constraint"
	"rivaas.dev/routing/route"
)

// Query is the input of one lookup.
type Query struct {
	// Path is the sanitized path used for matching. It may be lowercased.
	Path string
	// Orig is Path before lowercasing; captured values are cut from it.
	// Both strings have the same length.
	Orig string
	// Decode is set when captured values still hold percent escapes.
	Decode bool
	// Values are the constraint values derived from the request.
	Values *constraint.Values
}

// frame is a saved alternative branch: resume at node with the cursor at
// pos and the captured values truncated to params.
type frame struct {
	node   NodeID
	pos    int
	params int
}

// Find returns the route selected at the leaf matching q and the captured
// parameter values, appended to buf. A nil route means no match.
//
// The walk prefers a static child, then parametric children in order, then
// the wildcard child. Alternatives not taken are pushed on a stack and
// retried when the chosen branch dead-ends.
func (t *Tree) Find(q Query, buf []string) (*route.Route, []string) {
	path := q.Path
	if len(path) == 0 || path[0] != '/' {
		return nil, buf
	}

	var stackBuf [8]frame
	stack := stackBuf[:0]
	params := buf
	base := len(buf)
	cur := Root
	pos := 1

	for {
		n := &t.nodes[cur]
		if pos == len(path) && n.handlers != nil {
			if r := n.handlers.Match(q.Values); r != nil {
				return r, params
			}
		}

		next := t.next(cur, path, pos, &stack, len(params))
		for {
			if next == none {
				if len(stack) == 0 {
					return nil, params[:base]
				}
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				next, pos, params = f.node, f.pos, params[:f.params]
			}

			var ok bool
			pos, params, ok = t.consume(next, q, pos, params)
			if ok {
				break
			}
			next = none
		}
		cur = next
	}
}

// next picks the child of id to descend into and pushes the alternatives.
func (t *Tree) next(id NodeID, path string, pos int, stack *[]frame, nparams int) NodeID {
	n := &t.nodes[id]
	if n.kind == Wildcard {
		return none
	}

	child := none
	if pos < len(path) {
		if c := t.findEdge(id, path[pos]); c != none && strings.HasPrefix(path[pos:], t.nodes[c].prefix) {
			child = c
		}
	}
	if n.kind == Parametric {
		return child
	}

	first := 0
	if child == none {
		if len(n.params) == 0 {
			return n.wildcard
		}
		child = n.params[0]
		first = 1
	}
	if n.wildcard != none {
		*stack = append(*stack, frame{node: n.wildcard, pos: pos, params: nparams})
	}
	for i := len(n.params) - 1; i >= first; i-- {
		*stack = append(*stack, frame{node: n.params[i], pos: pos, params: nparams})
	}
	return child
}

// consume advances the cursor over node id. It reports false when the
// node cannot match at pos.
func (t *Tree) consume(id NodeID, q Query, pos int, params []string) (int, []string, bool) {
	n := &t.nodes[id]
	switch n.kind {
	case Static:
		return pos + len(n.prefix), params, true

	case Wildcard:
		return len(q.Path), append(params, unescape(q.Orig[pos:], q.Decode)), true

	default:
		end := strings.IndexByte(q.Path[pos:], '/')
		if end < 0 {
			end = len(q.Path)
		} else {
			end += pos
		}
		seg := q.Path[pos:end]
		if len(seg) <= len(n.suffix) || !strings.HasSuffix(seg, n.suffix) {
			return pos, params, false
		}
		valueEnd := end - len(n.suffix)
		if t.maxParamLength > 0 && valueEnd-pos > t.maxParamLength {
			return pos, params, false
		}
		return end, append(params, unescape(q.Orig[pos:valueEnd], q.Decode)), true
	}
}

func unescape(s string, decode bool) string {
	if !decode || strings.IndexByte(s, '%') < 0 {
		return s
	}
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

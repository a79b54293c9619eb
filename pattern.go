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
	"regexp"
	"slices"
	"strings"

	"rivaas.dev/routing/internal/tree"
	"rivaas.dev/routing/route"
)

// optionalGroup matches a trailing optional parameter such as "(/:id)".
var optionalGroup = regexp.MustCompile(`/?\(/?(:\w+)/?\)`)

// compiledPattern is one concrete variant of a declared pattern.
type compiledPattern struct {
	pattern string // canonical form
	params  []string
	segs    []tree.Segment
}

// compile turns a declared pattern into its concrete variants. A pattern
// ending in an optional group yields two variants, with and without the
// group; every variant is validated before any is returned.
func (r *Router) compile(method, pattern string) ([]compiledPattern, error) {
	p, err := r.normalizePattern(method, pattern)
	if err != nil {
		return nil, err
	}
	variants, err := expandOptional(method, p)
	if err != nil {
		return nil, err
	}

	out := make([]compiledPattern, 0, len(variants))
	for _, v := range variants {
		cp, err := r.compileVariant(method, v)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (r *Router) normalizePattern(method, pattern string) (string, error) {
	if pattern == "*" {
		pattern = "/*"
	}
	if pattern == "" || pattern[0] != '/' {
		return "", patternError(method, pattern, "pattern must start with '/'")
	}
	if r.ignoreDuplicateSlashes {
		pattern = collapseSlashes(pattern)
	}
	if len(pattern) > 1 && pattern[len(pattern)-1] == '/' {
		pattern = pattern[:len(pattern)-1]
	}
	return pattern, nil
}

func expandOptional(method, p string) ([]string, error) {
	locs := optionalGroup.FindAllStringSubmatchIndex(p, -1)
	if len(locs) == 0 {
		return []string{p}, nil
	}
	if len(locs) > 1 || locs[0][1] != len(p) {
		return nil, patternError(method, p, "optional group must be the last element of the pattern")
	}

	loc := locs[0]
	with := p[:loc[0]] + "/" + p[loc[2]:loc[3]]
	without := p[:loc[0]]
	if without == "" {
		without = "/"
	}
	return []string{with, without}, nil
}

// compileVariant scans p left to right, emitting a static segment for each
// run of literal text, a parametric segment for each ":name" and a
// wildcard segment for a final "*".
func (r *Router) compileVariant(method, p string) (compiledPattern, error) {
	var (
		segs   []tree.Segment
		params []string
		canon  strings.Builder
		static strings.Builder
	)
	canon.WriteByte('/')

	flush := func() {
		if static.Len() > 0 {
			segs = append(segs, tree.Segment{Kind: tree.Static, Text: static.String()})
			static.Reset()
		}
	}

	for i := 1; i < len(p); {
		c := p[i]
		switch {
		case c == ':' && i+1 < len(p) && p[i+1] == ':':
			static.WriteByte(':')
			canon.WriteString("::")
			i += 2

		case c == ':':
			flush()
			j := i + 1
			for j < len(p) && p[j] != '/' && p[j] != ':' && p[j] != '*' {
				j++
			}
			name := p[i+1 : j]
			if name == "" {
				return compiledPattern{}, patternError(method, p, "empty parameter name at offset %d", i)
			}
			if slices.Contains(params, name) {
				return compiledPattern{}, patternError(method, p, "parameter %q declared twice", name)
			}
			canon.WriteString(":" + name)

			var suffix strings.Builder
			for j < len(p) && p[j] != '/' {
				switch {
				case p[j] == ':' && j+1 < len(p) && p[j+1] == ':':
					suffix.WriteByte(':')
					canon.WriteString("::")
					j += 2
				case p[j] == ':' || p[j] == '*':
					return compiledPattern{}, patternError(method, p,
						"parameter %q must be followed by '/' or a literal suffix", name)
				default:
					r.writeStatic(&suffix, &canon, p[j])
					j++
				}
			}
			segs = append(segs, tree.Segment{Kind: tree.Parametric, Text: suffix.String(), NodePath: canon.String()})
			params = append(params, name)
			i = j

		case c == '*':
			if i != len(p)-1 {
				return compiledPattern{}, patternError(method, p, "wildcard must be the last character of the pattern")
			}
			flush()
			segs = append(segs, tree.Segment{Kind: tree.Wildcard})
			params = append(params, route.WildcardParam)
			canon.WriteByte('*')
			i++

		case c == '(' || c == ')':
			return compiledPattern{}, patternError(method, p, "malformed optional group")

		default:
			r.writeStatic(&static, &canon, c)
			i++
		}
	}
	flush()

	return compiledPattern{pattern: canon.String(), params: params, segs: segs}, nil
}

// writeStatic appends one literal byte in matching form.
func (r *Router) writeStatic(dst, canon *strings.Builder, c byte) {
	if c == '%' {
		dst.WriteString("%25")
		canon.WriteString("%25")
		return
	}
	if !r.caseSensitive && 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	dst.WriteByte(c)
	canon.WriteByte(c)
}

func collapseSlashes(p string) string {
	if !strings.Contains(p, "//") {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '/' && i > 0 && p[i-1] == '/' {
			continue
		}
		b.WriteByte(p[i])
	}
	return b.String()
}

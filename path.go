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
	"strings"
	"unicode/utf8"

	"rivaas.dev/routing/internal/tree"
)

// prepare turns a request path into the query the trees match against.
// It reports false for paths that can never match.
//
// The path is cut at the first '?', ';' or '#'. Percent escapes of
// characters that are safe to decode are decoded; escapes of reserved
// delimiters and of '%' itself are kept so captured parameters can be
// decoded exactly once.
func (r *Router) prepare(raw string) (tree.Query, bool) {
	raw = stripScheme(raw)
	if raw == "" || raw[0] != '/' {
		return tree.Query{}, false
	}
	if i := strings.IndexAny(raw, "?;#"); i >= 0 {
		raw = raw[:i]
	}

	path, decode, ok := sanitize(raw)
	if !ok {
		return tree.Query{}, false
	}
	if r.ignoreDuplicateSlashes {
		path = collapseSlashes(path)
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	q := tree.Query{Path: path, Orig: path, Decode: decode}
	if !r.caseSensitive {
		q.Path = lowerASCII(path)
	}
	return q, true
}

// stripScheme drops the scheme and authority of an absolute-form target.
func stripScheme(p string) string {
	var rest string
	switch {
	case strings.HasPrefix(p, "http://"):
		rest = p[len("http://"):]
	case strings.HasPrefix(p, "https://"):
		rest = p[len("https://"):]
	default:
		return p
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return "/"
}

// sanitize decodes unreserved percent escapes. decode reports whether
// reserved escapes remain; ok is false for malformed escapes or invalid UTF-8.
func sanitize(p string) (path string, decode, ok bool) {
	if strings.IndexByte(p, '%') < 0 {
		return p, false, true
	}

	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(p) {
			return "", false, false
		}
		hi, ok1 := unhex(p[i+1])
		lo, ok2 := unhex(p[i+2])
		if !ok1 || !ok2 {
			return "", false, false
		}
		if v := hi<<4 | lo; isReserved(v) {
			b.WriteString(p[i : i+3])
			decode = true
		} else {
			b.WriteByte(v)
		}
		i += 2
	}

	path = b.String()
	if !utf8.ValidString(path) {
		return "", false, false
	}
	return path, decode, true
}

func isReserved(c byte) bool {
	switch c {
	case '#', '$', '&', '+', ',', '/', ':', ';', '=', '?', '@', '%':
		return true
	}
	return false
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func lowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

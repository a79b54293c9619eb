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

// Store maps declared constraint values to bitsets of handler indices.
// Each leaf owns one Store per constraint key in use at that leaf.
type Store interface {
	// Add ORs bits into the set registered under v.
	Add(v Value, bits uint32)
	// Get returns the bits of every handler whose declared value accepts derived.
	Get(derived string) uint32
}

type patternEntry struct {
	value Value
	bits  uint32
}

// MatchStore checks exact values with a map lookup and falls back to a
// linear scan of patterns in registration order. The first matching
// pattern wins.
type MatchStore struct {
	exact    map[string]uint32
	patterns []patternEntry
}

// NewMatchStore returns an empty MatchStore.
func NewMatchStore() *MatchStore {
	return &MatchStore{exact: make(map[string]uint32)}
}

// Add implements Store.
func (s *MatchStore) Add(v Value, bits uint32) {
	switch v.Kind() {
	case KindExact:
		s.exact[v.String()] |= bits
	case KindPattern:
		for i := range s.patterns {
			if s.patterns[i].value.Equal(v) {
				s.patterns[i].bits |= bits
				return
			}
		}
		s.patterns = append(s.patterns, patternEntry{value: v, bits: bits})
	}
}

// Get implements Store.
func (s *MatchStore) Get(derived string) uint32 {
	if bits, ok := s.exact[derived]; ok {
		return bits
	}
	for i := range s.patterns {
		if s.patterns[i].value.Match(derived) {
			return s.patterns[i].bits
		}
	}
	return 0
}

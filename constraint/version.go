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

import (
	"fmt"
	"net/http"

	"github.com/Masterminds/semver/v3"
)

// VersionHeader is the request header the version strategy derives from.
const VersionHeader = "Accept-Version"

type versionStrategy struct{}

// Version returns the built-in strategy keyed "version". Routes declare an
// exact semantic version; requests send a version or a range such as "1.x"
// or "^2.1" in the Accept-Version header and are served by the highest
// registered version satisfying it. Once a request carries the header,
// routes without a version constraint never match it.
func Version() Strategy { return versionStrategy{} }

func (versionStrategy) Name() string               { return "version" }
func (versionStrategy) Custom() bool               { return false }
func (versionStrategy) MustMatchWhenDerived() bool { return true }
func (versionStrategy) NewStore() Store            { return &versionStore{exact: make(map[string]int)} }

func (versionStrategy) Validate(v Value) error {
	if v.Kind() != KindExact {
		return fmt.Errorf("%w: version must be an exact semantic version", ErrInvalidValue)
	}
	if _, err := semver.StrictNewVersion(v.String()); err != nil {
		return fmt.Errorf("%w: version %q: %w", ErrInvalidValue, v.String(), err)
	}
	return nil
}

func (versionStrategy) Derive(req *http.Request) (string, bool) {
	s := req.Header.Get(VersionHeader)
	return s, s != ""
}

type versionEntry struct {
	version *semver.Version
	bits    uint32
}

// versionStore resolves exact versions by map lookup and ranges by picking
// the highest registered version the range accepts.
type versionStore struct {
	exact    map[string]int
	versions []versionEntry
}

func (s *versionStore) Add(v Value, bits uint32) {
	ver, err := semver.StrictNewVersion(v.String())
	if err != nil {
		// Validate runs before Add.
		panic(fmt.Sprintf("constraint: unvalidated version %q", v.String()))
	}
	key := ver.String()
	if i, ok := s.exact[key]; ok {
		s.versions[i].bits |= bits
		return
	}
	s.exact[key] = len(s.versions)
	s.versions = append(s.versions, versionEntry{version: ver, bits: bits})
}

func (s *versionStore) Get(derived string) uint32 {
	if ver, err := semver.StrictNewVersion(derived); err == nil {
		if i, ok := s.exact[ver.String()]; ok {
			return s.versions[i].bits
		}
		return 0
	}
	c, err := semver.NewConstraint(derived)
	if err != nil {
		return 0
	}
	best := -1
	for i := range s.versions {
		if !c.Check(s.versions[i].version) {
			continue
		}
		if best < 0 || s.versions[i].version.GreaterThan(s.versions[best].version) {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return s.versions[best].bits
}

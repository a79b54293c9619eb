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
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rivaas.dev/routing/constraint"
)

// RouterTestSuite covers registration and lookup behavior of a single router.
type RouterTestSuite struct {
	suite.Suite

	r *Router
}

func (s *RouterTestSuite) SetupTest() {
	s.r = MustNew()
}

func (s *RouterTestSuite) on(method, pattern string, handler any, opts ...RouteOption) {
	s.Require().NoError(s.r.On(method, pattern, handler, opts...))
}

func (s *RouterTestSuite) find(method, path string, derived map[string]string) (Match, bool) {
	return s.r.Find(method, path, derived)
}

func (s *RouterTestSuite) TestStaticRoutes() {
	paths := []string{"/", "/photos", "/photos/new", "/about/team", "/photo"}
	for _, p := range paths {
		s.on(http.MethodGet, p, p)
	}

	for _, p := range paths {
		m, ok := s.find(http.MethodGet, p, nil)
		s.Require().True(ok, p)
		s.Equal(p, m.Handler)
		s.Empty(m.Params)
	}

	_, ok := s.find(http.MethodPost, "/photos", nil)
	s.False(ok, "other methods have their own tree")
}

func (s *RouterTestSuite) TestStaticRouteDefaults() {
	s.on(http.MethodGet, "/feed", "feed", WithDefaults(map[string]string{"format": "rss"}))

	m, ok := s.find(http.MethodGet, "/feed", nil)
	s.Require().True(ok)
	s.Equal(map[string]string{"format": "rss"}, m.Params)
}

func (s *RouterTestSuite) TestParametricSegment() {
	s.on(http.MethodGet, "/:id", "show")

	m, ok := s.find(http.MethodGet, "/abc", nil)
	s.Require().True(ok)
	s.Equal(map[string]string{"id": "abc"}, m.Params)

	_, ok = s.find(http.MethodGet, "/abc/def", nil)
	s.False(ok)
}

func (s *RouterTestSuite) TestPercentRoundTrip() {
	s.on(http.MethodGet, "/x/:id", "x")

	m, ok := s.find(http.MethodGet, "/x/get+photos%3B+kind%3A+favorites", nil)
	s.Require().True(ok)
	s.Equal("get+photos;+kind:+favorites", m.Param("id"))

	m, ok = s.find(http.MethodGet, "/x/caf%C3%A9", nil)
	s.Require().True(ok)
	s.Equal("café", m.Param("id"))

	m, ok = s.find(http.MethodGet, "/x/a%2Fb", nil)
	s.Require().True(ok, "encoded slash stays inside the segment")
	s.Equal("a/b", m.Param("id"))

	_, ok = s.find(http.MethodGet, "/x/bad%zz", nil)
	s.False(ok)
}

func (s *RouterTestSuite) TestLiteralPercentAndColon() {
	s.on(http.MethodGet, "/discount/100%", "percent")
	s.on(http.MethodGet, "/time/10::30", "colon")
	s.on(http.MethodGet, "/books/:id::edit", "edit")

	m, ok := s.find(http.MethodGet, "/discount/100%25", nil)
	s.Require().True(ok)
	s.Equal("percent", m.Handler)

	m, ok = s.find(http.MethodGet, "/time/10:30", nil)
	s.Require().True(ok)
	s.Equal("colon", m.Handler)

	m, ok = s.find(http.MethodGet, "/books/42:edit", nil)
	s.Require().True(ok)
	s.Equal("edit", m.Handler)
	s.Equal("42", m.Param("id"))

	_, ok = s.find(http.MethodGet, "/books/42", nil)
	s.False(ok, "suffix is required")
}

func (s *RouterTestSuite) TestWildcardGreediness() {
	s.on(http.MethodGet, "/photos/*", "files")

	m, ok := s.find(http.MethodGet, "/photos/a/b/c", nil)
	s.Require().True(ok)
	s.Equal("a/b/c", m.Param("*"))
}

func (s *RouterTestSuite) TestOptionalParameter() {
	s.on(http.MethodGet, "/photos(/:id)", "photos")

	m, ok := s.find(http.MethodGet, "/photos", nil)
	s.Require().True(ok)
	_, has := m.Params["id"]
	s.False(has)

	m, ok = s.find(http.MethodGet, "/photos/5", nil)
	s.Require().True(ok)
	s.Equal("5", m.Param("id"))

	s.Equal(2, s.r.Len())
	s.True(s.r.HasRoute(http.MethodGet, "/photos(/:id)"))
}

func (s *RouterTestSuite) TestOptionalParameterDefault() {
	s.on(http.MethodGet, "/photos(/:id)", "photos", WithDefaults(map[string]string{"id": "latest"}))

	m, ok := s.find(http.MethodGet, "/photos", nil)
	s.Require().True(ok)
	s.Equal("latest", m.Param("id"))

	m, ok = s.find(http.MethodGet, "/photos/5", nil)
	s.Require().True(ok)
	s.Equal("5", m.Param("id"), "captured values override defaults")
}

func (s *RouterTestSuite) TestStaticBeatsParametric() {
	s.on(http.MethodGet, "/photos/:id", "show")
	s.on(http.MethodGet, "/photos/print", "print")

	m, ok := s.find(http.MethodGet, "/photos/print", nil)
	s.Require().True(ok)
	s.Equal("print", m.Handler)
	s.Empty(m.Params)

	m, ok = s.find(http.MethodGet, "/photos/7", nil)
	s.Require().True(ok)
	s.Equal("show", m.Handler)
}

func (s *RouterTestSuite) TestBacktrackingAcrossBranches() {
	s.on(http.MethodGet, "/a/b/d", "static")
	s.on(http.MethodGet, "/a/:x/c", "param")
	s.on(http.MethodGet, "/a/*", "wild")

	m, ok := s.find(http.MethodGet, "/a/b/c", nil)
	s.Require().True(ok)
	s.Equal("param", m.Handler)
	s.Equal("b", m.Param("x"))

	m, ok = s.find(http.MethodGet, "/a/b/e", nil)
	s.Require().True(ok)
	s.Equal("wild", m.Handler)
	s.Equal("b/e", m.Param("*"))
}

func (s *RouterTestSuite) TestHostConstraintDisambiguation() {
	s.on(http.MethodGet, "/", "a", WithConstraint("host", "a.com"))
	s.on(http.MethodGet, "/", "b", WithConstraint("host", "b.com"))

	m, ok := s.find(http.MethodGet, "/", map[string]string{"host": "a.com"})
	s.Require().True(ok)
	s.Equal("a", m.Handler)

	m, ok = s.find(http.MethodGet, "/", map[string]string{"host": "b.com"})
	s.Require().True(ok)
	s.Equal("b", m.Handler)

	_, ok = s.find(http.MethodGet, "/", map[string]string{"host": "c.com"})
	s.False(ok, "no unconstrained alternative")

	s.on(http.MethodGet, "/", "any")
	m, ok = s.find(http.MethodGet, "/", map[string]string{"host": "c.com"})
	s.Require().True(ok)
	s.Equal("any", m.Handler)

	m, ok = s.find(http.MethodGet, "/", map[string]string{"host": "a.com"})
	s.Require().True(ok)
	s.Equal("a", m.Handler, "constrained route still wins for its host")

	m, ok = s.find(http.MethodGet, "/", nil)
	s.Require().True(ok)
	s.Equal("any", m.Handler)
}

func (s *RouterTestSuite) TestHostPatternConstraint() {
	s.on(http.MethodGet, "/", "api", WithConstraint("host", regexp.MustCompile(`^api\.`)))
	s.on(http.MethodGet, "/", "com", WithConstraint("host", regexp.MustCompile(`\.com$`)))

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/", nil)
	m, ok := s.r.Lookup(http.MethodGet, "/", req)
	s.Require().True(ok)
	s.Equal("api", m.Handler, "first matching pattern wins")

	req = httptest.NewRequest(http.MethodGet, "http://www.example.com/", nil)
	m, ok = s.r.Lookup(http.MethodGet, "/", req)
	s.Require().True(ok)
	s.Equal("com", m.Handler)
}

func (s *RouterTestSuite) TestVersionConstraint() {
	s.on(http.MethodGet, "/items", "v1.0", WithConstraint("version", "1.0.0"))
	s.on(http.MethodGet, "/items", "v1.2", WithConstraint("version", "1.2.0"))
	s.on(http.MethodGet, "/items", "v2", WithConstraint("version", "2.0.0"))

	lookup := func(version string) (Match, bool) {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		if version != "" {
			req.Header.Set(constraint.VersionHeader, version)
		}
		return s.r.Lookup(http.MethodGet, "/items", req)
	}

	m, ok := lookup("1.x")
	s.Require().True(ok)
	s.Equal("v1.2", m.Handler)

	m, ok = lookup("1.0.0")
	s.Require().True(ok)
	s.Equal("v1.0", m.Handler)

	m, ok = lookup("2.0.0")
	s.Require().True(ok)
	s.Equal("v2", m.Handler)

	_, ok = lookup("3.x")
	s.False(ok)
	_, ok = lookup("")
	s.False(ok)

	s.on(http.MethodGet, "/items", "unversioned")
	m, ok = lookup("")
	s.Require().True(ok)
	s.Equal("unversioned", m.Handler)

	_, ok = lookup("9.x")
	s.False(ok, "a derived version never falls back to unversioned routes")
}

func (s *RouterTestSuite) TestCustomStrategy() {
	s.r = MustNew(WithStrategy(constraint.Header("tenant", "X-Tenant")))
	s.True(s.r.HasConstraintStrategy("tenant"))
	s.False(s.r.HasConstraintStrategy("host"))

	s.on(http.MethodGet, "/dashboard", "acme", WithConstraint("tenant", "acme"))
	s.on(http.MethodGet, "/dashboard", "default")
	s.True(s.r.HasConstraintStrategy("tenant"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Tenant", "acme")
	m, ok := s.r.Lookup(http.MethodGet, "/dashboard", req)
	s.Require().True(ok)
	s.Equal("acme", m.Handler)

	req.Header.Set("X-Tenant", "globex")
	m, ok = s.r.Lookup(http.MethodGet, "/dashboard", req)
	s.Require().True(ok)
	s.Equal("default", m.Handler)
}

func (s *RouterTestSuite) TestDuplicateDetection() {
	s.on(http.MethodGet, "/photos/:id", "first")

	err := s.r.On(http.MethodGet, "/photos/:id", "second")
	s.Require().ErrorIs(err, ErrDuplicateRoute)
	var re *Error
	s.Require().ErrorAs(err, &re)
	s.Equal(KindDuplicate, re.Kind)
	s.Equal("/photos/:id", re.Pattern)

	s.Require().ErrorIs(s.r.On(http.MethodGet, "/photos/:id/", "slash"), ErrDuplicateRoute,
		"trailing slash normalizes to the same pattern")
	s.Require().ErrorIs(s.r.On(http.MethodGet, "/photos/:name", "renamed"), ErrDuplicateRoute,
		"parameter names do not distinguish routes")

	s.NoError(s.r.On(http.MethodGet, "/photos/:id", "hosted", WithConstraint("host", "a.com")))
	s.NoError(s.r.On(http.MethodPost, "/photos/:id", "post"))
	s.Equal(3, s.r.Len())
}

func (s *RouterTestSuite) TestFailedOptionalRegistrationLeavesNoRoute() {
	s.on(http.MethodGet, "/photos", "index")
	var before bytes.Buffer
	s.Require().NoError(s.r.PrettyPrint(&before))

	err := s.r.On(http.MethodGet, "/photos(/:id)", "show")
	s.Require().ErrorIs(err, ErrDuplicateRoute)
	s.False(s.r.HasRoute(http.MethodGet, "/photos/:id"))

	_, ok := s.find(http.MethodGet, "/photos/1", nil)
	s.False(ok)
	s.Equal(1, s.r.Len())

	var after bytes.Buffer
	s.Require().NoError(s.r.PrettyPrint(&after))
	s.Equal(before.String(), after.String(), "rejected variant left nodes in the tree")
}

func (s *RouterTestSuite) TestReloadModeReplacesDuplicates() {
	s.r = MustNew(WithReloadMode(true))
	s.on(http.MethodGet, "/photos/:id", "first")
	s.on(http.MethodGet, "/photos/:id", "second")

	m, ok := s.find(http.MethodGet, "/photos/1", nil)
	s.Require().True(ok)
	s.Equal("second", m.Handler)
	s.Equal(1, s.r.Len())

	s.on(http.MethodGet, "/photos/:name", "third")
	m, ok = s.find(http.MethodGet, "/photos/1", nil)
	s.Require().True(ok)
	s.Equal("third", m.Handler)
	s.Equal("1", m.Param("name"))
	s.Equal(1, s.r.Len())
}

func (s *RouterTestSuite) TestConstraintErrors() {
	err := s.r.On(http.MethodGet, "/", "x", WithConstraint("planet", "earth"))
	s.Require().ErrorIs(err, ErrUnknownConstraint)
	var re *Error
	s.Require().ErrorAs(err, &re)
	s.Equal(KindConstraint, re.Kind)

	s.Require().ErrorIs(s.r.On(http.MethodGet, "/", "x", WithConstraint("host", 42)), ErrInvalidConstraintValue)
	s.Require().ErrorIs(s.r.On(http.MethodGet, "/", "x", WithConstraint("version", "latest")), ErrInvalidConstraintValue)
	s.Require().ErrorIs(s.r.On(http.MethodGet, "/", "x",
		WithConstraint("version", regexp.MustCompile("1.*"))), ErrInvalidConstraintValue)
	s.Equal(0, s.r.Len())
}

func (s *RouterTestSuite) TestCapacity() {
	for i := range 32 {
		s.on(http.MethodGet, "/", i, WithConstraint("host", fmt.Sprintf("h%d.com", i)))
	}
	err := s.r.On(http.MethodGet, "/", "overflow", WithConstraint("host", "overflow.com"))
	s.Require().ErrorIs(err, ErrTooManyHandlers)
	var re *Error
	s.Require().ErrorAs(err, &re)
	s.Equal(KindCapacity, re.Kind)
	s.Contains(err.Error(), "a maximum of 32 route handlers per node allowed when there are constraints")

	m, ok := s.find(http.MethodGet, "/", map[string]string{"host": "h17.com"})
	s.Require().True(ok)
	s.Equal(17, m.Handler)
}

func (s *RouterTestSuite) TestInvalidRegistrations() {
	s.Require().ErrorIs(s.r.On("", "/", "x"), ErrInvalidMethod)
	s.Require().ErrorIs(s.r.On("GE T", "/", "x"), ErrInvalidMethod)
	s.Require().ErrorIs(s.r.On(http.MethodGet, "/", nil), ErrInvalidHandler)
	s.Require().ErrorIs(s.r.On(http.MethodGet, "no-slash", "x"), ErrInvalidPattern)

	s.NoError(s.r.On("PROPFIND", "/dav/*", "dav"), "extension methods are accepted")
	m, ok := s.find("PROPFIND", "/dav/a", nil)
	s.Require().True(ok)
	s.Equal("dav", m.Handler)
}

func (s *RouterTestSuite) TestFreeze() {
	s.on(http.MethodGet, "/", "home")
	s.r.Freeze()
	s.True(s.r.Frozen())

	err := s.r.On(http.MethodGet, "/other", "other")
	s.Require().ErrorIs(err, ErrRouterFrozen)

	_, err = s.r.Off(http.MethodGet, "/")
	s.Require().ErrorIs(err, ErrRouterFrozen)

	_, ok := s.find(http.MethodGet, "/", nil)
	s.True(ok)
}

func (s *RouterTestSuite) TestControllerMetadata() {
	s.on(http.MethodGet, "/photos/:id", "photos#show",
		WithController("photos", "show"),
		WithDefaults(map[string]string{"format": "html", "action": "ignored"}),
	)

	m, ok := s.find(http.MethodGet, "/photos/3", nil)
	s.Require().True(ok)
	s.Equal(map[string]string{
		"controller": "photos",
		"action":     "show",
		"format":     "html",
		"id":         "3",
	}, m.Params)
}

func (s *RouterTestSuite) TestIdempotentLookups() {
	s.on(http.MethodGet, "/users/:id", "user", WithConstraint("host", "a.com"))
	s.on(http.MethodGet, "/users/:id", "fallback")

	first, ok := s.find(http.MethodGet, "/users/9", map[string]string{"host": "a.com"})
	s.Require().True(ok)
	for range 5 {
		again, ok := s.find(http.MethodGet, "/users/9", map[string]string{"host": "a.com"})
		s.Require().True(ok)
		s.Equal(first.Handler, again.Handler)
		s.Equal(first.Params, again.Params)
	}
}

func (s *RouterTestSuite) TestEndToEnd() {
	s.on(http.MethodGet, "/api/:version/photos/:id/get", "get")

	m, ok := s.find(http.MethodGet, "/api/v1/photos/42/get", nil)
	s.Require().True(ok)
	s.Equal(map[string]string{"version": "v1", "id": "42"}, m.Params)

	_, ok = s.find(http.MethodGet, "/v1/photos/42/get", nil)
	s.False(ok)
	_, ok = s.find(http.MethodGet, "/api/v1/photos/42/set", nil)
	s.False(ok)
}

func (s *RouterTestSuite) TestLookupPathForms() {
	s.on(http.MethodGet, "/users/:id", "user")

	for _, p := range []string{"/users/5", "/users/5/", "/users/5?tab=posts", "http://example.com/users/5"} {
		m, ok := s.find(http.MethodGet, p, nil)
		s.Require().True(ok, p)
		s.Equal("5", m.Param("id"), p)
	}

	_, ok := s.find(http.MethodGet, "users/5", nil)
	s.False(ok)
	_, ok = s.find(http.MethodGet, "/users/5", map[string]string{"planet": "earth"})
	s.False(ok, "unknown derived keys never match")
}

func TestRouterSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RouterTestSuite))
}

func TestRouterOptions(t *testing.T) {
	t.Parallel()

	t.Run("case insensitive", func(t *testing.T) {
		t.Parallel()
		r := MustNew(WithCaseSensitive(false))
		require.NoError(t, r.On(http.MethodGet, "/Users/:name", "user"))

		m, ok := r.Find(http.MethodGet, "/USERS/Bob", nil)
		require.True(t, ok)
		assert.Equal(t, "Bob", m.Param("name"))
	})

	t.Run("case sensitive by default", func(t *testing.T) {
		t.Parallel()
		r := MustNew()
		require.NoError(t, r.On(http.MethodGet, "/Users", "users"))
		_, ok := r.Find(http.MethodGet, "/users", nil)
		assert.False(t, ok)
	})

	t.Run("duplicate slashes", func(t *testing.T) {
		t.Parallel()
		r := MustNew(WithIgnoreDuplicateSlashes(true))
		require.NoError(t, r.On(http.MethodGet, "/users/:id", "user"))

		m, ok := r.Find(http.MethodGet, "//users//5", nil)
		require.True(t, ok)
		assert.Equal(t, "5", m.Param("id"))
	})

	t.Run("max param length", func(t *testing.T) {
		t.Parallel()
		r := MustNew(WithMaxParamLength(5))
		require.NoError(t, r.On(http.MethodGet, "/:id", "id"))

		_, ok := r.Find(http.MethodGet, "/12345", nil)
		assert.True(t, ok)
		_, ok = r.Find(http.MethodGet, "/123456", nil)
		assert.False(t, ok)
	})

	t.Run("param length unlimited by default", func(t *testing.T) {
		t.Parallel()
		r := MustNew()
		require.NoError(t, r.On(http.MethodGet, "/:id", "id"))

		token := strings.Repeat("a", 4096)
		m, ok := r.Find(http.MethodGet, "/"+token, nil)
		require.True(t, ok)
		assert.Equal(t, token, m.Param("id"))
	})

	t.Run("negative max param length", func(t *testing.T) {
		t.Parallel()
		_, err := New(WithMaxParamLength(-1))
		require.ErrorIs(t, err, ErrInvalidOption)
		assert.Panics(t, func() { MustNew(WithMaxParamLength(-1)) })
	})

	t.Run("duplicate strategy", func(t *testing.T) {
		t.Parallel()
		_, err := New(WithStrategy(constraint.Header("tenant", "A"), constraint.Header("tenant", "B")))
		require.ErrorIs(t, err, constraint.ErrDuplicateStrategy)
	})
}

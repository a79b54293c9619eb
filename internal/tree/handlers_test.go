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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/routing/constraint"
	"rivaas.dev/routing/route"
)

func newStorage(t *testing.T, custom ...constraint.Strategy) (*HandlerStorage, *constraint.Registry) {
	t.Helper()
	reg, err := constraint.NewRegistry(custom...)
	require.NoError(t, err)
	return NewHandlerStorage(reg), reg
}

func hostRoute(name, host string) *route.Route {
	r := &route.Route{Pattern: "/", Handler: name}
	if host != "" {
		r.Constraints = map[string]constraint.Value{"host": constraint.Exact(host)}
	}
	return r
}

func derived(t *testing.T, reg *constraint.Registry, m map[string]string) *constraint.Values {
	t.Helper()
	v, err := reg.ValuesFrom(m)
	require.NoError(t, err)
	return &v
}

func TestHandlerStorageUnconstrainedFastPath(t *testing.T) {
	t.Parallel()

	h, reg := newStorage(t)
	assert.Nil(t, h.Match(nil))

	r := hostRoute("plain", "")
	require.NoError(t, h.Add(r, false))
	assert.False(t, h.HasConstraints())
	assert.Same(t, r, h.Match(nil))
	assert.Same(t, r, h.Match(derived(t, reg, map[string]string{"host": "a.com", "version": "1.0.0"})),
		"derived values are ignored without constraints at the node")
}

func TestHandlerStorageHostDisambiguation(t *testing.T) {
	t.Parallel()

	h, reg := newStorage(t)
	a := hostRoute("a", "a.com")
	b := hostRoute("b", "b.com")
	require.NoError(t, h.Add(a, false))
	require.NoError(t, h.Add(b, false))

	assert.Same(t, a, h.Match(derived(t, reg, map[string]string{"host": "a.com"})))
	assert.Same(t, b, h.Match(derived(t, reg, map[string]string{"host": "b.com"})))
	assert.Nil(t, h.Match(derived(t, reg, map[string]string{"host": "c.com"})), "no unconstrained fallback")
	assert.Nil(t, h.Match(nil))

	plain := hostRoute("plain", "")
	require.NoError(t, h.Add(plain, false))
	assert.Same(t, a, h.Match(derived(t, reg, map[string]string{"host": "a.com"})))
	assert.Same(t, plain, h.Match(derived(t, reg, map[string]string{"host": "c.com"})))
	assert.Same(t, plain, h.Match(nil))

	assert.Equal(t, []*route.Route{plain, a, b}, h.Routes(), "sorted by constraint count")
}

func TestHandlerStorageMostConstrainedWins(t *testing.T) {
	t.Parallel()

	h, reg := newStorage(t, constraint.Header("tenant", "X-Tenant"))
	hostOnly := &route.Route{Handler: "host", Constraints: map[string]constraint.Value{
		"host": constraint.MustPattern(`\.com$`),
	}}
	both := &route.Route{Handler: "both", Constraints: map[string]constraint.Value{
		"host":   constraint.MustPattern(`\.com$`),
		"tenant": constraint.Exact("acme"),
	}}
	require.NoError(t, h.Add(both, false))
	require.NoError(t, h.Add(hostOnly, false))

	assert.Same(t, both, h.Match(derived(t, reg, map[string]string{"host": "a.com", "tenant": "acme"})))
	assert.Same(t, hostOnly, h.Match(derived(t, reg, map[string]string{"host": "a.com", "tenant": "other"})))
	assert.Same(t, hostOnly, h.Match(derived(t, reg, map[string]string{"host": "a.com"})))
	assert.Nil(t, h.Match(derived(t, reg, map[string]string{"host": "a.org", "tenant": "acme"})))
}

func TestHandlerStorageMustMatchWhenDerived(t *testing.T) {
	t.Parallel()

	h, reg := newStorage(t)
	a := hostRoute("a", "a.com")
	plain := hostRoute("plain", "")
	require.NoError(t, h.Add(a, false))
	require.NoError(t, h.Add(plain, false))

	assert.Same(t, a, h.Match(derived(t, reg, map[string]string{"host": "a.com"})))
	assert.Nil(t, h.Match(derived(t, reg, map[string]string{"host": "a.com", "version": "1.0.0"})),
		"version derived but not constrained here")

	v1 := &route.Route{Handler: "v1", Constraints: map[string]constraint.Value{"version": constraint.Exact("1.0.0")}}
	require.NoError(t, h.Add(v1, false))
	assert.Same(t, v1, h.Match(derived(t, reg, map[string]string{"version": "1.x"})))
	assert.Same(t, plain, h.Match(derived(t, reg, map[string]string{"host": "x.com"})))
	assert.Nil(t, h.Match(derived(t, reg, map[string]string{"version": "2.x"})))
}

func TestHandlerStorageDuplicates(t *testing.T) {
	t.Parallel()

	h, reg := newStorage(t)
	first := hostRoute("first", "a.com")
	require.NoError(t, h.Add(first, false))
	require.ErrorIs(t, h.Add(hostRoute("again", "a.com"), false), ErrDuplicateHandler)

	second := hostRoute("second", "a.com")
	require.NoError(t, h.Add(second, true))
	assert.Equal(t, 1, h.Len())
	assert.Same(t, second, h.Match(derived(t, reg, map[string]string{"host": "a.com"})))
}

func TestHandlerStorageCapacity(t *testing.T) {
	t.Parallel()

	h, reg := newStorage(t)
	for i := range MaxHandlers {
		require.NoError(t, h.Add(hostRoute(fmt.Sprint(i), fmt.Sprintf("h%d.com", i)), false))
	}
	err := h.Add(hostRoute("overflow", "overflow.com"), false)
	require.ErrorIs(t, err, ErrTooManyHandlers)
	assert.Contains(t, err.Error(), "a maximum of 32 route handlers per node allowed when there are constraints")

	got := h.Match(derived(t, reg, map[string]string{"host": "h31.com"}))
	require.NotNil(t, got)
	assert.Equal(t, "31", got.Handler)
}

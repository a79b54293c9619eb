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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/routing/config/codec"
)

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(sampleYAML), codec.TypeYAML)
	require.NoError(t, err)

	for _, typ := range []codec.Type{codec.TypeYAML, codec.TypeTOML, codec.TypeJSON} {
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()

			b, err := Encode(f, typ)
			require.NoError(t, err)

			back, err := Parse(b, typ)
			require.NoError(t, err, string(b))
			assert.Equal(t, f, back)
		})
	}
}

func TestEncodeOmitsEmpty(t *testing.T) {
	t.Parallel()

	b, err := Encode(&File{Routes: []RouteSpec{{Methods: []string{"GET"}, Path: "/", Handler: "h"}}}, codec.TypeJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "router")
	assert.NotContains(t, string(b), "constraints")
	assert.Contains(t, string(b), `"handler": "h"`)

	_, err = Encode(&File{}, codec.Type("ini"))
	require.ErrorIs(t, err, codec.ErrUnknownType)
}

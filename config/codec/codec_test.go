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

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each document describes the same route table.
var documents = map[Type]string{
	TypeYAML: `
router:
  max_param_length: 64
routes:
  - methods: GET
    path: /users/:id
    handler: users.show
    constraints:
      host: api.example.com
`,
	TypeTOML: `
[router]
max_param_length = 64

[[routes]]
methods = "GET"
path = "/users/:id"
handler = "users.show"

[routes.constraints]
host = "api.example.com"
`,
	TypeJSON: `{
  "router": {"max_param_length": 64},
  "routes": [
    {"methods": "GET", "path": "/users/:id", "handler": "users.show",
     "constraints": {"host": "api.example.com"}}
  ]
}`,
}

func TestDecodeDocuments(t *testing.T) {
	t.Parallel()

	for typ, doc := range documents {
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()

			dec, err := GetDecoder(typ)
			require.NoError(t, err)

			var out map[string]any
			require.NoError(t, dec.Decode([]byte(doc), &out))

			router, ok := out["router"].(map[string]any)
			require.True(t, ok, "router table: %T", out["router"])
			assert.EqualValues(t, 64, router["max_param_length"])

			routes := asSlice(t, out["routes"])
			require.Len(t, routes, 1)
			assert.Equal(t, "/users/:id", routes[0]["path"])
			cs, ok := routes[0]["constraints"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "api.example.com", cs["host"])
		})
	}
}

// asSlice normalizes the array shapes the decoders produce.
func asSlice(t *testing.T, v any) []map[string]any {
	t.Helper()
	switch x := v.(type) {
	case []map[string]any:
		return x
	case []any:
		out := make([]map[string]any, len(x))
		for i, e := range x {
			m, ok := e.(map[string]any)
			require.True(t, ok, "element %d: %T", i, e)
			out[i] = m
		}
		return out
	default:
		require.Failf(t, "unexpected routes shape", "%T", v)
		return nil
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	var out map[string]any
	require.Error(t, YAMLCodec{}.Decode([]byte("routes: [unclosed"), &out))
	require.Error(t, TOMLCodec{}.Decode([]byte("router = "), &out))
	require.Error(t, JSONCodec{}.Decode([]byte("{"), &out))
}

func TestEncode(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"router": map[string]any{"reload_mode": true},
		"routes": []map[string]any{{"path": "/a", "handler": "a"}},
	}
	for _, typ := range []Type{TypeYAML, TypeTOML, TypeJSON} {
		enc, err := GetEncoder(typ)
		require.NoError(t, err)
		b, err := enc.Encode(data)
		require.NoError(t, err, typ)
		assert.Contains(t, string(b), "reload_mode", typ)
		assert.Contains(t, string(b), "/a", typ)

		dec, err := GetDecoder(typ)
		require.NoError(t, err)
		var back map[string]any
		require.NoError(t, dec.Decode(b, &back), typ)
		assert.Len(t, asSlice(t, back["routes"]), 1, typ)
	}

	_, err := JSONCodec{}.Encode(make(chan int))
	require.Error(t, err)
}

func TestEnvCodec(t *testing.T) {
	t.Parallel()

	data := []byte(`ROUTING_ROUTER__MAX_PARAM_LENGTH=64
ROUTING_ROUTER__RELOAD_MODE = true
routing_router__metrics_namespace=app
OTHER_VALUE=ignored
ROUTING_=empty
malformed line
`)

	var out map[string]any
	require.NoError(t, EnvCodec{Prefix: "ROUTING"}.Decode(data, &out))
	assert.Equal(t, map[string]any{
		"router": map[string]any{
			"max_param_length":  "64",
			"reload_mode":       "true",
			"metrics_namespace": "app",
		},
	}, out)

	var wrong map[string]string
	require.Error(t, EnvCodec{}.Decode(data, &wrong))

	_, err := EnvCodec{}.Encode(out)
	require.Error(t, err)
}

func TestEnvCodecNestingReplacesScalar(t *testing.T) {
	t.Parallel()

	var out map[string]any
	require.NoError(t, EnvCodec{Prefix: "APP"}.Decode([]byte("APP_A=1\nAPP_A__B=2"), &out))
	assert.Equal(t, map[string]any{"a": map[string]any{"b": "2"}}, out)
}

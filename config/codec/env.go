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
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// EnvCodec decodes NAME=value lines into a nested document. Only names
// starting with Prefix followed by an underscore are kept; the prefix is
// stripped, names are lowercased and a double underscore starts a nested
// key, so ROUTING_ROUTER__MAX_PARAM_LENGTH becomes router.max_param_length.
// Values stay strings.
type EnvCodec struct {
	Prefix string
}

// Encode is not supported; environment variables are read-only.
func (EnvCodec) Encode(any) ([]byte, error) {
	return nil, errors.New("encoding to environment variables is not supported")
}

// Decode decodes environment lines into a *map[string]any.
func (c EnvCodec) Decode(data []byte, v any) error {
	ptr, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("EnvCodec.Decode: expected *map[string]any, got %T", v)
	}

	prefix := strings.ToLower(c.Prefix)
	if prefix != "" {
		prefix += "_"
	}

	conf := make(map[string]any)
	for line := range bytes.SplitSeq(data, []byte("\n")) {
		name, value, ok := strings.Cut(string(line), "=")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		parts := splitKey(strings.TrimPrefix(name, prefix))
		if len(parts) == 0 {
			continue
		}

		current := conf
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				// A scalar set earlier under this name is replaced by the nested key.
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = strings.TrimSpace(value)
	}

	*ptr = conf
	return nil
}

func splitKey(key string) []string {
	raw := strings.Split(key, "__")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.Trim(p, "_"); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

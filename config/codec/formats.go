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
	"encoding/json"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Built-in document types.
const (
	TypeYAML Type = "yaml"
	TypeTOML Type = "toml"
	TypeJSON Type = "json"
)

func init() {
	register(TypeYAML, YAMLCodec{}, "yaml", "yml")
	register(TypeTOML, TOMLCodec{}, "toml")
	register(TypeJSON, JSONCodec{}, "json")
}

type codec interface {
	Encoder
	Decoder
}

func register(name Type, c codec, exts ...string) {
	RegisterEncoder(name, c)
	RegisterDecoder(name, c)
	for _, ext := range exts {
		RegisterExtension(ext, name)
	}
}

// YAMLCodec encodes and decodes YAML documents.
type YAMLCodec struct{}

// Encode encodes v as YAML.
func (YAMLCodec) Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Decode decodes YAML data into v.
func (YAMLCodec) Decode(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// TOMLCodec encodes and decodes TOML documents.
type TOMLCodec struct{}

// Encode encodes v as TOML.
func (TOMLCodec) Encode(v any) ([]byte, error) {
	return toml.Marshal(v)
}

// Decode decodes TOML data into v. Undecoded keys are not an error here;
// the binding step reports them against the target struct.
func (TOMLCodec) Decode(data []byte, v any) error {
	_, err := toml.Decode(string(data), v)
	return err
}

// JSONCodec encodes and decodes JSON documents.
type JSONCodec struct{}

// Encode encodes v as indented JSON.
func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Decode decodes JSON data into v.
func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

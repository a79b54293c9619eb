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
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnknownType is returned when no codec is registered for a type or
// file extension.
var ErrUnknownType = errors.New("unknown codec type")

// Registry holds encoders and decoders by type, and types by file extension.
type Registry struct {
	mu         sync.RWMutex
	encoders   map[Type]Encoder
	decoders   map[Type]Decoder
	extensions map[string]Type
}

var registry = &Registry{
	encoders:   make(map[Type]Encoder),
	decoders:   make(map[Type]Decoder),
	extensions: make(map[string]Type),
}

// RegisterEncoder registers an encoder for the given type.
func RegisterEncoder(name Type, encoder Encoder) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.encoders[name] = encoder
}

// RegisterDecoder registers a decoder for the given type.
func RegisterDecoder(name Type, decoder Decoder) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.decoders[name] = decoder
}

// RegisterExtension maps a file extension, with or without the leading
// dot, to a type. Extensions are matched case-insensitively.
func RegisterExtension(ext string, name Type) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.extensions[normalizeExt(ext)] = name
}

// GetEncoder retrieves the registered encoder for the given type.
func GetEncoder(name Type) (Encoder, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	encoder, exists := registry.encoders[name]
	if !exists {
		return nil, fmt.Errorf("%w: encoder not found for type: %s", ErrUnknownType, name)
	}
	return encoder, nil
}

// GetDecoder retrieves the registered decoder for the given type.
func GetDecoder(name Type) (Decoder, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	decoder, exists := registry.decoders[name]
	if !exists {
		return nil, fmt.Errorf("%w: decoder not found for type: %s", ErrUnknownType, name)
	}
	return decoder, nil
}

// TypeForPath returns the type registered for the extension of path.
func TypeForPath(path string) (Type, error) {
	ext := normalizeExt(filepath.Ext(path))
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	name, ok := registry.extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: no codec for extension %q of %s", ErrUnknownType, ext, path)
	}
	return name, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

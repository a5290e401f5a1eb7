// Copyright 2025 walteh LLC
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
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&JSONParser{})
}

// JSONParser reads the same layout as YAMLParser, with json field names
type JSONParser struct{}

// CanParse accepts .json files
func (p *JSONParser) CanParse(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}

// 📝 Parse decodes a single JSON object. Unknown fields and trailing values are errors.
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Errorf("decoding JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.Errorf("decoding JSON: unexpected data after the config object")
	}
	return &cfg, nil
}

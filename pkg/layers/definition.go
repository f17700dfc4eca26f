// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package layers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the document backing one mutable configuration stratum.
// The three immutable strata have no document form: their content is
// compile-time constant and never loaded from disk.
type Definition struct {
	Layer   string            `yaml:"layer"`
	Version int               `yaml:"version"`
	Rules   []string          `yaml:"rules"`
	Meta    map[string]string `yaml:"meta,omitempty"`
}

// ParseDefinition decodes a layer definition document and validates that it
// declares a mutable stratum. A document claiming an immutable layer is
// rejected: those strata cannot be file-backed.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse layer definition: %w", err)
	}
	layer, ok := Parse(def.Layer)
	if !ok {
		return nil, fmt.Errorf("layer definition names unknown layer %q", def.Layer)
	}
	if layer.Immutable() {
		return nil, fmt.Errorf("layer %s is immutable and cannot be file-backed", layer)
	}
	if def.Version < 1 {
		return nil, fmt.Errorf("layer definition for %s must declare version >= 1", layer)
	}
	return &def, nil
}

// LoadDefinition reads and parses a layer definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layer definition %s: %w", path, err)
	}
	return ParseDefinition(data)
}

// TargetLayer returns the stratum the definition belongs to.
func (d *Definition) TargetLayer() Layer {
	layer, _ := Parse(d.Layer)
	return layer
}

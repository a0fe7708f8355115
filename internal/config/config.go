// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads user-defined CRC models from YAML files.
//
//	models:
//	  - name: CRC-16/DNP
//	    width: 16
//	    poly: 0x3D65
//	    xorout: 0xFFFF
//	    refin: true
//	    refout: true
//	    check: 0xEA82
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"gopkg.in/yaml.v3"
)

// File is the top level of a model definition file
type File struct {
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig is one model entry; Check may be omitted when no check value is published
type ModelConfig struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Width   int      `yaml:"width"`
	Poly    Hex      `yaml:"poly"`
	Init    Hex      `yaml:"init"`
	XorOut  Hex      `yaml:"xorout"`
	RefIn   bool     `yaml:"refin"`
	RefOut  bool     `yaml:"refout"`
	Check   Hex      `yaml:"check,omitempty"`
}

// Hex is an unsigned value written as decimal, 0x hex, 0o octal or 0b binary
type Hex uint64

// UnmarshalYAML accepts any scalar strconv.ParseUint understands with base 0,
// plus underscore digit separators
func (h *Hex) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	s := strings.ReplaceAll(strings.TrimSpace(node.Value), "_", "")
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", node.Line, node.Value)
	}
	*h = Hex(v)
	return nil
}

// MarshalYAML writes h as an unquoted hex literal
func (h Hex) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!int",
		Value: fmt.Sprintf("0x%X", uint64(h)),
	}, nil
}

// Load reads and validates a model file
func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(b)
}

// Parse decodes and validates model definitions
func Parse(b []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, err
	}

	seen := make(map[string]bool)
	for i, m := range f.Models {
		if strings.TrimSpace(m.Name) == "" {
			return File{}, fmt.Errorf("models[%d].name is required", i)
		}
		key := strings.ToUpper(strings.TrimSpace(m.Name))
		if seen[key] {
			return File{}, fmt.Errorf("models[%d]: duplicate name %q", i, m.Name)
		}
		seen[key] = true

		if _, err := m.Build(); err != nil {
			return File{}, fmt.Errorf("models[%d] (%s): %w", i, m.Name, err)
		}
	}

	return f, nil
}

// Params converts the entry into engine parameters
func (m ModelConfig) Params() crc.Params {
	return crc.Params{
		Name:   strings.TrimSpace(m.Name),
		Width:  m.Width,
		Poly:   uint64(m.Poly),
		Init:   uint64(m.Init),
		XorOut: uint64(m.XorOut),
		RefIn:  m.RefIn,
		RefOut: m.RefOut,
		Check:  uint64(m.Check),
	}
}

// Build validates the entry and returns its model
func (m ModelConfig) Build() (*crc.Model, error) {
	return crc.NewModel(m.Params())
}

// Register builds every model, verifies published check values and adds
// them to catalog. Nothing is registered unless every entry is valid.
// It returns the registered models.
func (f File) Register(catalog *crc.Catalog) ([]*crc.Model, error) {
	models := make([]*crc.Model, 0, len(f.Models))
	entries := make([]crc.Entry, 0, len(f.Models))
	for _, mc := range f.Models {
		m, err := mc.Build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mc.Name, err)
		}
		if err := crc.Verify(m); err != nil {
			return nil, err
		}
		models = append(models, m)
		entries = append(entries, crc.Entry{Model: m, Aliases: mc.Aliases})
	}
	if err := catalog.RegisterAll(entries...); err != nil {
		return nil, err
	}
	return models, nil
}

// FromModel converts an engine model back into a config entry
func FromModel(m *crc.Model) ModelConfig {
	p := m.Params()
	return ModelConfig{
		Name:   p.Name,
		Width:  p.Width,
		Poly:   Hex(p.Poly),
		Init:   Hex(p.Init),
		XorOut: Hex(p.XorOut),
		RefIn:  p.RefIn,
		RefOut: p.RefOut,
		Check:  Hex(p.Check),
	}
}

// Marshal renders models as a YAML model file
func Marshal(models []*crc.Model) ([]byte, error) {
	f := File{Models: make([]ModelConfig, 0, len(models))}
	for _, m := range models {
		f.Models = append(f.Models, FromModel(m))
	}
	return yaml.Marshal(f)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package crc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Catalog errors
var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrDuplicateName    = errors.New("algorithm already registered")
)

// Presets from the CRC catalogue (check values over "123456789")
var (
	CRC8 = MustModel(Params{Name: "CRC-8", Width: 8, Poly: 0x07, Check: 0xF4})

	CRC8Maxim = MustModel(Params{Name: "CRC-8/MAXIM-DOW", Width: 8, Poly: 0x31,
		RefIn: true, RefOut: true, Check: 0xA1})

	CRC16CCITTFalse = MustModel(Params{Name: "CRC-16/CCITT-FALSE", Width: 16, Poly: 0x1021,
		Init: 0xFFFF, Check: 0x29B1})

	CRC16XModem = MustModel(Params{Name: "CRC-16/XMODEM", Width: 16, Poly: 0x1021, Check: 0x31C3})

	CRC16Kermit = MustModel(Params{Name: "CRC-16/KERMIT", Width: 16, Poly: 0x1021,
		RefIn: true, RefOut: true, Check: 0x2189})

	CRC16ARC = MustModel(Params{Name: "CRC-16/ARC", Width: 16, Poly: 0x8005,
		RefIn: true, RefOut: true, Check: 0xBB3D})

	CRC16Modbus = MustModel(Params{Name: "CRC-16/MODBUS", Width: 16, Poly: 0x8005, Init: 0xFFFF,
		RefIn: true, RefOut: true, Check: 0x4B37})

	CRC16X25 = MustModel(Params{Name: "CRC-16/X-25", Width: 16, Poly: 0x1021, Init: 0xFFFF, XorOut: 0xFFFF,
		RefIn: true, RefOut: true, Check: 0x906E})

	CRC16Genibus = MustModel(Params{Name: "CRC-16/GENIBUS", Width: 16, Poly: 0x1021, Init: 0xFFFF,
		XorOut: 0xFFFF, Check: 0xD64E})

	CRC24OpenPGP = MustModel(Params{Name: "CRC-24/OPENPGP", Width: 24, Poly: 0x864CFB,
		Init: 0xB704CE, Check: 0x21CF02})

	CRC32 = MustModel(Params{Name: "CRC-32", Width: 32, Poly: 0x04C11DB7, Init: 0xFFFFFFFF,
		XorOut: 0xFFFFFFFF, RefIn: true, RefOut: true, Check: 0xCBF43926})

	CRC32BZip2 = MustModel(Params{Name: "CRC-32/BZIP2", Width: 32, Poly: 0x04C11DB7, Init: 0xFFFFFFFF,
		XorOut: 0xFFFFFFFF, Check: 0xFC891918})

	CRC32MPEG2 = MustModel(Params{Name: "CRC-32/MPEG-2", Width: 32, Poly: 0x04C11DB7, Init: 0xFFFFFFFF,
		Check: 0x0376E6E7})

	CRC32C = MustModel(Params{Name: "CRC-32C", Width: 32, Poly: 0x1EDC6F41, Init: 0xFFFFFFFF,
		XorOut: 0xFFFFFFFF, RefIn: true, RefOut: true, Check: 0xE3069283})

	CRC64ECMA = MustModel(Params{Name: "CRC-64/ECMA-182", Width: 64, Poly: 0x42F0E1EBA9EA3693,
		Check: 0x6C40DF5F0B497347})

	CRC64XZ = MustModel(Params{Name: "CRC-64/XZ", Width: 64, Poly: 0x42F0E1EBA9EA3693,
		Init: 0xFFFFFFFFFFFFFFFF, XorOut: 0xFFFFFFFFFFFFFFFF, RefIn: true, RefOut: true,
		Check: 0x995DC9BBDF1939FA})

	CRC64GoISO = MustModel(Params{Name: "CRC-64/GO-ISO", Width: 64, Poly: 0x1B,
		Init: 0xFFFFFFFFFFFFFFFF, XorOut: 0xFFFFFFFFFFFFFFFF, RefIn: true, RefOut: true,
		Check: 0xB90956C775A41001})
)

// Alternative names for presets
var aliases = map[string]string{
	"CRC-CCITT":         "CRC-16/CCITT-FALSE",
	"CRC-16/IBM-3740":   "CRC-16/CCITT-FALSE",
	"CRC-16/AUTOSAR":    "CRC-16/CCITT-FALSE",
	"CRC-8/SMBUS":       "CRC-8",
	"CRC-16/CCITT":      "CRC-16/KERMIT",
	"CRC-16/IBM-SDLC":   "CRC-16/X-25",
	"CRC-16":            "CRC-16/ARC",
	"CRC-24":            "CRC-24/OPENPGP",
	"CRC-32/ISO-HDLC":   "CRC-32",
	"CRC-32/ISCSI":      "CRC-32C",
	"CRC-32/CASTAGNOLI": "CRC-32C",
	"CRC-64":            "CRC-64/ECMA-182",
}

// Catalog is a name → model registry. The zero value is not usable; use NewCatalog.
type Catalog struct {
	mu      sync.RWMutex
	models  map[string]*Model
	aliases map[string]string
}

// NewCatalog returns a catalog seeded with every preset
func NewCatalog() *Catalog {
	c := &Catalog{
		models:  make(map[string]*Model),
		aliases: make(map[string]string),
	}
	for _, m := range []*Model{
		CRC8, CRC8Maxim,
		CRC16CCITTFalse, CRC16XModem, CRC16Kermit, CRC16ARC, CRC16Modbus, CRC16X25, CRC16Genibus,
		CRC24OpenPGP,
		CRC32, CRC32BZip2, CRC32MPEG2, CRC32C,
		CRC64ECMA, CRC64XZ, CRC64GoISO,
	} {
		c.models[normalizeName(m.Name())] = m
	}
	for alias, name := range aliases {
		c.aliases[normalizeName(alias)] = normalizeName(name)
	}
	return c
}

// Default is the process-wide catalog used by Lookup and Register
var Default = NewCatalog()

// Lookup finds a model by name or alias in the default catalog
func Lookup(name string) (*Model, error) {
	return Default.Lookup(name)
}

// Register adds a model to the default catalog
func Register(m *Model) error {
	return Default.Register(m)
}

// Names lists the canonical names in the default catalog
func Names() []string {
	return Default.Names()
}

// Lookup finds a model by case-insensitive name or alias
func (c *Catalog) Lookup(name string) (*Model, error) {
	key := normalizeName(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if canonical, ok := c.aliases[key]; ok {
		key = canonical
	}
	m, ok := c.models[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return m, nil
}

// Register adds m under its name. Names and aliases already in use are rejected.
func (c *Catalog) Register(m *Model) error {
	key := normalizeName(m.Name())
	if key == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownAlgorithm)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.models[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, m.Name())
	}
	if _, ok := c.aliases[key]; ok {
		return fmt.Errorf("%w: %q is an alias", ErrDuplicateName, m.Name())
	}
	c.models[key] = m
	return nil
}

// Alias makes alias resolve to the registered model name
func (c *Catalog) Alias(alias, name string) error {
	key := normalizeName(alias)
	target := normalizeName(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.models[target]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	if _, ok := c.models[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, alias)
	}
	if _, ok := c.aliases[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, alias)
	}
	c.aliases[key] = target
	return nil
}

// Entry is a model together with the aliases it should be reachable by
type Entry struct {
	Model   *Model
	Aliases []string
}

// RegisterAll adds every entry or none of them. Names and aliases must be
// unused in the catalog and unique across entries.
func (c *Catalog) RegisterAll(entries ...Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	taken := func(key string) bool {
		_, model := c.models[key]
		_, alias := c.aliases[key]
		return model || alias
	}

	pending := make(map[string]bool)
	for _, e := range entries {
		key := normalizeName(e.Model.Name())
		if key == "" {
			return fmt.Errorf("%w: empty name", ErrUnknownAlgorithm)
		}
		if taken(key) || pending[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, e.Model.Name())
		}
		pending[key] = true
		for _, alias := range e.Aliases {
			a := normalizeName(alias)
			if a == "" || taken(a) || pending[a] {
				return fmt.Errorf("%w: alias %q", ErrDuplicateName, alias)
			}
			pending[a] = true
		}
	}

	for _, e := range entries {
		key := normalizeName(e.Model.Name())
		c.models[key] = e.Model
		for _, alias := range e.Aliases {
			c.aliases[normalizeName(alias)] = key
		}
	}
	return nil
}

// Names returns the canonical model names sorted by width, then name
func (c *Catalog) Names() []string {
	models := c.Models()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name()
	}
	return names
}

// Models returns all registered models sorted by width, then name
func (c *Catalog) Models() []*Model {
	c.mu.RLock()
	models := make([]*Model, 0, len(c.models))
	for _, m := range c.models {
		models = append(models, m)
	}
	c.mu.RUnlock()

	sort.Slice(models, func(i, j int) bool {
		if models[i].Width() != models[j].Width() {
			return models[i].Width() < models[j].Width()
		}
		return models[i].Name() < models[j].Name()
	})
	return models
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

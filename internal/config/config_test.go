// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Thermoquad/crcengine/pkg/crc"
	qt "github.com/frankban/quicktest"
)

const modelsYAML = `
models:
  - name: CRC-16/DNP
    width: 16
    poly: 0x3D65
    xorout: 0xFFFF
    refin: true
    refout: true
    check: 0xEA82
  - name: CRC-15/CAN
    aliases: [CAN]
    width: 15
    poly: 0b100010110011001
    check: 1438
  - name: CRC-64/WE
    width: 64
    poly: 0x42F0_E1EB_A9EA_3693
    init: 0xFFFFFFFFFFFFFFFF
    xorout: 0xFFFFFFFFFFFFFFFF
    check: 0x62EC59E3F1A4F00A
`

func TestParse(t *testing.T) {
	c := qt.New(t)

	f, err := Parse([]byte(modelsYAML))
	c.Assert(err, qt.IsNil)
	c.Assert(f.Models, qt.HasLen, 3)

	dnp := f.Models[0]
	c.Assert(dnp.Params(), qt.DeepEquals, crc.Params{
		Name: "CRC-16/DNP", Width: 16, Poly: 0x3D65, XorOut: 0xFFFF,
		RefIn: true, RefOut: true, Check: 0xEA82,
	})
	c.Assert(f.Models[1].Poly, qt.Equals, Hex(0x4599))
	c.Assert(f.Models[1].Check, qt.Equals, Hex(0x59E))
	c.Assert(f.Models[2].Init, qt.Equals, Hex(0xFFFFFFFFFFFFFFFF))
}

func TestParse_Errors(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name    string
		yaml    string
		pattern string
		is      error
	}{
		{"missing name", "models:\n  - width: 8\n    poly: 7\n", `models\[0\]\.name is required`, nil},
		{"width too small", "models:\n  - name: A\n    width: 4\n    poly: 3\n", `.*invalid width.*`, crc.ErrInvalidWidth},
		{"poly too wide", "models:\n  - name: A\n    width: 8\n    poly: 0x107\n", `.*exceeds register width.*`, crc.ErrParamOutOfRange},
		{"bad number", "models:\n  - name: A\n    width: 8\n    poly: seven\n", `.*invalid number "seven".*`, nil},
		{"duplicate", "models:\n  - {name: A, width: 8, poly: 7}\n  - {name: a, width: 8, poly: 7}\n", `.*duplicate name.*`, nil},
	}

	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			_, err := Parse([]byte(tt.yaml))
			c.Assert(err, qt.ErrorMatches, tt.pattern)
			if tt.is != nil {
				c.Assert(errors.Is(err, tt.is), qt.IsTrue)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	c := qt.New(t)

	f, err := Parse([]byte(modelsYAML))
	c.Assert(err, qt.IsNil)

	catalog := crc.NewCatalog()
	models, err := f.Register(catalog)
	c.Assert(err, qt.IsNil)
	c.Assert(models, qt.HasLen, 3)

	m, err := catalog.Lookup("can")
	c.Assert(err, qt.IsNil)
	c.Assert(m.Name(), qt.Equals, "CRC-15/CAN")
	c.Assert(m.Checksum([]byte(crc.CheckInput)), qt.Equals, uint64(0x059E))

	// Registering the same file twice collides
	_, err = f.Register(catalog)
	c.Assert(errors.Is(err, crc.ErrDuplicateName), qt.IsTrue)
}

func TestRegister_CheckMismatch(t *testing.T) {
	c := qt.New(t)

	f, err := Parse([]byte("models:\n  - {name: BAD, width: 16, poly: 0x1021, check: 0x1234}\n"))
	c.Assert(err, qt.IsNil)

	_, err = f.Register(crc.NewCatalog())
	c.Assert(errors.Is(err, crc.ErrCheckMismatch), qt.IsTrue)
}

func TestRegister_AllOrNothing(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "check mismatch after a valid entry",
			yaml: `models:
  - {name: GOOD, width: 16, poly: 0x1021, check: 0x31C3}
  - {name: BAD, width: 16, poly: 0x1021, check: 0x1234}
`,
			wantErr: crc.ErrCheckMismatch,
		},
		{
			name: "alias collides with a catalog model",
			yaml: `models:
  - {name: GOOD, width: 16, poly: 0x1021, check: 0x31C3}
  - {name: OTHER, width: 8, poly: 0x07, aliases: [CRC-32]}
`,
			wantErr: crc.ErrDuplicateName,
		},
		{
			name: "alias repeated across entries",
			yaml: `models:
  - {name: GOOD, width: 16, poly: 0x1021, aliases: [shared]}
  - {name: OTHER, width: 8, poly: 0x07, aliases: [SHARED]}
`,
			wantErr: crc.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			f, err := Parse([]byte(tt.yaml))
			c.Assert(err, qt.IsNil)

			catalog := crc.NewCatalog()
			before := len(catalog.Names())

			_, err = f.Register(catalog)
			c.Assert(errors.Is(err, tt.wantErr), qt.IsTrue, qt.Commentf("got %v", err))

			_, err = catalog.Lookup("GOOD")
			c.Assert(errors.Is(err, crc.ErrUnknownAlgorithm), qt.IsTrue)
			c.Assert(catalog.Names(), qt.HasLen, before)
		})
	}
}

func TestLoad(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(c.TempDir(), "models.yaml")
	c.Assert(os.WriteFile(path, []byte(modelsYAML), 0o600), qt.IsNil)

	f, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(f.Models, qt.HasLen, 3)

	_, err = Load(filepath.Join(c.TempDir(), "missing.yaml"))
	c.Assert(err, qt.IsNotNil)
}

func TestMarshal_RoundTrip(t *testing.T) {
	c := qt.New(t)

	b, err := Marshal([]*crc.Model{crc.CRC32, crc.CRC64XZ})
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Contains, "poly: 0x4C11DB7")

	f, err := Parse(b)
	c.Assert(err, qt.IsNil)
	c.Assert(f.Models, qt.HasLen, 2)
	c.Assert(f.Models[0].Params(), qt.DeepEquals, crc.CRC32.Params())
	c.Assert(f.Models[1].Params(), qt.DeepEquals, crc.CRC64XZ.Params())
}

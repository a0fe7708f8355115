// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
)

// messageFlags selects where a command reads its message from
type messageFlags struct {
	text    string
	hexData string
}

func addMessageFlags(cmd *cobra.Command, f *messageFlags) {
	cmd.Flags().StringVarP(&f.text, "string", "s", "", "Message given as a literal string")
	cmd.Flags().StringVarP(&f.hexData, "hex", "x", "", "Message given as hex bytes (e.g. \"31 32 33\" or 0x313233)")
	cmd.MarkFlagsMutuallyExclusive("string", "hex")
}

// read returns the message from --string, --hex, a file argument or stdin,
// in that order of precedence
func (f *messageFlags) read(cmd *cobra.Command, args []string, stdin io.Reader) ([]byte, error) {
	switch {
	case cmd.Flags().Changed("string"):
		return []byte(f.text), nil
	case cmd.Flags().Changed("hex"):
		return parseHexBytes(f.hexData)
	case len(args) > 0 && args[0] != "-":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read message: %w", err)
		}
		return data, nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
}

// parseHexBytes decodes hex text, ignoring an optional 0x prefix and any
// whitespace, colon or dash separators
func parseHexBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex message: %w", err)
	}
	return data, nil
}

// parseUint accepts decimal, 0x hex, 0b binary and 0o octal values with
// optional underscores
func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}

// modelFlags selects a catalog algorithm or describes a custom model
type modelFlags struct {
	algorithm string
	width     int
	poly      string
	initial   string
	xorout    string
	refin     bool
	refout    bool
}

func addModelFlags(cmd *cobra.Command, f *modelFlags) {
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "CRC-32", "Catalog algorithm name (see \"crcengine list\")")
	cmd.Flags().IntVarP(&f.width, "width", "w", 0, "Custom model: register width in bits (8-64)")
	cmd.Flags().StringVar(&f.poly, "poly", "", "Custom model: generator polynomial without the top bit")
	cmd.Flags().StringVar(&f.initial, "init", "0", "Custom model: initial remainder")
	cmd.Flags().StringVar(&f.xorout, "xorout", "0", "Custom model: final XOR value")
	cmd.Flags().BoolVar(&f.refin, "refin", false, "Custom model: reflect input bytes")
	cmd.Flags().BoolVar(&f.refout, "refout", false, "Custom model: reflect the final remainder")
	cmd.MarkFlagsRequiredTogether("width", "poly")
}

// isCustom reports whether the command line describes a custom model
func (f *modelFlags) isCustom(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("width") || cmd.Flags().Changed("poly")
}

// resolve looks the algorithm up in catalog, or builds a custom model
func (f *modelFlags) resolve(catalog *crc.Catalog, custom bool) (*crc.Model, error) {
	if !custom {
		return catalog.Lookup(f.algorithm)
	}

	poly, err := parseUint(f.poly)
	if err != nil {
		return nil, fmt.Errorf("--poly: %w", err)
	}
	initial, err := parseUint(f.initial)
	if err != nil {
		return nil, fmt.Errorf("--init: %w", err)
	}
	xorout, err := parseUint(f.xorout)
	if err != nil {
		return nil, fmt.Errorf("--xorout: %w", err)
	}

	return crc.NewModel(crc.Params{
		Width:  f.width,
		Poly:   poly,
		Init:   initial,
		XorOut: xorout,
		RefIn:  f.refin,
		RefOut: f.refout,
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package report renders checksum results for the command line in text,
// JSON or CBOR form.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/fxamacker/cbor/v2"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// ErrUnknownFormat is returned for output formats other than text, json and cbor
var ErrUnknownFormat = errors.New("unknown output format")

// Result is one checksum computation
type Result struct {
	Algorithm string `json:"algorithm" cbor:"1,keyasint"`
	Width     int    `json:"width" cbor:"2,keyasint"`
	Checksum  uint64 `json:"checksum" cbor:"3,keyasint"`
	Hex       string `json:"hex" cbor:"4,keyasint"`
	Binary    string `json:"binary" cbor:"5,keyasint"`
	Length    int    `json:"length" cbor:"6,keyasint"`
}

// NewResult computes the checksum of message under m
func NewResult(m *crc.Model, message []byte) Result {
	sum := m.Checksum(message)
	name := m.Name()
	if name == "" {
		name = "custom"
	}
	return Result{
		Algorithm: name,
		Width:     m.Width(),
		Checksum:  sum,
		Hex:       crc.FormatHex(sum, m.Width()),
		Binary:    crc.FormatBinary(sum, m.Width()),
		Length:    len(message),
	}
}

// ParseFormat normalizes a format flag value
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encode writes results to w in the given format. JSON and CBOR emit a
// single object for one result and an array otherwise.
func Encode(w io.Writer, format string, results ...Result) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	case FormatCBOR:
		var data []byte
		if len(results) == 1 {
			data, err = cbor.Marshal(results[0])
		} else {
			data, err = cbor.Marshal(results)
		}
		if err != nil {
			return fmt.Errorf("failed to encode CBOR: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		for _, r := range results {
			if _, err := io.WriteString(w, FormatTextResult(r)); err != nil {
				return err
			}
		}
		return nil
	}
}

// FormatTextResult renders a result the way the checksum command prints it
func FormatTextResult(r Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Algorithm: %s (width %d)\n", r.Algorithm, r.Width)
	fmt.Fprintf(&sb, "Message:   %d bytes\n", r.Length)
	fmt.Fprintf(&sb, "CRC bits:  %s\n", r.Binary)
	fmt.Fprintf(&sb, "CRC hex:   0x%s\n", r.Hex)
	return sb.String()
}

// Decode reads CBOR written by Encode: a single result or an array of them
func Decode(data []byte) ([]Result, error) {
	// Major type 4 is an array
	if len(data) > 0 && data[0]>>5 == 4 {
		var results []Result
		if err := cbor.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("failed to decode CBOR: %w", err)
		}
		return results, nil
	}

	var r Result
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	return []Result{r}, nil
}

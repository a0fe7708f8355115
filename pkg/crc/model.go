// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package crc provides a configurable, bit-serial Cyclic Redundancy Check engine.
//
// A Model describes one CRC algorithm (width, truncated polynomial, initial
// remainder, final XOR mask and input/output reflection). Models are validated
// once at construction time; after that, computing a checksum cannot fail.
//
// The engine divides one byte at a time, eight shift/XOR steps per byte. It is
// the reference against which any faster implementation must agree bit for bit.
package crc

import (
	"errors"
	"fmt"
)

// Register width limits
const (
	MinWidth = 8
	MaxWidth = 64
)

// CheckInput is the message used by CRC catalogs to publish check values
const CheckInput = "123456789"

// Configuration errors
var (
	ErrInvalidWidth    = errors.New("invalid width")
	ErrParamOutOfRange = errors.New("parameter exceeds register width")
	ErrZeroPolynomial  = errors.New("polynomial must be non-zero")
	ErrCheckMismatch   = errors.New("check value mismatch")
)

// Params holds the raw parameter tuple of a CRC algorithm.
//
// Poly is the truncated generator polynomial: the implicit leading 1-bit of
// the full (Width+1)-bit polynomial is not stored.
type Params struct {
	Name   string
	Width  int
	Poly   uint64
	Init   uint64
	XorOut uint64
	RefIn  bool
	RefOut bool

	// Check is the published CRC of "123456789". Zero means no check value is
	// known, so a model whose real check value is zero cannot be verified.
	Check uint64
}

// Model is a validated, immutable CRC algorithm instance.
// It is safe for concurrent use.
type Model struct {
	params Params
	mask   uint64
	top    uint64
}

// NewModel validates p and returns a Model.
// Width must be in [MinWidth, MaxWidth] and every value must fit in Width bits.
func NewModel(p Params) (*Model, error) {
	if p.Width < MinWidth || p.Width > MaxWidth {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidWidth, p.Width, MinWidth, MaxWidth)
	}

	mask := widthMask(p.Width)
	if p.Poly == 0 {
		return nil, ErrZeroPolynomial
	}

	for _, f := range []struct {
		name  string
		value uint64
	}{
		{"poly", p.Poly},
		{"init", p.Init},
		{"xorout", p.XorOut},
		{"check", p.Check},
	} {
		if f.value&^mask != 0 {
			return nil, fmt.Errorf("%w: %s=0x%X does not fit in %d bits", ErrParamOutOfRange, f.name, f.value, p.Width)
		}
	}

	return &Model{
		params: p,
		mask:   mask,
		top:    uint64(1) << (p.Width - 1),
	}, nil
}

// MustModel is like NewModel but panics on invalid parameters.
// Intended for package-level presets.
func MustModel(p Params) *Model {
	m, err := NewModel(p)
	if err != nil {
		panic(fmt.Sprintf("crc: invalid preset %q: %v", p.Name, err))
	}
	return m
}

// widthMask returns 2^w - 1 without overflowing at w == 64
func widthMask(w int) uint64 {
	return ^uint64(0) >> (64 - w)
}

// Params returns a copy of the model's parameters
func (m *Model) Params() Params {
	return m.params
}

// Name returns the algorithm name
func (m *Model) Name() string {
	return m.params.Name
}

// Width returns the register width in bits
func (m *Model) Width() int {
	return m.params.Width
}

// Size returns the number of bytes needed to hold a checksum
func (m *Model) Size() int {
	return (m.params.Width + 7) / 8
}

// Mask returns the register mask 2^Width - 1
func (m *Model) Mask() uint64 {
	return m.mask
}

// String returns the parameter tuple in catalog notation
func (m *Model) String() string {
	p := m.params
	digits := (p.Width + 3) / 4
	return fmt.Sprintf("width=%d poly=0x%0*X init=0x%0*X refin=%t refout=%t xorout=0x%0*X check=0x%0*X name=%q",
		p.Width, digits, p.Poly, digits, p.Init, p.RefIn, p.RefOut, digits, p.XorOut, digits, p.Check, p.Name)
}

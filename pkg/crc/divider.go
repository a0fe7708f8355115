// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package crc

import "fmt"

// Compute returns the CRC of message using model m.
func Compute(m *Model, message []byte) uint64 {
	return m.Checksum(message)
}

// Checksum performs modulo-2 long division of message by the model's
// polynomial, one byte at a time, and returns the Width-bit result.
// The message is not modified.
func (m *Model) Checksum(message []byte) uint64 {
	shift := m.params.Width - 8
	remainder := m.params.Init

	for _, b := range message {
		if m.params.RefIn {
			b = byte(Reflect(uint64(b), 8))
		}

		// Fold the byte into the top 8 bits of the register
		remainder ^= uint64(b) << shift

		for i := 0; i < 8; i++ {
			// The implicit leading 1 of the full polynomial cancels the top bit,
			// so it is shifted out instead of XORed
			if remainder&m.top != 0 {
				remainder = (remainder << 1) ^ m.params.Poly
			} else {
				remainder <<= 1
			}
			remainder &= m.mask
		}
	}

	return m.finalize(remainder)
}

// finalize applies the final XOR mask and optional output reflection
func (m *Model) finalize(remainder uint64) uint64 {
	remainder = (remainder ^ m.params.XorOut) & m.mask
	if m.params.RefOut {
		remainder = Reflect(remainder, uint(m.params.Width))
	}
	return remainder
}

// Verify computes the check value of m and compares it with the published one.
// Models with Check == 0 are treated as having no published value and always
// verify, whatever their computed check value.
func Verify(m *Model) error {
	if m.params.Check == 0 {
		return nil
	}
	got := m.Checksum([]byte(CheckInput))
	if got != m.params.Check {
		return &CheckError{Model: m.params.Name, Expected: m.params.Check, Got: got, Width: m.params.Width}
	}
	return nil
}

// CheckError reports a model whose computed check value differs from the catalog
type CheckError struct {
	Model    string
	Expected uint64
	Got      uint64
	Width    int
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %v: expected 0x%s, got 0x%s",
		e.Model, ErrCheckMismatch, FormatHex(e.Expected, e.Width), FormatHex(e.Got, e.Width))
}

// Unwrap allows errors.Is(err, ErrCheckMismatch)
func (e *CheckError) Unwrap() error {
	return ErrCheckMismatch
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package crc

import (
	"fmt"
	"strings"
)

// FormatBinary renders the lowest width bits of v as a zero-padded bit pattern
func FormatBinary(v uint64, width int) string {
	return fmt.Sprintf("%0*b", width, v&widthMask(clampWidth(width)))
}

// FormatHex renders v as zero-padded upper-case hex, one digit per nibble of width
func FormatHex(v uint64, width int) string {
	return fmt.Sprintf("%0*X", (width+3)/4, v&widthMask(clampWidth(width)))
}

// FormatMessageBits renders every message byte as 8 bits, most significant first
func FormatMessageBits(message []byte) string {
	var sb strings.Builder
	sb.Grow(len(message) * 8)
	for _, b := range message {
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

func clampWidth(width int) int {
	if width < 1 {
		return 1
	}
	if width > 64 {
		return 64
	}
	return width
}

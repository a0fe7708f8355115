// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package crc

import "math/bits"

// Reflect reverses the order of the lowest n bits of value.
// Bit 0 becomes bit n-1 and so on; bits above n are dropped.
// n == 0 returns 0 and n > 64 is treated as 64.
func Reflect(value uint64, n uint) uint64 {
	if n == 0 {
		return 0
	}
	if n > 64 {
		n = 64
	}
	return bits.Reverse64(value) >> (64 - n)
}

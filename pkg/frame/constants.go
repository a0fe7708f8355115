// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package frame implements a byte-stuffed serial framing whose integrity
// check is any CRC model from the crc package.
//
// Wire format:
//
//	START | stuffed( LEN | PAYLOAD | CRC ) | END
//
// LEN is one byte, CRC is ceil(width/8) bytes big-endian and is computed over
// LEN and PAYLOAD before stuffing.
package frame

// Framing bytes
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Size limits
const (
	MaxPayloadSize = 250
	MaxCRCSize     = 8
	MaxFrameSize   = 1 + MaxPayloadSize + MaxCRCSize
	// MaxWireSize is a fully stuffed frame with START and END
	MaxWireSize = 2 + MaxFrameSize*2
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateLength
	statePayload
	stateCRC
	stateEnd
)

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package frame

import "time"

// Frame is a decoded frame
type Frame struct {
	length    uint8
	payload   []byte
	checksum  uint64
	timestamp time.Time
}

// NewFrame creates a frame with the given fields
func NewFrame(payload []byte, checksum uint64) *Frame {
	return &Frame{
		length:    uint8(len(payload)),
		payload:   payload,
		checksum:  checksum,
		timestamp: time.Now(),
	}
}

// Length returns the payload length from the LEN byte
func (f *Frame) Length() uint8 {
	return f.length
}

// Payload returns the raw payload bytes
func (f *Frame) Payload() []byte {
	return f.payload
}

// Checksum returns the CRC carried by the frame
func (f *Frame) Checksum() uint64 {
	return f.checksum
}

// Timestamp returns the decode timestamp
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

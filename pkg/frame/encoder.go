// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package frame

import (
	"fmt"

	"github.com/Thermoquad/crcengine/pkg/crc"
)

// Encoder encodes payloads into frames.
// Handles length prefix, CRC calculation and byte stuffing.
type Encoder struct {
	model *crc.Model
}

// NewEncoder creates an encoder that protects frames with model
func NewEncoder(model *crc.Model) *Encoder {
	return &Encoder{model: model}
}

// Model returns the CRC model used by the encoder
func (e *Encoder) Model() *crc.Model {
	return e.model
}

// Encode returns the wire bytes for payload, including framing and byte stuffing.
func (e *Encoder) Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	// Data section: length + payload, this is what gets CRC'd
	data := make([]byte, 0, 1+len(payload)+e.model.Size())
	data = append(data, uint8(len(payload)))
	data = append(data, payload...)

	sum := e.model.Checksum(data)
	data = appendChecksum(data, sum, e.model.Size())

	stuffed := stuffBytes(data)

	frame := make([]byte, 0, len(stuffed)+2)
	frame = append(frame, StartByte)
	frame = append(frame, stuffed...)
	frame = append(frame, EndByte)

	return frame, nil
}

// appendChecksum appends the low size bytes of sum, big-endian
func appendChecksum(data []byte, sum uint64, size int) []byte {
	for i := size - 1; i >= 0; i-- {
		data = append(data, byte(sum>>(8*i)))
	}
	return data
}

// stuffBytes applies byte stuffing to escape special bytes.
// Special bytes (START, END, ESC) are replaced with ESC + (byte XOR EscXor).
func stuffBytes(data []byte) []byte {
	result := make([]byte, 0, len(data)*2)

	for _, b := range data {
		if b == StartByte || b == EndByte || b == EscByte {
			result = append(result, EscByte, b^EscXor)
		} else {
			result = append(result, b)
		}
	}

	return result
}

// UnstuffBytes removes byte stuffing from escaped data.
// This is the inverse of stuffBytes.
func UnstuffBytes(data []byte) ([]byte, error) {
	result := make([]byte, 0, len(data))
	escapeNext := false

	for _, b := range data {
		if escapeNext {
			result = append(result, b^EscXor)
			escapeNext = false
		} else if b == EscByte {
			escapeNext = true
		} else {
			result = append(result, b)
		}
	}

	if escapeNext {
		return nil, fmt.Errorf("incomplete escape sequence at end of data")
	}

	return result, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package frame

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/crcengine/pkg/crc"
)

// Decode errors
var (
	ErrInvalidLength = errors.New("invalid length")
	ErrUnexpectedEnd = errors.New("unexpected END byte")
	ErrMissingEnd    = errors.New("expected END byte")
)

// CRCError is returned when a frame's checksum does not match its contents
type CRCError struct {
	Expected uint64 // calculated over the received data
	Got      uint64 // carried by the frame
	Width    int
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("CRC mismatch: expected 0x%s, got 0x%s",
		crc.FormatHex(e.Expected, e.Width), crc.FormatHex(e.Got, e.Width))
}

// Decoder implements the frame decoder state machine
type Decoder struct {
	model       *crc.Model
	state       int
	buffer      []byte
	bufferIndex int
	escapeNext  bool
	crcBytes    int
	length      uint8
	checksum    uint64
	rawBuffer   []byte // wire bytes of the current or last frame, START included
}

// NewDecoder creates a decoder that validates frames with model
func NewDecoder(model *crc.Model) *Decoder {
	return &Decoder{
		model:     model,
		state:     stateIdle,
		buffer:    make([]byte, MaxFrameSize),
		rawBuffer: make([]byte, 0, MaxWireSize),
	}
}

// Reset resets the decoder state to idle and discards the raw bytes
func (d *Decoder) Reset() {
	d.reset()
	d.rawBuffer = d.rawBuffer[:0]
}

// reset returns to idle but keeps the raw bytes of the frame that just
// finished or failed, so callers can inspect them after an error
func (d *Decoder) reset() {
	d.state = stateIdle
	d.bufferIndex = 0
	d.crcBytes = 0
	d.escapeNext = false
	d.length = 0
	d.checksum = 0
}

// GetRawBytes returns the wire bytes of the frame being decoded, or of the
// last frame to complete or fail. Bytes received while idle are not kept.
func (d *Decoder) GetRawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed frame, or nil if the frame is incomplete.
// Returns an error if decoding fails; the decoder then waits for the next START.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	if d.state != stateIdle && len(d.rawBuffer) < cap(d.rawBuffer) {
		d.rawBuffer = append(d.rawBuffer, b)
	}

	// Handle byte stuffing
	if b == EscByte && !d.escapeNext {
		d.escapeNext = true
		return nil, nil
	}

	escaped := d.escapeNext
	if escaped {
		b ^= EscXor
		d.escapeNext = false
	}

	// Framing bytes only count when they were not escaped
	if !escaped && b == StartByte {
		d.Reset()
		d.rawBuffer = append(d.rawBuffer[:0], b)
		d.state = stateLength
		return nil, nil
	}

	if !escaped && b == EndByte {
		if d.state == stateEnd {
			data := d.buffer[:d.bufferIndex]
			calculated := d.model.Checksum(data)

			if d.checksum != calculated {
				err := &CRCError{Expected: calculated, Got: d.checksum, Width: d.model.Width()}
				d.reset()
				return nil, err
			}

			frame := NewFrame(append([]byte(nil), data[1:]...), d.checksum)
			d.reset()
			return frame, nil
		}
		state := d.state
		d.reset()
		if state == stateIdle {
			d.rawBuffer = d.rawBuffer[:0]
		}
		return nil, fmt.Errorf("%w in state %d", ErrUnexpectedEnd, state)
	}

	switch d.state {
	case stateIdle:
		// Waiting for START byte
		return nil, nil

	case stateLength:
		if b > MaxPayloadSize {
			d.reset()
			return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidLength, b, MaxPayloadSize)
		}
		d.length = b
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		if b == 0 {
			d.state = stateCRC
		} else {
			d.state = statePayload
		}
		return nil, nil

	case statePayload:
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		if d.bufferIndex-1 >= int(d.length) {
			d.state = stateCRC
		}
		return nil, nil

	case stateCRC:
		d.checksum = d.checksum<<8 | uint64(b)
		d.crcBytes++
		if d.crcBytes >= d.model.Size() {
			d.state = stateEnd
		}
		return nil, nil

	case stateEnd:
		d.reset()
		return nil, fmt.Errorf("%w, got 0x%02X", ErrMissingEnd, b)

	default:
		d.reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}
}

// Decode feeds data through a fresh decoder and returns every complete frame
// along with the decode errors encountered in between.
func Decode(model *crc.Model, data []byte) ([]*Frame, []error) {
	d := NewDecoder(model)
	var frames []*Frame
	var errs []error
	for _, b := range data {
		f, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
	return frames, errs
}

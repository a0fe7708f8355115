// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package frame

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames  uint64
	ValidFrames  uint64
	CRCErrors    uint64
	DecodeErrors uint64
	PayloadBytes uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one decoder result
func (s *Statistics) Update(frame *Frame, decodeErr error) {
	s.TotalFrames++

	if decodeErr != nil {
		var crcErr *CRCError
		if errors.As(decodeErr, &crcErr) {
			s.CRCErrors++
		} else {
			s.DecodeErrors++
		}
		return
	}

	s.ValidFrames++
	if frame != nil {
		s.PayloadBytes += uint64(len(frame.Payload()))
	}
	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.CRCErrors+s.DecodeErrors) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, crcErrorPercent, decodeErrorPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		crcErrorPercent = float64(s.CRCErrors) * 100.0 / float64(s.TotalFrames)
		decodeErrorPercent = float64(s.DecodeErrors) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d (%.1f%%)\n", s.CRCErrors, crcErrorPercent)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, decodeErrorPercent)
	}

	result += fmt.Sprintf("Payload Bytes:   %8d\n", s.PayloadBytes)
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalFrames = 0
	s.ValidFrames = 0
	s.CRCErrors = 0
	s.DecodeErrors = 0
	s.PayloadBytes = 0
	s.FrameRate = 0
	s.ErrorRate = 0
}

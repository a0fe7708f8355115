// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package frame

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/crcengine/pkg/crc"
)

// FormatFrame formats a frame into a human-readable string
func FormatFrame(f *Frame, model *crc.Model) string {
	timestamp := f.Timestamp().Format("15:04:05.000")

	result := fmt.Sprintf("[%s] len=%d %s=0x%s\n", timestamp, f.length, model.Name(), crc.FormatHex(f.checksum, model.Width()))
	if len(f.payload) > 0 {
		result += FormatPayload(f.payload)
	}
	return result
}

// FormatPayload renders a hex dump, 16 bytes per line, with printable ASCII
func FormatPayload(payload []byte) string {
	var sb strings.Builder
	for off := 0; off < len(payload); off += 16 {
		end := off + 16
		if end > len(payload) {
			end = len(payload)
		}
		line := payload[off:end]

		fmt.Fprintf(&sb, "  %04X  ", off)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				fmt.Fprintf(&sb, "%02X ", line[i])
			} else {
				sb.WriteString("   ")
			}
		}

		sb.WriteString(" |")
		for _, b := range line {
			if b >= 0x20 && b < 0x7F {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package crc

// StepKind identifies what happened to the register during a trace step
type StepKind int

const (
	StepFold  StepKind = iota // message byte XORed into the top of the register
	StepShift                 // top bit clear, register shifted left
	StepXor                   // top bit set, shifted left and XORed with the polynomial
)

// String returns the step kind name
func (k StepKind) String() string {
	switch k {
	case StepFold:
		return "FOLD"
	case StepShift:
		return "SHIFT"
	case StepXor:
		return "XOR"
	default:
		return "UNKNOWN"
	}
}

// Step is one register transition of the long division
type Step struct {
	Kind      StepKind
	ByteIndex int    // index of the message byte being divided
	Bit       int    // 0-7 for shift/xor steps, -1 for folds
	Input     byte   // message byte after optional reflection
	Remainder uint64 // register value after the step
}

// Trace records every intermediate remainder of a checksum computation
type Trace struct {
	Model   *Model
	Initial uint64
	Steps   []Step
	Final   uint64 // register before the final XOR
	Result  uint64 // same value Checksum returns
}

// Trace runs the same division as Checksum while recording each step.
// It allocates 9 steps per message byte and is intended for diagnostics.
func (m *Model) Trace(message []byte) *Trace {
	shift := m.params.Width - 8
	remainder := m.params.Init

	t := &Trace{
		Model:   m,
		Initial: remainder,
		Steps:   make([]Step, 0, len(message)*9),
	}

	for i, b := range message {
		if m.params.RefIn {
			b = byte(Reflect(uint64(b), 8))
		}

		remainder ^= uint64(b) << shift
		t.Steps = append(t.Steps, Step{Kind: StepFold, ByteIndex: i, Bit: -1, Input: b, Remainder: remainder})

		for bit := 0; bit < 8; bit++ {
			kind := StepShift
			if remainder&m.top != 0 {
				remainder = (remainder << 1) ^ m.params.Poly
				kind = StepXor
			} else {
				remainder <<= 1
			}
			remainder &= m.mask
			t.Steps = append(t.Steps, Step{Kind: kind, ByteIndex: i, Bit: bit, Input: b, Remainder: remainder})
		}
	}

	t.Final = remainder
	t.Result = m.finalize(remainder)
	return t
}

// XorCount returns the number of polynomial subtractions performed
func (t *Trace) XorCount() int {
	n := 0
	for _, s := range t.Steps {
		if s.Kind == StepXor {
			n++
		}
	}
	return n
}

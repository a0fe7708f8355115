// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package crc

import "testing"

func TestTrace_ToyDivision(t *testing.T) {
	m := MustModel(Params{Name: "toy", Width: 8, Poly: 0x58})
	tr := m.Trace([]byte{0xE5})

	if len(tr.Steps) != 9 {
		t.Fatalf("expected 9 steps, got %d", len(tr.Steps))
	}

	expected := []struct {
		kind      StepKind
		remainder uint64
	}{
		{StepFold, 0xE5},
		{StepXor, 0x92},
		{StepXor, 0x7C},
		{StepShift, 0xF8},
		{StepXor, 0xA8},
		{StepXor, 0x08},
		{StepShift, 0x10},
		{StepShift, 0x20},
		{StepShift, 0x40},
	}
	for i, e := range expected {
		s := tr.Steps[i]
		if s.Kind != e.kind || s.Remainder != e.remainder {
			t.Errorf("step %d: got %s 0x%02X, want %s 0x%02X", i, s.Kind, s.Remainder, e.kind, e.remainder)
		}
	}

	if tr.Result != 0x40 || tr.Final != 0x40 {
		t.Errorf("result 0x%02X final 0x%02X, want 0x40", tr.Result, tr.Final)
	}
	if tr.XorCount() != 4 {
		t.Errorf("expected 4 XOR steps, got %d", tr.XorCount())
	}
}

func TestTrace_MatchesChecksum(t *testing.T) {
	inputs := [][]byte{nil, []byte("1"), []byte(CheckInput), pngHeader}
	for _, m := range NewCatalog().Models() {
		for _, in := range inputs {
			tr := m.Trace(in)
			if tr.Result != m.Checksum(in) {
				t.Errorf("%s: trace result 0x%X != checksum 0x%X", m.Name(), tr.Result, m.Checksum(in))
			}
			if len(tr.Steps) != len(in)*9 {
				t.Errorf("%s: expected %d steps, got %d", m.Name(), len(in)*9, len(tr.Steps))
			}
		}
	}
}

func TestTrace_ReflectedInput(t *testing.T) {
	tr := CRC32.Trace([]byte{0x01})
	if tr.Steps[0].Input != 0x80 {
		t.Errorf("expected reflected input 0x80, got 0x%02X", tr.Steps[0].Input)
	}
	if tr.Initial != 0xFFFFFFFF {
		t.Errorf("initial 0x%08X", tr.Initial)
	}
}

func TestStepKind_String(t *testing.T) {
	if StepFold.String() != "FOLD" || StepShift.String() != "SHIFT" || StepXor.String() != "XOR" {
		t.Error("unexpected step kind names")
	}
	if StepKind(42).String() != "UNKNOWN" {
		t.Error("expected UNKNOWN for invalid kind")
	}
}

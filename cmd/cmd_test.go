// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the CLI with args after restoring every flag default
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// ============================================================================
// Input Parsing Tests
// ============================================================================

func TestParseHexBytes(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"313233", []byte("123")},
		{"0x313233", []byte("123")},
		{"31 32 33", []byte("123")},
		{"31:32:33", []byte("123")},
		{"de-ad-BE-EF", []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{"  E5\n", []byte{0xE5}},
		{"", []byte{}},
	}

	for _, tt := range tests {
		got, err := parseHexBytes(tt.in)
		if err != nil {
			t.Errorf("parseHexBytes(%q) error: %v", tt.in, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("parseHexBytes(%q) = %X, want %X", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"3", "zz", "0x31 3"} {
		if _, err := parseHexBytes(bad); err == nil {
			t.Errorf("parseHexBytes(%q) expected error", bad)
		}
	}
}

func TestParseUint(t *testing.T) {
	tests := map[string]uint64{
		"0":                  0,
		"255":                255,
		"0x1021":             0x1021,
		"0XFFFF":             0xFFFF,
		"0b1011":             0b1011,
		"0o17":               0o17,
		"0xFFFF_FFFF":        0xFFFFFFFF,
		"0xFFFFFFFFFFFFFFFF": 0xFFFFFFFFFFFFFFFF,
	}
	for in, want := range tests {
		got, err := parseUint(in)
		if err != nil {
			t.Errorf("parseUint(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseUint(%q) = 0x%X, want 0x%X", in, got, want)
		}
	}

	for _, bad := range []string{"", "-1", "0x", "ten", "0x1_0000_0000_0000_0000"} {
		if _, err := parseUint(bad); err == nil {
			t.Errorf("parseUint(%q) expected error", bad)
		}
	}
}

// ============================================================================
// Model Resolution Tests
// ============================================================================

func TestModelFlags_ResolveCatalog(t *testing.T) {
	f := modelFlags{algorithm: "crc-ccitt"}
	m, err := f.resolve(crc.Default, false)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if m != crc.CRC16CCITTFalse {
		t.Errorf("resolved %s, want CRC-16/CCITT-FALSE", m.Name())
	}

	f.algorithm = "CRC-99"
	if _, err := f.resolve(crc.Default, false); !errors.Is(err, crc.ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestModelFlags_ResolveCustom(t *testing.T) {
	f := modelFlags{width: 16, poly: "0x1021", initial: "0xFFFF", xorout: "0"}
	m, err := f.resolve(crc.Default, true)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if got := m.Checksum([]byte(crc.CheckInput)); got != 0x29B1 {
		t.Errorf("custom CCITT check = 0x%04X, want 0x29B1", got)
	}

	tests := []struct {
		name  string
		flags modelFlags
		want  error
	}{
		{"bad width", modelFlags{width: 4, poly: "3", initial: "0", xorout: "0"}, crc.ErrInvalidWidth},
		{"zero poly", modelFlags{width: 8, poly: "0", initial: "0", xorout: "0"}, crc.ErrZeroPolynomial},
		{"init too wide", modelFlags{width: 8, poly: "7", initial: "0x100", xorout: "0"}, crc.ErrParamOutOfRange},
	}
	for _, tt := range tests {
		if _, err := tt.flags.resolve(crc.Default, true); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	bad := modelFlags{width: 8, poly: "seven", initial: "0", xorout: "0"}
	if _, err := bad.resolve(crc.Default, true); err == nil || !strings.Contains(err.Error(), "--poly") {
		t.Errorf("expected --poly error, got %v", err)
	}
}

func TestSelectModels(t *testing.T) {
	all, err := selectModels(crc.Default, nil)
	if err != nil || len(all) != len(crc.Default.Names()) {
		t.Fatalf("selectModels(nil) = %d models, %v", len(all), err)
	}

	some, err := selectModels(crc.Default, []string{"CRC-32", "crc-8"})
	if err != nil {
		t.Fatalf("selectModels error: %v", err)
	}
	if len(some) != 2 || some[0] != crc.CRC32 || some[1] != crc.CRC8 {
		t.Errorf("unexpected selection %v", some)
	}

	if _, err := selectModels(crc.Default, []string{"nope"}); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestLoadModels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	yaml := "models:\n  - name: CRC-16/DNP\n    aliases: [DNP]\n    width: 16\n    poly: 0x3D65\n    xorout: 0xFFFF\n    refin: true\n    refout: true\n    check: 0xEA82\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	catalog := crc.NewCatalog()
	if err := loadModels(path, catalog); err != nil {
		t.Fatalf("loadModels error: %v", err)
	}
	if _, err := catalog.Lookup("dnp"); err != nil {
		t.Errorf("alias not registered: %v", err)
	}

	// Second load collides with the first
	if err := loadModels(path, catalog); !errors.Is(err, crc.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

// ============================================================================
// Command Tests
// ============================================================================

func TestChecksumCommand(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{
			[]string{"checksum", "-s", "123456789"},
			[]string{"Algorithm: CRC-32 (width 32)", "CRC bits:  11001011111101000011100100100110", "CRC hex:   0xCBF43926"},
		},
		{
			[]string{"checksum", "-a", "CRC-16/MODBUS", "-x", "31 32 33 34 35 36 37 38 39"},
			[]string{"CRC hex:   0x4B37"},
		},
		{
			[]string{"checksum", "-w", "16", "--poly", "0x1021", "--init", "0xFFFF", "-s", "1234"},
			[]string{"Algorithm: custom (width 16)", "CRC bits:  0101001101001001"},
		},
		{
			[]string{"checksum", "-w", "8", "--poly", "0x58", "-x", "E5", "--show-bits"},
			[]string{"Message bits: 11100101", "CRC bits:  01000000"},
		},
		{
			[]string{"checksum", "-a", "CRC-64/XZ", "-s", "123456789", "-o", "json"},
			[]string{`"algorithm": "CRC-64/XZ"`, `"hex": "995DC9BBDF1939FA"`},
		},
	}

	for _, tt := range tests {
		out, err := executeCommand(t, tt.args...)
		if err != nil {
			t.Errorf("%v: unexpected error: %v", tt.args, err)
			continue
		}
		for _, want := range tt.want {
			if !strings.Contains(out, want) {
				t.Errorf("%v: output missing %q:\n%s", tt.args, want, out)
			}
		}
	}
}

func TestChecksumCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.bin")
	if err := os.WriteFile(path, []byte(crc.CheckInput), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "checksum", "-a", "CRC-32C", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "CRC hex:   0xE3069283") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestReportCommand_CBORRoundTrip(t *testing.T) {
	cbor, err := executeCommand(t, "checksum", "-a", "CRC-16/MODBUS", "-s", crc.CheckInput, "-o", "cbor")
	if err != nil {
		t.Fatalf("checksum error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "result.cbor")
	if err := os.WriteFile(path, []byte(cbor), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "report", path)
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	for _, want := range []string{"Algorithm: CRC-16/MODBUS (width 16)", "Message:   9 bytes", "CRC hex:   0x4B37"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "report", "-o", "json", path)
	if err != nil || !strings.Contains(out, `"checksum": 19255`) {
		t.Errorf("unexpected JSON report (%v):\n%s", err, out)
	}

	if _, err := executeCommand(t, "report"); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestChecksumCommand_Errors(t *testing.T) {
	tests := [][]string{
		{"checksum", "-a", "CRC-99", "-s", "x"},
		{"checksum", "-s", "x", "-o", "xml"},
		{"checksum", "-w", "4", "--poly", "3", "-s", "x"},
		{"checksum", "-x", "zz"},
		{"checksum", "-s", "a", "-x", "61"},
	}
	for _, args := range tests {
		if _, err := executeCommand(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestReflectCommand(t *testing.T) {
	out, err := executeCommand(t, "reflect", "0x01", "--bits", "8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Result: 10000000 (0x80)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = executeCommand(t, "reflect", "0b1101", "-n", "4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Result: 1011 (0xB)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := executeCommand(t, "reflect", "1", "--bits", "65"); err == nil {
		t.Error("expected error for --bits 65")
	}
}

func TestVerifyCommand(t *testing.T) {
	out, err := executeCommand(t, "verify")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "CRC-64/GO-ISO") || !strings.Contains(out, "algorithms verified") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "FAIL") {
		t.Errorf("catalog model failed verification:\n%s", out)
	}
}

func TestListCommand(t *testing.T) {
	out, err := executeCommand(t, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"CRC-8", "CRC-16/CCITT-FALSE", "CRC-24/OPENPGP", "CRC-64/XZ"} {
		if !strings.Contains(out, name) {
			t.Errorf("list output missing %s", name)
		}
	}
	if !strings.Contains(out, "0xCBF43926") {
		t.Error("list output missing CRC-32 check value")
	}

	out, err = executeCommand(t, "list", "--yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "models:") || !strings.Contains(out, "name: CRC-32C") {
		t.Errorf("unexpected YAML output:\n%s", out)
	}
}

func TestTraceCommand(t *testing.T) {
	out, err := executeCommand(t, "trace", "-w", "8", "--poly", "0x58", "-x", "E5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"byte 0 (0xE5)", "FOLD   11100101", "XOR    01111100", "CRC hex:   0x40", "XOR steps: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "trace", "-w", "8", "--poly", "0x58", "-x", "E5", "--xor-only")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "SHIFT") {
		t.Errorf("--xor-only printed shift steps:\n%s", out)
	}
}

func TestFrameCommands(t *testing.T) {
	out, err := executeCommand(t, "frame", "encode", "-s", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "7E 02 68 69 DD F0 7F" {
		t.Errorf("encode output = %q", out)
	}

	out, err = executeCommand(t, "frame", "decode", "-x", "7E 02 68 69 DD F0 7F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "len=2 CRC-16/CCITT-FALSE=0xDDF0") || !strings.Contains(out, "1 frame(s), 0 error(s)") {
		t.Errorf("unexpected decode output:\n%s", out)
	}

	out, err = executeCommand(t, "frame", "decode", "-x", "7E 02 68 69 DD F1 7F")
	if err == nil {
		t.Fatal("expected error for corrupted frame")
	}
	if !strings.Contains(out, "CRC mismatch") {
		t.Errorf("unexpected decode output:\n%s", out)
	}
}

func TestFrameEncode_Send_NoConnection(t *testing.T) {
	_, err := executeCommand(t, "frame", "encode", "-s", "hi", "--send")
	if err == nil || !strings.Contains(err.Error(), "--port or --url") {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestMonitorCommand_InvalidIntervals(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"monitor", "--stats-interval", "0"}, "--stats-interval must be positive, got 0"},
		{[]string{"monitor", "--stats-interval=-5"}, "--stats-interval must be positive, got -5"},
		{[]string{"monitor", "--wait", "--timeout", "0"}, "--timeout must be positive, got 0"},
	}

	for _, tt := range tests {
		// Validation runs before any connection is opened
		_, err := executeCommand(t, tt.args...)
		if err == nil || err.Error() != tt.want {
			t.Errorf("%v: expected %q, got %v", tt.args, tt.want, err)
		}
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CRCENGINE_LOG_LEVEL", "error")
	t.Setenv("CRCENGINE_BAUD", "9600")

	if _, err := executeCommand(t, "reflect", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logLevel != "error" {
		t.Errorf("logLevel = %q, want error", logLevel)
	}
	if baudRate != 9600 {
		t.Errorf("baudRate = %d, want 9600", baudRate)
	}
}

func TestValidateWebSocketURL(t *testing.T) {
	for _, ok := range []string{"ws://localhost/ws", "wss://example.com:8443/frames"} {
		if _, err := validateWebSocketURL(ok); err != nil {
			t.Errorf("validateWebSocketURL(%q) error: %v", ok, err)
		}
	}
	for _, bad := range []string{"http://localhost", "localhost:80", "://"} {
		if _, err := validateWebSocketURL(bad); err == nil {
			t.Errorf("validateWebSocketURL(%q) expected error", bad)
		}
	}
}

func TestBasicAuthHeader(t *testing.T) {
	h := basicAuthHeader("admin", "secret")
	if got := h.Get("Authorization"); got != "Basic YWRtaW46c2VjcmV0" {
		t.Errorf("Authorization = %q", got)
	}
	if basicAuthHeader("admin", "").Get("Authorization") != "" {
		t.Error("expected no header without password")
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
)

var reflectBits uint

var reflectCmd = &cobra.Command{
	Use:   "reflect <value>",
	Short: "Reverse the lowest bits of a value",
	Long: `Reverse the order of the lowest --bits bits of a value. Bits above that
width are dropped from the result.

Examples:
  crcengine reflect 0x01 --bits 8      # 0x80
  crcengine reflect 0b1101 --bits 4    # 0b1011`,
	Args: cobra.ExactArgs(1),
	RunE: runReflect,
}

func init() {
	rootCmd.AddCommand(reflectCmd)
	reflectCmd.Flags().UintVarP(&reflectBits, "bits", "n", 8, "Number of low bits to reverse (0-64)")
}

func runReflect(cmd *cobra.Command, args []string) error {
	value, err := parseUint(args[0])
	if err != nil {
		return err
	}
	if reflectBits > crc.MaxWidth {
		return fmt.Errorf("--bits must be at most %d, got %d", crc.MaxWidth, reflectBits)
	}

	out := cmd.OutOrStdout()
	if reflectBits == 0 {
		fmt.Fprintln(out, "Result: 0x0")
		return nil
	}

	n := int(reflectBits)
	result := crc.Reflect(value, reflectBits)
	fmt.Fprintf(out, "Input:  %s (0x%s)\n", crc.FormatBinary(value, n), crc.FormatHex(value, n))
	fmt.Fprintf(out, "Result: %s (0x%s)\n", crc.FormatBinary(result, n), crc.FormatHex(result, n))
	return nil
}

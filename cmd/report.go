// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/crcengine/internal/log"
	"github.com/Thermoquad/crcengine/internal/report"
	"github.com/spf13/cobra"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Render CBOR checksum results",
	Long: `Read results written by "checksum -o cbor" from a file or stdin and print
them as text or JSON.

Examples:
  crcengine checksum -o cbor firmware.bin > firmware.crc
  crcengine report firmware.crc
  crcengine checksum -o cbor -s 123456789 | crcengine report -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", report.FormatText, "Output format (text, json, cbor)")
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(reportOutput)
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no CBOR input")
	}

	results, err := report.Decode(data)
	if err != nil {
		return err
	}
	log.Debugw("decoded results", "count", len(results))

	return report.Encode(cmd.OutOrStdout(), format, results...)
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/crcengine/internal/log"
	"github.com/Thermoquad/crcengine/internal/report"
	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
)

var (
	checksumModel   modelFlags
	checksumMessage messageFlags
	checksumOutput  string
	checksumBits    bool
)

var checksumCmd = &cobra.Command{
	Use:   "checksum [file]",
	Short: "Compute the CRC of a message",
	Long: `Compute the CRC of a message read from --string, --hex, a file or stdin.

The algorithm is picked by name from the catalog with --algorithm, or described
directly with --width and --poly (plus optional --init, --xorout, --refin and
--refout). Numbers accept decimal, 0x hex and 0b binary notation.

Examples:
  crcengine checksum -s 123456789
  crcengine checksum -a CRC-16/MODBUS -x "01 03 00 00 00 0A"
  crcengine checksum -w 16 --poly 0x1021 --init 0xFFFF -s 1234
  crcengine checksum -a crc-32c -o json firmware.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChecksum,
}

func init() {
	rootCmd.AddCommand(checksumCmd)
	addModelFlags(checksumCmd, &checksumModel)
	addMessageFlags(checksumCmd, &checksumMessage)
	checksumCmd.Flags().StringVarP(&checksumOutput, "output", "o", report.FormatText, "Output format (text, json, cbor)")
	checksumCmd.Flags().BoolVar(&checksumBits, "show-bits", false, "Print the message bit pattern (text output only)")
}

func runChecksum(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(checksumOutput)
	if err != nil {
		return err
	}

	model, err := checksumModel.resolve(crc.Default, checksumModel.isCustom(cmd))
	if err != nil {
		return err
	}

	message, err := checksumMessage.read(cmd, args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	log.Debugw("computing checksum", "model", model.String(), "bytes", len(message))

	out := cmd.OutOrStdout()
	if checksumBits && format == report.FormatText {
		fmt.Fprintf(out, "Message bits: %s\n", crc.FormatMessageBits(message))
	}
	return report.Encode(out, format, report.NewResult(model, message))
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
)

var (
	traceModel   modelFlags
	traceMessage messageFlags
	traceXorOnly bool
)

var traceCmd = &cobra.Command{
	Use:   "trace [file]",
	Short: "Show the long division step by step",
	Long: `Print the register after every byte fold and every bit step of the CRC
division. Steps where the polynomial is subtracted are highlighted.

Traces grow by nine lines per message byte, so keep messages short.

Example:
  crcengine trace -w 8 --poly 0x58 -x E5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	addModelFlags(traceCmd, &traceModel)
	addMessageFlags(traceCmd, &traceMessage)
	traceCmd.Flags().BoolVar(&traceXorOnly, "xor-only", false, "Only print fold and XOR steps")
}

func runTrace(cmd *cobra.Command, args []string) error {
	model, err := traceModel.resolve(crc.Default, traceModel.isCustom(cmd))
	if err != nil {
		return err
	}

	message, err := traceMessage.read(cmd, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	writeTrace(cmd.OutOrStdout(), model.Trace(message), traceXorOnly)
	return nil
}

// writeTrace renders a division trace one register value per line
func writeTrace(w io.Writer, t *crc.Trace, xorOnly bool) {
	p := t.Model.Params()
	width := p.Width

	fmt.Fprintln(w, titleStyle.Render("CRC DIVISION TRACE"))
	fmt.Fprintln(w, headerStyle.Render(t.Model.String()))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-14s %s\n", labelStyle.Render("poly"), crc.FormatBinary(p.Poly, width))
	fmt.Fprintf(w, "%-14s %s\n", labelStyle.Render("init"), crc.FormatBinary(t.Initial, width))

	for _, s := range t.Steps {
		bits := crc.FormatBinary(s.Remainder, width)
		switch s.Kind {
		case crc.StepFold:
			fmt.Fprintf(w, "\n%s %s\n", labelStyle.Render(fmt.Sprintf("byte %d (0x%02X)", s.ByteIndex, s.Input)), headerStyle.Render(fmt.Sprintf("%08b", s.Input)))
			fmt.Fprintf(w, "  %-6s %s\n", s.Kind, bits)
		case crc.StepXor:
			fmt.Fprintf(w, "  %-6s %s\n", s.Kind, warningStyle.Render(bits))
		default:
			if !xorOnly {
				fmt.Fprintf(w, "  %-6s %s\n", s.Kind, bits)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("remainder:"), crc.FormatBinary(t.Final, width))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("CRC bits: "), valueStyle.Render(crc.FormatBinary(t.Result, width)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("CRC hex:  "), valueStyle.Render("0x"+crc.FormatHex(t.Result, width)))
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("XOR steps:"), t.XorCount())
}

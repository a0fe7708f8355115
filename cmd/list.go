// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/crcengine/internal/config"
	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
)

var listYAML bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the algorithms in the catalog",
	Long: `List every catalog algorithm with its parameters and check value (the CRC of
the ASCII string "123456789").

With --yaml the catalog is written in the model file format accepted by
--models, which is a convenient starting point for custom definitions.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "Print the catalog as a YAML model file")
}

func runList(cmd *cobra.Command, args []string) error {
	models := crc.Default.Models()

	if listYAML {
		data, err := config.Marshal(models)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	writeModelTable(cmd.OutOrStdout(), models)
	return nil
}

// writeModelTable prints one row per model
func writeModelTable(w io.Writer, models []*crc.Model) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-20s %5s %-18s %-18s %-5s %-6s %-18s %-18s",
		"NAME", "WIDTH", "POLY", "INIT", "REFIN", "REFOUT", "XOROUT", "CHECK")))

	for _, m := range models {
		p := m.Params()
		fmt.Fprintf(w, "%s %5d %-18s %-18s %-5t %-6t %-18s %s\n",
			labelStyle.Render(fmt.Sprintf("%-20s", p.Name)),
			p.Width,
			"0x"+crc.FormatHex(p.Poly, p.Width),
			"0x"+crc.FormatHex(p.Init, p.Width),
			p.RefIn,
			p.RefOut,
			"0x"+crc.FormatHex(p.XorOut, p.Width),
			valueStyle.Render("0x"+crc.FormatHex(p.Check, p.Width)),
		)
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/crcengine/internal/log"
	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [algorithm...]",
	Short: "Check algorithms against their catalog check values",
	Long: `Compute the CRC of "123456789" for each named algorithm (or the whole
catalog when none are given) and compare it with the published check value.

Exits with an error if any algorithm does not reproduce its check value.
Models loaded with --models are verified as well.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	models, err := selectModels(crc.Default, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, m := range models {
		err := crc.Verify(m)
		var checkErr *crc.CheckError
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s %s\n", valueStyle.Render("OK  "), m.Name())
		case errors.As(err, &checkErr):
			failed++
			fmt.Fprintf(out, "%s %v\n", errorStyle.Render("FAIL"), err)
			log.Warnw("check value mismatch", "model", m.Name(), "expected", checkErr.Expected, "got", checkErr.Got)
		default:
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d algorithms failed verification", failed, len(models))
	}
	fmt.Fprintf(out, "\nAll %d algorithms verified\n", len(models))
	return nil
}

// selectModels resolves names in catalog, or returns every model when names is empty
func selectModels(catalog *crc.Catalog, names []string) ([]*crc.Model, error) {
	if len(names) == 0 {
		return catalog.Models(), nil
	}

	models := make([]*crc.Model, 0, len(names))
	for _, name := range names {
		m, err := catalog.Lookup(name)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

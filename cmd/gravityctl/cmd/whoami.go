// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var whoamiOut string

// whoamiCmd re-derives this identity's canonical CPK and writes it
// somewhere re-ingestable: to cpkExportPath by default, or to the
// file named by --out, with no human-readable label attached so the
// bytes can be handed straight to subscribe or group create/nickname.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Export this identity's canonical CPK",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		id, err := loadIdentity(dir)
		if err != nil {
			return err
		}

		cpk := []byte(id.PublicKey())

		if whoamiOut == "-" {
			_, err := cmd.OutOrStdout().Write(cpk)
			return err
		}

		out := whoamiOut
		if out == "" {
			out = cpkExportPath(dir)
		}
		if err := os.WriteFile(out, cpk, 0o644); err != nil {
			return fmt.Errorf("write cpk: %w", err)
		}
		cmd.Println("wrote re-ingestable CPK to", out)
		return nil
	},
}

func init() {
	whoamiCmd.Flags().StringVar(&whoamiOut, "out", "", "destination file for the CPK, or - for stdout (default <data-dir>/cpk.pem)")
	rootCmd.AddCommand(whoamiCmd)
}

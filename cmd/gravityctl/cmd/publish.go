// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package cmd

import (
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Print this node's own profile root hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		node, closeNode, err := openNode(dir)
		if err != nil {
			return err
		}
		defer closeNode()

		hash, err := node.GetMyProfileHash(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Println(hash)
		return nil
	},
}

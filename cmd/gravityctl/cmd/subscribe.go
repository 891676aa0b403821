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

	"github.com/pseudofunctor/gravity-protocol/internal/b64url"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <peer-cpk-file>",
	Short: "Establish or reuse a pairwise secret with a peer and write the subscriber drop",
	Args:  cobra.ExactArgs(1),
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

		peerCPK, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read peer CPK: %w", err)
		}

		secret, err := node.AddSubscriber(cmd.Context(), peerCPK)
		if err != nil {
			return err
		}

		cmd.Println("pairwise secret:", b64url.Encode(secret[:]))
		return nil
	},
}

var listenCmd = &cobra.Command{
	Use:   "listen <peer-subscribers-path>",
	Short: "Trial-decrypt a peer's /subscribers folder and recover the secret meant for us",
	Args:  cobra.ExactArgs(1),
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

		secret, err := node.TestDecryptAllSubscribers(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		cmd.Println("recovered secret:", b64url.Encode(secret[:]))
		return nil
	},
}

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
	"strings"

	"github.com/spf13/cobra"

	"github.com/pseudofunctor/gravity-protocol/internal/keys"
)

var groupID string

// readMemberCPK loads a CPK from path and normalizes it, so that a member
// file need only be in any accepted encoding (spec §4.2), not byte-identical
// to whatever canonical form was stored in contacts during the subscribe
// handshake.
func readMemberCPK(path string) (keys.CPK, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read member CPK %s: %w", path, err)
	}
	cpk, err := keys.ToCanonical(raw)
	if err != nil {
		return "", fmt.Errorf("normalize member CPK %s: %w", path, err)
	}
	return cpk, nil
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <member-cpk-file>...",
	Short: "Create a group from one or more member CPK files",
	Args:  cobra.MinimumNArgs(1),
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

		members := make([]keys.CPK, 0, len(args))
		for _, path := range args {
			cpk, err := readMemberCPK(path)
			if err != nil {
				return err
			}
			members = append(members, cpk)
		}

		groupDir, err := node.CreateGroup(cmd.Context(), members, groupID)
		if err != nil {
			return err
		}

		cmd.Println("group:", groupDir)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known group directories",
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

		groupsList, err := node.ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		for _, g := range groupsList {
			cmd.Println(g)
		}
		return nil
	},
}

var groupNicknameCmd = &cobra.Command{
	Use:   "nickname <group-dir> <cpk-file>=<nickname>...",
	Short: "Set nicknames for members of a group",
	Args:  cobra.MinimumNArgs(2),
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

		groupDir := args[0]
		patch := make(map[keys.CPK]string, len(args)-1)
		for _, assignment := range args[1:] {
			parts := strings.SplitN(assignment, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("malformed assignment %q, want <cpk-file>=<nickname>", assignment)
			}
			cpk, err := readMemberCPK(parts[0])
			if err != nil {
				return err
			}
			patch[cpk] = parts[1]
		}

		if err := node.SetNicknames(cmd.Context(), groupDir, patch); err != nil {
			return err
		}

		cmd.Println("nicknames updated")
		return nil
	},
}

func init() {
	groupCreateCmd.Flags().StringVar(&groupID, "id", "", "caller-supplied group id (default: fresh UUID)")
	groupCmd.AddCommand(groupCreateCmd, groupListCmd, groupNicknameCmd)
}

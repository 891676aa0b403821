// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package cmd

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pseudofunctor/gravity-protocol/internal/filekv"
	"github.com/pseudofunctor/gravity-protocol/internal/identity"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a fresh identity and master key in the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}

		path := identityPath(dir)
		if _, err := os.Stat(path); err == nil {
			cmd.Println("identity already exists at", path)
		} else {
			id, err := identity.Generate()
			if err != nil {
				return fmt.Errorf("generate identity: %w", err)
			}
			der, err := x509.MarshalPKCS8PrivateKey(id.PrivateKey())
			if err != nil {
				return fmt.Errorf("marshal identity: %w", err)
			}
			block := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
			if err := os.WriteFile(path, block, 0o600); err != nil {
				return fmt.Errorf("write identity: %w", err)
			}
			cpkPath := cpkExportPath(dir)
			if err := os.WriteFile(cpkPath, []byte(id.PublicKey()), 0o644); err != nil {
				return fmt.Errorf("write cpk: %w", err)
			}
			cmd.Println("generated identity at", path)
			cmd.Println("wrote re-ingestable CPK to", cpkPath)
		}

		kv, err := filekv.Open(filepath.Join(dir, "master.db"))
		if err != nil {
			return fmt.Errorf("open master key store: %w", err)
		}
		defer kv.Close()

		if _, err := kv.Get(context.Background(), masterkey.StorageKey); err != nil {
			id, err := loadIdentity(dir)
			if err != nil {
				return err
			}
			node, err := openNodeWithKV(dir, id, kv)
			if err != nil {
				return err
			}
			if _, err := node.ResetMasterKey(cmd.Context()); err != nil {
				return fmt.Errorf("reset master key: %w", err)
			}
			cmd.Println("master key initialized")
		} else {
			cmd.Println("master key already initialized")
		}

		return nil
	},
}

// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package cmd implements the gravityctl command-line front end over
// the gravity protocol core, wiring the diskfs and filekv developer-mode
// collaborators in place of a real content-addressed filesystem node.
package cmd

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gravity "github.com/pseudofunctor/gravity-protocol"
	"github.com/pseudofunctor/gravity-protocol/internal/diskfs"
	"github.com/pseudofunctor/gravity-protocol/internal/filekv"
	"github.com/pseudofunctor/gravity-protocol/internal/identity"
)

var rootCmd = &cobra.Command{
	Use:   "gravityctl",
	Short: "Manage a gravity-protocol profile from the command line",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "profile data directory (default $HOME/.gravity)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetEnvPrefix("GRAVITY")
	viper.AutomaticEnv()

	rootCmd.AddCommand(initCmd, subscribeCmd, listenCmd, groupCmd, publishCmd)
}

func dataDir() (string, error) {
	dir := viper.GetString("data-dir")
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve default data directory: %w", err)
	}
	return filepath.Join(home, ".gravity"), nil
}

func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func identityPath(dir string) string {
	return filepath.Join(dir, "identity.pem")
}

// cpkExportPath is where a clean, re-ingestable CPK PEM is written,
// so that init and whoami never need to print the CPK itself to
// stdout. subscribe and group accept exactly this file's bytes
// unchanged.
func cpkExportPath(dir string) string {
	return filepath.Join(dir, "cpk.pem")
}

func loadIdentity(dir string) (*identity.Static, error) {
	der, err := os.ReadFile(identityPath(dir))
	if err != nil {
		return nil, fmt.Errorf("read identity: %w (run `gravityctl init` first)", err)
	}
	block, _ := pem.Decode(der)
	if block == nil {
		return nil, fmt.Errorf("identity.pem is not PEM-encoded")
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		key, err2 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err2 != nil {
			return nil, fmt.Errorf("parse identity private key: %w", err)
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("identity.pem does not hold an RSA key")
		}
		priv = rsaKey
	}
	return identity.FromKey(priv)
}

// openNode wires a gravity.Node over this data directory's diskfs
// Backend and filekv KV, for every subcommand except init (which uses
// openNodeWithKV) and whoami (which only loads the identity).
func openNode(dir string) (*gravity.Node, func() error, error) {
	id, err := loadIdentity(dir)
	if err != nil {
		return nil, nil, err
	}

	kv, err := filekv.Open(filepath.Join(dir, "master.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open master key store: %w", err)
	}

	node, err := openNodeWithKV(dir, id, kv)
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}

	return node, kv.Close, nil
}

// openNodeWithKV wires a gravity.Node over an already-open filekv.KV,
// letting callers (like init) manage that handle's lifetime themselves.
func openNodeWithKV(dir string, id *identity.Static, kv *filekv.KV) (*gravity.Node, error) {
	backend, err := diskfs.New(filepath.Join(dir, "profile"))
	if err != nil {
		return nil, fmt.Errorf("open profile directory: %w", err)
	}

	return (&gravity.Configuration{
		Backend:  backend,
		Identity: id,
		KV:       kv,
		Logger:   logger(),
	}).Open()
}

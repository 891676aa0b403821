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
	"os"
	"path/filepath"
	"testing"

	lcrypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/spf13/viper"

	"github.com/pseudofunctor/gravity-protocol/internal/identity"
)

// setupDataDir points viper's data-dir at a fresh temp directory and
// runs init, so every test gets its own identity and master key store.
func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Set("data-dir", dir)
	t.Cleanup(func() { viper.Set("data-dir", "") })

	initCmd.SetContext(context.Background())
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}

// writeProtobufCPK generates a peer identity and writes its libp2p
// protobuf-framed public key (not PEM) to a file, so tests exercise
// the second accepted CPK input form end to end through the CLI.
func writeProtobufCPK(t *testing.T, dir, name string) (*identity.Static, string) {
	t.Helper()

	peer, err := identity.Generate()
	if err != nil {
		t.Fatalf("identity.Generate: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(peer.PrivateKey().Public())
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	libp2pPub, err := lcrypto.UnmarshalRsaPublicKey(der)
	if err != nil {
		t.Fatalf("UnmarshalRsaPublicKey: %v", err)
	}
	protobuf, err := lcrypto.MarshalPublicKey(libp2pPub)
	if err != nil {
		t.Fatalf("MarshalPublicKey: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, protobuf, 0o600); err != nil {
		t.Fatalf("write protobuf CPK: %v", err)
	}
	return peer, path
}

// subscribeToPeerPEM runs `subscribe` against a peer's canonical PEM
// form, establishing the contacts entry that group create/nickname
// must later match against a differently-encoded CPK for the same key.
func subscribeToPeerPEM(t *testing.T, dir string, peer *identity.Static) {
	t.Helper()
	pemPath := filepath.Join(dir, "peer.pem")
	if err := os.WriteFile(pemPath, []byte(peer.PublicKey()), 0o600); err != nil {
		t.Fatalf("write peer pem: %v", err)
	}
	subscribeCmd.SetContext(context.Background())
	if err := subscribeCmd.RunE(subscribeCmd, []string{pemPath}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}

func TestGroupCreateAcceptsNonCanonicalMemberEncoding(t *testing.T) {
	dir := setupDataDir(t)

	peer, protobufPath := writeProtobufCPK(t, dir, "bob.pb")
	subscribeToPeerPEM(t, dir, peer)

	groupID = ""
	groupCreateCmd.SetContext(context.Background())
	if err := groupCreateCmd.RunE(groupCreateCmd, []string{protobufPath}); err != nil {
		t.Fatalf("group create with protobuf-framed member CPK: %v", err)
	}
}

func TestGroupNicknameAcceptsNonCanonicalMemberEncoding(t *testing.T) {
	dir := setupDataDir(t)

	peer, protobufPath := writeProtobufCPK(t, dir, "bob.pb")
	subscribeToPeerPEM(t, dir, peer)

	groupID = "nick-test"
	groupCreateCmd.SetContext(context.Background())
	if err := groupCreateCmd.RunE(groupCreateCmd, []string{protobufPath}); err != nil {
		t.Fatalf("group create: %v", err)
	}

	groupDir := currentGroupDir(t, dir)

	groupNicknameCmd.SetContext(context.Background())
	if err := groupNicknameCmd.RunE(groupNicknameCmd, []string{groupDir, protobufPath + "=Bobby"}); err != nil {
		t.Fatalf("group nickname with protobuf-framed member CPK: %v", err)
	}
}

// currentGroupDir opens the node once more and returns the single
// group directory created by the test, avoiding any coupling to
// internal group-salt encoding details.
func currentGroupDir(t *testing.T, dir string) string {
	t.Helper()
	node, closeNode, err := openNode(dir)
	if err != nil {
		t.Fatalf("openNode: %v", err)
	}
	defer closeNode()

	groupsList, err := node.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groupsList) != 1 {
		t.Fatalf("expected exactly one group, got %v", groupsList)
	}
	return groupsList[0]
}

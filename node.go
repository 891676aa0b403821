// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package gravity

import (
	"context"

	"github.com/pseudofunctor/gravity-protocol/internal/aead"
	"github.com/pseudofunctor/gravity-protocol/internal/contacts"
	"github.com/pseudofunctor/gravity-protocol/internal/groups"
	"github.com/pseudofunctor/gravity-protocol/internal/identity"
	"github.com/pseudofunctor/gravity-protocol/internal/keys"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
	"github.com/pseudofunctor/gravity-protocol/internal/publisher"
	"github.com/pseudofunctor/gravity-protocol/internal/subscribers"
)

// Node is a single participant's view of the protocol core: its own
// profile filesystem, master key, contacts, subscriber handshake,
// group engine and publisher, all wired over the collaborators given
// to Configuration.Open.
type Node struct {
	fs        *profilefs.FS
	self      identity.Provider
	masterKey *masterkey.Store
	contacts  *contacts.Registry
	handshake *subscribers.Handshake
	groups    *groups.Engine
	publisher *publisher.Publisher
	log       loggerFacade
}

func newNode(c *Configuration) *Node {
	fs := profilefs.New(c.Backend)
	mk := masterkey.New(c.KV)
	reg := contacts.New(fs, mk)

	n := &Node{
		fs:        fs,
		self:      c.Identity,
		masterKey: mk,
		contacts:  reg,
		handshake: subscribers.New(fs, reg, c.Identity),
		groups:    groups.New(fs, reg, mk, c.Identity),
		publisher: publisher.New(fs, c.Naming),
		log:       loggerFacade{logger: c.Logger},
	}
	return n
}

// Self returns this node's own canonical public key.
func (n *Node) Self() keys.CPK {
	return n.self.PublicKey()
}

// ResetMasterKey generates and persists a fresh master key, discarding
// any previous one. Contacts and group "me" entries encrypted under the
// old key become unreadable; spec §9 leaves key rotation out of scope,
// so callers invoke this only for first-run bootstrap or deliberate
// reset.
func (n *Node) ResetMasterKey(ctx context.Context) (aead.Key, error) {
	key, err := n.masterKey.Reset(ctx)
	if err != nil {
		n.log.Error("reset master key", err)
		return aead.Key{}, err
	}
	n.log.Info("master key reset")
	return key, nil
}

// AddSubscriber establishes or reuses the pairwise secret with peer and
// writes (or rewrites, idempotently) the subscriber drop under this
// node's own /subscribers folder.
func (n *Node) AddSubscriber(ctx context.Context, peerAnyForm []byte) (aead.Key, error) {
	secret, err := n.handshake.AddSubscriber(ctx, peerAnyForm)
	if err != nil {
		n.log.Error("add subscriber", err)
		return aead.Key{}, err
	}
	n.log.Info("subscriber added")
	return secret, nil
}

// TestDecryptAllSubscribers scans a peer's /subscribers listing (at
// peerSubscribersPath, resolved in whatever profile filesystem mount
// exposes that peer's tree) and recovers the pairwise secret the peer
// generated for this node.
func (n *Node) TestDecryptAllSubscribers(ctx context.Context, peerSubscribersPath string) (aead.Key, error) {
	return n.handshake.TestDecryptAll(ctx, peerSubscribersPath)
}

// CreateGroup creates a new group for memberCPKs, optionally named
// groupID, and returns its base64url directory name.
func (n *Node) CreateGroup(ctx context.Context, memberCPKs []keys.CPK, groupID string) (string, error) {
	dir, err := n.groups.Create(ctx, memberCPKs, groupID)
	if err != nil {
		n.log.Error("create group", err)
		return "", err
	}
	n.log.Info("group created: " + dir)
	return dir, nil
}

// GetGroupKey returns this node's own group key for the group at dir.
func (n *Node) GetGroupKey(ctx context.Context, dir string) (aead.Key, error) {
	return n.groups.GroupKey(ctx, dir)
}

// GetGroupInfo returns the decrypted group info for the group at dir.
func (n *Node) GetGroupInfo(ctx context.Context, dir string) (groups.Info, error) {
	return n.groups.Info(ctx, dir)
}

// SetNicknames merges a CPK-to-nickname patch into the group at dir.
func (n *Node) SetNicknames(ctx context.Context, dir string, patch map[keys.CPK]string) error {
	if err := n.groups.SetNicknames(ctx, dir, patch); err != nil {
		n.log.Error("set nicknames", err)
		return err
	}
	n.log.Info("nicknames set: " + dir)
	return nil
}

// ListGroups returns every group directory name known to this node.
func (n *Node) ListGroups(ctx context.Context) ([]string, error) {
	return n.groups.List(ctx)
}

// GetMyProfileHash returns this node's own profile root content hash.
func (n *Node) GetMyProfileHash(ctx context.Context) (string, error) {
	return n.publisher.GetMyProfileHash(ctx)
}

// GetProfileHash resolves peer's published profile root hash.
func (n *Node) GetProfileHash(ctx context.Context, peer keys.CPK) (string, error) {
	return n.publisher.GetProfileHash(ctx, peer)
}

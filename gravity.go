// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package gravity implements the cryptographic protocol core of a
// decentralized social profile built atop a content-addressed
// distributed filesystem: pairwise subscriber handshakes, named groups
// with a shared symmetric key, and encrypted group metadata.
package gravity

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/pseudofunctor/gravity-protocol/internal/identity"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
	"github.com/pseudofunctor/gravity-protocol/internal/publisher"
)

var (
	errNilBackend  = errors.New("gravity: Configuration.Backend is nil")
	errNilKV       = errors.New("gravity: Configuration.KV is nil")
	errNilIdentity = errors.New("gravity: Configuration.Identity is nil")
)

// Configuration wires the external collaborators this core depends on:
// the content-addressed filesystem backend, the node's long-term
// identity, and the key-value store backing the master key. Naming is
// optional; the resulting Node registers no fallback hashes, so without
// Naming GetProfileHash always fails with publisher.ErrNotResolved.
type Configuration struct {
	Backend  profilefs.Backend
	Identity identity.Provider
	KV       masterkey.KV
	Naming   publisher.NamingService

	// Logger receives structured events from the resulting Node. The
	// zero value discards all output.
	Logger zerolog.Logger
}

// verify returns an error on the first missing required collaborator.
func (c *Configuration) verify() error {
	if c.Backend == nil {
		return errNilBackend
	}
	if c.Identity == nil {
		return errNilIdentity
	}
	if c.KV == nil {
		return errNilKV
	}
	return nil
}

// Open validates c and builds a Node over its collaborators.
func (c *Configuration) Open() (*Node, error) {
	if err := c.verify(); err != nil {
		return nil, err
	}
	return newNode(c), nil
}

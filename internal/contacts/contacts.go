// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package contacts implements the encrypted mapping from canonical peer
// public key to pairwise state (spec §4.5). The registry exists iff
// /private/contacts.json.enc exists and decrypts under the master key.
package contacts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pseudofunctor/gravity-protocol/internal/aead"
	"github.com/pseudofunctor/gravity-protocol/internal/keys"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
)

const path = "/private/contacts.json.enc"

// MySecretAttr is the attribute key under which a pairwise secret "mine for
// this peer" is stored in a contact record.
const MySecretAttr = "my-secret"

// Attrs is one contact's attribute bag. It is a plain string map rather
// than a struct because the schema (spec §6) only fixes "my-secret" and
// leaves room for future attributes.
type Attrs map[string]string

// Contacts is the whole registry: CPK → attribute bag.
type Contacts map[keys.CPK]Attrs

// Registry is the encrypted contacts store.
type Registry struct {
	fs *profilefs.FS
	mk *masterkey.Store
}

// New builds a Registry over fs, encrypting under the master key in mk.
func New(fs *profilefs.FS, mk *masterkey.Store) *Registry {
	return &Registry{fs: fs, mk: mk}
}

// Get returns the current contacts map, or an empty map if the backing
// file is absent.
func (r *Registry) Get(ctx context.Context) (Contacts, error) {
	blob, err := r.fs.Read(ctx, path)
	if profilefs.IsNotFound(err) {
		return Contacts{}, nil
	}
	if err != nil {
		return nil, err
	}

	master, err := r.mk.Get(ctx)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(master, blob)
	if err != nil {
		return nil, fmt.Errorf("contacts: decrypt: %w", err)
	}

	var c Contacts
	if err := json.Unmarshal(plaintext, &c); err != nil {
		return nil, fmt.Errorf("contacts: unmarshal: %w", err)
	}

	return c, nil
}

// Upsert merges patch into the attributes of cpk, then re-encrypts and
// rewrites the whole registry.
func (r *Registry) Upsert(ctx context.Context, cpk keys.CPK, patch Attrs) error {
	current, err := r.Get(ctx)
	if err != nil {
		return err
	}

	existing, ok := current[cpk]
	if !ok {
		existing = Attrs{}
	}
	for k, v := range patch {
		existing[k] = v
	}
	current[cpk] = existing

	plaintext, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("contacts: marshal: %w", err)
	}

	master, err := r.mk.Get(ctx)
	if err != nil {
		return err
	}

	blob, err := aead.Seal(master, plaintext)
	if err != nil {
		return fmt.Errorf("contacts: encrypt: %w", err)
	}

	return r.fs.Write(ctx, path, blob)
}

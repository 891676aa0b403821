// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package masterkey persists the participant's root symmetric key through
// the external key-value store (spec §4.3). It never generates a key on
// first read: callers must have called Reset at least once.
package masterkey

import (
	"context"
	"errors"
	"fmt"

	"github.com/pseudofunctor/gravity-protocol/internal/aead"
	"github.com/pseudofunctor/gravity-protocol/internal/b64url"
)

// StorageKey is the opaque key under which the master key is stored in the
// external key-value store.
const StorageKey = "gravity-master-key"

// ErrNoMasterKey indicates the key-value store has nothing under
// StorageKey.
var ErrNoMasterKey = errors.New("masterkey: no master key set")

// ErrNotFound is the sentinel a KV implementation returns from Get when the
// key is absent. Store translates it to ErrNoMasterKey.
var ErrNotFound = errors.New("masterkey: key not found in store")

// KV is the external key-value store collaborator.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store wraps a KV with the master-key-specific encoding and error policy.
type Store struct {
	kv KV
}

// New wraps kv as a master-key Store.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Get reads the master key, failing with ErrNoMasterKey if none was ever
// set.
func (s *Store) Get(ctx context.Context) (aead.Key, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, ErrNotFound) {
		return aead.Key{}, ErrNoMasterKey
	}
	if err != nil {
		return aead.Key{}, fmt.Errorf("masterkey: get: %w", err)
	}

	decoded, err := b64url.Decode(string(raw))
	if err != nil {
		return aead.Key{}, fmt.Errorf("masterkey: decode: %w", err)
	}

	if len(decoded) != aead.KeyLength {
		return aead.Key{}, fmt.Errorf("masterkey: stored key has wrong length %d", len(decoded))
	}

	var key aead.Key
	copy(key[:], decoded)
	return key, nil
}

// Set writes key as the master key.
func (s *Store) Set(ctx context.Context, key aead.Key) error {
	encoded := b64url.Encode(key[:])
	if err := s.kv.Put(ctx, StorageKey, []byte(encoded)); err != nil {
		return fmt.Errorf("masterkey: put: %w", err)
	}
	return nil
}

// Reset generates a fresh 256-bit key, persists it and returns it. It is
// the only writer of the master key, so it needs no external locking.
func (s *Store) Reset(ctx context.Context) (aead.Key, error) {
	key, err := aead.GenerateKey()
	if err != nil {
		return aead.Key{}, err
	}

	if err := s.Set(ctx, key); err != nil {
		return aead.Key{}, err
	}

	return key, nil
}

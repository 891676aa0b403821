// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package filekv implements masterkey.KV over a local bbolt database,
// the concrete key-value store gravityctl uses for the "local key-value
// store for the master key" external collaborator spec §1 leaves
// unspecified.
package filekv

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
)

var bucketName = []byte("gravity")

// KV is a bbolt-backed masterkey.KV.
type KV struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the bbolt database at path.
func Open(path string) (*KV, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("filekv: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("filekv: init bucket: %w", err)
	}

	return &KV{db: db}, nil
}

// Close releases the underlying database handle.
func (k *KV) Close() error {
	return k.db.Close()
}

// Get implements masterkey.KV.
func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := k.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return masterkey.ErrNotFound
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put implements masterkey.KV.
func (k *KV) Put(_ context.Context, key string, value []byte) error {
	return k.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

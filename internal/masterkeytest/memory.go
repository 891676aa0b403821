// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package masterkeytest provides an in-memory KV fake for exercising
// internal/masterkey and its dependents without a real external store.
package masterkeytest

import (
	"context"
	"sync"

	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
)

// KV is a trivial thread-safe in-memory masterkey.KV.
type KV struct {
	mu     sync.Mutex
	values map[string][]byte
}

// New returns an empty KV.
func New() *KV {
	return &KV{values: make(map[string][]byte)}
}

func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	v, ok := k.values[key]
	if !ok {
		return nil, masterkey.ErrNotFound
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (k *KV) Put(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	k.values[key] = v
	return nil
}

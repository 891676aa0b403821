// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package masterkey_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkeytest"
)

func TestGetWithoutResetFails(t *testing.T) {
	store := masterkey.New(masterkeytest.New())

	if _, err := store.Get(context.Background()); !errors.Is(err, masterkey.ErrNoMasterKey) {
		t.Fatalf("Get before Reset: got %v, want ErrNoMasterKey", err)
	}
}

func TestResetThenGetRoundTrip(t *testing.T) {
	store := masterkey.New(masterkeytest.New())
	ctx := context.Background()

	key, err := store.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != key {
		t.Fatalf("Get returned %v, want %v", got, key)
	}
}

func TestResetGeneratesFreshKey(t *testing.T) {
	store := masterkey.New(masterkeytest.New())
	ctx := context.Background()

	first, err := store.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	second, err := store.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if first == second {
		t.Fatal("two resets produced the same key")
	}
}

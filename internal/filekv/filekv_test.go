// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package filekv_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pseudofunctor/gravity-protocol/internal/filekv"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := filekv.Open(filepath.Join(t.TempDir(), "gravity.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := db.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get = %q, want v", got)
	}
}

func TestGetMissingIsErrNotFound(t *testing.T) {
	ctx := context.Background()
	db, err := filekv.Open(filepath.Join(t.TempDir(), "gravity.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	_, err = db.Get(ctx, "missing")
	if !errors.Is(err, masterkey.ErrNotFound) {
		t.Fatalf("Get missing key: got %v, want ErrNotFound", err)
	}
}

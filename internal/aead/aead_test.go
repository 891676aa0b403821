// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package aead

import (
	"bytes"
	"errors"
	"testing"
)

func mustKey(t *testing.T) Key {
	t.Helper()
	k, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return k
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := mustKey(t)

	messages := [][]byte{
		nil,
		{},
		[]byte("hello"),
		bytes.Repeat([]byte{0x42}, 4096),
	}

	for _, m := range messages {
		blob, err := Seal(key, m)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}

		got, err := Open(key, blob)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}

		if !bytes.Equal(got, m) {
			t.Fatalf("round-trip mismatch: got %q want %q", got, m)
		}
	}
}

func TestOpenWrongKeyFails(t *testing.T) {
	key := mustKey(t)
	other := mustKey(t)

	blob, err := Seal(key, []byte("secret"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := Open(other, blob); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("Open with wrong key: got %v, want ErrAuthFailed", err)
	}
}

func TestOpenShortMessage(t *testing.T) {
	key := mustKey(t)

	gcm, err := newGCM(key)
	if err != nil {
		t.Fatalf("newGCM: %v", err)
	}

	short := make([]byte, gcm.NonceSize()-1)
	if _, err := Open(key, short); !errors.Is(err, ErrShortMessage) {
		t.Fatalf("Open short message: got %v, want ErrShortMessage", err)
	}
}

func TestSealNeverReusesNonce(t *testing.T) {
	key := mustKey(t)

	a, err := Seal(key, []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	b, err := Seal(key, []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if bytes.Equal(a, b) {
		t.Fatal("two seals of the same plaintext produced identical ciphertext")
	}
}

// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package aead implements the symmetric primitive shared by every encrypted
// artifact in a profile tree: contacts, group-key deliveries and group info
// all go through Seal and Open with a different key.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// KeyLength is the size in bytes of a symmetric key (256-bit AES-GCM).
const KeyLength = 32

var (
	// ErrShortMessage indicates a blob shorter than nonce+tag could ever be.
	ErrShortMessage = errors.New("aead: message shorter than nonce and tag")

	// ErrAuthFailed indicates the authentication tag did not verify.
	ErrAuthFailed = errors.New("aead: authentication failed")
)

// Key is a 256-bit AEAD key. The zero Key is never valid and Seal/Open treat
// it like any other key, so callers must not pass one around uninitialized.
type Key [KeyLength]byte

// GenerateKey returns a fresh random key, suitable for a master key or a
// group key.
func GenerateKey() (Key, error) {
	var k Key
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return Key{}, err
	}
	return k, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal draws a fresh nonce and returns nonce‖ciphertext+tag. The nonce is
// never reused: it is regenerated on every call.
func Seal(key Key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open splits a nonce‖ciphertext+tag blob, verifies it and returns the
// plaintext. It fails with ErrShortMessage when the blob cannot possibly
// contain a nonce and a tag, and with ErrAuthFailed on any verification
// failure (wrong key or tampered ciphertext) — the two are never conflated,
// so callers can tell "garbage" from "wrong key" without parsing messages.
func Open(key Key, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceLen := gcm.NonceSize()
	if len(blob) < nonceLen+gcm.Overhead() {
		return nil, ErrShortMessage
	}

	nonce, ciphertext := blob[:nonceLen], blob[nonceLen:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

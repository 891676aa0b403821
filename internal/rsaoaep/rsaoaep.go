// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package rsaoaep implements the asymmetric half of the protocol core: the
// subscriber handshake encrypts a pairwise-secret introduction under a
// peer's RSA public key with OAEP padding. There is no third-party
// asymmetric-encryption library in this module's dependency surface that
// improves on the standard library here — see DESIGN.md.
package rsaoaep

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
)

// ErrAuthFailed indicates the ciphertext did not decrypt under the given
// private key. crypto/rsa.DecryptOAEP already fails uniformly on padding or
// key mismatch, so this is never a false plaintext.
var ErrAuthFailed = errors.New("rsaoaep: decryption failed")

// Encrypt encrypts plaintext for the holder of priv matching pub, using
// OAEP with SHA-256.
func Encrypt(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
}

// Decrypt recovers the plaintext Encrypt produced for priv. Any failure —
// wrong key, truncated input, tampered ciphertext — collapses to
// ErrAuthFailed.
func Decrypt(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

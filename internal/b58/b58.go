// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package b58 provides the hash framing used for content-addressed
// filenames across the protocol core: subscriber drops and group-member
// filenames are both named B58(multihash(SHA-256, ...)), so a decoder can
// recognize the hash function from the name alone.
package b58

import (
	"crypto/sha256"

	"github.com/multiformats/go-multihash"
)

// KeyedHash returns the Base58 encoding of the SHA-256 multihash of the
// concatenation of parts.
func KeyedHash(parts ...[]byte) (string, error) {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}

	framed, err := multihash.Encode(h.Sum(nil), multihash.SHA2_256)
	if err != nil {
		return "", err
	}

	return multihash.Multihash(framed).B58String(), nil
}

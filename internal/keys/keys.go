// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package keys normalizes the several public-key encodings a peer might
// hand us into one canonical form (CPK), so it can be used as a map key and
// as hashing input without the rest of the core caring which wire format a
// given peer happened to present.
package keys

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	lcrypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/crypto/pb"
)

// ErrUnrecognizedKey indicates that input matched none of the accepted
// public-key encodings.
var ErrUnrecognizedKey = errors.New("keys: unrecognized public key encoding")

// CPK is a participant's long-term public key in its one canonical
// encoding: a PEM-framed pkcs8 RSA public key. It is a plain string so it
// can be used directly as a map key and as hashing input.
type CPK string

// recognizer is a total predicate + conversion: it either produces a CPK or
// reports that the input is not in its format. ToCanonical runs the list in
// order and only fails once every recognizer has passed.
type recognizer func(input []byte) (CPK, bool, error)

var recognizers = []recognizer{
	recognizePKCS8PEM,
	recognizeLibp2pProtobuf,
}

// ToCanonical converts any accepted public-key representation to CPK. It is
// total over the accepted formats and idempotent: ToCanonical(CPK) returns
// the same CPK unchanged.
func ToCanonical(input []byte) (CPK, error) {
	for _, r := range recognizers {
		cpk, ok, err := r(input)
		if err != nil {
			return "", fmt.Errorf("keys: %w", err)
		}
		if ok {
			return cpk, nil
		}
	}
	return "", ErrUnrecognizedKey
}

func recognizePKCS8PEM(input []byte) (CPK, bool, error) {
	block, _ := pem.Decode(input)
	if block == nil || block.Type != "PUBLIC KEY" {
		return "", false, nil
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", false, nil
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return "", false, nil
	}

	cpk, err := canonicalize(rsaPub)
	return cpk, err == nil, err
}

func recognizeLibp2pProtobuf(input []byte) (CPK, bool, error) {
	pub, err := lcrypto.UnmarshalPublicKey(input)
	if err != nil {
		return "", false, nil
	}

	if pub.Type() != pb.KeyType_RSA {
		return "", false, nil
	}

	raw, err := pub.Raw()
	if err != nil {
		return "", false, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(raw)
	if err != nil {
		return "", false, nil
	}

	rsaPub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", false, nil
	}

	cpk, err := canonicalize(rsaPub)
	return cpk, err == nil, err
}

// canonicalize re-exports an *rsa.PublicKey as a pkcs8 PEM block, which is
// the one true CPK form regardless of how the key arrived.
func canonicalize(pub *rsa.PublicKey) (CPK, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}

	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return CPK(pem.EncodeToMemory(block)), nil
}

// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"

	lcrypto "github.com/libp2p/go-libp2p/core/crypto"
)

func genPEM(t *testing.T) ([]byte, *rsa.PublicKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), &priv.PublicKey
}

func TestToCanonicalPEM(t *testing.T) {
	input, _ := genPEM(t)

	cpk, err := ToCanonical(input)
	if err != nil {
		t.Fatalf("ToCanonical: %v", err)
	}

	if string(cpk) != string(input) {
		t.Fatalf("canonical form changed a key already in canonical form")
	}
}

func TestToCanonicalIdempotent(t *testing.T) {
	input, _ := genPEM(t)

	first, err := ToCanonical(input)
	if err != nil {
		t.Fatalf("ToCanonical: %v", err)
	}

	second, err := ToCanonical([]byte(first))
	if err != nil {
		t.Fatalf("ToCanonical on canonical input: %v", err)
	}

	if first != second {
		t.Fatalf("ToCanonical is not idempotent: %q vs %q", first, second)
	}
}

func TestToCanonicalRejectsGarbage(t *testing.T) {
	if _, err := ToCanonical([]byte("not a key")); !errors.Is(err, ErrUnrecognizedKey) {
		t.Fatalf("ToCanonical(garbage): got %v, want ErrUnrecognizedKey", err)
	}
}

// TestToCanonicalLibp2pProtobufMatchesPEM exercises the second accepted
// input form directly: a peer that hands us a libp2p-protobuf-framed
// RSA public key (as produced by go-libp2p's peer identity machinery)
// must canonicalize to the exact same CPK as the PEM form of the same
// underlying key.
func TestToCanonicalLibp2pProtobufMatchesPEM(t *testing.T) {
	pemBytes, rsaPub := genPEM(t)

	der, err := x509.MarshalPKIXPublicKey(rsaPub)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}

	libp2pPub, err := lcrypto.UnmarshalRsaPublicKey(der)
	if err != nil {
		t.Fatalf("UnmarshalRsaPublicKey: %v", err)
	}

	protobuf, err := lcrypto.MarshalPublicKey(libp2pPub)
	if err != nil {
		t.Fatalf("MarshalPublicKey: %v", err)
	}

	fromPEM, err := ToCanonical(pemBytes)
	if err != nil {
		t.Fatalf("ToCanonical(pem): %v", err)
	}

	fromProtobuf, err := ToCanonical(protobuf)
	if err != nil {
		t.Fatalf("ToCanonical(protobuf): %v", err)
	}

	if fromPEM != fromProtobuf {
		t.Fatalf("canonical forms diverge: pem=%q protobuf=%q", fromPEM, fromProtobuf)
	}
}

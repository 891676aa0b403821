// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package identity defines the seam to the node identity subsystem: spec
// §6 lists it as an out-of-scope external collaborator providing this
// participant's long-term asymmetric key pair. This package only holds the
// interface plus a minimal RSA-based generator used by the CLI and tests —
// it is not a model of any specific node implementation.
package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/pseudofunctor/gravity-protocol/internal/keys"
)

// Provider is the external node-identity collaborator: it hands back this
// participant's long-term key pair. Real deployments back this with
// whatever keystore the content-addressed filesystem node already manages.
type Provider interface {
	PublicKey() keys.CPK
	PrivateKey() *rsa.PrivateKey
}

// Static is the simplest Provider: an RSA key pair held in memory, whose
// public half has already been normalized to CPK.
type Static struct {
	pub  keys.CPK
	priv *rsa.PrivateKey
}

// Generate creates a fresh RSA-2048 identity.
func Generate() (*Static, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return FromKey(priv)
}

// FromKey wraps an existing RSA private key as a Provider, normalizing its
// public half to CPK.
func FromKey(priv *rsa.PrivateKey) (*Static, error) {
	der, err := marshalPublic(&priv.PublicKey)
	if err != nil {
		return nil, err
	}

	cpk, err := keys.ToCanonical(der)
	if err != nil {
		return nil, err
	}

	return &Static{pub: cpk, priv: priv}, nil
}

func (s *Static) PublicKey() keys.CPK         { return s.pub }
func (s *Static) PrivateKey() *rsa.PrivateKey { return s.priv }

func marshalPublic(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

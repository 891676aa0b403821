// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package subscribers implements the pairwise-secret handshake (spec §4.6):
// producing the asymmetrically-encrypted drops under a peer's
// /subscribers folder, and consuming another peer's drops by trial
// decryption.
package subscribers

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pseudofunctor/gravity-protocol/internal/aead"
	"github.com/pseudofunctor/gravity-protocol/internal/b58"
	"github.com/pseudofunctor/gravity-protocol/internal/b64url"
	"github.com/pseudofunctor/gravity-protocol/internal/contacts"
	"github.com/pseudofunctor/gravity-protocol/internal/identity"
	"github.com/pseudofunctor/gravity-protocol/internal/keys"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
	"github.com/pseudofunctor/gravity-protocol/internal/rsaoaep"
)

const dropsPath = "/subscribers"

// greeting is the authentication marker that opens every subscriber drop's
// plaintext (spec §6).
const greeting = "Hello "

// ErrNoDropForMe indicates that no entry under the scanned folder
// trial-decrypted to a message addressed to this identity.
var ErrNoDropForMe = errors.New("subscribers: no drop found for this identity")

// Handshake implements AddSubscriber and TestDecryptAll.
type Handshake struct {
	fs       *profilefs.FS
	contacts *contacts.Registry
	self     identity.Provider
}

// New builds a Handshake over fs and contacts, authenticating as self.
func New(fs *profilefs.FS, reg *contacts.Registry, self identity.Provider) *Handshake {
	return &Handshake{fs: fs, contacts: reg, self: self}
}

// AddSubscriber normalizes peer, reuses or generates the pairwise secret
// S(self→peer), and (re)writes the subscriber drop, encrypted to peer,
// under this participant's own /subscribers folder. Because the
// drop's filename is a pure function of its plaintext, re-running this
// with the same S is a content no-op (spec §4.6 step 5, §5, §8 property 4).
func (h *Handshake) AddSubscriber(ctx context.Context, peerAnyForm []byte) (aead.Key, error) {
	peer, err := keys.ToCanonical(peerAnyForm)
	if err != nil {
		return aead.Key{}, err
	}

	secret, err := h.mySecretFor(ctx, peer)
	if err != nil {
		return aead.Key{}, err
	}

	peerPub, err := parseRSAPublicKey(peer)
	if err != nil {
		return aead.Key{}, err
	}

	plaintext := []byte(greeting + string(peer) + " : " + b64url.Encode(secret[:]))

	ciphertext, err := rsaoaep.Encrypt(peerPub, plaintext)
	if err != nil {
		return aead.Key{}, err
	}

	hash, err := b58.KeyedHash(plaintext)
	if err != nil {
		return aead.Key{}, err
	}

	if err := h.fs.Write(ctx, dropsPath+"/"+hash, ciphertext); err != nil {
		return aead.Key{}, err
	}

	return secret, nil
}

// mySecretFor returns the existing pairwise secret for peer, generating and
// persisting a fresh one if this is the first subscription to peer.
func (h *Handshake) mySecretFor(ctx context.Context, peer keys.CPK) (aead.Key, error) {
	current, err := h.contacts.Get(ctx)
	if err != nil {
		return aead.Key{}, err
	}

	if attrs, ok := current[peer]; ok {
		if existing, ok := attrs[contacts.MySecretAttr]; ok {
			raw, err := b64url.Decode(existing)
			if err != nil {
				return aead.Key{}, fmt.Errorf("subscribers: decode stored secret: %w", err)
			}
			if len(raw) == aead.KeyLength {
				var k aead.Key
				copy(k[:], raw)
				return k, nil
			}
		}
	}

	secret, err := aead.GenerateKey()
	if err != nil {
		return aead.Key{}, err
	}

	if err := h.contacts.Upsert(ctx, peer, contacts.Attrs{
		contacts.MySecretAttr: b64url.Encode(secret[:]),
	}); err != nil {
		return aead.Key{}, err
	}

	return secret, nil
}

// TestDecryptAll lists path and returns the pairwise secret carried by the
// first entry that trial-decrypts under this identity's private key and
// whose plaintext begins with the greeting marker. Trials run
// concurrently; the first success wins, the remaining trials still run to
// completion and their results are ignored (spec §4.6, §5, §9 Design
// Note 2).
func (h *Handshake) TestDecryptAll(ctx context.Context, path string) (aead.Key, error) {
	entries, err := h.fs.List(ctx, path)
	if profilefs.IsNotFound(err) {
		return aead.Key{}, ErrNoDropForMe
	}
	if err != nil {
		return aead.Key{}, err
	}

	g, gctx := errgroup.WithContext(ctx)

	var (
		once   sync.Once
		result aead.Key
		found  bool
	)

	for _, e := range entries {
		e := e
		g.Go(func() error {
			blob, err := h.fs.Read(gctx, path+"/"+e.Name)
			if err != nil {
				return nil // not this entry's problem to report; keep racing
			}

			plaintext, err := rsaoaep.Decrypt(h.self.PrivateKey(), blob)
			if err != nil {
				return nil
			}

			if !strings.HasPrefix(string(plaintext), greeting) {
				return nil
			}

			idx := strings.LastIndex(string(plaintext), ": ")
			if idx < 0 {
				return nil
			}

			secret, err := b64url.Decode(string(plaintext[idx+2:]))
			if err != nil || len(secret) != aead.KeyLength {
				return nil
			}

			once.Do(func() {
				copy(result[:], secret)
				found = true
			})
			return nil
		})
	}

	// errgroup.WithContext's gctx is cancelled once a member returns an
	// error; this combinator never returns one, so every trial runs to
	// completion before Wait returns. That matches "ignore the losers"
	// rather than force-cancel them (spec §5).
	if err := g.Wait(); err != nil {
		return aead.Key{}, err
	}

	if !found {
		return aead.Key{}, ErrNoDropForMe
	}

	return result, nil
}

// parseRSAPublicKey recovers the *rsa.PublicKey from a CPK's pkcs8 PEM
// encoding, since keys.CPK is an opaque string everywhere else in the
// core.
func parseRSAPublicKey(cpk keys.CPK) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(cpk))
	if block == nil {
		return nil, fmt.Errorf("subscribers: CPK is not PEM-encoded")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("subscribers: parse CPK: %w", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("subscribers: CPK is not an RSA public key")
	}

	return rsaPub, nil
}

// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package subscribers_test

import (
	"context"
	"testing"

	"github.com/pseudofunctor/gravity-protocol/internal/contacts"
	"github.com/pseudofunctor/gravity-protocol/internal/identity"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkeytest"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefstest"
	"github.com/pseudofunctor/gravity-protocol/internal/subscribers"
)

type node struct {
	fs       *profilefs.FS
	contacts *contacts.Registry
	identity *identity.Static
	handshake *subscribers.Handshake
}

func newNode(t *testing.T) *node {
	t.Helper()
	ctx := context.Background()

	id, err := identity.Generate()
	if err != nil {
		t.Fatalf("identity.Generate: %v", err)
	}

	mk := masterkey.New(masterkeytest.New())
	if _, err := mk.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	fs := profilefs.New(profilefstest.New())
	reg := contacts.New(fs, mk)

	return &node{
		fs:        fs,
		contacts:  reg,
		identity:  id,
		handshake: subscribers.New(fs, reg, id),
	}
}

func TestHandshakeEndToEnd(t *testing.T) {
	ctx := context.Background()
	alice := newNode(t)
	bob := newNode(t)

	secret, err := alice.handshake.AddSubscriber(ctx, []byte(bob.identity.PublicKey()))
	if err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}

	got, err := bob.handshake.TestDecryptAll(ctx, "/subscribers")
	if err == nil {
		t.Fatalf("TestDecryptAll on bob's own filesystem, which has no drops, found one unexpectedly")
	}
	_ = got

	// Bob reads Alice's /subscribers, which in this in-memory fixture is
	// alice.fs since both share the abstract path namespace of the
	// Backend they were constructed over -- wire them together directly.
	bobSideOfAlice := subscribers.New(alice.fs, alice.contacts, bob.identity)
	recovered, err := bobSideOfAlice.TestDecryptAll(ctx, "/subscribers")
	if err != nil {
		t.Fatalf("TestDecryptAll: %v", err)
	}

	if recovered != secret {
		t.Fatalf("recovered secret %v != alice's secret %v", recovered, secret)
	}
}

func TestAddSubscriberIsIdempotent(t *testing.T) {
	ctx := context.Background()
	alice := newNode(t)
	bob := newNode(t)

	first, err := alice.handshake.AddSubscriber(ctx, []byte(bob.identity.PublicKey()))
	if err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}

	second, err := alice.handshake.AddSubscriber(ctx, []byte(bob.identity.PublicKey()))
	if err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}

	if first != second {
		t.Fatalf("AddSubscriber regenerated the pairwise secret: %v != %v", first, second)
	}

	entries, err := alice.fs.List(ctx, "/subscribers")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected exactly one subscriber drop, got %d", len(entries))
	}
}

func TestTestDecryptAllFailsForWrongIdentity(t *testing.T) {
	ctx := context.Background()
	alice := newNode(t)
	bob := newNode(t)
	mallory := newNode(t)

	if _, err := alice.handshake.AddSubscriber(ctx, []byte(bob.identity.PublicKey())); err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}

	malloryReads := subscribers.New(alice.fs, alice.contacts, mallory.identity)
	if _, err := malloryReads.TestDecryptAll(ctx, "/subscribers"); err != subscribers.ErrNoDropForMe {
		t.Fatalf("TestDecryptAll for non-recipient: got %v, want ErrNoDropForMe", err)
	}
}

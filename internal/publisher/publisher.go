// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package publisher exposes a participant's own profile root hash and
// resolves a peer's current profile root through an external naming
// service (spec §4.8).
package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/pseudofunctor/gravity-protocol/internal/keys"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
)

// ErrNotResolved indicates the naming service has no entry for a CPK and
// no fallback hash was configured.
var ErrNotResolved = errors.New("publisher: peer profile hash not resolved")

// NamingService resolves a peer's published profile root hash. Spec §9
// Open Question (i) leaves the real lookup unspecified; this is the seam
// a deployment wires to its actual publish/resolve mechanism.
type NamingService interface {
	Resolve(ctx context.Context, peer keys.CPK) (string, error)
}

// Publisher implements GetMyProfileHash and GetProfileHash.
type Publisher struct {
	fs       *profilefs.FS
	naming   NamingService
	fallback map[keys.CPK]string
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithFallback registers a fixed hash returned for peer when naming
// resolution fails, for use in tests or development per spec §4.8.
func WithFallback(peer keys.CPK, hash string) Option {
	return func(p *Publisher) {
		p.fallback[peer] = hash
	}
}

// New builds a Publisher over fs, resolving peers through naming.
func New(fs *profilefs.FS, naming NamingService, opts ...Option) *Publisher {
	p := &Publisher{fs: fs, naming: naming, fallback: map[keys.CPK]string{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetMyProfileHash returns the content hash of this participant's own
// profile root.
func (p *Publisher) GetMyProfileHash(ctx context.Context) (string, error) {
	info, err := p.fs.Stat(ctx, "/")
	if err != nil {
		return "", fmt.Errorf("publisher: stat root: %w", err)
	}
	return info.Hash, nil
}

// GetProfileHash resolves peer's current profile root hash via the
// naming service. When there is no naming service or resolution fails,
// it returns the fallback hash registered for peer, or ErrNotResolved if
// none was registered.
func (p *Publisher) GetProfileHash(ctx context.Context, peer keys.CPK) (string, error) {
	if p.naming != nil {
		hash, err := p.naming.Resolve(ctx, peer)
		if err == nil {
			return hash, nil
		}
	}

	if hash, ok := p.fallback[peer]; ok {
		return hash, nil
	}

	return "", ErrNotResolved
}

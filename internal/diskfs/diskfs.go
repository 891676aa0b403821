// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package diskfs implements profilefs.Backend over the local
// filesystem. The real content-addressed filesystem node is an
// external collaborator outside this core's scope (spec §1); diskfs
// stands in for it in gravityctl's single-machine developer mode,
// where "content address" degenerates to a hash of each entry's local
// path: the hashes List and Stat report do not depend on file contents
// and do not change when a file is rewritten.
package diskfs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pseudofunctor/gravity-protocol/internal/b58"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
)

// Backend roots a profilefs.Backend at a directory on local disk.
type Backend struct {
	root string
}

// New roots a Backend at root, creating it if absent.
func New(root string) (*Backend, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &Backend{root: root}, nil
}

func (b *Backend) resolve(path string) string {
	return filepath.Join(b.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

func (b *Backend) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(b.resolve(path))
	if os.IsNotExist(err) {
		return nil, profilefs.ErrPathMissing
	}
	return data, err
}

func (b *Backend) Write(_ context.Context, path string, data []byte, createParents bool) error {
	full := b.resolve(path)
	if createParents {
		if err := os.MkdirAll(filepath.Dir(full), 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(full, data, 0o600)
}

func (b *Backend) List(_ context.Context, path string, _ bool) ([]profilefs.DirEntry, error) {
	full := b.resolve(path)
	dirEntries, err := os.ReadDir(full)
	if os.IsNotExist(err) {
		return nil, profilefs.ErrPathMissing
	}
	if err != nil {
		return nil, err
	}

	entries := make([]profilefs.DirEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			return nil, err
		}
		hash, err := b58.KeyedHash([]byte(filepath.Join(full, de.Name())))
		if err != nil {
			return nil, err
		}
		entries = append(entries, profilefs.DirEntry{
			Name:  de.Name(),
			IsDir: de.IsDir(),
			Size:  info.Size(),
			Hash:  hash,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (b *Backend) Stat(_ context.Context, path string) (profilefs.Info, error) {
	full := b.resolve(path)
	fi, err := os.Stat(full)
	if os.IsNotExist(err) {
		return profilefs.Info{}, profilefs.ErrPathMissing
	}
	if err != nil {
		return profilefs.Info{}, err
	}

	hash, err := b58.KeyedHash([]byte(full))
	if err != nil {
		return profilefs.Info{}, err
	}

	return profilefs.Info{Hash: hash, Size: fi.Size(), IsDir: fi.IsDir()}, nil
}

func (b *Backend) Mkdir(_ context.Context, path string, parents bool) error {
	full := b.resolve(path)
	if parents {
		return os.MkdirAll(full, 0o700)
	}
	return os.Mkdir(full, 0o700)
}

func (b *Backend) Remove(_ context.Context, path string, recursive bool) error {
	full := b.resolve(path)
	if recursive {
		return os.RemoveAll(full)
	}
	return os.Remove(full)
}

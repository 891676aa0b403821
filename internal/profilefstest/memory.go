// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package profilefstest provides an in-memory profilefs.Backend fake for
// exercising the contacts, subscribers, groups and publisher components
// without a real content-addressed filesystem node.
package profilefstest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pseudofunctor/gravity-protocol/internal/b58"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
)

// Backend is a trivial thread-safe in-memory profilefs.Backend. Paths are
// absolute, '/'-separated; directories are implicit (any path with
// children is a directory).
type Backend struct {
	mu    sync.Mutex
	files map[string][]byte
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{files: make(map[string][]byte)}
}

func clean(path string) string {
	return strings.TrimSuffix(path, "/")
}

func (b *Backend) Read(_ context.Context, path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.files[clean(path)]
	if !ok {
		return nil, profilefs.ErrPathMissing
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *Backend) Write(_ context.Context, path string, data []byte, _ bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := make([]byte, len(data))
	copy(v, data)
	b.files[clean(path)] = v
	return nil
}

func (b *Backend) List(_ context.Context, path string, _ bool) ([]profilefs.DirEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefix := clean(path)
	if prefix != "" {
		prefix += "/"
	} else {
		prefix = "/"
	}

	seen := make(map[string]bool)
	var entries []profilefs.DirEntry

	for p, data := range b.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" || rest == ".keep" {
			continue
		}
		name := rest
		isDir := false
		if idx := strings.Index(rest, "/"); idx >= 0 {
			name = rest[:idx]
			isDir = true
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		size := int64(0)
		if !isDir {
			size = int64(len(data))
		}

		hash, err := b58.KeyedHash([]byte(p), data)
		if err != nil {
			return nil, err
		}

		entries = append(entries, profilefs.DirEntry{Name: name, IsDir: isDir, Size: size, Hash: hash})
	}

	if len(entries) == 0 && prefix != "/" {
		// Directories are implicit: an empty listing for a path with no
		// descendants means the directory itself doesn't exist, unless it
		// was explicitly created with Mkdir. The root is the one
		// exception: it always exists, even when empty.
		if _, ok := b.files[strings.TrimSuffix(prefix, "/")+"/.keep"]; !ok {
			return nil, profilefs.ErrPathMissing
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (b *Backend) Stat(ctx context.Context, path string) (profilefs.Info, error) {
	b.mu.Lock()
	data, isFile := b.files[clean(path)]
	b.mu.Unlock()

	if isFile {
		hash, err := b58.KeyedHash([]byte(clean(path)), data)
		if err != nil {
			return profilefs.Info{}, err
		}
		return profilefs.Info{Hash: hash, Size: int64(len(data)), IsDir: false}, nil
	}

	entries, err := b.List(ctx, path, false)
	if err != nil {
		return profilefs.Info{}, err
	}

	hash, err := b58.KeyedHash([]byte(clean(path)))
	if err != nil {
		return profilefs.Info{}, err
	}

	_ = entries
	return profilefs.Info{Hash: hash, IsDir: true}, nil
}

func (b *Backend) Mkdir(_ context.Context, path string, _ bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	marker := clean(path) + "/.keep"
	if _, ok := b.files[marker]; !ok {
		b.files[marker] = []byte{}
	}
	return nil
}

func (b *Backend) Remove(_ context.Context, path string, recursive bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefix := clean(path)
	if !recursive {
		delete(b.files, prefix)
		return nil
	}

	withSlash := prefix + "/"
	for p := range b.files {
		if p == prefix || strings.HasPrefix(p, withSlash) {
			delete(b.files, p)
		}
	}
	return nil
}

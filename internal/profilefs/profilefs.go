// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package profilefs is the typed facade over the content-addressed
// filesystem that every profile tree lives on (spec §4.4, §6). It never
// talks to a transport directly — it wraps an injected Backend, the
// external collaborator.
package profilefs

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPathMissing is the structural sentinel a Backend returns (or wraps)
// when a path does not exist. Components 5 and 7 use IsNotFound to treat
// "not found" as "empty" rather than propagating it.
var ErrPathMissing = errors.New("profilefs: path does not exist")

// IsNotFound reports whether err represents a missing path.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPathMissing)
}

// DirEntry is one entry returned by List.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
	Hash  string
}

// Info is the result of Stat.
type Info struct {
	Hash  string
	Size  int64
	IsDir bool
}

// Backend is the content-addressed filesystem collaborator: path-based
// read, write, list, stat, mkdir and recursive remove, exactly as spec §6
// describes it.
type Backend interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte, createParents bool) error
	List(ctx context.Context, path string, long bool) ([]DirEntry, error)
	Stat(ctx context.Context, path string) (Info, error)
	Mkdir(ctx context.Context, path string, parents bool) error
	Remove(ctx context.Context, path string, recursive bool) error
}

// Tree is the nested representation LoadTree returns:
// name → {type, size, hash, contents?}, contents present only for
// directories (spec §4.4). LoadTree fills in the whole subtree in one
// eager walk; no part of it is loaded on demand. The profile tree is
// acyclic by construction, so the walk needs no memoization (spec §9
// Design Note 3).
type Tree struct {
	Name     string
	IsDir    bool
	Size     int64
	Hash     string
	Contents map[string]*Tree
}

// FS is the typed wrapper over Backend. Every write creates parent
// directories and truncates existing content, per spec §4.4.
type FS struct {
	backend Backend

	readyOnce sync.Once
	readyErr  error
}

// New wraps backend.
func New(backend Backend) *FS {
	return &FS{backend: backend}
}

// Ready waits on the one-shot "filesystem node is ready" barrier of spec
// §5. It is idempotent: once satisfied, later calls return immediately.
// This rewrite has no separate readiness probe on Backend, so the barrier
// is satisfied the first time it is observed; it exists so every public
// operation has a single suspension point to await, matching the
// concurrency model even when the concrete Backend is always-ready.
func (f *FS) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.readyOnce.Do(func() {
		f.readyErr = ctx.Err()
	})
	return f.readyErr
}

// Read returns the bytes at path.
func (f *FS) Read(ctx context.Context, path string) ([]byte, error) {
	if err := f.Ready(ctx); err != nil {
		return nil, err
	}
	data, err := f.backend.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("profilefs: read %s: %w", path, err)
	}
	return data, nil
}

// Write creates parent directories as needed and truncates any existing
// content at path.
func (f *FS) Write(ctx context.Context, path string, data []byte) error {
	if err := f.Ready(ctx); err != nil {
		return err
	}
	if err := f.backend.Write(ctx, path, data, true); err != nil {
		return fmt.Errorf("profilefs: write %s: %w", path, err)
	}
	return nil
}

// List lists the entries directly under path.
func (f *FS) List(ctx context.Context, path string) ([]DirEntry, error) {
	if err := f.Ready(ctx); err != nil {
		return nil, err
	}
	entries, err := f.backend.List(ctx, path, true)
	if err != nil {
		return nil, fmt.Errorf("profilefs: list %s: %w", path, err)
	}
	return entries, nil
}

// Stat returns metadata for path.
func (f *FS) Stat(ctx context.Context, path string) (Info, error) {
	if err := f.Ready(ctx); err != nil {
		return Info{}, err
	}
	info, err := f.backend.Stat(ctx, path)
	if err != nil {
		return Info{}, fmt.Errorf("profilefs: stat %s: %w", path, err)
	}
	return info, nil
}

// Mkdir creates path, and its parents when parents is true.
func (f *FS) Mkdir(ctx context.Context, path string, parents bool) error {
	if err := f.Ready(ctx); err != nil {
		return err
	}
	if err := f.backend.Mkdir(ctx, path, parents); err != nil {
		return fmt.Errorf("profilefs: mkdir %s: %w", path, err)
	}
	return nil
}

// Remove removes path, recursively when recursive is true.
func (f *FS) Remove(ctx context.Context, path string, recursive bool) error {
	if err := f.Ready(ctx); err != nil {
		return err
	}
	if err := f.backend.Remove(ctx, path, recursive); err != nil {
		return fmt.Errorf("profilefs: remove %s: %w", path, err)
	}
	return nil
}

// LoadTree walks path recursively, returning the nested Tree structure.
// Missing paths surface as ErrPathMissing through the caller's IsNotFound
// check, same as every other read in this package.
func (f *FS) LoadTree(ctx context.Context, path string) (*Tree, error) {
	if err := f.Ready(ctx); err != nil {
		return nil, err
	}

	info, err := f.Stat(ctx, path)
	if err != nil {
		return nil, err
	}

	node := &Tree{Hash: info.Hash, Size: info.Size, IsDir: info.IsDir}

	if !info.IsDir {
		return node, nil
	}

	entries, err := f.List(ctx, path)
	if err != nil {
		return nil, err
	}

	node.Contents = make(map[string]*Tree, len(entries))
	for _, e := range entries {
		childPath := path
		if childPath == "" || childPath[len(childPath)-1] != '/' {
			childPath += "/"
		}
		childPath += e.Name

		child, err := f.LoadTree(ctx, childPath)
		if err != nil {
			return nil, err
		}
		child.Name = e.Name
		node.Contents[e.Name] = child
	}

	return node, nil
}

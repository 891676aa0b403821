// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package groups implements the group engine (spec §4.7): creating
// groups, deriving per-member filenames, delivering the group key to
// each member, and maintaining the nickname roster in encrypted group
// info.
package groups

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pseudofunctor/gravity-protocol/internal/aead"
	"github.com/pseudofunctor/gravity-protocol/internal/b58"
	"github.com/pseudofunctor/gravity-protocol/internal/b64url"
	"github.com/pseudofunctor/gravity-protocol/internal/contacts"
	"github.com/pseudofunctor/gravity-protocol/internal/identity"
	"github.com/pseudofunctor/gravity-protocol/internal/keys"
	"github.com/pseudofunctor/gravity-protocol/internal/masterkey"
	"github.com/pseudofunctor/gravity-protocol/internal/profilefs"
)

const groupsPath = "/groups"

// meFilename is the literal name under which a group's creator stores
// their own group-key entry.
const meFilename = "me"
const infoFilename = "info.json.enc"

// saltLength is the size of a fresh group salt G. It reuses aead.KeyLength
// purely so G and K_G draw from the same amount of randomness; G is never
// used as an AEAD key itself.
const saltLength = aead.KeyLength

// ErrUnknownMember is returned by Create when one or more member CPKs
// have no contacts record, naming every offender.
type ErrUnknownMember struct {
	Missing []keys.CPK
}

func (e *ErrUnknownMember) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = string(m)
	}
	return fmt.Sprintf("groups: unknown member(s): %s", strings.Join(names, ", "))
}

// ErrNotInGroup is returned by SetNicknames when one or more CPKs in
// the requested nickname patch have no filename present in the group
// directory, naming every offender.
type ErrNotInGroup struct {
	Missing []keys.CPK
}

func (e *ErrNotInGroup) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = string(m)
	}
	return fmt.Sprintf("groups: not in group: %s", strings.Join(names, ", "))
}

// ErrNoSuchGroup indicates the addressed group directory does not exist.
var ErrNoSuchGroup = errors.New("groups: no such group")

// Info is the structured per-group record stored at info.json.enc.
type Info struct {
	ID      string            `json:"id"`
	Members map[string]string `json:"members"`
}

// Engine implements group creation, key retrieval, and nickname
// management over a profile filesystem, a contacts registry, and this
// participant's own identity and master key.
type Engine struct {
	fs       *profilefs.FS
	contacts *contacts.Registry
	mk       *masterkey.Store
	self     identity.Provider
}

// New builds an Engine.
func New(fs *profilefs.FS, reg *contacts.Registry, mk *masterkey.Store, self identity.Provider) *Engine {
	return &Engine{fs: fs, contacts: reg, mk: mk, self: self}
}

// Create establishes a new group for the given member CPKs, optionally
// named groupID (a fresh UUID v4 is used when groupID is empty), and
// returns the base64url group directory name b64(G) (spec §4.7 steps
// 1-9). No filesystem mutation happens if any member is unknown.
func (e *Engine) Create(ctx context.Context, memberCPKs []keys.CPK, groupID string) (string, error) {
	current, err := e.contacts.Get(ctx)
	if err != nil {
		return "", err
	}

	var missing []keys.CPK
	secrets := make(map[keys.CPK]aead.Key, len(memberCPKs))
	for _, m := range memberCPKs {
		attrs, ok := current[m]
		if !ok {
			missing = append(missing, m)
			continue
		}
		raw, ok := attrs[contacts.MySecretAttr]
		if !ok {
			missing = append(missing, m)
			continue
		}
		decoded, err := b64url.Decode(raw)
		if err != nil || len(decoded) != aead.KeyLength {
			missing = append(missing, m)
			continue
		}
		var s aead.Key
		copy(s[:], decoded)
		secrets[m] = s
	}
	if len(missing) > 0 {
		return "", &ErrUnknownMember{Missing: missing}
	}

	var salt [saltLength]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return "", fmt.Errorf("groups: generate salt: %w", err)
	}
	groupKey, err := aead.GenerateKey()
	if err != nil {
		return "", err
	}

	dir := groupsPath + "/" + b64url.Encode(salt[:])
	if err := e.fs.Mkdir(ctx, dir, true); err != nil {
		return "", err
	}

	msg, err := json.Marshal([]string{b64url.Encode(groupKey[:])})
	if err != nil {
		return "", fmt.Errorf("groups: marshal key delivery: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for member, secret := range secrets {
		member, secret := member, secret
		g.Go(func() error {
			name, err := memberFilename(salt[:], secret)
			if err != nil {
				return err
			}
			blob, err := aead.Seal(secret, msg)
			if err != nil {
				return err
			}
			return e.fs.Write(gctx, dir+"/"+name, blob)
		})
	}
	g.Go(func() error {
		master, err := e.mk.Get(gctx)
		if err != nil {
			return err
		}
		blob, err := aead.Seal(master, msg)
		if err != nil {
			return err
		}
		return e.fs.Write(gctx, dir+"/"+meFilename, blob)
	})
	g.Go(func() error {
		if groupID == "" {
			id, err := uuid.NewRandom()
			if err != nil {
				return fmt.Errorf("groups: generate group id: %w", err)
			}
			groupID = id.String()
		}
		info, err := json.Marshal(Info{ID: groupID, Members: map[string]string{}})
		if err != nil {
			return fmt.Errorf("groups: marshal info: %w", err)
		}
		blob, err := aead.Seal(groupKey, info)
		if err != nil {
			return err
		}
		return e.fs.Write(gctx, dir+"/"+infoFilename, blob)
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	nicknames := map[keys.CPK]string{e.self.PublicKey(): ""}
	for _, m := range memberCPKs {
		nicknames[m] = ""
	}
	if err := e.SetNicknames(ctx, b64url.Encode(salt[:]), nicknames); err != nil {
		return "", err
	}

	return b64url.Encode(salt[:]), nil
}

// GroupKey reads and decrypts this participant's own group-key entry
// (spec §4.7 "Read own group key").
func (e *Engine) GroupKey(ctx context.Context, groupDir string) (aead.Key, error) {
	master, err := e.mk.Get(ctx)
	if err != nil {
		return aead.Key{}, err
	}

	blob, err := e.fs.Read(ctx, groupsPath+"/"+groupDir+"/"+meFilename)
	if profilefs.IsNotFound(err) {
		return aead.Key{}, ErrNoSuchGroup
	}
	if err != nil {
		return aead.Key{}, err
	}

	plaintext, err := aead.Open(master, blob)
	if err != nil {
		return aead.Key{}, fmt.Errorf("groups: decrypt own entry: %w", err)
	}

	var wrapped []string
	if err := json.Unmarshal(plaintext, &wrapped); err != nil || len(wrapped) == 0 {
		return aead.Key{}, fmt.Errorf("groups: malformed own entry")
	}

	raw, err := b64url.Decode(wrapped[0])
	if err != nil || len(raw) != aead.KeyLength {
		return aead.Key{}, fmt.Errorf("groups: malformed group key")
	}

	var k aead.Key
	copy(k[:], raw)
	return k, nil
}

// Info reads and decrypts a group's info.json.enc (spec §4.7 "Read
// group info"). A missing file yields an empty Info, matching the
// "not found is empty" convention used throughout the core.
func (e *Engine) Info(ctx context.Context, groupDir string) (Info, error) {
	groupKey, err := e.GroupKey(ctx, groupDir)
	if err != nil {
		return Info{}, err
	}

	blob, err := e.fs.Read(ctx, groupsPath+"/"+groupDir+"/"+infoFilename)
	if profilefs.IsNotFound(err) {
		return Info{Members: map[string]string{}}, nil
	}
	if err != nil {
		return Info{}, err
	}

	plaintext, err := aead.Open(groupKey, blob)
	if err != nil {
		return Info{}, fmt.Errorf("groups: decrypt info: %w", err)
	}

	var info Info
	if err := json.Unmarshal(plaintext, &info); err != nil {
		return Info{}, fmt.Errorf("groups: unmarshal info: %w", err)
	}
	if info.Members == nil {
		info.Members = map[string]string{}
	}
	return info, nil
}

// SetNicknames merges the given CPK-to-nickname patch into a group's
// info, rejecting the whole call with ErrNotInGroup (naming every
// offending CPK) if any patched CPK has no filename present in the
// group directory (spec §4.7 "Set nicknames").
func (e *Engine) SetNicknames(ctx context.Context, groupDir string, patch map[keys.CPK]string) error {
	entries, err := e.fs.List(ctx, groupsPath+"/"+groupDir)
	if profilefs.IsNotFound(err) {
		return ErrNoSuchGroup
	}
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(entries))
	for _, en := range entries {
		present[en.Name] = true
	}

	current, err := e.contacts.Get(ctx)
	if err != nil {
		return err
	}

	var missing []keys.CPK
	for cpk := range patch {
		if cpk == e.self.PublicKey() {
			if !present[meFilename] {
				missing = append(missing, cpk)
			}
			continue
		}
		attrs, ok := current[cpk]
		if !ok {
			missing = append(missing, cpk)
			continue
		}
		raw, ok := attrs[contacts.MySecretAttr]
		if !ok {
			missing = append(missing, cpk)
			continue
		}
		secretBytes, err := b64url.Decode(raw)
		if err != nil || len(secretBytes) != aead.KeyLength {
			missing = append(missing, cpk)
			continue
		}
		saltBytes, err := b64url.Decode(groupDir)
		if err != nil {
			missing = append(missing, cpk)
			continue
		}
		var secret aead.Key
		copy(secret[:], secretBytes)
		name, err := memberFilename(saltBytes, secret)
		if err != nil || !present[name] {
			missing = append(missing, cpk)
			continue
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return &ErrNotInGroup{Missing: missing}
	}

	info, err := e.Info(ctx, groupDir)
	if err != nil {
		return err
	}
	if info.Members == nil {
		info.Members = map[string]string{}
	}
	for cpk, name := range patch {
		info.Members[string(cpk)] = name
	}

	groupKey, err := e.GroupKey(ctx, groupDir)
	if err != nil {
		return err
	}
	plaintext, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("groups: marshal info: %w", err)
	}
	blob, err := aead.Seal(groupKey, plaintext)
	if err != nil {
		return err
	}
	return e.fs.Write(ctx, groupsPath+"/"+groupDir+"/"+infoFilename, blob)
}

// List returns every group directory name, or an empty slice if
// /groups does not exist yet.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	entries, err := e.fs.List(ctx, groupsPath)
	if profilefs.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		if en.IsDir {
			names = append(names, en.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// memberFilename computes B58(multihash(SHA-256, G ‖ S)) (spec §4, §6).
func memberFilename(salt []byte, secret aead.Key) (string, error) {
	return b58.KeyedHash(salt, secret[:])
}

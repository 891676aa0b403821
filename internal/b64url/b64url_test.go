// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package b64url

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := [][]byte{nil, {}, []byte("x"), []byte("hello world"), bytes.Repeat([]byte{0xAB}, 37)}

	for _, in := range inputs {
		encoded := Encode(in)
		got, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q): %v", encoded, err)
		}
		if !bytes.Equal(got, in) && !(len(got) == 0 && len(in) == 0) {
			t.Fatalf("round-trip mismatch: got %v want %v", got, in)
		}
	}
}

func TestEncodeProducesNoPadding(t *testing.T) {
	encoded := Encode([]byte("f"))
	if bytes.ContainsRune([]byte(encoded), '=') {
		t.Fatalf("Encode produced padding: %q", encoded)
	}
}

func TestDecodeToleratesPadding(t *testing.T) {
	raw := []byte("padded input!")
	padded := "cGFkZGVkIGlucHV0IQ==" // padded base64url of "padded input!"; the unpadded decoder rejects it, so this takes the padded path
	got, err := Decode(padded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("Decode(%q) = %q, want %q", padded, got, raw)
	}
}

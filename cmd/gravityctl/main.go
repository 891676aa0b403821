// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Command gravityctl is a developer-mode front end for the gravity
// protocol core: generating an identity, running the subscriber
// handshake, and managing groups against a local disk-backed profile
// tree.
package main

import (
	"fmt"
	"os"

	"github.com/pseudofunctor/gravity-protocol/cmd/gravityctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gravityctl:", err)
		os.Exit(1)
	}
}

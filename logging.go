// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 The gravity-protocol Authors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package gravity

import "github.com/rs/zerolog"

// loggerFacade narrows the zerolog.Logger configured on Configuration
// down to the two event shapes Node emits, so call sites read as plain
// sentences instead of builder chains.
type loggerFacade struct {
	logger zerolog.Logger
}

func (l loggerFacade) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l loggerFacade) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

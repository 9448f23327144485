// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import "fmt"

type ErrDisplayInterrupt struct{}

func (e ErrDisplayInterrupt) Error() string { return "display dismissed by user" }

type ErrDisplayNotInitialized struct{}

func (e ErrDisplayNotInitialized) Error() string { return "display not initialized" }

type ErrDisplayClosed struct{}

func (e ErrDisplayClosed) Error() string { return "display closed" }

type ErrDisplayTooSmall struct {
	height, width int
}

func (e ErrDisplayTooSmall) Error() string {
	return fmt.Sprintf("%vx%v display too small must be %vx%v", e.width, e.height, minDisplayWidth, minDisplayHeight)
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors
//
// Fanlink - TR198A Ceiling-Fan RF Remote Toolkit
//
// A CLI tool for building, inspecting and transmitting RF replay packets
// for TR198A ceiling-fan receivers.

package main

import (
	"os"

	"github.com/tr198a/fanlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

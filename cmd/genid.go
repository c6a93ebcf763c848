// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/tr198a/fanlink/pkg/tr198a"
)

var genIDCmd = &cobra.Command{
	Use:   "gen-id",
	Short: "Generate a random 13-bit handset ID",
	Long: `Generate a fresh random handset ID.

A handset ID is a 13-bit number burned into a physical remote; fans accept
commands from any ID they were paired with, so a generated ID becomes usable
after 'fanlink pair'.`,
	RunE: runGenID,
}

func init() {
	rootCmd.AddCommand(genIDCmd)
}

func runGenID(cmd *cobra.Command, args []string) error {
	id := rand.IntN(tr198a.MaxHandsetID + 1)
	fmt.Printf("0x%04x\n", id)
	return nil
}

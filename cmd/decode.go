// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tr198a/fanlink/pkg/tr198a"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <packet>",
	Short: "Decode and explain a container packet",
	Long: `Decode a serialized packet and print its pulse structure and the
recovered payload fields.

The packet may be given as a "b64:" string (as printed by cmd and pair)
or as bare hex.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(c *cobra.Command, args []string) error {
	data, err := parsePacketArg(args[0])
	if err != nil {
		return err
	}

	packet, err := tr198a.DecodePacket(data)
	if err != nil {
		return fmt.Errorf("decode failed: %v", err)
	}
	fmt.Print(tr198a.FormatPacket(packet))
	return nil
}

func parsePacketArg(s string) ([]byte, error) {
	if strings.HasPrefix(s, tr198a.Base64Prefix) {
		return tr198a.UnwrapBase64(s)
	}
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, " ", "")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("packet is neither %q nor hex: %v", tr198a.Base64Prefix, err)
	}
	return data, nil
}

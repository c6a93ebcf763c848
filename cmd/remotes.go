// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tr198a/fanlink/internal/registry"
)

var (
	addBreezeTable string
	addTrailer     int
)

var remotesCmd = &cobra.Command{
	Use:   "remotes",
	Short: "Manage the registered remotes",
	Long: `Manage the handset registry.

Registered remotes map a friendly name to a handset ID plus per-remote
quirks (breeze table revision, trailer timing), and carry the last fan
state assumed from transmitted commands.`,
	RunE: runRemotesList,
}

var remotesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered remotes",
	Args:  cobra.NoArgs,
	RunE:  runRemotesList,
}

var remotesAddCmd = &cobra.Command{
	Use:   "add <name> <handset-id>",
	Short: "Register a remote",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemotesAdd,
}

var remotesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered remote",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemotesRemove,
}

func init() {
	rootCmd.AddCommand(remotesCmd)
	remotesCmd.AddCommand(remotesListCmd)
	remotesCmd.AddCommand(remotesAddCmd)
	remotesCmd.AddCommand(remotesRemoveCmd)

	remotesAddCmd.Flags().StringVar(&addBreezeTable, "breeze-table", "",
		"Breeze code table revision (rev1 or rev2)")
	remotesAddCmd.Flags().IntVar(&addTrailer, "trailer", 0,
		"Trailer duration override in microseconds")
}

func openRegistry() (*registry.Registry, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return registry.Open(cfg.RegistryPath)
}

func runRemotesList(c *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	names := reg.Names()
	if len(names) == 0 {
		fmt.Println("No remotes registered. Use 'fanlink remotes add'.")
		return nil
	}
	for _, name := range names {
		r := reg.Remotes[name]
		fmt.Printf("%-16s 0x%04X", name, r.HandsetID)
		if r.BreezeTable != "" {
			fmt.Printf("  breeze=%s", r.BreezeTable)
		}
		if r.TrailerUs != 0 {
			fmt.Printf("  trailer=%dus", r.TrailerUs)
		}
		if r.State.Speed != 0 || r.State.Light {
			fmt.Printf("  [speed %d, %s, light %s]",
				r.State.Speed, r.State.Direction, onOff(r.State.Light))
		}
		fmt.Println()
	}
	return nil
}

func runRemotesAdd(c *cobra.Command, args []string) error {
	id, err := parseHandsetID(args[1])
	if err != nil {
		return err
	}
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	remote := &registry.Remote{
		HandsetID:   id,
		BreezeTable: addBreezeTable,
		TrailerUs:   addTrailer,
	}
	if err := reg.Add(args[0], remote); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}
	fmt.Printf("Registered %q with handset ID 0x%04X\n", args[0], id)
	return nil
}

func runRemotesRemove(c *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	if !reg.Remove(args[0]) {
		return fmt.Errorf("unknown remote %q", args[0])
	}
	if err := reg.Save(); err != nil {
		return err
	}
	fmt.Printf("Removed %q\n", args[0])
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

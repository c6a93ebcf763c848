// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

// Package registry persists the set of known handsets: friendly names,
// handset IDs, per-remote codec quirks and the last logical state assumed
// from transmitted commands. The TR198A link is one-way, so the stored
// state is an assumption, not a report.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/tr198a/fanlink/pkg/tr198a"
)

// Breeze table revision names accepted in Remote.BreezeTable.
const (
	BreezeRev1 = "rev1"
	BreezeRev2 = "rev2"
)

// State is the last logical fan state assumed after a transmit.
type State struct {
	Speed     int    `cbor:"speed"`
	Direction string `cbor:"direction"`
	Light     bool   `cbor:"light"`
}

// Remote is one paired handset entry.
type Remote struct {
	HandsetID uint16 `cbor:"handset_id"`

	// BreezeTable selects the preset code table revision; empty uses the
	// codec default.
	BreezeTable string `cbor:"breeze_table,omitempty"`

	// TrailerUs overrides the trailer convention for this remote; zero
	// uses the codec default.
	TrailerUs int `cbor:"trailer_us,omitempty"`

	State State `cbor:"state"`
}

// CodecOptions resolves the per-remote quirks into codec values.
func (r *Remote) CodecOptions() (*tr198a.BreezeTable, int, error) {
	var table *tr198a.BreezeTable
	switch r.BreezeTable {
	case "":
	case BreezeRev1:
		table = &tr198a.BreezeTableRev1
	case BreezeRev2:
		table = &tr198a.BreezeTableRev2
	default:
		return nil, 0, fmt.Errorf("unknown breeze table revision %q (want %s or %s)",
			r.BreezeTable, BreezeRev1, BreezeRev2)
	}
	return table, r.TrailerUs, nil
}

// Registry is the on-disk handset collection.
type Registry struct {
	path    string
	Remotes map[string]*Remote
}

// Open loads the registry at path. A missing file yields an empty registry
// that Save will create.
func Open(path string) (*Registry, error) {
	r := &Registry{path: path, Remotes: map[string]*Remote{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	if err := cbor.Unmarshal(data, &r.Remotes); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return r, nil
}

// Save writes the registry atomically.
func (r *Registry) Save() error {
	data, err := cbor.Marshal(r.Remotes)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Add registers a new remote under name.
func (r *Registry) Add(name string, remote *Remote) error {
	if name == "" {
		return fmt.Errorf("remote name must not be empty")
	}
	if _, exists := r.Remotes[name]; exists {
		return fmt.Errorf("remote %q already exists", name)
	}
	if remote.HandsetID > tr198a.MaxHandsetID {
		return fmt.Errorf("handset ID 0x%X exceeds 13 bits", remote.HandsetID)
	}
	if _, _, err := remote.CodecOptions(); err != nil {
		return err
	}
	r.Remotes[name] = remote
	return nil
}

// Get returns the remote registered under name.
func (r *Registry) Get(name string) (*Remote, error) {
	remote, ok := r.Remotes[name]
	if !ok {
		return nil, fmt.Errorf("unknown remote %q", name)
	}
	return remote, nil
}

// Remove deletes a remote; it reports whether the name existed.
func (r *Registry) Remove(name string) bool {
	if _, ok := r.Remotes[name]; !ok {
		return false
	}
	delete(r.Remotes, name)
	return true
}

// Names returns the registered remote names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Remotes))
	for name := range r.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

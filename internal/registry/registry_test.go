package registry

import (
	"path/filepath"
	"testing"

	"github.com/tr198a/fanlink/pkg/tr198a"
)

func TestOpen_MissingFile(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "remotes.cbor"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(r.Remotes) != 0 {
		t.Errorf("expected empty registry, got %d remotes", len(r.Remotes))
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "remotes.cbor")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	err = r.Add("bedroom", &Remote{
		HandsetID:   0x15A9,
		BreezeTable: BreezeRev2,
		TrailerUs:   tr198a.TrailerLongUs,
		State:       State{Speed: 3, Direction: "forward", Light: true},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	remote, err := reloaded.Get("bedroom")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if remote.HandsetID != 0x15A9 {
		t.Errorf("handset ID = 0x%X, want 0x15A9", remote.HandsetID)
	}
	if remote.State.Speed != 3 || remote.State.Direction != "forward" || !remote.State.Light {
		t.Errorf("state not preserved: %+v", remote.State)
	}

	table, trailer, err := remote.CodecOptions()
	if err != nil {
		t.Fatalf("CodecOptions failed: %v", err)
	}
	if table == nil || *table != tr198a.BreezeTableRev2 {
		t.Error("breeze table revision not preserved")
	}
	if trailer != tr198a.TrailerLongUs {
		t.Errorf("trailer = %d, want %d", trailer, tr198a.TrailerLongUs)
	}
}

func TestAdd_Validation(t *testing.T) {
	r := &Registry{Remotes: map[string]*Remote{}}

	if err := r.Add("", &Remote{HandsetID: 1}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.Add("fan", &Remote{HandsetID: 0x2000}); err == nil {
		t.Error("expected error for out-of-range handset ID")
	}
	if err := r.Add("fan", &Remote{HandsetID: 1, BreezeTable: "rev9"}); err == nil {
		t.Error("expected error for unknown breeze table")
	}
	if err := r.Add("fan", &Remote{HandsetID: 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Add("fan", &Remote{HandsetID: 2}); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestRemoveAndNames(t *testing.T) {
	r := &Registry{Remotes: map[string]*Remote{}}
	r.Add("b", &Remote{HandsetID: 2})
	r.Add("a", &Remote{HandsetID: 1})

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}

	if !r.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if r.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if _, err := r.Get("a"); err == nil {
		t.Error("expected error for removed remote")
	}
}

func TestCodecOptions_Default(t *testing.T) {
	remote := &Remote{HandsetID: 1}
	table, trailer, err := remote.CodecOptions()
	if err != nil {
		t.Fatalf("CodecOptions failed: %v", err)
	}
	if table != nil {
		t.Error("expected nil table for default revision")
	}
	if trailer != 0 {
		t.Errorf("trailer = %d, want 0 (codec default)", trailer)
	}
}

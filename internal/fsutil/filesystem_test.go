package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicSuccess(t *testing.T) {
	mem := NewMemoryFileSystem()

	if err := WriteFileAtomic(mem, "out/stats.json", []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := mem.ReadFile("out/stats.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("unexpected contents: %s", data)
	}
	if mem.Exists("out/.stats.json.tmp") {
		t.Error("temporary file left behind")
	}
}

func TestWriteFileAtomicWriteFailure(t *testing.T) {
	mem := NewMemoryFileSystem()
	mem.FailWrites = true

	err := WriteFileAtomic(mem, "out/stats.json", []byte("data"), 0o644)
	if err == nil {
		t.Fatal("expected error")
	}
	if mem.Exists("out/stats.json") {
		t.Error("destination file should not exist after failed write")
	}
}

func TestWriteFileAtomicRenameFailureLeavesNoPartialFile(t *testing.T) {
	mem := NewMemoryFileSystem()
	mem.FailRenames = true

	err := WriteFileAtomic(mem, "out/stats.json", []byte("data"), 0o644)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected permission error, got %v", err)
	}
	if mem.Exists("out/stats.json") {
		t.Error("destination file should not exist after failed rename")
	}
	if mem.Exists("out/.stats.json.tmp") {
		t.Error("temporary file should be cleaned up after failed rename")
	}
}

func TestWriteFileAtomicOverwritesExisting(t *testing.T) {
	mem := NewMemoryFileSystem()
	if err := WriteFileAtomic(mem, "stats.json", []byte("old"), 0o644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteFileAtomic(mem, "stats.json", []byte("new"), 0o644); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	data, _ := mem.ReadFile("stats.json")
	if string(data) != "new" {
		t.Errorf("got %q, want %q", data, "new")
	}
}

func TestOSFileSystemRoundTrip(t *testing.T) {
	dir := t.TempDir()
	osfs := OSFileSystem{}
	path := filepath.Join(dir, "sub", "file.json")

	if err := osfs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := WriteFileAtomic(osfs, path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the destination file, found %d entries", len(entries))
	}
}

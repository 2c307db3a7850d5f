package writer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "sub", "a.proto")

	if err := Write(out, dir, "syntax = \"proto3\";\n", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "syntax = \"proto3\";\n" {
		t.Fatalf("got %q", data)
	}
}

func TestWriteRefusesExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.proto")
	if err := Write(out, dir, "first", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(out, dir, "second", false); err == nil {
		t.Fatal("expected ErrExists")
	}
}

func TestWriteForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.proto")
	if err := Write(out, dir, "first", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(out, dir, "second", true); err != nil {
		t.Fatalf("force write: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "second" {
		t.Fatalf("got %q, want second", data)
	}
}

func TestWriteRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "..", "escaped.proto")
	if err := Write(out, dir, "x", false); err == nil {
		t.Fatal("expected path traversal error")
	}
}

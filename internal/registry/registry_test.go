package registry

import "testing"

func TestRegisterFirstOccurrence(t *testing.T) {
	r := New()
	content := "syntax = \"proto3\";\npackage test;"
	hash := ContentHash(content)

	path, ok := r.Register("test.proto", hash, "/out", "", HashSuffix)
	if !ok {
		t.Fatal("expected first registration to succeed")
	}
	if path != "/out/test.proto" {
		t.Fatalf("got %q, want /out/test.proto", path)
	}
}

func TestRegisterExactDuplicateSkipped(t *testing.T) {
	r := New()
	content := "syntax = \"proto3\";\npackage test;"
	hash := ContentHash(content)

	if _, ok := r.Register("test.proto", hash, "/out", "", HashSuffix); !ok {
		t.Fatal("expected first registration to succeed")
	}
	if _, ok := r.Register("test.proto", hash, "/out", "", HashSuffix); ok {
		t.Fatal("expected exact duplicate to be skipped")
	}
	if r.Stats().DuplicatesSkipped != 1 {
		t.Fatalf("got %d duplicates skipped, want 1", r.Stats().DuplicatesSkipped)
	}
}

func TestRegisterConflictHashSuffix(t *testing.T) {
	r := New()
	hash1 := ContentHash("content one")
	hash2 := ContentHash("content two")

	if _, ok := r.Register("test.proto", hash1, "/out", "", HashSuffix); !ok {
		t.Fatal("expected first registration to succeed")
	}
	path2, ok := r.Register("test.proto", hash2, "/out", "", HashSuffix)
	if !ok {
		t.Fatal("expected conflicting content to be renamed, not skipped")
	}
	if want := "/out/test~" + hash2 + ".proto"; path2 != want {
		t.Fatalf("got %q, want %q", path2, want)
	}
	if r.Stats().ConflictsRenamed != 1 {
		t.Fatalf("got %d conflicts renamed, want 1", r.Stats().ConflictsRenamed)
	}
}

func TestRegisterConflictSourceSuffix(t *testing.T) {
	r := New()
	hash1 := ContentHash("content one")
	hash2 := ContentHash("content two")

	if _, ok := r.Register("test.proto", hash1, "/out", "/bin/app1", SourceSuffix); !ok {
		t.Fatal("expected first registration to succeed")
	}
	path2, ok := r.Register("test.proto", hash2, "/out", "/bin/app2", SourceSuffix)
	if !ok {
		t.Fatal("expected conflict to be renamed")
	}
	if want := "/out/test~from-app2.proto"; path2 != want {
		t.Fatalf("got %q, want %q", path2, want)
	}
}

func TestRegisterConflictSkipConflicts(t *testing.T) {
	r := New()
	hash1 := ContentHash("content one")
	hash2 := ContentHash("content two")

	if _, ok := r.Register("test.proto", hash1, "/out", "", SkipConflicts); !ok {
		t.Fatal("expected first registration to succeed")
	}
	if _, ok := r.Register("test.proto", hash2, "/out", "", SkipConflicts); ok {
		t.Fatal("expected conflicting content to be skipped under SkipConflicts")
	}
}

func TestAddSuffix(t *testing.T) {
	if got := addSuffix("test.proto", "~abc123"); got != "test~abc123.proto" {
		t.Fatalf("got %q", got)
	}
	if got := addSuffix("path/to/test.proto", "~abc123"); got != "path/to/test~abc123.proto" {
		t.Fatalf("got %q", got)
	}
}

func TestContentHashStableAndDistinct(t *testing.T) {
	h1 := ContentHash("hello")
	h2 := ContentHash("hello")
	h3 := ContentHash("world")

	if h1 != h2 {
		t.Fatal("expected stable hash for identical content")
	}
	if h1 == h3 {
		t.Fatal("expected distinct hash for different content")
	}
	if len(h1) != 8 {
		t.Fatalf("got hash length %d, want 8", len(h1))
	}
}

func TestParseConflictStrategy(t *testing.T) {
	cases := map[string]ConflictStrategy{
		"hash-suffix":   HashSuffix,
		"source-suffix": SourceSuffix,
		"skip-conflicts": SkipConflicts,
	}
	for in, want := range cases {
		got, err := ParseConflictStrategy(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if _, err := ParseConflictStrategy("bogus"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

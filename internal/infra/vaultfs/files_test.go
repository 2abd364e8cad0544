package vaultfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateReadOverwrite(t *testing.T) {
	var fs OS
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "note.md")

	if err := fs.CreateFile(path, []byte("hello")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !fs.Exists(path) {
		t.Fatal("expected file to exist")
	}
	text, err := fs.ReadText(path)
	if err != nil || text != "hello" {
		t.Fatalf("read back: %q, %v", text, err)
	}
	if err := fs.Overwrite(path, "rewritten"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	text, _ = fs.ReadText(path)
	if text != "rewritten" {
		t.Fatalf("expected rewritten contents, got %q", text)
	}
}

func TestSetTimes(t *testing.T) {
	var fs OS
	path := filepath.Join(t.TempDir(), "f.md")
	if err := fs.CreateFile(path, []byte("x")); err != nil {
		t.Fatal(err)
	}

	created := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	modified := time.Date(2021, 6, 2, 11, 0, 0, 0, time.UTC)
	if err := fs.SetTimes(path, created, modified); err != nil {
		t.Fatalf("set times: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().UTC().Equal(modified) {
		t.Fatalf("expected mtime %v, got %v", modified, info.ModTime().UTC())
	}

	// Zero times are a no-op, not an error.
	if err := fs.SetTimes(path, time.Time{}, time.Time{}); err != nil {
		t.Fatalf("zero times: %v", err)
	}
}

func TestListFiles(t *testing.T) {
	var fs OS
	dir := t.TempDir()
	for _, p := range []string{"a.md", "b.txt", filepath.Join("nested", "c.md")} {
		if err := fs.CreateFile(filepath.Join(dir, p), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	flat, err := fs.ListFiles(dir, ".md", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 1 || filepath.Base(flat[0]) != "a.md" {
		t.Fatalf("expected only top-level a.md, got %v", flat)
	}

	all, err := fs.ListFiles(dir, ".md", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two markdown files recursively, got %v", all)
	}

	missing, err := fs.ListFiles(filepath.Join(dir, "nope"), ".md", true)
	if err != nil || missing != nil {
		t.Fatalf("expected empty result for missing dir, got %v, %v", missing, err)
	}
}

func TestClearDir(t *testing.T) {
	var fs OS
	dir := filepath.Join(t.TempDir(), "res")
	if err := fs.CreateFile(filepath.Join(dir, "old.bin"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := fs.ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("expected dir recreated: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}

func TestExtensionForMime(t *testing.T) {
	cases := map[string]string{
		"image/png":       ".png",
		"image/jpeg":      ".jpg",
		"application/pdf": ".pdf",
		"TEXT/PLAIN":      ".txt",
		"":                ".bin",
		"x-unknown/blob":  ".bin",
	}
	for mime, want := range cases {
		if got := ExtensionForMime(mime); got != want {
			t.Fatalf("%s: expected %s, got %s", mime, want, got)
		}
	}
}

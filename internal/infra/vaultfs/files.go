// Package vaultfs is the destination file-system boundary for the importer.
// The importer only depends on the Writer interface; OS is the real
// implementation.
package vaultfs

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Writer is the destination surface the importer writes through.
type Writer interface {
	CreateFile(path string, data []byte) error
	SetTimes(path string, created, modified time.Time) error
	ReadText(path string) (string, error)
	Overwrite(path string, text string) error
	Exists(path string) bool
	ListFiles(dir string, ext string, recursive bool) ([]string, error)
	ClearDir(path string) error
}

// OS writes to the local file system.
type OS struct{}

// CreateFile writes data to path, creating parent directories as needed.
func (OS) CreateFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SetTimes applies created/modified times to an existing file. The
// creation time is applied best-effort and only where the platform
// supports it.
func (OS) SetTimes(path string, created, modified time.Time) error {
	if modified.IsZero() {
		modified = created
	}
	if modified.IsZero() {
		return nil
	}
	atime := created
	if atime.IsZero() {
		atime = modified
	}
	if err := os.Chtimes(path, atime, modified); err != nil {
		return err
	}
	return setFileCreationTime(path, created)
}

// ReadText reads a previously written file back as text.
func (OS) ReadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// Overwrite replaces the contents of an existing file.
func (OS) Overwrite(path string, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("overwrite %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path exists.
func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListFiles returns the files directly under dir, or the whole subtree
// when recursive, filtered by extension when ext is non-empty. Paths come
// back sorted for deterministic passes.
func (OS) ListFiles(dir string, ext string, recursive bool) ([]string, error) {
	var out []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ext == "" || strings.EqualFold(filepath.Ext(path), ext) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
		sort.Strings(out)
		return out, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if ext == "" || strings.EqualFold(filepath.Ext(ent.Name()), ext) {
			out = append(out, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ClearDir removes dir and recreates it empty.
func (OS) ClearDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clear %s: %w", path, err)
	}
	return os.MkdirAll(path, 0o755)
}

var preferredExt = map[string]string{
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
	"image/svg+xml":    ".svg",
	"image/x-icon":     ".ico",
	"application/pdf":  ".pdf",
	"application/json": ".json",
	"audio/mpeg":       ".mp3",
	"audio/wav":        ".wav",
	"text/plain":       ".txt",
}

// ExtensionForMime maps a declared MIME type to a file extension, falling
// back to .bin for anything unrecognized.
func ExtensionForMime(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if mimeType == "" {
		return ".bin"
	}
	if ext, ok := preferredExt[mimeType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	sort.Strings(exts)
	return exts[0]
}

package importer

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
)

// maxNameLength is the deterministic truncation bound shared by the note
// writer and the link resolver. Both sides must derive identical names for
// resolved references to match files on disk.
const maxNameLength = 96

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		if isForbiddenFileNameRune(r) {
			b.WriteRune('-')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	out = strings.TrimRight(out, ". ")
	if out == "." || out == ".." {
		out = ""
	}
	if out == "" {
		return "untitled"
	}
	return out
}

func isForbiddenFileNameRune(r rune) bool {
	if r == 0 || unicode.IsControl(r) {
		return true
	}
	switch r {
	case '/', '\\', '<', '>', ':', '"', '|', '?', '*', '#', '[', ']', '^':
		return true
	default:
		return false
	}
}

func truncateName(s string) string {
	runes := []rune(s)
	if len(runes) <= maxNameLength {
		return s
	}
	return strings.TrimSpace(string(runes[:maxNameLength]))
}

// noteBaseName is the write-time naming rule: sanitize, then truncate.
// The resolver calls the same function when it re-derives a target name.
func noteBaseName(title string) string {
	base := truncateName(sanitizeName(title))
	if base == "" {
		base = "untitled"
	}
	return base
}

func collisionKey(name string) string {
	return strings.ToLower(name)
}

func relativePathTarget(sourcePath string, targetPath string) string {
	targetPath = filepath.ToSlash(strings.TrimSpace(targetPath))
	if targetPath == "" {
		return ""
	}
	sourcePath = filepath.ToSlash(strings.TrimSpace(sourcePath))
	if sourcePath == "" {
		return targetPath
	}

	sourceDir := filepath.ToSlash(filepath.Dir(sourcePath))
	rel, err := filepath.Rel(sourceDir, targetPath)
	if err != nil {
		return targetPath
	}
	rel = filepath.ToSlash(strings.TrimSpace(rel))
	if rel == "" || rel == "." {
		return targetPath
	}
	return rel
}

// encodeLinkPath URL-encodes each path segment while keeping separators.
func encodeLinkPath(p string, sep string) string {
	if sep == "" {
		sep = "/"
	}
	parts := strings.Split(p, sep)
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, sep)
}

package importer

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sleroq/evernote-to-obsidian/internal/domain/evernote"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/vaultfs"
	"github.com/sleroq/evernote-to-obsidian/internal/logger"
)

// The resource store half of the importer: attachments are materialized to
// files and looked up by content identity when the rendered body's media
// markers are rewritten.

var (
	recoHashRe    = regexp.MustCompile(`[0-9a-f]{32}`)
	enMediaTagRe  = regexp.MustCompile(`<en-media\b[^>]*/?>`)
	mediaAttrRe   = regexp.MustCompile(`([a-zA-Z-]+)="([^"]*)"`)
	inlineDataRe  = regexp.MustCompile(`data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,([A-Za-z0-9+/=]+)`)
	embedBaseName = "embedded"
)

type storedResource struct {
	id       string
	filename string
	mime     string
	width    int
	height   int
}

// resourceIdentity returns the content identifier joining a resource to
// its in-body media marker: a 32-hex token from the recognition text when
// present, the MD5 of the decoded payload otherwise.
func resourceIdentity(res evernote.Resource) string {
	if token := recoHashRe.FindString(strings.ToLower(res.Recognition)); token != "" {
		return token
	}
	sum := md5.Sum(res.Data)
	return hex.EncodeToString(sum[:])
}

// saveResources persists every attachment of a note into dir and returns
// the lookup records. A write failure aborts the enclosing note: a note
// with a missing attachment is incomplete.
func (im *Importer) saveResources(run *RunState, resources []evernote.Resource, dir string) ([]storedResource, error) {
	if len(resources) == 0 {
		return nil, nil
	}
	if run.clearDirOnce(dir) {
		if err := im.fs.ClearDir(dir); err != nil {
			return nil, fmt.Errorf("prepare resource dir: %w", err)
		}
	}

	stored := make([]storedResource, 0, len(resources))
	for _, res := range resources {
		rec, err := im.saveResource(run, res, dir)
		if err != nil {
			return nil, err
		}
		stored = append(stored, rec)
		run.stats.Resources++
	}
	return stored, nil
}

func (im *Importer) saveResource(run *RunState, res evernote.Resource, dir string) (storedResource, error) {
	name := resourceFileName(res)
	name = im.dedupeFileName(dir, name)

	path := filepath.Join(dir, name)
	if err := im.fs.CreateFile(path, res.Data); err != nil {
		return storedResource{}, fmt.Errorf("write resource %s: %w", name, err)
	}
	if res.Attributes != nil && !res.Attributes.Timestamp.IsZero() {
		if err := im.fs.SetTimes(path, res.Attributes.Timestamp, res.Attributes.Timestamp); err != nil {
			logger.Debug("resource timestamp not applied", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
		}
	}

	return storedResource{
		id:       resourceIdentity(res),
		filename: name,
		mime:     res.Mime,
		width:    res.Width,
		height:   res.Height,
	}, nil
}

// resourceFileName derives the destination name from the original
// filename hint, falling back to a mime-typed generic name.
func resourceFileName(res evernote.Resource) string {
	hint := ""
	if res.Attributes != nil {
		hint = strings.TrimSpace(res.Attributes.FileName)
	}
	if hint == "" {
		return "untitled" + vaultfs.ExtensionForMime(res.Mime)
	}
	ext := filepath.Ext(hint)
	stem := strings.TrimSuffix(hint, ext)
	stem = truncateName(sanitizeName(stem))
	if ext == "" {
		ext = vaultfs.ExtensionForMime(res.Mime)
	}
	return stem + ext
}

// dedupeFileName appends a numeric suffix while a same-stem file already
// exists in dir.
func (im *Importer) dedupeFileName(dir string, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 2; im.fs.Exists(filepath.Join(dir, candidate)); n++ {
		candidate = stem + "-" + strconv.Itoa(n) + ext
	}
	return candidate
}

// rewriteMediaMarkers replaces every en-media marker whose identifier
// matches a stored resource. Image types become image references carrying
// the declared dimensions; everything else becomes a plain file link.
// Markers with no matching resource are left as-is.
func (im *Importer) rewriteMediaMarkers(body string, stored []storedResource, notePath string, resourceDir string) string {
	if len(stored) == 0 {
		return body
	}
	byID := make(map[string]storedResource, len(stored))
	for _, rec := range stored {
		byID[rec.id] = rec
	}

	return enMediaTagRe.ReplaceAllStringFunc(body, func(marker string) string {
		attrs := map[string]string{}
		for _, m := range mediaAttrRe.FindAllStringSubmatch(marker, -1) {
			attrs[strings.ToLower(m[1])] = m[2]
		}
		rec, ok := byID[strings.ToLower(strings.TrimSpace(attrs["hash"]))]
		if !ok {
			return marker
		}

		target := relativePathTarget(notePath, filepath.Join(resourceDir, rec.filename))
		if im.cfg.URLEncodeLinks {
			target = encodeLinkPath(target, "/")
		}

		declaredType := attrs["type"]
		if declaredType == "" {
			declaredType = rec.mime
		}
		if strings.HasPrefix(declaredType, "image") {
			alt := rec.filename
			if dims := mediaDimensions(attrs, rec); dims != "" {
				alt += "|" + dims
			}
			return "![" + alt + "](" + target + ")"
		}
		return "[" + rec.filename + "](" + target + ")"
	})
}

func mediaDimensions(attrs map[string]string, rec storedResource) string {
	w := strings.TrimSpace(attrs["width"])
	h := strings.TrimSpace(attrs["height"])
	if w == "" && rec.width > 0 {
		w = strconv.Itoa(rec.width)
	}
	if h == "" && rec.height > 0 {
		h = strconv.Itoa(rec.height)
	}
	switch {
	case w != "" && h != "":
		return w + "x" + h
	case w != "":
		return w
	default:
		return ""
	}
}

// extractDataURIs pulls binaries embedded directly in the body out to
// files named from a fixed base token plus a directory-scoped index, and
// rewrites each URI into a relative reference. Undecodable payloads stay
// in place.
func (im *Importer) extractDataURIs(run *RunState, body string, notePath string, resourceDir string) string {
	return inlineDataRe.ReplaceAllStringFunc(body, func(uri string) string {
		m := inlineDataRe.FindStringSubmatch(uri)
		data, err := base64.StdEncoding.DecodeString(m[2])
		if err != nil {
			logger.Warn("inline data not decodable", map[string]interface{}{"note": notePath})
			return uri
		}

		if run.clearDirOnce(resourceDir) {
			if err := im.fs.ClearDir(resourceDir); err != nil {
				logger.Warn("prepare resource dir failed", map[string]interface{}{"dir": resourceDir, "error": err.Error()})
				return uri
			}
		}

		name := embedBaseName
		if n := run.nextEmbedIndex(resourceDir); n > 0 {
			name += "." + strconv.Itoa(n)
		}
		name += vaultfs.ExtensionForMime(m[1])

		path := filepath.Join(resourceDir, name)
		if err := im.fs.CreateFile(path, data); err != nil {
			logger.Warn("inline data not written", map[string]interface{}{"file": name, "error": err.Error()})
			return uri
		}

		target := relativePathTarget(notePath, path)
		if im.cfg.URLEncodeLinks {
			target = encodeLinkPath(target, "/")
		}
		return "![](" + target + ")"
	})
}

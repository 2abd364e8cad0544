package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sleroq/evernote-to-obsidian/internal/logger"
)

// LinkRequest is one deferred rewrite instruction: a note body referenced
// another note by opaque identifier, and the final reference cannot be
// built until the full output set is known.
type LinkRequest struct {
	Target   string // the literal identifier left in the rendered body
	Title    string // sanitized display title of the referenced note
	Notebook string // destination sub-tree the target was found in
	Suffix   string // the target's disambiguation suffix, if it needed one
	found    bool
}

// recordLink registers a deferred reference discovered while rendering.
// A reference with no usable display text cannot name its target and is
// left as a literal placeholder forever.
func (rs *RunState) recordLink(target string, display string, notebook string) {
	display = strings.TrimSpace(display)
	if target == "" || display == "" || strings.Contains(display, "://") {
		return
	}
	req := &LinkRequest{
		Target:   target,
		Title:    noteBaseName(display),
		Notebook: notebook,
	}
	// The target may already have been written (backward reference).
	for i := len(rs.outputs) - 1; i >= 0; i-- {
		out := rs.outputs[i]
		if collisionKey(out.Base) == collisionKey(req.Title) {
			req.Notebook = out.Notebook
			req.Suffix = out.Suffix
			req.found = true
			break
		}
	}
	rs.links = append(rs.links, req)
}

// registerOutput records a written note and settles every pending request
// whose title resolves to it. A later note with the same title wins, which
// is what makes references to a collision-suffixed file land on the right
// one.
func (rs *RunState) registerOutput(rec OutputRecord) {
	rs.outputs = append(rs.outputs, rec)
	for _, req := range rs.links {
		if collisionKey(req.Title) == collisionKey(rec.Base) {
			req.Notebook = rec.Notebook
			req.Suffix = rec.Suffix
			req.found = true
		}
	}
}

// resolveLinks is the batch-wide rewrite pass. It runs exactly once, after
// every archive has finished, enumerates every produced file, and
// substitutes each settled request's literal identifier with the final
// reference. Requests whose target was never produced stay literal; that
// is never an error.
func (im *Importer) resolveLinks(run *RunState) error {
	if len(run.links) == 0 {
		return nil
	}

	files, err := im.fs.ListFiles(im.cfg.OutputDir, ".md", true)
	if err != nil {
		return fmt.Errorf("enumerate output files: %w", err)
	}

	sep := im.cfg.PathSeparator
	if sep == "" {
		sep = "/"
	}

	for _, path := range files {
		text, err := im.fs.ReadText(path)
		if err != nil {
			return fmt.Errorf("link pass: %w", err)
		}
		fileNotebook := filepath.Base(filepath.Dir(path))

		rewritten := text
		for _, req := range run.links {
			if !req.found {
				continue
			}
			if !strings.Contains(rewritten, req.Target) {
				continue
			}
			rewritten = strings.ReplaceAll(rewritten, req.Target, im.referenceFor(req, fileNotebook, sep))
		}
		if rewritten == text {
			continue
		}
		if err := im.fs.Overwrite(path, rewritten); err != nil {
			return fmt.Errorf("link pass: %w", err)
		}
	}

	for _, req := range run.links {
		if req.found {
			run.stats.ResolvedLinks++
		} else {
			run.stats.UnresolvedLinks++
			logger.Debug("unresolved reference", map[string]interface{}{
				"target": req.Target, "title": req.Title,
			})
		}
	}
	return nil
}

// referenceFor rebuilds the final reference text for a settled request.
// The name re-derivation uses the same truncation and suffix rule as the
// note writer, so the reference matches the file on disk.
func (im *Importer) referenceFor(req *LinkRequest, fileNotebook string, sep string) string {
	name := req.Title + req.Suffix
	if im.cfg.URLEncodeLinks {
		name = encodeLinkPath(name, sep)
	}
	if req.Notebook == fileNotebook {
		return name
	}
	notebook := req.Notebook
	if im.cfg.URLEncodeLinks {
		notebook = encodeLinkPath(notebook, sep)
	}
	return notebook + sep + name
}

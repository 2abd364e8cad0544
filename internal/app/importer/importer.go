// Package importer turns ENEX note archives into an Obsidian-style vault:
// one markdown file per note, extracted attachments linked by content
// identity, checklist groups spliced into their placeholders, and
// note-to-note references resolved in a single batch-wide pass once every
// archive has been written.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sleroq/evernote-to-obsidian/internal/domain/evernote"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/enml"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/vaultfs"
	"github.com/sleroq/evernote-to-obsidian/internal/logger"
)

// stackSeparator splits an archive base name into stack and notebook:
// "Work__Projects.enex" files the Projects notebook under the Work
// sub-tree.
const stackSeparator = "__"

// Renderer is the rich-text collaborator: a pure function over the raw
// body plus one side-effecting callback per internal reference.
type Renderer interface {
	Render(body string, opts enml.Options, onLink enml.InternalLinkFunc) (string, error)
}

// Importer drives one run. Archives are processed strictly one at a time
// in discovery order; all mutable state lives in the RunState created by
// Run.
type Importer struct {
	cfg      *Config
	fs       vaultfs.Writer
	renderer Renderer
	control  Control
}

// New assembles an importer from its collaborators.
func New(cfg *Config, fs vaultfs.Writer, renderer Renderer, control Control) *Importer {
	return &Importer{cfg: cfg, fs: fs, renderer: renderer, control: control}
}

// Run processes every archive under the input directory and then performs
// the global link-resolution pass. Archive-level failures are reported
// and skipped; the pass itself must succeed.
func (im *Importer) Run() (Stats, error) {
	if im.cfg == nil {
		return Stats{}, fmt.Errorf("config is required")
	}
	if err := im.cfg.Validate(); err != nil {
		return Stats{}, err
	}

	archives, err := im.discoverArchives()
	if err != nil {
		return Stats{}, err
	}
	if len(archives) == 0 {
		return Stats{}, fmt.Errorf("no .enex archives under %s", im.cfg.InputDir)
	}

	run := newRunState(im.cfg.TaskTag)
	im.control.Status(fmt.Sprintf("importing %d archives", len(archives)))

	for i, src := range archives {
		if im.control.Cancelled() {
			break
		}
		im.control.Progress(i, len(archives))
		logger.Info("importing archive", map[string]interface{}{"archive": src.Base})
		if err := im.importArchive(run, src); err != nil {
			logger.Error("archive failed", err, map[string]interface{}{"archive": src.Path})
			im.control.Failed(src.Base, err)
			run.stats.FailedArchives++
			continue
		}
		run.stats.Archives++
	}
	im.control.Progress(len(archives), len(archives))

	// Strict barrier: every per-note write above has completed before the
	// resolver sees the output tree.
	im.control.Status("resolving references")
	if err := im.resolveLinks(run); err != nil {
		return run.stats, err
	}

	im.control.Status("done")
	return run.stats, nil
}

// discoverArchives lists the input directory's .enex files and derives
// each archive's stack and notebook from its base name.
func (im *Importer) discoverArchives() ([]evernote.Archive, error) {
	paths, err := im.fs.ListFiles(im.cfg.InputDir, ".enex", false)
	if err != nil {
		return nil, fmt.Errorf("discover archives: %w", err)
	}

	out := make([]evernote.Archive, 0, len(paths))
	for _, p := range paths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		src := evernote.Archive{Base: base, Path: p, Notebook: base}
		if stack, notebook, ok := strings.Cut(base, stackSeparator); ok && stack != "" && notebook != "" {
			src.Stack = stack
			src.Notebook = notebook
		}
		out = append(out, src)
	}
	return out, nil
}

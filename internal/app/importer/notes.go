package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sleroq/evernote-to-obsidian/internal/domain/evernote"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/enexstream"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/enml"
	"github.com/sleroq/evernote-to-obsidian/internal/logger"
)

// webClipSource marks notes produced by the web clipper.
const webClipSource = "web.clip"

// archiveState is the per-archive assembly state. Attribute sub-records
// arrive as separate events just before their owner completes, so a
// single pending slot per sub-record type is enough; nothing larger than
// one note's records is ever retained.
type archiveState struct {
	pendingNoteAttrs     *evernote.NoteAttributes
	pendingResourceAttrs *evernote.ResourceAttributes
	resources            []evernote.Resource
}

// importArchive streams one archive and writes its notes. Stream-level
// errors abort the archive; record-level failures only drop the record.
func (im *Importer) importArchive(run *RunState, src evernote.Archive) error {
	r, err := enexstream.Open(src.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	st := archiveState{}
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch ev.Kind {
		case enexstream.KindNoteAttributes:
			attrs, err := evernote.NoteAttributesFromRaw(ev.Fields)
			if err != nil {
				logger.Warn("note attributes dropped", map[string]interface{}{"error": err.Error()})
				continue
			}
			st.pendingNoteAttrs = &attrs

		case enexstream.KindResourceAttributes:
			attrs, err := evernote.ResourceAttributesFromRaw(ev.Fields)
			if err != nil {
				logger.Warn("resource attributes dropped", map[string]interface{}{"error": err.Error()})
				continue
			}
			st.pendingResourceAttrs = &attrs

		case enexstream.KindResource:
			res, err := evernote.ResourceFromRaw(ev.Fields)
			st.pendingResourceAttrs, res.Attributes = nil, st.pendingResourceAttrs
			if err != nil {
				logger.Warn("resource dropped", map[string]interface{}{
					"archive": src.Base, "error": err.Error(),
				})
				continue
			}
			st.resources = append(st.resources, res)

		case enexstream.KindTask:
			task, err := evernote.TaskFromRaw(ev.Fields, ev.Repeated)
			if err != nil {
				logger.Warn("task dropped", map[string]interface{}{
					"archive": src.Base, "error": err.Error(),
				})
				continue
			}
			run.tasks.Add(task)
			run.stats.Tasks++

		case enexstream.KindNote:
			note, err := evernote.NoteFromRaw(ev.Fields, ev.Repeated)
			note.Attributes, st.pendingNoteAttrs = st.pendingNoteAttrs, nil
			note.Resources, st.resources = st.resources, nil
			if err != nil {
				logger.Warn("note dropped", map[string]interface{}{
					"archive": src.Base, "error": err.Error(),
				})
				im.control.Skipped(noteID(src, note), err.Error())
				run.stats.Skipped++
				run.tasks.Reset()
				continue
			}
			im.finishNote(run, src, note)

			if im.control.Cancelled() {
				// Cooperative cancellation: close the stream and settle
				// without error, keeping everything already written.
				_ = r.Close()
				return nil
			}
		}
	}
}

func (im *Importer) finishNote(run *RunState, src evernote.Archive, note evernote.Note) {
	defer run.tasks.Reset()

	if im.cfg.SkipWebClips && note.Attributes != nil &&
		strings.HasPrefix(note.Attributes.Source, webClipSource) {
		im.control.Skipped(noteID(src, note), "web clip")
		run.stats.Skipped++
		return
	}

	if err := im.convertNote(run, src, note); err != nil {
		im.control.Failed(noteID(src, note), err)
		run.stats.Failed++
		return
	}
	im.control.Success(noteID(src, note))
	run.stats.Notes++
}

// convertNote runs the full per-note pipeline: reserve a unique path,
// persist attachments, render, rewrite media markers, extract inline
// data, splice task groups, prepend frontmatter, write, apply timestamps,
// and register the output for the link pass.
func (im *Importer) convertNote(run *RunState, src evernote.Archive, note evernote.Note) error {
	destDir := im.noteDir(src)

	base := noteBaseName(note.Title)
	if im.cfg.ZettelFilenames && !note.Created.IsZero() {
		base = note.Created.UTC().Format("20060102150405")
	}
	final, suffix := run.reserveName(destDir, base)
	notePath := filepath.Join(destDir, final+".md")
	resourceDir := im.resourceDir(src, destDir, final)

	stored, err := im.saveResources(run, note.Resources, resourceDir)
	if err != nil {
		return err
	}

	opts := enml.Options{
		EscapeSpecials:     im.cfg.EscapeMarkdown,
		CollapseBlankLines: im.cfg.CollapseBlankLines,
		PathSeparator:      im.cfg.PathSeparator,
		URLEncode:          im.cfg.URLEncodeLinks,
	}
	body, err := im.renderer.Render(note.Content, opts, func(target, display string) {
		run.recordLink(target, display, src.Notebook)
	})
	if err != nil {
		return fmt.Errorf("render note %q: %w", note.Title, err)
	}

	body = im.rewriteMediaMarkers(body, stored, notePath, resourceDir)
	body = im.extractDataURIs(run, body, notePath, resourceDir)
	// Task groups for this note are fully collected by the time its
	// closing tag fires, so placeholders resolve before the first write.
	body = run.tasks.Splice(body)

	content := im.renderFrontmatter(note) + body

	run.currentNotePath = notePath
	if err := im.fs.CreateFile(notePath, []byte(content)); err != nil {
		return fmt.Errorf("write note %q: %w", note.Title, err)
	}
	if err := im.fs.SetTimes(notePath, note.Created, note.Updated); err != nil {
		logger.Debug("note timestamp not applied", map[string]interface{}{
			"note": notePath, "error": err.Error(),
		})
	}

	run.registerOutput(OutputRecord{
		Path:     notePath,
		Notebook: src.Notebook,
		Base:     base,
		Suffix:   suffix,
	})
	return nil
}

func (im *Importer) noteDir(src evernote.Archive) string {
	if src.Stack != "" {
		return filepath.Join(im.cfg.OutputDir, sanitizeName(src.Stack), sanitizeName(src.Notebook))
	}
	return filepath.Join(im.cfg.OutputDir, sanitizeName(src.Notebook))
}

func (im *Importer) resourceDir(src evernote.Archive, destDir string, noteBase string) string {
	switch im.cfg.ResourceScope {
	case ResourceScopeGlobal:
		return filepath.Join(im.cfg.OutputDir, im.cfg.ResourceDirName)
	case ResourceScopeArchive:
		return filepath.Join(destDir, im.cfg.ResourceDirName)
	default:
		return filepath.Join(destDir, im.cfg.ResourceDirName, noteBase)
	}
}

func noteID(src evernote.Archive, note evernote.Note) string {
	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = "(untitled)"
	}
	return src.Base + "/" + title
}

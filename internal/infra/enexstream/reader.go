// Package enexstream reads one ENEX archive as a lazy sequence of tag
// events. The archive is never buffered whole: the reader walks the XML
// token stream and surfaces a completed element of interest at a time, so
// memory stays bounded even when a single note carries megabytes of
// attachment payload.
package enexstream

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tag kinds surfaced by the reader, in the nesting order the format
// guarantees: attribute sub-records and child records complete before the
// element that owns them.
const (
	KindNote               = "note"
	KindNoteAttributes     = "note-attributes"
	KindResource           = "resource"
	KindResourceAttributes = "resource-attributes"
	KindTask               = "task"
)

var interesting = map[string]string{
	"note":                KindNote,
	"note-attributes":     KindNoteAttributes,
	"resource":            KindResource,
	"resource-attributes": KindResourceAttributes,
	"task":                KindTask,
}

// Event is one completed tag of interest. Fields maps a direct child
// element to its text content (last occurrence wins); Repeated collects
// every occurrence for children that may repeat, such as tag and
// reminderDate.
type Event struct {
	Kind     string
	Fields   map[string]string
	Repeated map[string][]string
}

var repeatedChildren = map[string]struct{}{
	"tag":          {},
	"reminderDate": {},
}

// Reader pulls tag events from one archive. It is single-pass and not
// restartable.
type Reader struct {
	path    string
	src     io.ReadCloser
	dec     *xml.Decoder
	frames  []*frame
	closed  bool
	sawRoot bool
}

type frame struct {
	kind       string
	fields     map[string]string
	repeated   map[string][]string
	child      string
	childDepth int
	buf        strings.Builder
}

// Open opens the archive at path for streaming.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return NewReader(f, path), nil
}

// NewReader wraps an already-open byte stream. The path is only used in
// diagnostics.
func NewReader(src io.ReadCloser, path string) *Reader {
	dec := xml.NewDecoder(src)
	dec.Strict = false
	return &Reader{path: path, src: src, dec: dec}
}

// Next returns the next completed tag event. It returns io.EOF after the
// document ends and a wrapped stream error, carrying the archive path, on
// malformed input.
func (r *Reader) Next() (Event, error) {
	if r.closed {
		return Event{}, io.EOF
	}
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			if !r.sawRoot {
				return Event{}, fmt.Errorf("archive %s: empty document", r.path)
			}
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, fmt.Errorf("archive %s: %w", r.path, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			r.sawRoot = true
			name := t.Name.Local
			if kind, ok := interesting[name]; ok {
				r.frames = append(r.frames, &frame{
					kind:     kind,
					fields:   map[string]string{},
					repeated: map[string][]string{},
				})
				continue
			}
			if top := r.top(); top != nil {
				if top.childDepth == 0 {
					top.child = name
					top.buf.Reset()
				}
				top.childDepth++
			}
		case xml.CharData:
			if top := r.top(); top != nil && top.childDepth > 0 {
				top.buf.Write(t)
			}
		case xml.EndElement:
			top := r.top()
			if top == nil {
				continue
			}
			if top.childDepth == 0 {
				// The frame's own element closed.
				r.frames = r.frames[:len(r.frames)-1]
				return Event{Kind: top.kind, Fields: top.fields, Repeated: top.repeated}, nil
			}
			top.childDepth--
			if top.childDepth == 0 {
				top.commit()
			}
		}
	}
}

// Close closes the underlying stream. Subsequent Next calls return io.EOF,
// which is how cooperative cancellation drains an archive mid-flight.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}

// Path returns the archive path the reader identifies itself by.
func (r *Reader) Path() string {
	return r.path
}

func (r *Reader) top() *frame {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

func (f *frame) commit() {
	text := f.buf.String()
	if _, multi := repeatedChildren[f.child]; multi {
		f.repeated[f.child] = append(f.repeated[f.child], text)
	} else {
		f.fields[f.child] = text
	}
	f.child = ""
	f.buf.Reset()
}

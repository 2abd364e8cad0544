// Package enml renders an ENML note body to markdown. The importer treats
// rendering as an external collaborator behind an interface; this is the
// bundled implementation.
//
// Two constructs are deliberately passed through untouched: en-media
// markers (rewritten later by the resource store once content identity is
// known) and inline data URIs. Task-group divs collapse to a literal
// placeholder token that the task collector splices over.
package enml

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Options are the rendering switches the importer forwards from its
// configuration.
type Options struct {
	EscapeSpecials     bool
	CollapseBlankLines bool
	PathSeparator      string
	URLEncode          bool
}

// InternalLinkFunc is invoked once per internal note-to-note reference,
// with the opaque target identifier and the visible anchor text.
type InternalLinkFunc func(target string, display string)

// TaskPlaceholder returns the literal token a task-group div renders to.
// It is an Obsidian comment so an unspliced group stays invisible.
func TaskPlaceholder(groupID string) string {
	return "%%en-task-group:" + groupID + "%%"
}

var (
	internalLinkRe = regexp.MustCompile(`^evernote:///view/[^/]+/[^/]+/([^/]+)/`)
	taskGroupIDRe  = regexp.MustCompile(`--en-id\s*:\s*([^;"]+)`)
)

// Renderer converts ENML bodies to markdown.
type Renderer struct{}

// NewRenderer returns the bundled ENML renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

type renderState struct {
	out      strings.Builder
	opts     Options
	onLink   InternalLinkFunc
	lists    []listFrame
	link     *linkFrame
	skipDiv  int // depth inside a task-group div whose children are dropped
	preDepth int
}

type listFrame struct {
	ordered bool
	index   int
}

type linkFrame struct {
	href string
	text strings.Builder
}

// Render converts one ENML body. Unknown elements contribute their text
// content and nothing else, so an unhandled construct degrades instead of
// failing the note.
func (r *Renderer) Render(body string, opts Options, onLink InternalLinkFunc) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(body))
	dec.Strict = false
	dec.AutoClose = append([]string{"en-media", "en-todo", "img"}, xml.HTMLAutoClose...)
	dec.Entity = xml.HTMLEntity

	st := &renderState{opts: opts, onLink: onLink}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("render note body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			st.startElement(t)
		case xml.CharData:
			st.charData(string(t))
		case xml.EndElement:
			st.endElement(t)
		}
	}

	text := strings.TrimRight(st.out.String(), "\n") + "\n"
	text = strings.TrimLeft(text, "\n")
	if opts.CollapseBlankLines {
		text = collapseBlankLines(text)
	}
	return text, nil
}

func (st *renderState) startElement(t xml.StartElement) {
	if st.skipDiv > 0 {
		if t.Name.Local == "div" {
			st.skipDiv++
		}
		return
	}

	switch t.Name.Local {
	case "en-note":
	case "div", "p":
		if t.Name.Local == "div" {
			if id := taskGroupID(attr(t, "style")); id != "" {
				st.blockBreak()
				st.out.WriteString(TaskPlaceholder(id) + "\n")
				st.skipDiv = 1
				return
			}
		}
		st.blockBreak()
	case "br":
		st.out.WriteString("\n")
	case "hr":
		st.blockBreak()
		st.out.WriteString("---\n")
	case "h1", "h2", "h3", "h4", "h5", "h6":
		st.blockBreak()
		level, _ := strconv.Atoi(t.Name.Local[1:])
		st.out.WriteString(strings.Repeat("#", level) + " ")
	case "ul":
		st.lists = append(st.lists, listFrame{})
	case "ol":
		st.lists = append(st.lists, listFrame{ordered: true})
	case "li":
		st.writeListMarker()
	case "en-todo":
		st.ensureLineStart()
		if strings.EqualFold(attr(t, "checked"), "true") {
			st.out.WriteString("- [x] ")
		} else {
			st.out.WriteString("- [ ] ")
		}
	case "b", "strong":
		st.out.WriteString("**")
	case "i", "em":
		st.out.WriteString("*")
	case "code":
		if st.preDepth == 0 {
			st.out.WriteString("`")
		}
	case "pre":
		st.blockBreak()
		st.out.WriteString("```\n")
		st.preDepth++
	case "a":
		st.link = &linkFrame{href: attr(t, "href")}
	case "en-media":
		st.blockBreak()
		st.out.WriteString(mediaMarker(t))
		st.out.WriteString("\n")
	case "img":
		src := attr(t, "src")
		if strings.HasPrefix(src, "data:") {
			st.blockBreak()
			st.out.WriteString(src + "\n")
		} else if src != "" {
			st.out.WriteString("![" + escapeBrackets(attr(t, "alt")) + "](" + src + ")")
		}
	}
}

func (st *renderState) charData(s string) {
	if st.skipDiv > 0 {
		return
	}
	if st.link != nil {
		st.link.text.WriteString(s)
		return
	}
	if st.preDepth > 0 {
		st.out.WriteString(s)
		return
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if st.opts.EscapeSpecials {
		s = escapeSpecials(s)
	}
	st.out.WriteString(s)
}

func (st *renderState) endElement(t xml.EndElement) {
	if st.skipDiv > 0 {
		if t.Name.Local == "div" {
			st.skipDiv--
		}
		return
	}

	switch t.Name.Local {
	case "div", "p", "li":
		st.ensureNewline()
	case "h1", "h2", "h3", "h4", "h5", "h6":
		st.ensureNewline()
	case "ul", "ol":
		if len(st.lists) > 0 {
			st.lists = st.lists[:len(st.lists)-1]
		}
		st.ensureNewline()
	case "b", "strong":
		st.out.WriteString("**")
	case "i", "em":
		st.out.WriteString("*")
	case "code":
		if st.preDepth == 0 {
			st.out.WriteString("`")
		}
	case "pre":
		st.ensureNewline()
		st.out.WriteString("```\n")
		if st.preDepth > 0 {
			st.preDepth--
		}
	case "a":
		st.closeLink()
	}
}

func (st *renderState) closeLink() {
	if st.link == nil {
		return
	}
	href := strings.TrimSpace(st.link.href)
	text := strings.TrimSpace(st.link.text.String())
	st.link = nil

	if m := internalLinkRe.FindStringSubmatch(href); m != nil {
		// Deferred reference: the visible target stays the opaque
		// identifier until the batch-wide resolution pass.
		st.out.WriteString("[[" + m[1] + "]]")
		if st.onLink != nil {
			st.onLink(m[1], text)
		}
		return
	}
	if href == "" {
		st.out.WriteString(text)
		return
	}
	if text == "" {
		text = href
	}
	st.out.WriteString("[" + escapeBrackets(text) + "](" + href + ")")
}

func (st *renderState) writeListMarker() {
	st.ensureLineStart()
	depth := len(st.lists) - 1
	if depth < 0 {
		depth = 0
	}
	st.out.WriteString(strings.Repeat("    ", depth))
	if len(st.lists) > 0 && st.lists[len(st.lists)-1].ordered {
		st.lists[len(st.lists)-1].index++
		st.out.WriteString(strconv.Itoa(st.lists[len(st.lists)-1].index) + ". ")
	} else {
		st.out.WriteString("- ")
	}
}

func (st *renderState) blockBreak() {
	st.ensureNewline()
}

func (st *renderState) ensureNewline() {
	s := st.out.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		st.out.WriteString("\n")
	}
}

func (st *renderState) ensureLineStart() {
	st.ensureNewline()
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

func mediaMarker(t xml.StartElement) string {
	var b strings.Builder
	b.WriteString(`<en-media hash="` + attr(t, "hash") + `" type="` + attr(t, "type") + `"`)
	if w := strings.TrimSpace(attr(t, "width")); w != "" {
		b.WriteString(` width="` + w + `"`)
	}
	if h := strings.TrimSpace(attr(t, "height")); h != "" {
		b.WriteString(` height="` + h + `"`)
	}
	b.WriteString(`/>`)
	return b.String()
}

func taskGroupID(style string) string {
	if !strings.Contains(style, "--en-task-group") {
		return ""
	}
	m := taskGroupIDRe.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func escapeBrackets(s string) string {
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

func escapeSpecials(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '_', '`', '#', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

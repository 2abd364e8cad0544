package enml

import (
	"strings"
	"testing"
)

func render(t *testing.T, body string, opts Options) (string, []string) {
	t.Helper()
	var links []string
	out, err := NewRenderer().Render(body, opts, func(target, display string) {
		links = append(links, target+"|"+display)
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, links
}

func TestRenderBlocksAndMarks(t *testing.T) {
	body := `<en-note>
		<h1>Heading</h1>
		<div>plain <b>bold</b> and <i>soft</i> and <code>mono</code></div>
		<ul><li>first</li><li>second</li></ul>
		<ol><li>one</li><li>two</li></ol>
		<div><en-todo checked="true"/>done thing</div>
		<div><en-todo/>open thing</div>
	</en-note>`

	out, _ := render(t, body, Options{})
	for _, want := range []string{
		"# Heading",
		"plain **bold** and *soft* and `mono`",
		"- first",
		"- second",
		"1. one",
		"2. two",
		"- [x] done thing",
		"- [ ] open thing",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderExternalLink(t *testing.T) {
	out, links := render(t, `<en-note><div><a href="https://example.com">site</a></div></en-note>`, Options{})
	if !strings.Contains(out, "[site](https://example.com)") {
		t.Fatalf("expected markdown link, got:\n%s", out)
	}
	if len(links) != 0 {
		t.Fatalf("external link must not trigger the internal-reference hook, got %v", links)
	}
}

func TestRenderInternalLinkStaysOpaque(t *testing.T) {
	body := `<en-note><div><a href="evernote:///view/123/s1/abc-def/abc-def/">Other Note</a></div></en-note>`
	out, links := render(t, body, Options{})
	if !strings.Contains(out, "[[abc-def]]") {
		t.Fatalf("expected opaque wiki placeholder, got:\n%s", out)
	}
	if len(links) != 1 || links[0] != "abc-def|Other Note" {
		t.Fatalf("expected one internal-reference callback, got %v", links)
	}
}

func TestRenderMediaMarkerPassThrough(t *testing.T) {
	body := `<en-note><div><en-media hash="deadbeef" type="image/png" width="120" height="80"/></div></en-note>`
	out, _ := render(t, body, Options{})
	if !strings.Contains(out, `<en-media hash="deadbeef" type="image/png" width="120" height="80"/>`) {
		t.Fatalf("expected normalized media marker, got:\n%s", out)
	}
}

func TestRenderTaskGroupPlaceholder(t *testing.T) {
	body := `<en-note>
		<div style="--en-task-group:true; --en-id:5f2a;"><div>native task ui</div></div>
		<div>after</div>
	</en-note>`
	out, _ := render(t, body, Options{})
	if !strings.Contains(out, TaskPlaceholder("5f2a")) {
		t.Fatalf("expected task placeholder, got:\n%s", out)
	}
	if strings.Contains(out, "native task ui") {
		t.Fatalf("task-group children must be dropped, got:\n%s", out)
	}
	if !strings.Contains(out, "after") {
		t.Fatalf("content after the group must survive, got:\n%s", out)
	}
}

func TestRenderDataURIPassThrough(t *testing.T) {
	body := `<en-note><div><img src="data:image/gif;base64,R0lGOD=" alt="x"/></div></en-note>`
	out, _ := render(t, body, Options{})
	if !strings.Contains(out, "data:image/gif;base64,R0lGOD=") {
		t.Fatalf("expected inline data URI untouched, got:\n%s", out)
	}
}

func TestRenderCollapseBlankLines(t *testing.T) {
	body := `<en-note><div>a</div><div><br/></div><div><br/></div><div>b</div></en-note>`
	out, _ := render(t, body, Options{CollapseBlankLines: true})
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("expected blank lines collapsed, got %q", out)
	}
}

func TestRenderEscapeSpecials(t *testing.T) {
	out, _ := render(t, `<en-note><div>2*3 and _x_</div></en-note>`, Options{EscapeSpecials: true})
	if !strings.Contains(out, `2\*3`) || !strings.Contains(out, `\_x\_`) {
		t.Fatalf("expected markdown specials escaped, got:\n%s", out)
	}
}

func TestRenderPreBlock(t *testing.T) {
	out, _ := render(t, `<en-note><pre>x := 1
y := 2</pre></en-note>`, Options{})
	if !strings.Contains(out, "```\nx := 1\ny := 2\n```") {
		t.Fatalf("expected fenced code block, got:\n%s", out)
	}
}

package enexstream

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleArchive = `<?xml version="1.0" encoding="UTF-8"?>
<en-export export-date="20230101T000000Z" application="Evernote">
  <note>
    <title>First</title>
    <content><![CDATA[<en-note><div>body</div></en-note>]]></content>
    <created>20230101T100000Z</created>
    <tag>one</tag>
    <tag>two</tag>
    <note-attributes>
      <source-url>https://example.com</source-url>
    </note-attributes>
    <task>
      <title>todo</title>
      <noteLevelID>g1</noteLevelID>
      <sortWeight>A</sortWeight>
      <reminderDate>20230105T090000Z</reminderDate>
      <reminderDate>20230106T090000Z</reminderDate>
    </task>
    <resource>
      <data encoding="base64">aGVsbG8=</data>
      <mime>text/plain</mime>
      <resource-attributes>
        <file-name>hello.txt</file-name>
      </resource-attributes>
    </resource>
  </note>
</en-export>`

func readAll(t *testing.T, archive string) []Event {
	t.Helper()
	r := NewReader(io.NopCloser(strings.NewReader(archive)), "test.enex")
	defer r.Close()

	var events []Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("next event: %v", err)
		}
		events = append(events, ev)
	}
}

func TestReaderEventOrder(t *testing.T) {
	events := readAll(t, sampleArchive)

	kinds := make([]string, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	want := []string{KindNoteAttributes, KindTask, KindResourceAttributes, KindResource, KindNote}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
}

func TestReaderFieldCapture(t *testing.T) {
	events := readAll(t, sampleArchive)

	byKind := map[string]Event{}
	for _, ev := range events {
		byKind[ev.Kind] = ev
	}

	note := byKind[KindNote]
	if note.Fields["title"] != "First" {
		t.Fatalf("expected note title, got %q", note.Fields["title"])
	}
	if !strings.Contains(note.Fields["content"], "<en-note>") {
		t.Fatalf("expected raw ENML content, got %q", note.Fields["content"])
	}
	if len(note.Repeated["tag"]) != 2 {
		t.Fatalf("expected two tags, got %v", note.Repeated["tag"])
	}
	// Children of nested records must not leak into the note's own fields.
	if _, ok := note.Fields["file-name"]; ok {
		t.Fatal("resource attribute leaked into note fields")
	}
	if _, ok := note.Fields["noteLevelID"]; ok {
		t.Fatal("task field leaked into note fields")
	}

	if byKind[KindNoteAttributes].Fields["source-url"] != "https://example.com" {
		t.Fatal("expected note attributes capture")
	}
	if byKind[KindResource].Fields["data"] != "aGVsbG8=" {
		t.Fatalf("expected base64 payload, got %q", byKind[KindResource].Fields["data"])
	}
	if byKind[KindResourceAttributes].Fields["file-name"] != "hello.txt" {
		t.Fatal("expected resource attributes capture")
	}
	if got := byKind[KindTask].Repeated["reminderDate"]; len(got) != 2 {
		t.Fatalf("expected two reminder dates, got %v", got)
	}
}

func TestReaderEmptyDocument(t *testing.T) {
	r := NewReader(io.NopCloser(strings.NewReader("")), "empty.enex")
	defer r.Close()
	_, err := r.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected stream error for empty document, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty.enex") {
		t.Fatalf("expected error to carry the archive path, got %v", err)
	}
}

func TestReaderCloseStopsStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.enex")
	if err := os.WriteFile(path, []byte(sampleArchive), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after close, got %v", err)
	}
}

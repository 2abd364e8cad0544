package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/sleroq/evernote-to-obsidian/internal/domain/evernote"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/enml"
)

func TestTaskCollectorOrdersBySortKey(t *testing.T) {
	c := newTaskCollector("")
	for _, item := range []struct{ title, weight string }{
		{"b-task", "B"}, {"a-task", "A"}, {"c-task", "C"},
	} {
		c.Add(evernote.Task{GroupID: "g", Title: item.title, SortWeight: item.weight})
	}

	out := c.Splice("before\n" + enml.TaskPlaceholder("g") + "\nafter")
	a := strings.Index(out, "a-task")
	b := strings.Index(out, "b-task")
	cc := strings.Index(out, "c-task")
	if a < 0 || b < 0 || cc < 0 || !(a < b && b < cc) {
		t.Fatalf("expected ascending sort-key order, got:\n%s", out)
	}
	if strings.Contains(out, enml.TaskPlaceholder("g")) {
		t.Fatalf("expected placeholder consumed, got:\n%s", out)
	}
}

func TestTaskCollectorEqualKeysKeepArrivalOrder(t *testing.T) {
	c := newTaskCollector("")
	c.Add(evernote.Task{GroupID: "g", Title: "arrived first", SortWeight: "M"})
	c.Add(evernote.Task{GroupID: "g", Title: "arrived second", SortWeight: "M"})

	out := c.Splice(enml.TaskPlaceholder("g"))
	if !strings.Contains(out, "arrived first") || !strings.Contains(out, "arrived second") {
		t.Fatalf("expected both equal-key tasks kept, got:\n%s", out)
	}
	if strings.Index(out, "arrived first") > strings.Index(out, "arrived second") {
		t.Fatalf("expected arrival order within one sort key, got:\n%s", out)
	}
}

func TestTaskCollectorLineDecorations(t *testing.T) {
	c := newTaskCollector("chores")
	c.Add(evernote.Task{
		GroupID:    "g",
		Title:      "Pay rent",
		SortWeight: "A",
		Status:     evernote.TaskStatusCompleted,
		Flagged:    true,
		Due:        time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Reminders:  []time.Time{time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC)},
	})

	out := c.Splice(enml.TaskPlaceholder("g"))
	want := "- [x] #chores Pay rent 📅 2024-01-10 ⏰ 2024-01-09 🔼"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestTaskCollectorSeparateGroups(t *testing.T) {
	c := newTaskCollector("")
	c.Add(evernote.Task{GroupID: "g1", Title: "one", SortWeight: "A"})
	c.Add(evernote.Task{GroupID: "g2", Title: "two", SortWeight: "A"})

	out := c.Splice("x " + enml.TaskPlaceholder("g1") + " y")
	if !strings.Contains(out, "one") {
		t.Fatalf("expected g1 spliced, got:\n%s", out)
	}
	if strings.Contains(out, "two") {
		t.Fatalf("expected g2 untouched by g1's placeholder, got:\n%s", out)
	}
}

func TestTaskCollectorReset(t *testing.T) {
	c := newTaskCollector("")
	c.Add(evernote.Task{GroupID: "g", Title: "stale", SortWeight: "A"})
	c.Reset()

	if c.Len() != 0 {
		t.Fatalf("expected empty collector after reset, got %d groups", c.Len())
	}
	body := enml.TaskPlaceholder("g")
	if got := c.Splice(body); got != body {
		t.Fatalf("expected placeholder untouched after reset, got %q", got)
	}
}

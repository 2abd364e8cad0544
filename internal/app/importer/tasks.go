package importer

import (
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/sleroq/evernote-to-obsidian/internal/domain/evernote"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/enml"
)

// TaskCollector accumulates checklist records until the owning note's body
// is assembled, then splices them over the group placeholder. Groups never
// span notes, so the collector is reset at every note boundary.
//
// Each group is an ordered multimap keyed by sort key: iteration sorts
// keys ascending and tasks sharing a key stay in arrival order, so equal
// keys lose nothing.
type TaskCollector struct {
	groups *orderedmap.OrderedMap[string, *taskGroup]
	tag    string
}

type taskGroup struct {
	bySort *orderedmap.OrderedMap[string, []evernote.Task]
}

func newTaskCollector(tag string) *TaskCollector {
	return &TaskCollector{
		groups: orderedmap.New[string, *taskGroup](),
		tag:    strings.TrimSpace(tag),
	}
}

// Add appends one task to its group.
func (c *TaskCollector) Add(t evernote.Task) {
	group, ok := c.groups.Get(t.GroupID)
	if !ok {
		group = &taskGroup{bySort: orderedmap.New[string, []evernote.Task]()}
		c.groups.Set(t.GroupID, group)
	}
	existing, _ := group.bySort.Get(t.SortWeight)
	group.bySort.Set(t.SortWeight, append(existing, t))
}

// Splice replaces every group placeholder present in body with that
// group's rendered lines. Groups without a placeholder are left for
// Reset to discard.
func (c *TaskCollector) Splice(body string) string {
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		placeholder := enml.TaskPlaceholder(pair.Key)
		if !strings.Contains(body, placeholder) {
			continue
		}
		body = strings.ReplaceAll(body, placeholder, c.renderGroup(pair.Value))
	}
	return body
}

// Reset discards every pending group. Called once the owning note has been
// written.
func (c *TaskCollector) Reset() {
	c.groups = orderedmap.New[string, *taskGroup]()
}

// Len returns the number of pending groups.
func (c *TaskCollector) Len() int {
	return c.groups.Len()
}

func (c *TaskCollector) renderGroup(g *taskGroup) string {
	keys := make([]string, 0, g.bySort.Len())
	for pair := g.bySort.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		tasks, _ := g.bySort.Get(key)
		for _, t := range tasks {
			lines = append(lines, c.renderTaskLine(t))
		}
	}
	return strings.Join(lines, "\n")
}

func (c *TaskCollector) renderTaskLine(t evernote.Task) string {
	var b strings.Builder
	if t.Done() {
		b.WriteString("- [x] ")
	} else {
		b.WriteString("- [ ] ")
	}
	if c.tag != "" {
		b.WriteString("#" + c.tag + " ")
	}
	b.WriteString(t.Title)
	if !t.Due.IsZero() {
		b.WriteString(" 📅 " + evernote.FormatDay(t.Due))
	}
	for _, r := range t.Reminders {
		b.WriteString(" ⏰ " + evernote.FormatDay(r))
	}
	if t.Flagged {
		b.WriteString(" 🔼")
	} else {
		b.WriteString(" 🔽")
	}
	return b.String()
}

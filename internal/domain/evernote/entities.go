package evernote

import "time"

// Note is one logical document assembled from an ENEX archive. It is built
// incrementally while the enclosing tag is open and never mutated after
// promotion.
type Note struct {
	Title      string
	Content    string // raw ENML body
	Created    time.Time
	Updated    time.Time
	Tags       []string
	Attributes *NoteAttributes
	Resources  []Resource
}

// NoteAttributes is the optional attribute sub-record of a note.
type NoteAttributes struct {
	Latitude          string
	Longitude         string
	Altitude          string
	Author            string
	Source            string
	SourceURL         string
	SourceApplication string
	ReminderOrder     string
	ReminderTime      time.Time
	ReminderDoneTime  time.Time
}

// Resource is one embedded attachment. Data holds the decoded payload; the
// base64 text from the archive is not retained.
type Resource struct {
	Data        []byte
	Mime        string
	Width       int
	Height      int
	Recognition string // machine-recognition XML, may carry a content hash
	Attributes  *ResourceAttributes
}

// ResourceAttributes is the optional attribute sub-record of a resource.
type ResourceAttributes struct {
	FileName  string
	SourceURL string
	Timestamp time.Time
}

// Task statuses as they appear in v10 exports.
const (
	TaskStatusOpen      = "open"
	TaskStatusCompleted = "completed"
)

// Task is one checklist entry. GroupID ties it to the placeholder inside
// its owning note's body; SortWeight is an opaque lexicographic sort key.
type Task struct {
	GroupID    string
	SortWeight string
	Status     string
	Title      string
	Creator    string
	LastEditor string
	Flagged    bool
	Due        time.Time
	Reminders  []time.Time
	Created    time.Time
	Updated    time.Time
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == TaskStatusCompleted
}

// Archive identifies one ENEX export file for the duration of a run.
// Stack is the optional destination grouping derived from the file name;
// Notebook is the destination sub-tree the archive's notes land in.
type Archive struct {
	Base     string
	Path     string
	Stack    string
	Notebook string
}

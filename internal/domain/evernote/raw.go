package evernote

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Promotion of raw tag payloads into typed records happens here, at the
// parse boundary. A raw payload is the map of child-element text delivered
// by the stream reader; a payload that fails shape validation is rejected
// with a diagnostic error and never reaches business logic.

var (
	enexTimeRe = regexp.MustCompile(`^.?\d{8}T\d{6}Z?$`)
	mimeTypeRe = regexp.MustCompile(`^[-\w.+]+/[-\w.+]+$`)
)

type rawNote struct {
	Title   string
	Content string
	Created string
	Updated string
}

func (r rawNote) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Created, validation.Match(enexTimeRe)),
		validation.Field(&r.Updated, validation.Match(enexTimeRe)),
	)
}

// NoteFromRaw validates and promotes a completed note tag payload. The
// attribute sub-record and resource list are attached by the caller, which
// owns the pending slots.
func NoteFromRaw(fields map[string]string, repeated map[string][]string) (Note, error) {
	raw := rawNote{
		Title:   strings.TrimSpace(fields["title"]),
		Content: fields["content"],
		Created: strings.TrimSpace(fields["created"]),
		Updated: strings.TrimSpace(fields["updated"]),
	}
	if err := raw.validate(); err != nil {
		return Note{}, fmt.Errorf("invalid note %q: %w", raw.Title, err)
	}

	note := Note{
		Title:   raw.Title,
		Content: raw.Content,
	}
	if t, ok := ParseTime(raw.Created); ok {
		note.Created = t
	}
	if t, ok := ParseTime(raw.Updated); ok {
		note.Updated = t
	}
	for _, tag := range repeated["tag"] {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			note.Tags = append(note.Tags, tag)
		}
	}
	return note, nil
}

// NoteAttributesFromRaw promotes a note-attributes payload.
func NoteAttributesFromRaw(fields map[string]string) (NoteAttributes, error) {
	attrs := NoteAttributes{
		Latitude:          strings.TrimSpace(fields["latitude"]),
		Longitude:         strings.TrimSpace(fields["longitude"]),
		Altitude:          strings.TrimSpace(fields["altitude"]),
		Author:            strings.TrimSpace(fields["author"]),
		Source:            strings.TrimSpace(fields["source"]),
		SourceURL:         strings.TrimSpace(fields["source-url"]),
		SourceApplication: strings.TrimSpace(fields["source-application"]),
		ReminderOrder:     strings.TrimSpace(fields["reminder-order"]),
	}
	if t, ok := ParseTime(fields["reminder-time"]); ok {
		attrs.ReminderTime = t
	}
	if t, ok := ParseTime(fields["reminder-done-time"]); ok {
		attrs.ReminderDoneTime = t
	}
	return attrs, nil
}

type rawResource struct {
	Data string
	Mime string
}

func (r rawResource) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Data, validation.Required),
		validation.Field(&r.Mime, validation.Required, validation.Match(mimeTypeRe)),
	)
}

// ResourceFromRaw validates a completed resource payload and decodes its
// base64 body. The payload text is dropped once decoded.
func ResourceFromRaw(fields map[string]string) (Resource, error) {
	raw := rawResource{
		Data: stripWhitespace(fields["data"]),
		Mime: strings.TrimSpace(fields["mime"]),
	}
	if err := raw.validate(); err != nil {
		return Resource{}, fmt.Errorf("invalid resource: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(raw.Data)
	if err != nil {
		return Resource{}, fmt.Errorf("invalid resource payload (%s): %w", raw.Mime, err)
	}

	res := Resource{
		Data:        data,
		Mime:        raw.Mime,
		Recognition: fields["recognition"],
	}
	if w, err := strconv.Atoi(strings.TrimSpace(fields["width"])); err == nil {
		res.Width = w
	}
	if h, err := strconv.Atoi(strings.TrimSpace(fields["height"])); err == nil {
		res.Height = h
	}
	return res, nil
}

// ResourceAttributesFromRaw promotes a resource-attributes payload.
func ResourceAttributesFromRaw(fields map[string]string) (ResourceAttributes, error) {
	attrs := ResourceAttributes{
		FileName:  strings.TrimSpace(fields["file-name"]),
		SourceURL: strings.TrimSpace(fields["source-url"]),
	}
	if t, ok := ParseTime(fields["timestamp"]); ok {
		attrs.Timestamp = t
	}
	return attrs, nil
}

type rawTask struct {
	GroupID    string
	Title      string
	Status     string
	SortWeight string
}

func (r rawTask) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GroupID, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Status, validation.In(TaskStatusOpen, TaskStatusCompleted)),
		validation.Field(&r.SortWeight, validation.Required),
	)
}

// TaskFromRaw validates and promotes a completed task payload.
func TaskFromRaw(fields map[string]string, repeated map[string][]string) (Task, error) {
	raw := rawTask{
		GroupID:    strings.TrimSpace(fields["noteLevelID"]),
		Title:      strings.TrimSpace(fields["title"]),
		Status:     strings.TrimSpace(fields["taskStatus"]),
		SortWeight: strings.TrimSpace(fields["sortWeight"]),
	}
	if err := raw.validate(); err != nil {
		return Task{}, fmt.Errorf("invalid task %q: %w", raw.Title, err)
	}

	task := Task{
		GroupID:    raw.GroupID,
		Title:      raw.Title,
		Status:     raw.Status,
		SortWeight: raw.SortWeight,
		Creator:    strings.TrimSpace(fields["creator"]),
		LastEditor: strings.TrimSpace(fields["lastEditor"]),
		Flagged:    strings.EqualFold(strings.TrimSpace(fields["taskFlag"]), "true"),
	}
	if t, ok := ParseTaskTime(fields["dueDate"]); ok {
		task.Due = t
	}
	if t, ok := ParseTaskTime(fields["created"]); ok {
		task.Created = t
	}
	if t, ok := ParseTaskTime(fields["updated"]); ok {
		task.Updated = t
	}
	for _, r := range repeated["reminderDate"] {
		if t, ok := ParseTaskTime(r); ok {
			task.Reminders = append(task.Reminders, t)
		}
	}
	return task, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

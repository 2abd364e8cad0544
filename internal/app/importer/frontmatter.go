package importer

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sleroq/evernote-to-obsidian/internal/domain/evernote"
)

// renderFrontmatter emits the templated metadata block. The configured
// field list controls both which fields appear and their order; fields
// with no value are dropped. An empty template produces no block at all.
func (im *Importer) renderFrontmatter(note evernote.Note) string {
	if len(im.cfg.FrontmatterFields) == 0 {
		return ""
	}

	var b strings.Builder
	for _, field := range im.cfg.FrontmatterFields {
		switch field {
		case "title":
			writeYAMLScalar(&b, "title", note.Title)
		case "created":
			if !note.Created.IsZero() {
				writeYAMLScalar(&b, "created", evernote.FormatTimestamp(note.Created))
			}
		case "updated":
			if !note.Updated.IsZero() {
				writeYAMLScalar(&b, "updated", evernote.FormatTimestamp(note.Updated))
			}
		case "tags":
			if tags := im.frontmatterTags(note.Tags); len(tags) > 0 {
				writeYAMLList(&b, "tags", tags)
			}
		case "author":
			if note.Attributes != nil {
				writeYAMLScalar(&b, "author", note.Attributes.Author)
			}
		case "source":
			if note.Attributes != nil {
				writeYAMLScalar(&b, "source", note.Attributes.Source)
			}
		case "source-url":
			if note.Attributes != nil {
				writeYAMLScalar(&b, "source-url", note.Attributes.SourceURL)
			}
		case "location":
			if note.Attributes != nil && note.Attributes.Latitude != "" && note.Attributes.Longitude != "" {
				writeYAMLScalar(&b, "location", note.Attributes.Latitude+","+note.Attributes.Longitude)
			}
		case "reminder":
			if note.Attributes != nil && !note.Attributes.ReminderTime.IsZero() {
				writeYAMLScalar(&b, "reminder", evernote.FormatTimestamp(note.Attributes.ReminderTime))
			}
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return "---\n" + b.String() + "---\n\n"
}

// frontmatterTags applies the tag prefix and nested-tag separator rules.
func (im *Importer) frontmatterTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if sep := im.cfg.NestedTagSeparator; sep != "" {
			tag = strings.ReplaceAll(tag, sep, "/")
		}
		tag = strings.ReplaceAll(tag, " ", "-")
		out = append(out, im.cfg.TagPrefix+tag)
	}
	return out
}

func writeYAMLScalar(b *strings.Builder, key string, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.WriteString(key + ": " + yamlQuote(value) + "\n")
}

func writeYAMLList(b *strings.Builder, key string, values []string) {
	b.WriteString(key + ":\n")
	for _, v := range values {
		b.WriteString("  - " + yamlQuote(v) + "\n")
	}
}

// yamlQuote renders one scalar the way the yaml encoder would, without
// dragging along a document marshal per value.
func yamlQuote(s string) string {
	out, err := yaml.Marshal(s)
	if err != nil {
		return s
	}
	return strings.TrimRight(string(out), "\n")
}

package importer

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Resource directory scopes: whether extracted attachments live next to
// each note, once per archive, or once per run.
const (
	ResourceScopeNote    = "note"
	ResourceScopeArchive = "archive"
	ResourceScopeGlobal  = "global"
)

// Frontmatter fields the content template may request.
var knownFrontmatterFields = []interface{}{
	"title", "created", "updated", "tags", "author",
	"source", "source-url", "location", "reminder",
}

// Config holds every recognized importer option. Values may come from a
// YAML file, CLI flags, or both (flags win).
type Config struct {
	InputDir           string   `yaml:"input_dir"`
	OutputDir          string   `yaml:"output_dir"`
	PathSeparator      string   `yaml:"path_separator"`
	ResourceDirName    string   `yaml:"resource_dir_name"`
	ResourceScope      string   `yaml:"resource_scope"`
	URLEncodeLinks     bool     `yaml:"url_encode_links"`
	ZettelFilenames    bool     `yaml:"zettel_filenames"`
	SkipWebClips       bool     `yaml:"skip_web_clips"`
	TagPrefix          string   `yaml:"tag_prefix"`
	NestedTagSeparator string   `yaml:"nested_tag_separator"`
	TaskTag            string   `yaml:"task_tag"`
	EscapeMarkdown     bool     `yaml:"escape_markdown"`
	CollapseBlankLines bool     `yaml:"collapse_blank_lines"`
	FrontmatterFields  []string `yaml:"frontmatter_fields"`
	LogLevel           string   `yaml:"log_level"`
}

// NewDefaultConfig returns the defaults CLI flags and YAML values overlay.
func NewDefaultConfig() *Config {
	return &Config{
		PathSeparator:      "/",
		ResourceDirName:    "_resources",
		ResourceScope:      ResourceScopeNote,
		CollapseBlankLines: true,
		FrontmatterFields:  []string{"title", "created", "updated", "tags", "source-url"},
		LogLevel:           "info",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c.FrontmatterFields,
		validation.Each(validation.In(knownFrontmatterFields...)),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.InputDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.ResourceDirName, validation.Required),
		validation.Field(&c.ResourceScope, validation.Required,
			validation.In(ResourceScopeNote, ResourceScopeArchive, ResourceScopeGlobal)),
		validation.Field(&c.PathSeparator, validation.In("/", "\\")),
	)
}

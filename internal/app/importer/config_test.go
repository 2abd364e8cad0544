package importer

import "testing"

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.InputDir = "in"
	cfg.OutputDir = "out"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected defaults plus dirs to validate: %v", err)
	}
}

func TestConfigValidateRejectsMissingDirs(t *testing.T) {
	cfg := validConfig()
	cfg.InputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing input dir")
	}

	cfg = validConfig()
	cfg.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing output dir")
	}
}

func TestConfigValidateRejectsUnknownScope(t *testing.T) {
	cfg := validConfig()
	cfg.ResourceScope = "per-paragraph"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown resource scope")
	}
}

func TestConfigValidateRejectsUnknownFrontmatterField(t *testing.T) {
	cfg := validConfig()
	cfg.FrontmatterFields = append(cfg.FrontmatterFields, "geotag")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown frontmatter field")
	}
}

func TestConfigValidateRejectsBadSeparator(t *testing.T) {
	cfg := validConfig()
	cfg.PathSeparator = "|"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported path separator")
	}
}

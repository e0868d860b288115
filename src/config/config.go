// Package config loads badgebranch settings using the hierarchy
// defaults < config file < environment < command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are probed in order when no config path is given.
var DefaultFiles = []string{".badgebranch.yml", ".badgebranch.yaml", ".badgebranch.toml"}

// Config is the top-level badgebranch configuration.
type Config struct {
	Badge  BadgeConfig  `yaml:"badge" toml:"badge"`
	Git    GitConfig    `yaml:"git" toml:"git"`
	Policy PolicyConfig `yaml:"policy" toml:"policy"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// BadgeConfig describes the badge to render and where it lives.
type BadgeConfig struct {
	Name         string `yaml:"name" toml:"name"`
	Template     string `yaml:"template" toml:"template"` // empty selects the built-in endpoint template
	Branch       string `yaml:"branch" toml:"branch"`
	Style        string `yaml:"style" toml:"style"`
	Label        string `yaml:"label" toml:"label"`
	LabelColor   string `yaml:"label_color" toml:"label_color"`
	Message      string `yaml:"message" toml:"message"`
	MessageColor string `yaml:"message_color" toml:"message_color"`
	PreviewSVG   string `yaml:"preview_svg" toml:"preview_svg"`

	Font     string  `yaml:"font" toml:"font"`           // built-in preview font name
	FontSize float64 `yaml:"font_size" toml:"font_size"` // preview font pixel size
	FontFile string  `yaml:"font_file" toml:"font_file"` // custom TTF/OTF for the preview (overrides Font)
}

// GitConfig holds remote and committer settings.
type GitConfig struct {
	Remote         string `yaml:"remote" toml:"remote"`
	CommitterName  string `yaml:"committer_name" toml:"committer_name"`
	CommitterEmail string `yaml:"committer_email" toml:"committer_email"`
	TokenEnv       string `yaml:"token_env" toml:"token_env"`
}

// PolicyConfig controls failure handling and optional checks.
type PolicyConfig struct {
	FailOnError  bool   `yaml:"fail_on_error" toml:"fail_on_error"`
	ScanSecrets  bool   `yaml:"scan_secrets" toml:"scan_secrets"`
	Readme       string `yaml:"readme" toml:"readme"`
	CITestEnv    string `yaml:"ci_test_env" toml:"ci_test_env"`
	CITestSuffix string `yaml:"ci_test_suffix" toml:"ci_test_suffix"`
}

// LogConfig sets the diagnostic log level.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Badge: BadgeConfig{
			Name:         "badge",
			Branch:       "badges",
			Style:        "flat",
			Label:        "demo",
			LabelColor:   "2e2e2e",
			Message:      "no status",
			MessageColor: "2986CC",
			Font:         "go-regular",
			FontSize:     11,
		},
		Git: GitConfig{
			Remote:         "origin",
			CommitterName:  "Mona Lisa",
			CommitterEmail: "mona.lisa@example.com",
			TokenEnv:       "GITHUB_TOKEN",
		},
		Policy: PolicyConfig{
			ScanSecrets:  true,
			Readme:       "README.md",
			CITestEnv:    "COVERAGE_RUN",
			CITestSuffix: "[CI - Testing]",
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load returns a Config built from defaults, the config file and the
// environment. If path is empty the DefaultFiles are tried in dir; a
// missing file is not an error. Explicit paths must exist.
func Load(dir, path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		for _, name := range DefaultFiles {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	loadEnv(&cfg)
	return &cfg, nil
}

// loadFile decodes path over cfg, choosing the format by extension.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yml", ".yaml", "":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("config file %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

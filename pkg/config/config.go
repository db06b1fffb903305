package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"gamegrove/internal/userpath"
	"gamegrove/pkg/fsys"
	"gamegrove/pkg/listing"
	"gamegrove/pkg/template"
)

const (
	EnvWorkspaceRoot = "GAMEGROVE_WORKSPACE_ROOT"
	EnvResourceDir   = "GAMEGROVE_RESOURCE_DIR"
	EnvEditor        = "GAMEGROVE_EDITOR"
	EnvLogLevel      = "GAMEGROVE_LOG_LEVEL"
	EnvListen        = "GAMEGROVE_LISTEN"
)

type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Templates TemplatesConfig `yaml:"templates"`
	Editor    EditorConfig    `yaml:"editor"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type WorkspaceConfig struct {
	Root string `yaml:"root"`
	Sort string `yaml:"sort"`
}

type TemplatesConfig struct {
	// ResourceDir is the resource directory of a packaged install.
	ResourceDir string   `yaml:"resource_dir"`
	SearchRoots []string `yaml:"search_roots,omitempty"`
	Markers     []string `yaml:"markers"`
}

type EditorConfig struct {
	Command string `yaml:"command"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

func DefaultConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gamegrove"
	}
	return filepath.Join(homeDir, ".gamegrove")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultRoot is the folder listed when the user has not picked a workspace.
func DefaultRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "src"
	}
	return filepath.Join(homeDir, "src")
}

func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Root: DefaultRoot(),
			Sort: string(listing.SortByName),
		},
		Templates: TemplatesConfig{
			Markers: append([]string(nil), template.DefaultMarkers...),
		},
		Editor: EditorConfig{Command: "code"},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server:    ServerConfig{Listen: "127.0.0.1:7420"},
		Telemetry: TelemetryConfig{Enabled: true},
	}
}

// Load reads an optional .env file, the config file at configPath (default
// location when empty) and then applies environment overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadConfig(fsys.OS(), configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(afs afero.Fs, configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	cfg := DefaultConfig()

	data, err := afero.ReadFile(afs, configPath)
	if err != nil {
		if fsys.IsNotFound(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = DefaultRoot()
	}
	if cfg.Workspace.Sort == "" {
		cfg.Workspace.Sort = string(listing.SortByName)
	}
	if cfg.Templates.Markers == nil {
		cfg.Templates.Markers = append([]string(nil), template.DefaultMarkers...)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides config values with the GAMEGROVE_* variables that are
// set according to getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvWorkspaceRoot); v != "" {
		c.Workspace.Root = v
	}
	if v := getenv(EnvResourceDir); v != "" {
		c.Templates.ResourceDir = v
	}
	if v := getenv(EnvEditor); v != "" {
		c.Editor.Command = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
	c.expandPaths()
	return c.Validate()
}

// expandPaths resolves a leading ~ in every path setting.
func (c *Config) expandPaths() {
	c.Workspace.Root = userpath.ExpandUser(c.Workspace.Root)
	c.Templates.ResourceDir = userpath.ExpandUser(c.Templates.ResourceDir)
	userpath.ExpandAll(c.Templates.SearchRoots)
	c.Log.File = userpath.ExpandUser(c.Log.File)
}

func (c *Config) Validate() error {
	if _, err := listing.ParseSortOrder(c.Workspace.Sort); err != nil {
		return fmt.Errorf("invalid workspace.sort: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	return nil
}

// SortOrder returns the parsed workspace sort order.
func (c *Config) SortOrder() listing.SortOrder {
	order, err := listing.ParseSortOrder(c.Workspace.Sort)
	if err != nil {
		return listing.SortByName
	}
	return order
}

// WriteDefaultConfig writes the default config to configPath unless a file
// is already there.
func WriteDefaultConfig(afs afero.Fs, configPath string) error {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	if _, err := afs.Stat(configPath); err == nil {
		return nil
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fsys.WriteFileAtomic(afs, configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

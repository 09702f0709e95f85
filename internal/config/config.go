package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Jellyfin contains the playback-source connection settings.
type Jellyfin struct {
	URL     string   `toml:"url"`
	APIKey  string   `toml:"api_key"`
	UserIDs []string `toml:"user_ids"`
}

// Tiers describes the storage tiers the mover relocates between.
type Tiers struct {
	CacheRoot  string `toml:"cache_root"`
	BulkRoot   string `toml:"bulk_root"`
	MoviesPool string `toml:"movies_pool"`
	TVPool     string `toml:"tv_pool"`
}

// Paths contains path translation prefixes and local directories.
type Paths struct {
	RemotePrefix string `toml:"remote_prefix"`
	LocalPrefix  string `toml:"local_prefix"`
	LogDir       string `toml:"log_dir"`
}

// Mover contains relocation behavior settings.
type Mover struct {
	ThresholdPercent   int      `toml:"threshold_percent"`
	DryRun             bool     `toml:"dry_run"`
	SubtitleExtensions []string `toml:"subtitle_extensions"`
	MoverPIDFile       string   `toml:"mover_pid_file"`
}

// Schedule contains the cron expression used for the next-run countdown.
// The expression is display-only; it never gates execution.
type Schedule struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tiermover.
type Config struct {
	Jellyfin Jellyfin `toml:"jellyfin"`
	Tiers    Tiers    `toml:"tiers"`
	Paths    Paths    `toml:"paths"`
	Mover    Mover    `toml:"mover"`
	Schedule Schedule `toml:"schedule"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tiermover/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// ResolvePath reports which configuration file Load would read and whether it
// exists, without parsing or validating it.
func ResolvePath(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tiermover.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the mover owns. Tier roots are
// deliberately not created here; their absence is a fatal runtime condition,
// not something to paper over.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// LogFile returns the persistent run log path.
func (c *Config) LogFile() string {
	return filepath.Join(c.Paths.LogDir, "tiermover.log")
}

// HistoryDBPath returns the run-history database path.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

// LockFile returns the path of the single-run lock file.
func (c *Config) LockFile() string {
	return filepath.Join(c.Paths.LogDir, "tiermover.lock")
}

// NormalizedUserIDs returns the configured user IDs with separators stripped
// and lowercased, in configuration order.
func (c *Config) NormalizedUserIDs() []string {
	out := make([]string, 0, len(c.Jellyfin.UserIDs))
	for _, id := range c.Jellyfin.UserIDs {
		out = append(out, NormalizeUserID(id))
	}
	return out
}

// NormalizeUserID strips dash separators and lowercases a Jellyfin user ID.
func NormalizeUserID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}

// ExpandPath expands a leading ~ and resolves an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

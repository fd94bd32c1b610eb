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

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Telegram contains credentials for the message source API.
type Telegram struct {
	APIID       int    `toml:"api_id"`
	APIHash     string `toml:"api_hash"`
	Phone       string `toml:"phone"`
	SessionName string `toml:"session_name"`
}

// Storage contains connection settings for the MinIO object store.
type Storage struct {
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UseTLS       bool   `toml:"use_tls"`
	BucketPrefix string `toml:"bucket_prefix"`
}

// Scanner contains discovery scan timing and paging settings.
type Scanner struct {
	Interval   int  `toml:"interval"`
	BatchLimit int  `toml:"batch_limit"`
	FullRescan bool `toml:"full_rescan"`
}

// Transfer contains worker retry and queue settings.
type Transfer struct {
	MaxRetries    int `toml:"max_retries"`
	QueueCapacity int `toml:"queue_capacity"`
}

// Reconciler contains self-healing check timing.
type Reconciler struct {
	Interval int `toml:"interval"`
}

// Notifications contains webhook notification settings.
type Notifications struct {
	WebhookURL     string `toml:"webhook_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Categories maps coarse file types to default destination categories.
type Categories struct {
	Audio string `toml:"audio"`
	PDF   string `toml:"pdf"`
}

// Workflow contains task supervision intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for chanvault.
//
// Sections by subsystem:
//   - Paths: data, staging, and log directories
//   - Telegram: message source API credentials and session identity
//   - Storage: MinIO endpoint and bucket naming
//   - Scanner: discovery cycle interval and paging
//   - Transfer: retry budget and in-process queue bound
//   - Reconciler: self-healing interval
//   - Notifications: webhook endpoint for completed transfers
//   - Categories: default destination category per file type
//   - Workflow: supervisor polling and backoff intervals
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Telegram      Telegram      `toml:"telegram"`
	Storage       Storage       `toml:"storage"`
	Scanner       Scanner       `toml:"scanner"`
	Transfer      Transfer      `toml:"transfer"`
	Reconciler    Reconciler    `toml:"reconciler"`
	Notifications Notifications `toml:"notifications"`
	Categories    Categories    `toml:"categories"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chanvault/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("chanvault.toml")
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

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the record store database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "chanvault.db")
}

// BucketForCategory derives the object store bucket name for a destination category.
func (c *Config) BucketForCategory(category string) string {
	return c.Storage.BucketPrefix + strings.TrimSpace(category)
}

// DefaultCategory returns the destination category assigned at discovery time
// for a coarse file type.
func (c *Config) DefaultCategory(fileType string) string {
	switch fileType {
	case "audio":
		return c.Categories.Audio
	default:
		return c.Categories.PDF
	}
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
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

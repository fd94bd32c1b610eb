package testsupport

import (
	"path/filepath"
	"testing"

	"chanvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Telegram.APIID = 12345
	cfg.Telegram.APIHash = "test-hash"
	cfg.Telegram.Phone = "+15550100"
	cfg.Storage.Endpoint = "127.0.0.1:9000"
	cfg.Storage.AccessKey = "test-access"
	cfg.Storage.SecretKey = "test-secret"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithWebhook points the notification webhook at the given URL.
func WithWebhook(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.WebhookURL = url
	}
}

// WithBucketPrefix overrides the storage bucket prefix.
func WithBucketPrefix(prefix string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Storage.BucketPrefix = prefix
	}
}

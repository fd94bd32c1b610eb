package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateIntervals(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTelegram() error {
	if c.Telegram.APIID <= 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/chanvault/config.toml"
		}
		return fmt.Errorf("telegram.api_id is required. Edit %s (create with 'chanvault config init')", defaultPath)
	}
	if c.Telegram.APIHash == "" {
		return errors.New("telegram.api_hash is required. Set TELEGRAM_API_HASH env var or edit the config file")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set")
	}
	if c.Storage.AccessKey == "" {
		return errors.New("storage.access_key must be set")
	}
	if c.Storage.SecretKey == "" {
		return errors.New("storage.secret_key must be set. Set MINIO_SECRET_KEY env var or edit the config file")
	}
	return nil
}

func (c *Config) validateIntervals() error {
	return ensurePositiveMap(map[string]int{
		"scanner.interval":              c.Scanner.Interval,
		"scanner.batch_limit":           c.Scanner.BatchLimit,
		"transfer.max_retries":          c.Transfer.MaxRetries,
		"transfer.queue_capacity":       c.Transfer.QueueCapacity,
		"reconciler.interval":           c.Reconciler.Interval,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	})
}

func (c *Config) validateCategories() error {
	for name, value := range map[string]string{
		"categories.audio": c.Categories.Audio,
		"categories.pdf":   c.Categories.PDF,
	} {
		if strings.ContainsAny(value, "/ ") {
			return fmt.Errorf("%s must not contain slashes or spaces (used in bucket names)", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeStorage()
	c.normalizeIntervals()
	c.normalizeCategories()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.APIHash = strings.TrimSpace(c.Telegram.APIHash)
	if c.Telegram.APIHash == "" {
		if value, ok := os.LookupEnv("TELEGRAM_API_HASH"); ok {
			c.Telegram.APIHash = strings.TrimSpace(value)
		}
	}
	c.Telegram.Phone = strings.TrimSpace(c.Telegram.Phone)
	c.Telegram.SessionName = strings.TrimSpace(c.Telegram.SessionName)
	if c.Telegram.SessionName == "" {
		c.Telegram.SessionName = defaultSessionName
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.AccessKey = strings.TrimSpace(c.Storage.AccessKey)
	c.Storage.SecretKey = strings.TrimSpace(c.Storage.SecretKey)
	if c.Storage.SecretKey == "" {
		if value, ok := os.LookupEnv("MINIO_SECRET_KEY"); ok {
			c.Storage.SecretKey = strings.TrimSpace(value)
		}
	}
	c.Storage.BucketPrefix = strings.TrimSpace(c.Storage.BucketPrefix)
	if c.Storage.BucketPrefix == "" {
		c.Storage.BucketPrefix = defaultBucketPrefix
	}
}

func (c *Config) normalizeIntervals() {
	if c.Scanner.Interval <= 0 {
		c.Scanner.Interval = defaultScanInterval
	}
	if c.Scanner.BatchLimit <= 0 {
		c.Scanner.BatchLimit = defaultScanBatchLimit
	}
	if c.Transfer.MaxRetries <= 0 {
		c.Transfer.MaxRetries = defaultMaxRetries
	}
	if c.Transfer.QueueCapacity <= 0 {
		c.Transfer.QueueCapacity = defaultQueueCapacity
	}
	if c.Reconciler.Interval <= 0 {
		c.Reconciler.Interval = defaultReconcileInterval
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
}

func (c *Config) normalizeCategories() {
	c.Categories.Audio = strings.ToLower(strings.TrimSpace(c.Categories.Audio))
	if c.Categories.Audio == "" {
		c.Categories.Audio = defaultAudioCategory
	}
	c.Categories.PDF = strings.ToLower(strings.TrimSpace(c.Categories.PDF))
	if c.Categories.PDF == "" {
		c.Categories.PDF = defaultPDFCategory
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

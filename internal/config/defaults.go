package config

const (
	defaultDataDir            = "~/.local/share/chanvault"
	defaultStagingDir         = "~/.local/share/chanvault/staging"
	defaultLogDir             = "~/.local/share/chanvault/logs"
	defaultSessionName        = "chanvault"
	defaultBucketPrefix       = "bucket-"
	defaultScanInterval       = 60
	defaultScanBatchLimit     = 500
	defaultMaxRetries         = 3
	defaultQueueCapacity      = 100
	defaultReconcileInterval  = 3600
	defaultNotifyTimeout      = 10
	defaultAudioCategory      = "messages"
	defaultPDFCategory        = "documents"
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Telegram: Telegram{
			SessionName: defaultSessionName,
		},
		Storage: Storage{
			BucketPrefix: defaultBucketPrefix,
		},
		Scanner: Scanner{
			Interval:   defaultScanInterval,
			BatchLimit: defaultScanBatchLimit,
		},
		Transfer: Transfer{
			MaxRetries:    defaultMaxRetries,
			QueueCapacity: defaultQueueCapacity,
		},
		Reconciler: Reconciler{
			Interval: defaultReconcileInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Categories: Categories{
			Audio: defaultAudioCategory,
			PDF:   defaultPDFCategory,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

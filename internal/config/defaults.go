package config

const (
	defaultStagingDir               = "~/.local/share/steeple/staging"
	defaultDataDir                  = "~/.local/share/steeple"
	defaultLogDir                   = "~/.local/share/steeple/logs"
	defaultSourceBaseURL            = "https://www.googleapis.com/drive/v3"
	defaultSourceLinkBase           = "https://drive.google.com"
	defaultSourceListTimeout        = 30
	defaultFetchAttemptTimeout      = 300
	defaultFetchChunkSizeKiB        = 256
	defaultPublishBaseURL           = "https://www.googleapis.com/upload/youtube/v3"
	defaultPublishCategory          = "Education"
	defaultPublishPrivacy           = "public"
	defaultPublishUploadTimeout     = 1800
	defaultErrorRetentionDays       = 7
	defaultProcessingTimeoutMinutes = 120
	defaultNotifyRequestTimeout     = 10
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

func defaultDownloadMirrors() []string {
	return []string{
		"https://drive.google.com/uc?export=download&id=",
		"https://drive.usercontent.google.com/download?export=download&confirm=t&id=",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Source: Source{
			BaseURL:     defaultSourceBaseURL,
			LinkBase:    defaultSourceLinkBase,
			ListTimeout: defaultSourceListTimeout,
		},
		Fetch: Fetch{
			DownloadMirrors: defaultDownloadMirrors(),
			AttemptTimeout:  defaultFetchAttemptTimeout,
			ChunkSizeKiB:    defaultFetchChunkSizeKiB,
		},
		Publish: Publish{
			BaseURL:         defaultPublishBaseURL,
			DefaultCategory: defaultPublishCategory,
			DefaultPrivacy:  defaultPublishPrivacy,
			UploadTimeout:   defaultPublishUploadTimeout,
		},
		Maintenance: Maintenance{
			ErrorRetentionDays:       defaultErrorRetentionDays,
			ProcessingTimeoutMinutes: defaultProcessingTimeoutMinutes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

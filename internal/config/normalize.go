package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.StagingDir, &c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	c.Source.LinkBase = strings.TrimRight(strings.TrimSpace(c.Source.LinkBase), "/")
	c.Source.APIKey = strings.TrimSpace(c.Source.APIKey)
	c.Source.FolderID = strings.TrimSpace(c.Source.FolderID)

	mirrors := make([]string, 0, len(c.Fetch.DownloadMirrors))
	for _, mirror := range c.Fetch.DownloadMirrors {
		if trimmed := strings.TrimSpace(mirror); trimmed != "" {
			mirrors = append(mirrors, trimmed)
		}
	}
	if len(mirrors) == 0 {
		mirrors = defaultDownloadMirrors()
	}
	c.Fetch.DownloadMirrors = mirrors

	c.Publish.BaseURL = strings.TrimRight(strings.TrimSpace(c.Publish.BaseURL), "/")
	c.Publish.APIKey = strings.TrimSpace(c.Publish.APIKey)
	c.Publish.DefaultCategory = strings.TrimSpace(c.Publish.DefaultCategory)
	c.Publish.DefaultPrivacy = strings.ToLower(strings.TrimSpace(c.Publish.DefaultPrivacy))

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Source.ListTimeout <= 0 {
		c.Source.ListTimeout = defaultSourceListTimeout
	}
	if c.Fetch.AttemptTimeout <= 0 {
		c.Fetch.AttemptTimeout = defaultFetchAttemptTimeout
	}
	if c.Fetch.ChunkSizeKiB <= 0 {
		c.Fetch.ChunkSizeKiB = defaultFetchChunkSizeKiB
	}
	if c.Publish.UploadTimeout <= 0 {
		c.Publish.UploadTimeout = defaultPublishUploadTimeout
	}
	if c.Maintenance.ErrorRetentionDays <= 0 {
		c.Maintenance.ErrorRetentionDays = defaultErrorRetentionDays
	}
	if c.Maintenance.ProcessingTimeoutMinutes <= 0 {
		c.Maintenance.ProcessingTimeoutMinutes = defaultProcessingTimeoutMinutes
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	return nil
}

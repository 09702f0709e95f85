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
	c.normalizeJellyfin()
	c.normalizeTiers()
	c.normalizeMover()
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.RemotePrefix = strings.TrimRight(strings.TrimSpace(c.Paths.RemotePrefix), "/")
	c.Paths.LocalPrefix = strings.TrimRight(strings.TrimSpace(c.Paths.LocalPrefix), "/")
	return nil
}

func (c *Config) normalizeJellyfin() {
	if c.Jellyfin.APIKey == "" {
		if value, ok := os.LookupEnv("JELLYFIN_API_KEY"); ok {
			c.Jellyfin.APIKey = value
		}
	}
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)

	ids := make([]string, 0, len(c.Jellyfin.UserIDs))
	for _, id := range c.Jellyfin.UserIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	c.Jellyfin.UserIDs = ids
}

func (c *Config) normalizeTiers() {
	c.Tiers.CacheRoot = strings.TrimRight(strings.TrimSpace(c.Tiers.CacheRoot), "/")
	c.Tiers.BulkRoot = strings.TrimRight(strings.TrimSpace(c.Tiers.BulkRoot), "/")
	c.Tiers.MoviesPool = strings.Trim(strings.TrimSpace(c.Tiers.MoviesPool), "/")
	c.Tiers.TVPool = strings.Trim(strings.TrimSpace(c.Tiers.TVPool), "/")
}

func (c *Config) normalizeMover() {
	if len(c.Mover.SubtitleExtensions) == 0 {
		c.Mover.SubtitleExtensions = defaultSubtitleExtensions()
	}
	exts := make([]string, 0, len(c.Mover.SubtitleExtensions))
	for _, ext := range c.Mover.SubtitleExtensions {
		cleaned := strings.ToLower(strings.TrimSpace(ext))
		if cleaned == "" {
			continue
		}
		if !strings.HasPrefix(cleaned, ".") {
			cleaned = "." + cleaned
		}
		exts = append(exts, cleaned)
	}
	c.Mover.SubtitleExtensions = exts
	c.Mover.MoverPIDFile = strings.TrimSpace(c.Mover.MoverPIDFile)
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = defaultCron
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

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateTiers(); err != nil {
		return err
	}
	if err := c.validateMover(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateJellyfin() error {
	if c.Jellyfin.URL == "" {
		return errors.New("jellyfin.url must be set")
	}
	if !strings.HasPrefix(c.Jellyfin.URL, "http://") && !strings.HasPrefix(c.Jellyfin.URL, "https://") {
		return fmt.Errorf("jellyfin.url must start with http:// or https://, got %q", c.Jellyfin.URL)
	}
	if c.Jellyfin.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tiermover/config.toml"
		}
		return fmt.Errorf("jellyfin.api_key is required. Set JELLYFIN_API_KEY env var or edit %s (create with 'tiermover config init')", defaultPath)
	}
	if !isHex32(c.Jellyfin.APIKey) {
		return fmt.Errorf("jellyfin.api_key must be a 32-character hexadecimal string, got %d characters", len(c.Jellyfin.APIKey))
	}
	if len(c.Jellyfin.UserIDs) == 0 {
		return errors.New("jellyfin.user_ids must list at least one user")
	}
	for _, id := range c.Jellyfin.UserIDs {
		if !isHex32(NormalizeUserID(id)) {
			return fmt.Errorf("jellyfin.user_ids entry %q is not a 32-character hexadecimal ID", id)
		}
	}
	return nil
}

func (c *Config) validateTiers() error {
	if c.Tiers.CacheRoot == "" {
		return errors.New("tiers.cache_root must be set")
	}
	if c.Tiers.BulkRoot == "" {
		return errors.New("tiers.bulk_root must be set")
	}
	if c.Tiers.CacheRoot == c.Tiers.BulkRoot {
		return errors.New("tiers.cache_root and tiers.bulk_root must differ")
	}
	if c.Tiers.MoviesPool == "" {
		return errors.New("tiers.movies_pool must be set")
	}
	if c.Tiers.TVPool == "" {
		return errors.New("tiers.tv_pool must be set")
	}
	return nil
}

func (c *Config) validateMover() error {
	if c.Mover.ThresholdPercent < 1 || c.Mover.ThresholdPercent > 99 {
		return fmt.Errorf("mover.threshold_percent must be between 1 and 99, got %d", c.Mover.ThresholdPercent)
	}
	return nil
}

func isHex32(value string) bool {
	if len(value) != 32 {
		return false
	}
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

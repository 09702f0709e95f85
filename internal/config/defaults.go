package config

const (
	defaultJellyfinURL  = "http://localhost:8096"
	defaultCacheRoot    = "/mnt/cache"
	defaultBulkRoot     = "/mnt/disk1"
	defaultMoviesPool   = "movies-pool"
	defaultTVPool       = "tv-pool"
	defaultRemotePrefix = "/media/media"
	defaultLocalPrefix  = "/mnt/cache/media"
	defaultLogDir       = "~/.local/share/tiermover/logs"
	defaultThreshold    = 90
	defaultMoverPIDFile = "/var/run/mover.pid"
	defaultCron         = "0 */6 * * *"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

func defaultSubtitleExtensions() []string {
	return []string{".srt", ".sub", ".ass", ".ssa", ".vtt", ".idx"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Jellyfin: Jellyfin{
			URL: defaultJellyfinURL,
		},
		Tiers: Tiers{
			CacheRoot:  defaultCacheRoot,
			BulkRoot:   defaultBulkRoot,
			MoviesPool: defaultMoviesPool,
			TVPool:     defaultTVPool,
		},
		Paths: Paths{
			RemotePrefix: defaultRemotePrefix,
			LocalPrefix:  defaultLocalPrefix,
			LogDir:       defaultLogDir,
		},
		Mover: Mover{
			ThresholdPercent:   defaultThreshold,
			DryRun:             true,
			SubtitleExtensions: defaultSubtitleExtensions(),
			MoverPIDFile:       defaultMoverPIDFile,
		},
		Schedule: Schedule{
			Cron: defaultCron,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

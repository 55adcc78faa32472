package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("WASTEDAY_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if lockTimeout := os.Getenv("WASTEDAY_DB_LOCK_TIMEOUT"); lockTimeout != "" {
		if d, err := time.ParseDuration(lockTimeout); err == nil && d >= 0 {
			cfg.Database.LockTimeout = d
		}
	}

	// Web configuration
	if webHost := os.Getenv("WASTEDAY_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("WASTEDAY_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}

	// Retention configuration
	if days := os.Getenv("WASTEDAY_RETENTION_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			cfg.Retention.MaxAge = time.Duration(n) * 24 * time.Hour
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("WASTEDAY_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Log configuration
	if level := os.Getenv("WASTEDAY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if logFile, ok := os.LookupEnv("WASTEDAY_LOG_FILE"); ok {
		cfg.Log.File = logFile
	}
}

// New creates a Config from defaults, the config file if present, and the
// environment, in that order of increasing precedence.
func New() (*Config, error) {
	cfg := Default()

	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	if err := LoadFile(cfg, path); err != nil {
		return nil, err
	}

	LoadFromEnv(cfg)
	return cfg, nil
}

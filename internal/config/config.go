package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Web server configuration
	Web WebConfig `yaml:"web"`

	// Launch classification configuration
	Launch LaunchConfig `yaml:"launch"`

	// Session retention configuration
	Retention RetentionConfig `yaml:"retention"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Log configuration
	Log LogConfig `yaml:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path        string        `yaml:"path"`         // Path to SQLite database file
	LockTimeout time.Duration `yaml:"lock_timeout"` // Zero waits indefinitely for the connection
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `yaml:"host"` // Host to bind web server to
	Port int    `yaml:"port"` // Port for web server
}

// LaunchConfig decides what counts as a background launch.
type LaunchConfig struct {
	AutostartArgs []string `yaml:"autostart_args"` // Substrings that mark an argument as a background flag
	AutostartEnv  string   `yaml:"autostart_env"`  // Presence of this variable marks a background launch
}

// RetentionConfig holds old-session cleanup configuration
type RetentionConfig struct {
	MaxAge   time.Duration `yaml:"max_age"`  // Zero disables cleanup
	Schedule string        `yaml:"schedule"` // Cron expression
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"` // Path to PID file written by `wasteday run`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`    // JSON log file; empty disables file logging
	Console bool   `yaml:"console"` // Human-readable output on stderr
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/wasteday/wasteday.db
		},
		Web: WebConfig{
			Host: "localhost",
			Port: userPort(os.Getuid()), // Per-user port so several users can run side by side
		},
		Launch: LaunchConfig{
			AutostartArgs: []string{"--autostart", "--hidden"},
			AutostartEnv:  "WASTEDAY_AUTOSTART",
		},
		Retention: RetentionConfig{
			MaxAge:   0,
			Schedule: "@daily",
		},
		Daemon: DaemonConfig{
			PIDFile: filepath.Join(os.TempDir(), pidFileName(os.Getuid())),
		},
		Log: LogConfig{
			Level:   "info",
			File:    filepath.Join(os.TempDir(), "wasteday", "wasteday.log"),
			Console: true,
		},
	}
}

// fallbackPort is used when the uid cannot yield a valid per-user port.
const fallbackPort = 10000

// userPort derives the per-user web port. Negative uids (Windows) and uids
// that would overflow the port range get fallbackPort.
func userPort(uid int) int {
	if uid < 0 || fallbackPort+uid > 65535 {
		return fallbackPort
	}
	return fallbackPort + uid
}

func pidFileName(uid int) string {
	if uid < 0 {
		return "wasteday.pid"
	}
	return fmt.Sprintf("wasteday-%d.pid", uid)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.LockTimeout < 0 {
		return fmt.Errorf("database lock timeout cannot be negative")
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Retention.MaxAge < 0 {
		return fmt.Errorf("retention max age cannot be negative")
	}

	if c.Retention.MaxAge > 0 && c.Retention.Schedule == "" {
		return fmt.Errorf("retention schedule cannot be empty when max age is set")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// SetRetentionDays enables cleanup of sessions older than days. Zero
// disables it.
func (c *Config) SetRetentionDays(days int) error {
	if days < 0 {
		return fmt.Errorf("retention days cannot be negative, got %d", days)
	}
	c.Retention.MaxAge = time.Duration(days) * 24 * time.Hour
	return nil
}

// WebAddr returns the host:port the web server listens on.
func (c *Config) WebAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
    Lock Timeout: %v
  Web:
    Host: %s
    Port: %d
  Launch:
    Autostart Args: %v
    Autostart Env: %s
  Retention:
    Max Age: %v
    Schedule: %s
  Daemon:
    PID File: %s
  Log:
    Level: %s
    File: %s
    Console: %v`,
		c.Database.Path,
		c.Database.LockTimeout,
		c.Web.Host,
		c.Web.Port,
		c.Launch.AutostartArgs,
		c.Launch.AutostartEnv,
		c.Retention.MaxAge,
		c.Retention.Schedule,
		c.Daemon.PIDFile,
		c.Log.Level,
		c.Log.File,
		c.Log.Console,
	)
}

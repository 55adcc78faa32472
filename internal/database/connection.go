package database

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "wasteday.db"
	defaultDBDir  = ".config/wasteday"

	// timeLayout is UTC ISO-8601 with millisecond precision. Fixed width, so
	// string order is chronological order.
	timeLayout = "2006-01-02T15:04:05.000Z"
)

// Store owns the database file and its only connection. All methods are
// safe for concurrent use; they execute one at a time.
type Store struct {
	db          *gorm.DB
	lock        *connLock
	now         func() time.Time
	path        string
	lockTimeout time.Duration
}

// Option configures a Store at Open.
type Option func(*Store)

// WithLockTimeout bounds how long an operation waits for the connection.
// Zero, the default, waits indefinitely.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithClock replaces the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func GetDefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(homeDir, defaultDBDir, defaultDBName), nil
}

// Open opens or creates the database at dbPath, creating parent directories,
// and applies the schema. An empty path selects GetDefaultDBPath.
func Open(dbPath string, opts ...Option) (*Store, error) {
	const op = "Open"

	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return nil, newError(IoFailure, op, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, newError(IoFailure, op, errors.Wrap(err, "failed to create database directory"))
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, newError(IoFailure, op, errors.Wrap(err, "failed to open database"))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, newError(IoFailure, op, errors.Wrap(err, "failed to get underlying sql.DB"))
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, newError(IoFailure, op, errors.Wrap(err, "failed to ping database"))
	}

	s := &Store{
		db:   db,
		now:  time.Now,
		path: dbPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lock = newConnLock(s.lockTimeout)

	if err := s.initialize(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return s, nil
}

func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_busy_timeout=5000&_foreign_keys=on"
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close waits for any in-flight operation and closes the connection.
func (s *Store) Close() error {
	s.lock.slot <- struct{}{}
	defer s.lock.release()

	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

func (s *Store) timestamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatBound formats a query bound rounded up to the next millisecond, so
// comparisons against millisecond-precision rows keep their exact meaning.
func formatBound(t time.Time) string {
	if rem := t.Sub(t.Truncate(time.Millisecond)); rem > 0 {
		t = t.Add(time.Millisecond - rem)
	}
	return formatTime(t)
}

// storable reports whether t formats as a four-digit year timestamp.
func storable(t time.Time) bool {
	year := t.UTC().Year()
	return year >= 0 && year <= 9999
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", value)
	}
	return t.UTC(), nil
}

package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ecoblock/ecoblock/src/common"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the node's
	// private key
	DefaultKeyfile = "priv_key"

	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultBoltFile is the default name of the bbolt database file
	DefaultBoltFile = "tangle.db"

	// DefaultSnapshotFile is the default name of the JSON snapshot used by the
	// in-memory store
	DefaultSnapshotFile = "tangle.json"

	// DefaultLogFile is the default name of the log file
	DefaultLogFile = "ecoblock.log"
)

// Store types.
const (
	InmemStore  = "inmem"
	BadgerStore = "badger"
	BoltStore   = "bolt"
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultStore         = InmemStore
	DefaultAllowUnsigned = false
)

// Config contains all the configuration properties of an ecoblock node.
type Config struct {
	// DataDir is the top-level directory containing ecoblock configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// Store selects the block store: inmem, badger or bolt. The inmem store is
	// loaded from, and saved to, the snapshot file.
	Store string `mapstructure:"store"`

	// DatabaseDir is the path of the badger directory or of the bolt file. When
	// empty, a default location inside DataDir is used.
	DatabaseDir string `mapstructure:"db"`

	// AllowUnsigned lets the Tangle accept blocks without a signature.
	AllowUnsigned bool `mapstructure:"allow-unsigned"`

	// Snapshot is the path of the JSON snapshot file. When empty, tangle.json
	// inside DataDir is used.
	Snapshot string `mapstructure:"snapshot"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:       DefaultDataDir(),
		LogLevel:      DefaultLogLevel,
		Store:         DefaultStore,
		AllowUnsigned: DefaultAllowUnsigned,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// LogFile returns the full path of the log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, DefaultLogFile)
}

// SnapshotFile returns the path of the JSON snapshot.
func (c *Config) SnapshotFile() string {
	if c.Snapshot != "" {
		return c.Snapshot
	}
	return filepath.Join(c.DataDir, DefaultSnapshotFile)
}

// DatabasePath returns the path of the database for the configured store
// type.
func (c *Config) DatabasePath() string {
	if c.DatabaseDir != "" {
		return c.DatabaseDir
	}
	switch c.Store {
	case BoltStore:
		return filepath.Join(c.DataDir, DefaultBoltFile)
	default:
		return filepath.Join(c.DataDir, DefaultBadgerFile)
	}
}

// Logger returns a formatted logrus Entry, with prefix set to "ecoblock".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "ecoblock")
}

// BaseLogger returns the underlying logrus Logger, so that hooks can be added
// to it.
func (c *Config) BaseLogger() *logrus.Logger {
	c.Logger()
	return c.logger
}

// DefaultDataDir return the default directory name for top-level ecoblock
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Ecoblock")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Ecoblock")
		} else {
			return filepath.Join(home, ".ecoblock")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}

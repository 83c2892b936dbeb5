// Package logging sets up the logrus logger used by the native tools and
// bridges the firmware debug hook into it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"kegboard/core"
)

// Config controls log level, format and file rotation
type Config struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // "text" or "json"
	FilePath      string `yaml:"file_path"`
	MaxSizeMB     int    `yaml:"max_size_mb"`
	MaxBackups    int    `yaml:"max_backups"`
	MaxAgeDays    int    `yaml:"max_age_days"`
	Compress      bool   `yaml:"compress"`
	EnableConsole bool   `yaml:"enable_console"`
	LogHexDump    bool   `yaml:"log_hex_dump"`
}

// DefaultConfig logs text at info level to the console
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		Format:        "text",
		MaxSizeMB:     10,
		MaxBackups:    3,
		MaxAgeDays:    7,
		EnableConsole: true,
	}
}

var (
	log        = logrus.New()
	logHexDump bool
)

// Init configures the global logger
func Init(cfg *Config) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %s, %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	}

	var writers []io.Writer
	if cfg.EnableConsole || cfg.FilePath == "" {
		writers = append(writers, os.Stderr)
	}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))

	logHexDump = cfg.LogHexDump
	return nil
}

// GetLogger returns the global logger
func GetLogger() *logrus.Logger {
	return log
}

// WithField adds a field to a log entry
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

// WithFields adds several fields to a log entry
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// HexDump logs raw bytes at debug level when hex dumps are enabled
func HexDump(message string, data []byte) {
	if logHexDump && log.IsLevelEnabled(logrus.DebugLevel) {
		log.WithField("hex_data", fmt.Sprintf("%X", data)).Debug(message)
	}
}

// InstallDebugWriter routes core.DebugPrintln output to the logger at
// debug level and enables it when that level is active
func InstallDebugWriter() {
	core.SetDebugWriter(func(s string) {
		log.WithField("source", "firmware").Debug(s)
	})
	core.SetDebugEnabled(log.IsLevelEnabled(logrus.DebugLevel))
}

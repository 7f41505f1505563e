package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"travelapp/internal/config"
)

// Error classes attached as the "error_class" field so that alerting can
// tell failure families apart.
const (
	ClassNotificationEnqueue  = "notification_enqueue_failed"
	ClassNotificationDelivery = "notification_delivery_failed"
	ClassInternal             = "internal"
)

// New builds a logrus logger from the logging section. File output is
// rotated by lumberjack.
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var out io.Writer
	switch cfg.Output {
	case "file":
		out, err = fileWriter(cfg)
	case "both":
		var fw io.Writer
		fw, err = fileWriter(cfg)
		out = io.MultiWriter(os.Stdout, fw)
	default:
		out = os.Stdout
	}
	if err != nil {
		return nil, err
	}
	log.SetOutput(out)
	return log, nil
}

func fileWriter(cfg config.LoggingConfig) (io.Writer, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("logging.file_path is required for file output")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}

// Discard returns a logger that drops everything. Used by tests and tools.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

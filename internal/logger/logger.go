package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Setup initializes Logrus to write to stdout and a rotating file. The returned
// writer is shared with the HTTP access log.
func Setup(file, level string) io.Writer {
	// Lumberjack for file rotation
	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 7,  // keep up to 7 old files
		MaxAge:     7,  // days
		Compress:   true,
	}

	out := io.MultiWriter(os.Stdout, rotator)
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	return out
}

// GormLogger returns a GORM logger that prints through the standard Logrus logger.
// SQL statements are only logged when debug is on.
func GormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

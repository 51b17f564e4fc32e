package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/common/env"
	"github.com/taskdeck/taskdeck/common/reporting"
	"github.com/taskdeck/taskdeck/internal"
)

const defaultLogLevel = "info"

var (
	initMutex   sync.Mutex
	initialized bool
)

// Init initializes the common components of the application: the data and log
// directories, the default logger, and crash reporting.
func Init(dataDir, logDir, logLevel string) error {
	initMutex.Lock()
	defer initMutex.Unlock()
	if initialized {
		return nil
	}

	reporting.Init(app.Version)
	dataDir, logDir, err := SetupDirectories(dataDir, logDir)
	if err != nil {
		return fmt.Errorf("failed to setup directories: %w", err)
	}

	if err := initLogger(filepath.Join(logDir, app.LogFileName), logLevel); err != nil {
		return fmt.Errorf("initialize log: %w", err)
	}
	initialized = true
	return nil
}

// initLogger reconfigures the default slog.Logger to write to stdout and a
// rotating log file. The log level is determined first by the environment
// variable if set and valid, then by the provided level, then the default.
func initLogger(logPath, level string) error {
	lvl, _ := internal.ParseLogLevel(defaultLogLevel)
	if level != "" {
		parsed, err := internal.ParseLogLevel(level)
		if err != nil {
			slog.Warn("Failed to parse given log level", "error", err)
		} else {
			lvl = parsed
		}
	}
	if envLvl, ok := env.Get[string](env.LogLevel); ok {
		parsed, err := internal.ParseLogLevel(envLvl)
		if err != nil {
			slog.Warn("Failed to parse "+env.LogLevel, "error", err)
		} else {
			lvl = parsed
		}
	}
	fileWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}
	logWriter := io.MultiWriter(os.Stdout, fileWriter)
	slog.SetDefault(internal.NewLogger(logWriter, lvl))
	return nil
}

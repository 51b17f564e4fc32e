// Package env reads process-level configuration overrides from a .env file
// and from the environment, with the environment taking precedence.
package env

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

type Key = string

const (
	LogLevel Key = "TASKDECK_LOG_LEVEL"
	LogPath  Key = "TASKDECK_LOG_PATH"
	DataPath Key = "TASKDECK_DATA_PATH"
	APIURL   Key = "TASKDECK_API_URL"
	WebURL   Key = "TASKDECK_WEB_URL"
)

var envVars = map[string]any{}

func init() {
	buf, err := os.ReadFile(".env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error(".env file found, but failed to read", slog.Any("error", err))
	} else if err == nil {
		for _, line := range strings.Split(string(buf), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				envVars[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
	}

	// environment variables override values from the .env file
	for _, key := range []string{LogLevel, LogPath, DataPath, APIURL, WebURL} {
		if value, exists := os.LookupEnv(key); exists {
			envVars[key] = value
		}
	}
}

func Get[T any](key Key) (T, bool) {
	if value, exists := envVars[key]; exists {
		if v, ok := value.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

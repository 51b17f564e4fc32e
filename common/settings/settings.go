// Package settings stores local application state in a JSON file shared by
// the daemon and the embedded UI process. The daemon writes; the UI process
// opens the file read-only and reloads it when it changes on disk.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/taskdeck/taskdeck/common/atomicfile"
	"github.com/taskdeck/taskdeck/internal"
)

// Keys for various settings.
const (
	LocaleKey       = "locale"
	DeviceIDKey     = "device_id"
	DataPathKey     = "data_path"
	LogLevelKey     = "log_level"
	EmailKey        = "email"
	UserIDKey       = "user_id"
	SessionTokenKey = "session_token"
	SessionExpiry   = "session_expiry"
	filePathKey     = "file_path"

	settingsFileName = "local.json"
)

type settings struct {
	k           *koanf.Koanf
	parser      koanf.Parser
	readOnly    atomic.Bool
	initialized atomic.Bool
	watcher     *internal.FileWatcher
}

var k = &settings{
	k:      koanf.New("."),
	parser: json.Parser(),
}

var ErrReadOnly = errors.New("read-only")

// InitSettings initializes the settings store backed by a file in dataDir,
// creating the file with defaults on first run.
func InitSettings(dataDir string) error {
	if k.initialized.Swap(true) {
		return nil
	}
	if err := initialize(dataDir); err != nil {
		k.initialized.Store(false)
		return fmt.Errorf("initializing settings: %w", err)
	}
	return nil
}

func initialize(dataDir string) error {
	k.k = koanf.New(".")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	filePath := filepath.Join(dataDir, settingsFileName)
	if raw, err := atomicfile.ReadFile(filePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error loading settings file: %w", err)
		}
		if err := setDefaults(filePath); err != nil {
			return fmt.Errorf("error setting defaults: %w", err)
		}
	} else {
		if err := k.k.Load(rawbytes.Provider(raw), k.parser); err != nil {
			return fmt.Errorf("error parsing settings file: %w", err)
		}
		// the file may have been moved along with the data directory
		if err := Set(filePathKey, filePath); err != nil {
			return err
		}
	}
	return Set(DataPathKey, dataDir)
}

func setDefaults(filePath string) error {
	// The file path must be set first, the save function needs it.
	if err := Set(filePathKey, filePath); err != nil {
		return fmt.Errorf("failed to set file path: %w", err)
	}
	if err := Set(LocaleKey, "en-US"); err != nil {
		return fmt.Errorf("failed to set default locale: %w", err)
	}
	return nil
}

// InitReadOnly initializes the settings in read-only mode from the given
// directory. It does not create a file if one does not exist. If watchFile is
// true, changes to the file on disk are reloaded automatically.
func InitReadOnly(fileDir string, watchFile bool) (err error) {
	if k.initialized.Swap(true) {
		return nil
	}
	defer func() {
		if err != nil {
			k.initialized.Store(false)
		}
	}()
	k.readOnly.Store(true)
	path := filepath.Join(fileDir, settingsFileName)
	if err := reloadSettings(path); err != nil {
		return fmt.Errorf("initializing read-only settings: %w", err)
	}
	if watchFile {
		watcher := internal.NewFileWatcher(path, func() {
			if err := reloadSettings(path); err != nil {
				slog.Error("reloading settings file", "error", err)
			}
		})
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("starting settings file watcher: %w", err)
		}
		k.watcher = watcher
	}
	return nil
}

func reloadSettings(path string) error {
	contents, err := atomicfile.ReadFile(path)
	if err != nil { // including os.ErrNotExist as we only want read-only here
		return fmt.Errorf("loading settings (read-only): %w", err)
	}
	kk := koanf.New(".")
	if err := kk.Load(rawbytes.Provider(contents), k.parser); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}
	k.k = kk
	return nil
}

// StopWatching stops watching the settings file for changes. Only relevant in
// read-only mode.
func StopWatching() {
	if k.initialized.Load() && k.watcher != nil {
		k.watcher.Close()
	}
}

func Get(key string) any {
	return k.k.Get(key)
}

func GetString(key string) string {
	return k.k.String(key)
}

func GetBool(key string) bool {
	return k.k.Bool(key)
}

func GetInt64(key string) int64 {
	return k.k.Int64(key)
}

func GetDuration(key string) time.Duration {
	return k.k.Duration(key)
}

func GetTime(key string, layout string) time.Time {
	return k.k.Time(key, layout)
}

func GetStruct(key string, out any) error {
	return k.k.Unmarshal(key, out)
}

func Set(key string, value any) error {
	if k.readOnly.Load() {
		return ErrReadOnly
	}
	if err := k.k.Set(key, value); err != nil {
		return fmt.Errorf("could not set key %s: %w", key, err)
	}
	return save()
}

// Delete removes keys from the settings and persists the result.
func Delete(keys ...string) error {
	if k.readOnly.Load() {
		return ErrReadOnly
	}
	for _, key := range keys {
		k.k.Delete(key)
	}
	return save()
}

func save() error {
	if k.readOnly.Load() {
		return ErrReadOnly
	}
	path := GetString(filePathKey)
	if path == "" {
		return errors.New("settings file path is not set")
	}
	out, err := k.k.Marshal(k.parser)
	if err != nil {
		return fmt.Errorf("could not marshal settings: %w", err)
	}
	return atomicfile.WriteFile(path, out, 0600)
}

// Package deviceid assigns a stable identifier to this installation. The ID
// is generated once and persisted in the data directory.
package deviceid

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/common/atomicfile"
)

const fileName = ".deviceid"

// Get returns the device ID for this installation, creating one on first run.
// If the ID cannot be persisted, a fresh one is returned and regenerated on
// the next run; callers should treat it as best effort.
func Get(dataDir string) string {
	path := filepath.Join(dataDir, fileName)
	if buf, err := atomicfile.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(buf))
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
		slog.Warn("Invalid device ID on disk, regenerating", "path", path)
	} else if !os.IsNotExist(err) {
		slog.Warn("Failed to read device ID", "path", path, "error", err)
	}

	id := uuid.NewString()
	if err := atomicfile.WriteFile(path, []byte(id), 0600); err != nil {
		slog.Error("Failed to persist device ID", "path", path, "error", err)
	}
	return id
}

package queue

import (
	"path/filepath"
	"strings"

	"hitqueue/internal/textutil"
)

// PathForName returns the database file for a logical queue name rooted at dir.
// Names are normalized so "Hits" and " hits " share one file.
func PathForName(dir, name string) string {
	dir = strings.TrimSpace(dir)
	return filepath.Join(dir, textutil.SanitizeToken(name)+".db")
}

func sidecarPaths(dbPath string) []string {
	return []string{dbPath, dbPath + "-wal", dbPath + "-shm", dbPath + "-journal"}
}

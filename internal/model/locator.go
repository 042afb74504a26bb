package model

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// remoteRepoPrefix is the hub namespace used for auto-download when
	// a model is not cached locally.
	remoteRepoPrefix = "mlx-community/"

	// snapshotsDirName is the nested directory layout produced by the
	// hub's download cache.
	snapshotsDirName = "snapshots"

	hiddenPrefix = "."
)

// SmartPath resolves a model folder name to something the external
// loader accepts: a local snapshot path when the model is cached under
// modelsDir, the folder itself when no snapshot layout is present, or
// a remote repository identifier when the folder is absent entirely.
//
// The path is not validated beyond existence; a broken local model
// surfaces only when the external loader rejects it.
func SmartPath(modelsDir, folderName string) string {
	fullPath := filepath.Join(modelsDir, folderName)

	_, statErr := os.Stat(fullPath)
	if statErr != nil {
		return remoteRepoPrefix + folderName
	}

	snapshotsDir := filepath.Join(fullPath, snapshotsDirName)

	entries, readErr := os.ReadDir(snapshotsDir)
	if readErr != nil {
		return fullPath
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), hiddenPrefix) {
			continue
		}

		return filepath.Join(snapshotsDir, entry.Name())
	}

	return fullPath
}

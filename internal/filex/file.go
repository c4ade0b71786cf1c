// Package filex holds file-system helpers for the client's private data
// directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// PrivateDirPerm is the mode of directories holding the vault and the
// device secret.
const PrivateDirPerm os.FileMode = 0o700

// EnsureParentDir creates the directory that will contain path. A path in
// the working directory needs nothing.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return dir, nil
	}

	if err := os.MkdirAll(dir, PrivateDirPerm); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

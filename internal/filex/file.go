// Package filex manages the scratch directory multipart uploads are spooled to.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureDir creates dir if needed and returns its absolute path. Relative
// paths resolve against the working directory.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// SpoolPath returns a fresh path inside dir that keeps the extension of original.
func SpoolPath(dir, original string) string {
	return filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(original)))
}

// Discard removes a spooled file; a file that is already gone is not an error.
func Discard(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

package fs

import (
	"fmt"
	"os"
)

// EnsureDir creates the directory at the given path, along with any missing
// parent, with owner-only permissions. It is a no-op when the directory
// already exists.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("couldn't create directory at %s: %w", path, err)
	}
	return nil
}

// PathExists reports whether something exists at the given path, regardless
// of it being a file or a directory.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FileExists reports whether a regular file exists at the given path. It
// fails when the path points to a directory, as callers use it to decide
// whether a file can be read.
func FileExists(path string) (bool, error) {
	stats, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if stats.IsDir() {
		return false, fmt.Errorf("path %s is a directory, not a file", path)
	}
	return true, nil
}

// ReadFile reads the whole file at the given path.
func ReadFile(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read file at %s: %w", path, err)
	}
	return buf, nil
}

// WriteFile writes the data at the given path with owner-only permissions,
// truncating any previous content.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("couldn't write file at %s: %w", path, err)
	}
	return nil
}

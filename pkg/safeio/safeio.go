package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeName replaces every character outside [a-zA-Z0-9._-] with '_'.
// Callers append a suffix before using the result as a path element.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// ReadFileContained reads a file only if it is contained within baseDir.
// This prevents path traversal attacks by ensuring the file path resolves
// to a location within the specified base directory.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	filePathAbs, err := containedPath(baseDir, filePath)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- filePathAbs has been verified to be contained within baseDir
	return os.ReadFile(filePathAbs)
}

// WriteFileContained writes data to filePath with owner-only permissions,
// refusing paths that escape baseDir.
func WriteFileContained(baseDir, filePath string, data []byte) error {
	filePathAbs, err := containedPath(baseDir, filePath)
	if err != nil {
		return err
	}
	return os.WriteFile(filePathAbs, data, 0o600)
}

func containedPath(baseDir, filePath string) (string, error) {
	baseDirAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.New("failed to resolve base directory")
	}
	filePathAbs, err := filepath.Abs(filePath)
	if err != nil {
		return "", errors.New("failed to resolve file path")
	}

	rel, err := filepath.Rel(baseDirAbs, filePathAbs)
	if err != nil {
		return "", errors.New("failed to compute relative path")
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("file path %s is outside base directory %s", filePath, baseDir)
	}
	return filePathAbs, nil
}

// Package security guards the file paths the CLI writes exports to.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscapesDirectory is returned when a path resolves outside its base directory.
var ErrPathEscapesDirectory = errors.New("path escapes directory")

// canonical resolves symlinks in p. When p does not exist yet, the nearest
// existing ancestor is resolved and the missing tail re-joined, so a new file
// under a symlinked directory is judged by where it will really land.
func canonical(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rel, _ := filepath.Rel(dir, p)
			return filepath.Join(resolved, rel)
		}
		if filepath.Dir(dir) == dir {
			return p
		}
	}
}

// ValidatePathWithinDirectory returns ErrPathEscapesDirectory if filePath,
// after cleaning and symlink resolution, is not inside baseDir.
func ValidatePathWithinDirectory(filePath, baseDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	base, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(base, canonical(absPath))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPathEscapesDirectory, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathEscapesDirectory, filePath, baseDir)
	}
	return nil
}

// SanitizeFilename turns a recording ID into a safe file name component.
// Runs of characters other than ASCII letters, digits, dot, underscore and
// dash become a single underscore. The result is at most 128 bytes and never
// empty.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

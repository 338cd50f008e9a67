package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalidFileName is returned for names with nothing left after stripping.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName strips any directory part, so traversal segments never
// survive. The result is only ever displayed, never used as a path.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	s = filepath.Base(s)
	if s == "" || s == "." || s == ".." || s == "/" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

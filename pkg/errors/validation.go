package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameLength bounds display names in runes.
const maxNameLength = 256

// ValidateName validates a collaborator display name.
//
// The rules are intentionally small:
//   - No empty or whitespace-only names
//   - Valid UTF-8
//   - No control characters
//   - Maximum length of 256 runes
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "display name cannot be empty")
	}
	if !utf8.ValidString(name) {
		return New(ErrCodeInvalidName, "display name is not valid UTF-8")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return New(ErrCodeInvalidName, "display name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "display name contains invalid control characters")
		}
	}
	return nil
}

// ValidateImageSource validates an image source reference.
// An empty source is valid and means "no image". Otherwise the source must be
// an http(s) URL, a data: URI, or a local file path without traversal.
// Local paths may be absolute since group files resolve relative images
// against their own directory.
func ValidateImageSource(src string) error {
	if src == "" {
		return nil
	}
	for _, r := range src {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "image source contains invalid characters")
		}
	}
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return nil
	case strings.HasPrefix(src, "data:image/"):
		return nil
	case strings.Contains(src, "://"):
		return New(ErrCodeInvalidInput, "image source must use http or https scheme")
	}
	return ValidatePath(strings.TrimLeft(src, "/"))
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

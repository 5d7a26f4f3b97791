package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates a catalog type or parameter name.
// Names become TOML keys in the emitted document, so they must be non-empty,
// free of control characters and no longer than 128 characters. Names that are
// not bare TOML keys are still accepted; the emitter quotes them.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name %q contains invalid control characters", name)
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidName, "name %q has leading or trailing whitespace", name)
	}

	return nil
}

// ValidateLabel validates a node or edge label entered in the editor.
// Labels may be empty (an unlabeled edge is legal) but must not contain
// newlines or other control characters, since they are emitted as single-line
// TOML strings.
func ValidateLabel(label string) error {
	if len(label) > 512 {
		return New(ErrCodeInvalidInput, "label too long (max 512 characters)")
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates an output or input file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

package errors

import (
	"strings"
	"unicode"
)

const maxIDLength = 256

// ValidateID validates a diagram or element id supplied by a caller.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators (ids end up in cache keys and URLs)
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s id %q contains whitespace or control characters", kind, id)
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "%s id %q cannot contain path separators", kind, id)
	}
	return nil
}

// ValidateIDs validates a list of element ids and rejects duplicates.
func ValidateIDs(kind string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := ValidateID(kind, id); err != nil {
			return err
		}
		if seen[id] {
			return New(ErrCodeInvalidInput, "%s id %q listed twice", kind, id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateGridPitch validates a grid snapping pitch in pixels.
// Zero disables snapping.
func ValidateGridPitch(pitch int) error {
	if pitch < 0 {
		return New(ErrCodeInvalidInput, "grid pitch must not be negative, got %d", pitch)
	}
	if pitch > 200 {
		return New(ErrCodeInvalidInput, "grid pitch too large (max 200), got %d", pitch)
	}
	return nil
}

// ValidateSize validates the width and height of a shape set by a caller.
func ValidateSize(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return New(ErrCodeInvalidInput, "shape size must be positive, got %gx%g", width, height)
	}
	return nil
}

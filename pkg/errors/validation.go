package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits for user-supplied text.
const (
	MaxWordLength        = 64
	MaxNetworkNameLength = 80
	MaxDirectionLength   = 200
	MaxIDLength          = 128
)

// ValidateWord validates a concept word typed by the user.
//
// The validation rules are intentionally lenient, since words may be phrases
// in any script:
//   - Not empty after trimming whitespace
//   - No control characters
//   - Maximum length of MaxWordLength runes
func ValidateWord(word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return New(ErrCodeInvalidWord, "word cannot be empty")
	}
	if utf8.RuneCountInString(word) > MaxWordLength {
		return New(ErrCodeInvalidWord, "word too long (max %d characters)", MaxWordLength)
	}
	if hasControl(word) {
		return New(ErrCodeInvalidWord, "word contains invalid control characters")
	}
	return nil
}

// ValidateNetworkName validates a network display name.
func ValidateNetworkName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeInvalidNetwork, "network name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNetworkNameLength {
		return New(ErrCodeInvalidNetwork, "network name too long (max %d characters)", MaxNetworkNameLength)
	}
	if hasControl(name) {
		return New(ErrCodeInvalidNetwork, "network name contains invalid control characters")
	}
	return nil
}

// ValidateDirection validates the optional steering hint for an expansion.
// An empty direction is valid.
func ValidateDirection(direction string) error {
	if utf8.RuneCountInString(direction) > MaxDirectionLength {
		return New(ErrCodeInvalidDirection, "direction too long (max %d characters)", MaxDirectionLength)
	}
	if hasControl(direction) {
		return New(ErrCodeInvalidDirection, "direction contains invalid control characters")
	}
	return nil
}

// ValidateID validates a node or network id received from outside, such as
// an HTTP path segment. It rejects path separators so ids can never escape a
// storage directory.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", MaxIDLength)
	}
	if hasControl(id) || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "id contains invalid characters")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

package common

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxFilenameLength = 255
	maxTextLength     = 5000
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)

func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return NewValidationError("username", "must be between 3 and 50 characters")
	}

	if !usernameRegex.MatchString(username) {
		return NewValidationError("username", "can only contain letters, numbers, dots, dashes and underscores")
	}

	return nil
}

// ValidateCredential only checks presence; the credential is opaque here.
func ValidateCredential(credential string) error {
	if credential == "" {
		return NewValidationError("credential", "is required")
	}
	return nil
}

// ValidateText checks a required free-text field such as a comment or a
// chat message.
func ValidateText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError(field, "is required")
	}
	if len(text) > maxTextLength {
		return NewValidationError(field, "is too long")
	}
	return nil
}

// ValidateDescription allows an empty caption but caps its length.
func ValidateDescription(description string) error {
	if len(description) > maxTextLength {
		return NewValidationError("description", "is too long")
	}
	return nil
}

// SanitizeFilename trims a client supplied filename and rejects anything
// that could escape a directory or break display: separators, parent
// references, control characters and dot-only names.
func SanitizeFilename(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return "", NewValidationError("filename", "is required")
	}
	if len(name) > maxFilenameLength {
		return "", NewValidationError("filename", "is too long")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", NewValidationError("filename", "must not contain path segments")
	}
	if strings.Trim(name, ".") == "" {
		return "", NewValidationError("filename", "must not be dots only")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", NewValidationError("filename", "must not contain control characters")
		}
	}
	return name, nil
}

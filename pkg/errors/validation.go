package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxNameLength bounds project names accepted from import files and API queries.
const maxNameLength = 256

// ValidateProjectName validates a project name for safety and correctness.
//
// Project names are free text, so the rules only reject input that cannot
// be displayed or used as a graph node identifier:
//   - No empty (or whitespace-only) names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "project name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "project name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "project name contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL accepts absolute http and https URLs with a host. Website and
// metrics links end up as clickable links in the detail panel.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host")
	}
	return nil
}

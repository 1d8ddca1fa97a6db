// Package validate holds the pure predicates the form uses to gate input.
// Nothing here touches the page; callers decide how to surface a result.
package validate

import (
	"mime"
	"regexp"
	"strings"

	"github.com/avirbig/cohen-services-hub/internal/model"
)

var (
	phoneNoise = regexp.MustCompile(`[\s\-()]`)

	// Mobile: 05X plus seven digits, optionally in +972/972 form.
	mobilePattern = regexp.MustCompile(`^(\+972|972)?0?5[0-9]{8}$`)
	// Landline: 0[2-9] area code plus seven or eight digits, same prefixes.
	landlinePattern = regexp.MustCompile(`^(\+972|972)?0?[2-9][0-9]{7,8}$`)

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// DefaultAllowedTypes is the image allow-list used when none is configured.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/heic", "image/heif"}

// IsValidPhone accepts Israeli mobile and landline numbers in national or
// country-code form. Spaces, hyphens and parentheses are ignored.
func IsValidPhone(raw string) bool {
	cleaned := phoneNoise.ReplaceAllString(raw, "")
	return mobilePattern.MatchString(cleaned) || landlinePattern.MatchString(cleaned)
}

// IsValidEmail is a coarse local@domain.tld check.
func IsValidEmail(raw string) bool {
	return emailPattern.MatchString(raw)
}

// IsPresent reports whether value has any non-whitespace content.
func IsPresent(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsAcceptedFileType matches the declared MIME type against allowList,
// ignoring case and any parameters.
func IsAcceptedFileType(file model.RawFile, allowList []string) bool {
	declared := normalizeType(file.Type)
	if declared == "" {
		return false
	}
	for _, allowed := range allowList {
		if normalizeType(allowed) == declared {
			return true
		}
	}
	return false
}

func IsWithinSizeLimit(file model.RawFile, maxBytes int64) bool {
	return file.Size >= 0 && file.Size <= maxBytes
}

// MaxBytesFromMB converts a megabyte limit into bytes.
func MaxBytesFromMB(mb int) int64 {
	return int64(mb) * 1024 * 1024
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return strings.ToLower(t)
}

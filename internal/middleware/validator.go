package middleware

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const (
	maxNameLen  = 200
	maxStoryLen = 10000
	maxTagLen   = 100
)

// ValidateBaseURL checks the remote API root. Unlike user supplied URLs,
// localhost is allowed: the API usually runs next to the console.
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("URL must not carry a query or fragment")
	}
	return nil
}

// ValidateDraft checks the form fields after sanitizing.
func ValidateDraft(name, story string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if story == "" {
		return fmt.Errorf("story cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return fmt.Errorf("name too long (max %d characters)", maxNameLen)
	}
	if utf8.RuneCountInString(story) > maxStoryLen {
		return fmt.Errorf("story too long (max %d characters)", maxStoryLen)
	}
	return nil
}

// ValidateID parses a record id from the URL.
func ValidateID(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("id cannot be empty")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id: %q", raw)
	}
	return id, nil
}

// ValidateTag checks a tag coming back from a tag click.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if utf8.RuneCountInString(tag) > maxTagLen {
		return fmt.Errorf("tag too long (max %d characters)", maxTagLen)
	}
	if strings.ContainsAny(tag, "#*, \t\r\n") {
		return fmt.Errorf("invalid characters in tag")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

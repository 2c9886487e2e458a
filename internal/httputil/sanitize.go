package httputil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// validVideoIDPattern matches the URL-safe base64 alphabet video ids are drawn from.
var validVideoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const maxVideoIDLength = 64

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateVideoID checks that a video id contains only safe characters.
// Length is bounded but not fixed so test and future ids still pass.
func ValidateVideoID(id string) error {
	if id == "" {
		return fmt.Errorf("video ID cannot be empty")
	}
	if len(id) > maxVideoIDLength {
		return fmt.Errorf("video ID too long: %d characters", len(id))
	}
	if !validVideoIDPattern.MatchString(id) {
		return fmt.Errorf("video ID contains invalid characters: %q", id)
	}
	return nil
}

// SanitizeFilename removes path traversal and dangerous characters from a filename.
// Returns just the base name, stripped of any directory components.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)

	replacer := strings.NewReplacer(
		"..", "_",
		"/", "_",
		"\\", "_",
		"\x00", "",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)

	if name == "" || name == "." || name == ".." {
		return "untitled"
	}

	return name
}

// SafeDownloadPath resolves and validates a download path ensuring it stays within the target directory.
func SafeDownloadPath(dir, filename string) (string, error) {
	sanitized := SanitizeFilename(filename)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	resolved, err := filepath.Abs(filepath.Join(absDir, sanitized))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if !strings.HasPrefix(resolved, absDir+string(filepath.Separator)) && resolved != absDir {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", resolved, absDir)
	}

	return resolved, nil
}

// BuildURL constructs a URL from base and path components, encoding each path segment.
func BuildURL(base string, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}

// ResolveReference joins a possibly relative reference onto base.
// Protocol-relative references ("//host/path") inherit the base scheme.
func ResolveReference(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

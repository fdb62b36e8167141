package routepath

import (
	"errors"
	"strings"
)

// Path canonicalization errors.
var (
	ErrBackslashInPath = errors.New("path contains backslash")
	ErrNullByteInPath  = errors.New("path contains null byte")
	ErrPathEscapesRoot = errors.New("path escapes root via ..")
)

// Normalize strips the trailing slash from a request path.
// The root path "/" is returned unchanged.
func Normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// Canonicalize normalizes a request path before matching:
//   - ensures a leading slash and removes the trailing slash (except root)
//   - collapses duplicate slashes (/blog//post -> /blog/post)
//   - removes "." segments and resolves ".." segments
//
// Paths containing a backslash or NUL byte, and ".." sequences that would
// escape the root, are rejected with an error.
func Canonicalize(input string) (string, error) {
	if input == "" {
		return "/", nil
	}

	// SECURITY: reject backslash and NUL before any interpretation.
	if strings.Contains(input, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(input, "\x00") {
		return "", ErrNullByteInPath
	}

	p := input
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	segments := strings.Split(p, "/")
	var result []string
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) == 0 {
				return "", ErrPathEscapesRoot
			}
			result = result[:len(result)-1]
		default:
			result = append(result, seg)
		}
	}

	return "/" + strings.Join(result, "/"), nil
}

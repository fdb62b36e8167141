package routepath

import (
	"path"
	"regexp"
	"strings"
)

// Compiled is the result of compiling a pages-relative file path into a
// URL pattern. A Compiled value is immutable after creation.
type Compiled struct {
	// URLPath is the canonical pattern string, e.g. "/blog/:slug" or
	// "/docs/*rest". Static routes carry the literal path.
	URLPath string

	// Pattern is the anchored regexp with named capture groups.
	// Nil for fully static routes, which match by string equality.
	Pattern *regexp.Regexp

	// ParamNames are the capture names in segment order.
	ParamNames []string

	// IsDynamic indicates the pattern contains at least one parameter.
	IsDynamic bool

	// IsCatchAll indicates the pattern contains a [...name] segment.
	IsCatchAll bool

	// IsAPI indicates the source file lives under the top-level api/
	// directory and is exposed under the /api prefix.
	IsAPI bool
}

// segmentRe matches a well-formed dynamic segment: [name] or [...name].
var segmentRe = regexp.MustCompile(`^\[(\.\.\.)?([A-Za-z_][A-Za-z0-9_]*)\]$`)

// Compile converts a path relative to the pages root into a URL pattern.
//
// Conventions:
//   - the final segment's file extension is stripped
//   - an "index" segment maps to its parent path
//   - [name] becomes a single dynamic segment (:name, one path segment)
//   - [...name] becomes a catch-all segment (*name, rest of the path)
//   - a leading "api" segment marks an API route under the /api prefix
//
// Malformed bracket segments and duplicate parameter names degrade to the
// literal path as the whole pattern; Compile never fails.
func Compile(relPath string) Compiled {
	relPath = strings.TrimPrefix(strings.ReplaceAll(relPath, "\\", "/"), "/")

	segments := splitSegments(relPath)

	isAPI := len(segments) > 0 && segments[0] == "api"
	if isAPI {
		segments = segments[1:]
	}

	var (
		urlParts   []string
		rxParts    []string
		paramNames []string
		isCatchAll bool
		seen       = map[string]bool{}
	)

	for _, seg := range segments {
		if !strings.ContainsAny(seg, "[]") {
			urlParts = append(urlParts, seg)
			rxParts = append(rxParts, regexp.QuoteMeta(seg))
			continue
		}

		m := segmentRe.FindStringSubmatch(seg)
		if m == nil || seen[m[2]] {
			// Malformed bracket syntax or duplicate parameter name:
			// treat the whole literal path as the pattern.
			return literalFallback(segments, isAPI)
		}
		name := m[2]
		seen[name] = true
		paramNames = append(paramNames, name)

		if m[1] != "" {
			isCatchAll = true
			urlParts = append(urlParts, "*"+name)
			rxParts = append(rxParts, "(?P<"+name+">.+)")
		} else {
			urlParts = append(urlParts, ":"+name)
			rxParts = append(rxParts, "(?P<"+name+">[^/]+)")
		}
	}

	c := Compiled{
		URLPath:    assemble(urlParts, isAPI),
		ParamNames: paramNames,
		IsDynamic:  len(paramNames) > 0,
		IsCatchAll: isCatchAll,
		IsAPI:      isAPI,
	}

	if c.IsDynamic {
		pattern, err := regexp.Compile("^" + assemble(rxParts, isAPI) + "$")
		if err != nil {
			return literalFallback(segments, isAPI)
		}
		c.Pattern = pattern
	}

	return c
}

// splitSegments splits a relative path into segments, stripping the file
// extension from the final segment and eliding index segments.
func splitSegments(relPath string) []string {
	if relPath == "" {
		return nil
	}

	raw := strings.Split(relPath, "/")
	last := len(raw) - 1
	raw[last] = strings.TrimSuffix(raw[last], path.Ext(raw[last]))

	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == "" || seg == "index" {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

// assemble joins pattern parts into a rooted path, re-prefixing API routes.
func assemble(parts []string, isAPI bool) string {
	p := "/" + strings.Join(parts, "/")
	if len(parts) == 0 {
		p = "/"
	}
	if isAPI {
		if p == "/" {
			return "/api"
		}
		return "/api" + p
	}
	return p
}

// literalFallback compiles the path as a static literal pattern.
func literalFallback(segments []string, isAPI bool) Compiled {
	return Compiled{URLPath: assemble(segments, isAPI), IsAPI: isAPI}
}

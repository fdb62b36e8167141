// Package jsx rewrites HTML-like literal blocks embedded in Go page
// sources into markup.Raw calls before the file is compiled.
//
// The transform is structural text matching, not a grammar-aware parser:
// it locates `return (<...>)` and `return <...>` shapes with lazy
// multi-line patterns. Nested angle brackets that defeat the lazy match
// are a known limitation of this approach.
package jsx

import (
	"regexp"
	"sort"
	"strings"
)

// MarkupImport is the import path of the rendering primitive inserted
// into rewritten files.
const MarkupImport = "github.com/nextgo-dev/nextgo/pkg/markup"

var (
	// return ( <...> ) across lines, lazy so the first closing paren
	// after the literal ends the block.
	parenBlockRe = regexp.MustCompile(`(?s)return\s*\(\s*(<.*?>)\s*\)`)

	// return <...> up to end of line.
	bareBlockRe = regexp.MustCompile(`return\s+(<.*?>)\s*$`)

	importBlockRe  = regexp.MustCompile(`(?m)^import\s*\(`)
	importSingleRe = regexp.MustCompile(`(?m)^import\s+(?:\w+\s+)?"[^"]+"`)
	packageRe      = regexp.MustCompile(`(?m)^package\s+\w+.*$`)
)

// block is one located literal: a byte range in the source plus its
// captured content.
type block struct {
	start, end int
	literal    string
}

// IsJSXFile reports whether src contains at least one rewritable literal
// block. Callers use it to decide whether Preprocess needs to run at all.
func IsJSXFile(src string) bool {
	if parenBlockRe.MatchString(src) {
		return true
	}
	for _, line := range strings.Split(src, "\n") {
		if bareBlockRe.MatchString(line) {
			return true
		}
	}
	return false
}

// Preprocess rewrites every literal block in src into a markup.Raw call
// and inserts the markup import when the rewrite introduced a need for
// it. Sources with no matching block pass through unmodified.
func Preprocess(src string) string {
	blocks := findBlocks(src)
	if len(blocks) == 0 {
		return src
	}

	// Substitute in reverse position order so earlier offsets stay valid.
	out := src
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		call := "return markup.Raw(\"" + escapeLiteral(b.literal) + "\")"
		out = out[:b.start] + call + out[b.end:]
	}

	return ensureImport(out)
}

// findBlocks locates all rewritable blocks, sorted by start offset, with
// overlaps resolved in favor of the earlier (paren) match.
func findBlocks(src string) []block {
	var blocks []block

	for _, m := range parenBlockRe.FindAllStringSubmatchIndex(src, -1) {
		blocks = append(blocks, block{start: m[0], end: m[1], literal: src[m[2]:m[3]]})
	}

	offset := 0
	for _, line := range strings.SplitAfter(src, "\n") {
		if m := bareBlockRe.FindStringSubmatchIndex(strings.TrimRight(line, "\n")); m != nil {
			b := block{start: offset + m[0], end: offset + m[1], literal: line[m[2]:m[3]]}
			if !overlaps(blocks, b) {
				blocks = append(blocks, b)
			}
		}
		offset += len(line)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })
	return blocks
}

func overlaps(blocks []block, b block) bool {
	for _, other := range blocks {
		if b.start < other.end && other.start < b.end {
			return true
		}
	}
	return false
}

// escapeLiteral makes the captured block safe inside a double-quoted Go
// string: backslashes and quotes are escaped, newlines become \n, and
// surrounding indentation collapses.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, `\n`)
}

// ensureImport adds the markup import if the source does not already
// carry it: inside an existing import block, after the last single
// import, or in a new block after the package clause.
func ensureImport(src string) string {
	if strings.Contains(src, `"`+MarkupImport+`"`) {
		return src
	}

	line := "\t\"" + MarkupImport + "\""

	if loc := importBlockRe.FindStringIndex(src); loc != nil {
		if close := strings.Index(src[loc[1]:], ")"); close >= 0 {
			at := loc[1] + close
			return src[:at] + line + "\n" + src[at:]
		}
	}

	if locs := importSingleRe.FindAllStringIndex(src, -1); len(locs) > 0 {
		at := locs[len(locs)-1][1]
		return src[:at] + "\nimport \"" + MarkupImport + "\"" + src[at:]
	}

	if loc := packageRe.FindStringIndex(src); loc != nil {
		at := loc[1]
		return src[:at] + "\n\nimport \"" + MarkupImport + "\"" + src[at:]
	}

	return "import \"" + MarkupImport + "\"\n\n" + src
}

// Package htmlcompressor provides compressors that reduce the size of HTML
// and XML documents by removing whitespace, comments and redundant markup,
// while keeping protected regions (pre, textarea, script, style, conditional
// comments, user patterns) byte-for-byte intact.
package htmlcompressor

import (
	"regexp"
	"strings"
)

// Compressor takes markup or embedded code and returns a smaller equivalent.
// Implementations must return the produced text even when they also return an
// error; an error signals a partial, non-fatal failure and callers may use the
// returned text regardless.
type Compressor interface {
	Compress(source string) (string, error)
}

// Func adapts a function to the Compressor interface.
type Func func(string) (string, error)

// Compress calls f.
func (f Func) Compress(source string) (string, error) {
	return f(source)
}

// ReplaceAllSubmatchFunc replaces every match of re in src by the return value
// of repl, which receives the match and its submatches. Unlike
// (*regexp.Regexp).ReplaceAllStringFunc the replacement has access to capture
// groups, and unlike ReplaceAllString the returned text is inserted literally
// without $-expansion.
func ReplaceAllSubmatchFunc(re *regexp.Regexp, src string, repl func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(src, -1)
	if matches == nil {
		return src
	}

	var sb strings.Builder
	sb.Grow(len(src))
	last := 0
	groups := make([]string, 0, 4)
	for _, m := range matches {
		groups = groups[:0]
		for i := 0; i < len(m); i += 2 {
			if m[i] == -1 {
				groups = append(groups, "")
			} else {
				groups = append(groups, src[m[i]:m[i+1]])
			}
		}
		sb.WriteString(src[last:m[0]])
		sb.WriteString(repl(groups))
		last = m[1]
	}
	sb.WriteString(src[last:])
	return sb.String()
}

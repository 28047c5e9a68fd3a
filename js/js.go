// Package js provides a conservative JavaScript compressor that removes
// comments and collapses whitespace using a token pass, without renaming or
// restructuring the code. It is meant as the sub-compressor for inline script
// blocks; heavier optimization belongs to a dedicated minifier.
package js

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Compressor compresses JavaScript source. The zero value is ready for use.
type Compressor struct {
	// KeepComments keeps all comments instead of only those starting with
	// the /*! retention marker.
	KeepComments bool
}

// Compress lexes the source and writes it back without comments and with
// whitespace reduced to what separates tokens. Line terminators are kept (one
// per run) so that automatic semicolon insertion is unaffected. On a lexer
// error the original source is returned together with the error.
func (c *Compressor) Compress(source string) (string, error) {
	l := js.NewLexer(parse.NewInputString(source))

	var sb strings.Builder
	sb.Grow(len(source))
	prevType := js.ErrorToken
	pendingSpace := false
	pendingNewline := false

	for {
		tt, data := l.Next()
		if tt == js.DivToken || tt == js.DivEqToken {
			if regExpAllowed(prevType) {
				tt, data = l.RegExp()
			}
		}
		switch tt {
		case js.ErrorToken:
			if l.Err() == io.EOF {
				return sb.String(), nil
			}
			return source, l.Err()
		case js.WhitespaceToken:
			pendingSpace = true
			continue
		case js.LineTerminatorToken:
			pendingNewline = true
			continue
		case js.CommentToken:
			if c.KeepComments || strings.HasPrefix(string(data), "/*!") {
				break
			}
			pendingSpace = true
			continue
		case js.CommentLineTerminatorToken:
			if c.KeepComments || strings.HasPrefix(string(data), "/*!") {
				break
			}
			pendingNewline = true
			continue
		}

		if pendingNewline {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		} else if pendingSpace && needsSpace(lastByte(&sb), firstByte(data)) {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		pendingNewline = false

		sb.Write(data)
		prevType = tt
	}
}

// regExpAllowed reports whether a slash after the given token starts a
// regular expression literal rather than a division.
func regExpAllowed(prev js.TokenType) bool {
	switch prev {
	case js.IdentifierToken, js.StringToken, js.RegExpToken,
		js.TemplateToken, js.TemplateEndToken,
		js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.IncrToken, js.DecrToken,
		js.ThisToken, js.TrueToken, js.FalseToken, js.NullToken,
		js.DecimalToken, js.BinaryToken, js.OctalToken,
		js.HexadecimalToken, js.IntegerToken:
		return false
	}
	return true
}

// needsSpace reports whether dropping the whitespace between the two bytes
// would merge adjacent tokens into one.
func needsSpace(left, right byte) bool {
	if isIdentByte(left) && isIdentByte(right) {
		return true
	}
	if (left == '+' || left == '-') && left == right {
		return true
	}
	return left == '/' && (right == '/' || right == '*')
}

func isIdentByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '_' || c == '$' || 0x80 <= c
}

func lastByte(sb *strings.Builder) byte {
	s := sb.String()
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func firstByte(data []byte) byte {
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// Package css provides a CSS compressor that removes comments and collapses
// whitespace using a token pass. It is meant as the sub-compressor for inline
// style blocks.
package css

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Compressor compresses CSS source. The zero value is ready for use.
type Compressor struct {
	// KeepComments keeps all comments instead of only those starting with
	// the /*! retention marker.
	KeepComments bool
}

// Compress lexes the source and writes it back without comments, collapsing
// whitespace runs and dropping whitespace next to braces, semicolons and
// commas. A semicolon directly before a closing brace is dropped as well. On
// a lexer error the original source is returned together with the error.
func (c *Compressor) Compress(source string) (string, error) {
	l := css.NewLexer(parse.NewInputString(source))

	var sb strings.Builder
	sb.Grow(len(source))
	pendingSpace := false
	pendingSemicolon := false

	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if l.Err() == io.EOF {
				if pendingSemicolon {
					sb.WriteByte(';')
				}
				return sb.String(), nil
			}
			return source, l.Err()
		case css.CommentToken:
			if !c.KeepComments && !strings.HasPrefix(string(data), "/*!") {
				continue
			}
		case css.WhitespaceToken:
			pendingSpace = true
			continue
		case css.SemicolonToken:
			// held back, dropped before a closing brace
			pendingSemicolon = true
			pendingSpace = false
			continue
		}

		if pendingSemicolon {
			if tt != css.RightBraceToken {
				sb.WriteByte(';')
			}
			pendingSemicolon = false
			pendingSpace = false
		}
		if pendingSpace {
			if !skipSpaceBefore(tt) && !skipSpaceAfter(lastByte(&sb)) {
				sb.WriteByte(' ')
			}
			pendingSpace = false
		}

		sb.Write(data)
	}
}

func skipSpaceBefore(tt css.TokenType) bool {
	switch tt {
	case css.LeftBraceToken, css.RightBraceToken, css.CommaToken:
		return true
	}
	return false
}

func skipSpaceAfter(left byte) bool {
	switch left {
	case 0, '{', '}', ';', ',', ':':
		return true
	}
	return false
}

func lastByte(sb *strings.Builder) byte {
	s := sb.String()
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

package interp

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokPunct
)

type token struct {
	kind tokenKind
	text string // ident name, punct text, or string payload
	num  float64
	line int
}

type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (lx *lexer) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", lx.line, fmt.Sprintf(format, args...))
}

func (lx *lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) skipSpace() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*':
			lx.pos += 2
			for {
				if lx.pos+1 >= len(lx.src) {
					return lx.errf("unterminated block comment")
				}
				if lx.src[lx.pos] == '\n' {
					lx.line++
				}
				if lx.src[lx.pos] == '*' && lx.src[lx.pos+1] == '/' {
					lx.pos += 2
					break
				}
				lx.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// next scans one token.
func (lx *lexer) next() (token, error) {
	if err := lx.skipSpace(); err != nil {
		return token{}, err
	}
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line}, nil
	}

	start := lx.pos
	c := lx.src[lx.pos]

	switch {
	case isDigit(c):
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
		if lx.pos < len(lx.src) && lx.src[lx.pos] == '.' {
			lx.pos++
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.pos++
			}
		}
		text := lx.src[start:lx.pos]
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, lx.errf("bad number %q", text)
		}
		return token{kind: tokNumber, num: n, line: lx.line}, nil

	case isIdentStart(c):
		for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
			lx.pos++
		}
		return token{kind: tokIdent, text: lx.src[start:lx.pos], line: lx.line}, nil

	case c == '"' || c == '\'':
		return lx.scanString(c)
	}

	// Two-character punctuation is not part of the language; everything
	// else is a single byte.
	switch c {
	case '(', ')', '{', '}', '[', ']', '.', ',', ';', ':', '=', '+', '-', '*', '/':
		lx.pos++
		return token{kind: tokPunct, text: string(c), line: lx.line}, nil
	}
	return token{}, lx.errf("unexpected character %q", string(c))
}

func (lx *lexer) scanString(quote byte) (token, error) {
	line := lx.line
	lx.pos++ // opening quote
	var buf []byte
	for {
		if lx.pos >= len(lx.src) {
			return token{}, lx.errf("unterminated string")
		}
		c := lx.src[lx.pos]
		lx.pos++
		if c == quote {
			break
		}
		if c == '\n' {
			return token{}, lx.errf("newline in string")
		}
		if c == '\\' {
			if lx.pos >= len(lx.src) {
				return token{}, lx.errf("unterminated string")
			}
			e := lx.src[lx.pos]
			lx.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			default:
				buf = append(buf, e)
			}
			continue
		}
		buf = append(buf, c)
	}
	return token{kind: tokString, text: string(buf), line: line}, nil
}

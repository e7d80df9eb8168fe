package jinja

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokName
	tokNumber
	tokString
	tokOp
)

type token struct {
	typ  tokenType
	val  string
	line int
}

func (t token) describe() string {
	switch t.typ {
	case tokEOF:
		return "end of expression"
	case tokString:
		return "string literal"
	default:
		return fmt.Sprintf("%q", t.val)
	}
}

// multi-character operators, longest first.
var multiOps = []string{"**", "//", "==", "!=", "<=", ">="}

const singleOps = "+-*/%~|()[]{},:.=<>"

// lexAll tokenizes a Jinja expression fragment. startLine is the line the
// fragment begins on within the enclosing template string.
func lexAll(src string, startLine int) ([]token, *SyntaxError) {
	var toks []token
	line := startLine
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '\'' || c == '"':
			quote := c
			start := i
			i++
			for i < len(src) && src[i] != quote {
				if src[i] == '\\' {
					i++
				} else if src[i] == '\n' {
					line++
				}
				i++
			}
			if i >= len(src) {
				return nil, errAt(line, "unterminated string literal")
			}
			i++
			toks = append(toks, token{typ: tokString, val: src[start:i], line: line})
		case c >= '0' && c <= '9':
			start := i
			for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '_') {
				i++
			}
			if i < len(src) && src[i] == '.' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9' {
				i++
				for i < len(src) && src[i] >= '0' && src[i] <= '9' {
					i++
				}
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && src[j] >= '0' && src[j] <= '9' {
					i = j
					for i < len(src) && src[i] >= '0' && src[i] <= '9' {
						i++
					}
				}
			}
			toks = append(toks, token{typ: tokNumber, val: src[start:i], line: line})
		case isNameStart(c):
			start := i
			for i < len(src) && isNameChar(src[i]) {
				i++
			}
			toks = append(toks, token{typ: tokName, val: src[start:i], line: line})
		default:
			if op, n := matchOp(src[i:]); n > 0 {
				toks = append(toks, token{typ: tokOp, val: op, line: line})
				i += n
				continue
			}
			return nil, errAt(line, "unexpected character %q", string(c))
		}
	}
	toks = append(toks, token{typ: tokEOF, line: line})
	return toks, nil
}

func matchOp(s string) (string, int) {
	for _, op := range multiOps {
		if strings.HasPrefix(s, op) {
			return op, len(op)
		}
	}
	if len(s) > 0 && strings.IndexByte(singleOps, s[0]) >= 0 {
		return s[:1], 1
	}
	return "", 0
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9'
}

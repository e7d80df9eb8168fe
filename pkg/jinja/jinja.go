// Package jinja checks the syntax of Home Assistant template strings
// without rendering them. It understands the Jinja dialect HA uses:
// expression blocks {{ ... }}, statement blocks {% ... %} (with whitespace
// control markers), comments {# ... #}, raw regions, filters, tests, and
// the usual expression grammar.
//
// The check is syntax-only. Identifiers, filter names and test names are
// never resolved: "{{ no_such_function() | bogus_filter }}" is valid here
// and fails, if at all, when Home Assistant renders it. That matches what a
// pre-deployment gatekeeper can promise without a live state machine.
package jinja

import "fmt"

// SyntaxError is a template syntax failure. Line is 1-based within the
// template string (0 when unknown).
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func errAt(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// ContainsTemplate reports whether s contains a template delimiter. Strings
// without one are plain text and never checked.
func ContainsTemplate(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '{' && (s[i+1] == '{' || s[i+1] == '%') {
			return true
		}
	}
	return false
}

// Check parses src and returns the first syntax error, or nil.
func Check(src string) *SyntaxError {
	s := &scanner{src: src, line: 1}
	return s.run()
}

// blockTag tracks an open statement block for balance checking.
type blockTag struct {
	kind string
	line int
}

type scanner struct {
	src   string
	pos   int
	line  int
	stack []blockTag
}

func (s *scanner) run() *SyntaxError {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' {
			s.line++
			s.pos++
			continue
		}
		if c != '{' || s.pos+1 >= len(s.src) {
			s.pos++
			continue
		}
		switch s.src[s.pos+1] {
		case '{':
			if err := s.expressionBlock(); err != nil {
				return err
			}
		case '%':
			if err := s.statementBlock(); err != nil {
				return err
			}
		case '#':
			if err := s.commentBlock(); err != nil {
				return err
			}
		default:
			s.pos++
		}
	}

	if len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		return errAt(top.line, "missing {%% end%s %%} for {%% %s %%}", top.kind, top.kind)
	}
	return nil
}

// expressionBlock consumes "{{ ... }}" and syntax-checks the inner
// expression.
func (s *scanner) expressionBlock() *SyntaxError {
	startLine := s.line
	s.pos += 2
	inner, err := s.scanUntil("}}", startLine, "expression")
	if err != nil {
		return err
	}
	if err := checkOutputExpression(trimControl(inner), startLine); err != nil {
		return err
	}
	return nil
}

// statementBlock consumes "{% ... %}" and dispatches on the tag keyword.
func (s *scanner) statementBlock() *SyntaxError {
	startLine := s.line
	s.pos += 2
	inner, err := s.scanUntil("%}", startLine, "statement")
	if err != nil {
		return err
	}
	keyword, rest := splitKeyword(trimControl(inner))
	if keyword == "" {
		return errAt(startLine, "empty statement block")
	}
	if keyword == "raw" {
		return s.skipRaw(startLine)
	}
	return s.handleTag(keyword, rest, startLine)
}

// commentBlock consumes "{# ... #}".
func (s *scanner) commentBlock() *SyntaxError {
	startLine := s.line
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.line++
		} else if s.src[s.pos] == '#' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '}' {
			s.pos += 2
			return nil
		}
		s.pos++
	}
	return errAt(startLine, "unclosed comment")
}

// scanUntil advances past the closing delimiter and returns the content
// before it. String literals are honored so a "}}" inside quotes does not
// close the block; nested braces (dict literals) are tracked for
// expression blocks.
func (s *scanner) scanUntil(close string, startLine int, what string) (string, *SyntaxError) {
	start := s.pos
	depth := 0
	var quote byte
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' {
			s.line++
			s.pos++
			continue
		}
		if quote != 0 {
			if c == '\\' {
				s.pos += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			s.pos++
			continue
		}
		switch {
		case c == '\'' || c == '"':
			quote = c
			s.pos++
		case c == close[0] && s.pos+1 < len(s.src) && s.src[s.pos+1] == close[1] && depth == 0:
			inner := s.src[start:s.pos]
			s.pos += 2
			return inner, nil
		case c == '{':
			depth++
			s.pos++
		case c == '}':
			if depth > 0 {
				depth--
			}
			s.pos++
		default:
			s.pos++
		}
	}
	return "", errAt(startLine, "unclosed %s block", what)
}

// skipRaw advances past the matching {% endraw %} without interpreting the
// region.
func (s *scanner) skipRaw(startLine int) *SyntaxError {
	for s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.line++
			s.pos++
			continue
		}
		if s.src[s.pos] == '{' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '%' {
			tagLine := s.line
			s.pos += 2
			inner, err := s.scanUntil("%}", tagLine, "statement")
			if err != nil {
				return err
			}
			keyword, _ := splitKeyword(trimControl(inner))
			if keyword == "endraw" {
				return nil
			}
			continue
		}
		s.pos++
	}
	return errAt(startLine, "missing {%% endraw %%}")
}

func (s *scanner) push(kind string, line int) {
	s.stack = append(s.stack, blockTag{kind: kind, line: line})
}

func (s *scanner) top() string {
	if len(s.stack) == 0 {
		return ""
	}
	return s.stack[len(s.stack)-1].kind
}

func (s *scanner) pop(kind string, line int) *SyntaxError {
	if s.top() != kind {
		if len(s.stack) == 0 {
			return errAt(line, "unexpected {%% end%s %%} with no open block", kind)
		}
		return errAt(line, "unexpected {%% end%s %%}, expected {%% end%s %%}", kind, s.top())
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

func (s *scanner) inside(kind string) bool {
	for _, t := range s.stack {
		if t.kind == kind {
			return true
		}
	}
	return false
}

// trimControl strips Jinja whitespace-control markers ("-", "+") from the
// edges of a block's inner content.
func trimControl(inner string) string {
	if len(inner) > 0 && (inner[0] == '-' || inner[0] == '+') {
		inner = inner[1:]
	}
	if len(inner) > 0 && (inner[len(inner)-1] == '-' || inner[len(inner)-1] == '+') {
		inner = inner[:len(inner)-1]
	}
	return inner
}

// splitKeyword returns the leading tag keyword and the remainder.
func splitKeyword(inner string) (string, string) {
	i := 0
	for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t' || inner[i] == '\n') {
		i++
	}
	start := i
	for i < len(inner) && (inner[i] == '_' || isAlnum(inner[i])) {
		i++
	}
	return inner[start:i], inner[i:]
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

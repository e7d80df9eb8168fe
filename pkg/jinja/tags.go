package jinja

// Statement tag handling. Paired tags are balance-checked with the scanner
// stack; tags carrying an expression get their expression parsed.

func (s *scanner) handleTag(keyword, rest string, line int) *SyntaxError {
	switch keyword {
	case "if":
		s.push("if", line)
		return parseTagExpr(rest, line)
	case "elif":
		if s.top() != "if" {
			return errAt(line, "{%% elif %%} outside {%% if %%} block")
		}
		return parseTagExpr(rest, line)
	case "else":
		if s.top() != "if" && s.top() != "for" {
			return errAt(line, "{%% else %%} outside {%% if %%} or {%% for %%} block")
		}
		return expectEmptyTag("else", rest, line)
	case "endif":
		return s.pop("if", line)
	case "for":
		s.push("for", line)
		return parseForClause(rest, line)
	case "endfor":
		return s.pop("for", line)
	case "set":
		block, err := parseSetClause(rest, line)
		if err != nil {
			return err
		}
		if block {
			s.push("set", line)
		}
		return nil
	case "endset":
		return s.pop("set", line)
	case "macro":
		s.push("macro", line)
		return parseMacroSignature(rest, line)
	case "endmacro":
		return s.pop("macro", line)
	case "filter":
		s.push("filter", line)
		return parseFilterChain(rest, line)
	case "endfilter":
		return s.pop("filter", line)
	case "call":
		s.push("call", line)
		return parseTagExpr(rest, line)
	case "endcall":
		return s.pop("call", line)
	case "with":
		s.push("with", line)
		return nil
	case "endwith":
		return s.pop("with", line)
	case "autoescape":
		s.push("autoescape", line)
		return parseTagExpr(rest, line)
	case "endautoescape":
		return s.pop("autoescape", line)
	case "block":
		s.push("block", line)
		return nil
	case "endblock":
		return s.pop("block", line)
	case "break":
		if !s.inside("for") {
			return errAt(line, "{%% break %%} outside {%% for %%} loop")
		}
		return expectEmptyTag("break", rest, line)
	case "continue":
		if !s.inside("for") {
			return errAt(line, "{%% continue %%} outside {%% for %%} loop")
		}
		return expectEmptyTag("continue", rest, line)
	case "do":
		return parseTagExpr(rest, line)
	case "include", "import", "from", "extends":
		// Accepted leniently: these fail at render time in HA (no template
		// loader), which is not this checker's concern. Only lexing errors
		// (unterminated strings, bad characters) are reported.
		_, err := lexAll(rest, line)
		return err
	case "endraw":
		return errAt(line, "unexpected {%% endraw %%} with no open raw block")
	default:
		return errAt(line, "unknown tag %q", keyword)
	}
}

// parseTagExpr parses a tag body that is a single expression.
func parseTagExpr(src string, line int) *SyntaxError {
	p, err := newParser(src, line)
	if err != nil {
		return err
	}
	if p.cur().typ == tokEOF {
		return errAt(line, "missing expression in tag")
	}
	if err := p.parseExpr(); err != nil {
		return err
	}
	return p.expectEOF()
}

func expectEmptyTag(keyword, rest string, line int) *SyntaxError {
	p, err := newParser(rest, line)
	if err != nil {
		return err
	}
	if p.cur().typ != tokEOF {
		return errAt(p.cur().line, "unexpected %s after %q", p.cur().describe(), keyword)
	}
	return nil
}

// parseForClause parses "target[, target...] in iterable [if cond]
// [recursive]".
func parseForClause(src string, line int) *SyntaxError {
	p, err := newParser(src, line)
	if err != nil {
		return err
	}
	for {
		if _, err := p.expectName(); err != nil {
			return err
		}
		if !p.acceptOp(",") {
			break
		}
	}
	if !p.acceptName("in") {
		return errAt(p.cur().line, "expected 'in' in for loop, got %s", p.cur().describe())
	}
	// The iterable is an or-expression so a trailing "if" starts the loop
	// filter instead of a conditional expression.
	if err := p.parseOr(); err != nil {
		return err
	}
	if p.acceptName("if") {
		if err := p.parseExpr(); err != nil {
			return err
		}
	}
	p.acceptName("recursive")
	return p.expectEOF()
}

// parseSetClause parses "{% set x = expr %}" or the block form
// "{% set x %}...{% endset %}". The bool return reports the block form.
func parseSetClause(src string, line int) (bool, *SyntaxError) {
	p, err := newParser(src, line)
	if err != nil {
		return false, err
	}
	for {
		if _, err := p.expectName(); err != nil {
			return false, err
		}
		for p.acceptOp(".") {
			if _, err := p.expectName(); err != nil {
				return false, err
			}
		}
		if !p.acceptOp(",") {
			break
		}
	}
	if p.cur().typ == tokEOF {
		return true, nil // block form
	}
	if err := p.expectOp("="); err != nil {
		return false, err
	}
	if err := p.parseTuple(); err != nil {
		return false, err
	}
	return false, p.expectEOF()
}

// parseMacroSignature parses "name(param[=default], ...)".
func parseMacroSignature(src string, line int) *SyntaxError {
	p, err := newParser(src, line)
	if err != nil {
		return err
	}
	if _, err := p.expectName(); err != nil {
		return err
	}
	if err := p.expectOp("("); err != nil {
		return err
	}
	if p.acceptOp(")") {
		return p.expectEOF()
	}
	for {
		if _, err := p.expectName(); err != nil {
			return err
		}
		if p.acceptOp("=") {
			if err := p.parseExpr(); err != nil {
				return err
			}
		}
		if !p.acceptOp(",") {
			break
		}
		if p.isOp(")") {
			break
		}
	}
	if err := p.expectOp(")"); err != nil {
		return err
	}
	return p.expectEOF()
}

// parseFilterChain parses the body of a "{% filter ... %}" tag:
// "name[(args)] (| name[(args)])*".
func parseFilterChain(src string, line int) *SyntaxError {
	p, err := newParser(src, line)
	if err != nil {
		return err
	}
	for {
		t := p.cur()
		if t.typ != tokName {
			return errAt(t.line, "expected filter name, got %s", t.describe())
		}
		p.advance()
		if p.acceptOp("(") {
			if err := p.parseCallArgs(); err != nil {
				return err
			}
		}
		if !p.acceptOp("|") {
			break
		}
	}
	return p.expectEOF()
}
